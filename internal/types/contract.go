// Package types defines the records kept by keeper and the errors its
// stores return.
package types

// Column headers of the contracts file, in file order.
const (
	HeaderDescription = "Descrição do Contrato"
	HeaderCategory    = "Categoria"
	HeaderDueDate     = "Data de Vencimento"
	HeaderSupplier    = "Fornecedor"
)

// ContractHeader is the fixed header row written to every contracts file.
var ContractHeader = []string{HeaderDescription, HeaderCategory, HeaderDueDate, HeaderSupplier}

// Contract is a single row of the contracts file.
// Description acts as the natural key; nothing enforces its uniqueness.
type Contract struct {
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	DueDate     string `json:"due_date" yaml:"due_date"`
	Supplier    string `json:"supplier" yaml:"supplier"`
}

// Record returns the contract as a row in ContractHeader order.
func (c Contract) Record() []string {
	return []string{c.Description, c.Category, c.DueDate, c.Supplier}
}

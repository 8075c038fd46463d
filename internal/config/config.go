// Package config loads keeper settings from defaults, a TOML file,
// KEEPER_* environment variables and command-line flags.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all keeper configuration.
type Config struct {
	DataDir   string          `mapstructure:"data_dir" toml:"data_dir" json:"data_dir" yaml:"data_dir"`
	Output    string          `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Verbose   bool            `mapstructure:"verbose" toml:"verbose" json:"verbose" yaml:"verbose"`
	Contracts ContractsConfig `mapstructure:"contracts" toml:"contracts" json:"contracts" yaml:"contracts"`
	Tasks     TasksConfig     `mapstructure:"tasks" toml:"tasks" json:"tasks" yaml:"tasks"`
	Log       LogConfig       `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// ContractsConfig locates the contracts file and its SQLite mirror.
// Relative paths are resolved against DataDir.
type ContractsConfig struct {
	File string `mapstructure:"file" toml:"file" json:"file" yaml:"file"`
	DB   string `mapstructure:"db" toml:"db" json:"db" yaml:"db"`
}

// TasksConfig locates the task database and its backup.
// Relative paths are resolved against DataDir.
type TasksConfig struct {
	DB     string `mapstructure:"db" toml:"db" json:"db" yaml:"db"`
	Backup string `mapstructure:"backup" toml:"backup" json:"backup" yaml:"backup"`
}

// LogConfig controls log level and the optional rotating log file.
type LogConfig struct {
	Level      string `mapstructure:"level" toml:"level" json:"level" yaml:"level"`
	File       string `mapstructure:"file" toml:"file" json:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
}

// Default configuration values.
const (
	DefaultDataDir       = "data"
	DefaultContractsFile = "contratos.csv"
	DefaultContractsDB   = "contracts.db"
	DefaultTasksDB       = "tasks.db"
	DefaultTasksBackup   = "tasks_backup.db"
	DefaultOutput        = "table"
	DefaultLogLevel      = "warn"
	DefaultConfigName    = "keeper.toml"
)

// EnvPrefix is the prefix of environment overrides, e.g. KEEPER_DATA_DIR.
const EnvPrefix = "KEEPER"

// OutputFormats lists the accepted values of Output.
var OutputFormats = []string{"table", "json", "yaml"}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Output:  DefaultOutput,
		Contracts: ContractsConfig{
			File: DefaultContractsFile,
			DB:   DefaultContractsDB,
		},
		Tasks: TasksConfig{
			DB:     DefaultTasksDB,
			Backup: DefaultTasksBackup,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("output", d.Output)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("contracts.file", d.Contracts.File)
	v.SetDefault("contracts.db", d.Contracts.DB)
	v.SetDefault("tasks.db", d.Tasks.DB)
	v.SetDefault("tasks.backup", d.Tasks.Backup)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"data-dir":       "data_dir",
	"output":         "output",
	"verbose":        "verbose",
	"contracts-file": "contracts.file",
	"contracts-db":   "contracts.db",
	"tasks-db":       "tasks.db",
	"tasks-backup":   "tasks.backup",
	"log-level":      "log.level",
	"log-file":       "log.file",
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// cfgFile names an explicit config file; when empty, keeper.toml is looked
// up in the working directory and then in ~/.keeper/. flags may be nil.
// It returns the config and the path of the file used, if any.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	// Create a new viper instance to avoid global state issues
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	used := ""
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		used = cfgFile
	} else {
		for _, path := range searchPaths() {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, "", fmt.Errorf("error reading config file %s: %w", path, err)
			}
			used = path
			break
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}

func searchPaths() []string {
	paths := []string{DefaultConfigName, "." + DefaultConfigName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".keeper", DefaultConfigName))
	}
	return paths
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	valid := false
	for _, f := range OutputFormats {
		if c.Output == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("output must be one of %s (got %q)", strings.Join(OutputFormats, ", "), c.Output)
	}
	return nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// ContractsFilePath returns the contracts CSV path.
func (c *Config) ContractsFilePath() string { return c.resolve(c.Contracts.File) }

// ContractsDBPath returns the contracts mirror database path.
func (c *Config) ContractsDBPath() string { return c.resolve(c.Contracts.DB) }

// TasksDBPath returns the task database path.
func (c *Config) TasksDBPath() string { return c.resolve(c.Tasks.DB) }

// TasksBackupPath returns the task backup path. A relative backup path
// names a sibling of the task database, wherever that lives.
func (c *Config) TasksBackupPath() string {
	if c.Tasks.Backup == "" || filepath.IsAbs(c.Tasks.Backup) {
		return c.Tasks.Backup
	}
	return filepath.Join(filepath.Dir(c.TasksDBPath()), c.Tasks.Backup)
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the configuration to path as TOML. An existing file is
// only replaced when force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}

	data, err := c.Encode()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

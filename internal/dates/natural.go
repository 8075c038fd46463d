// Package dates turns free-form due date phrases into ISO dates.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Layout is the format due dates are stored in.
const Layout = "2006-01-02"

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// Normalize returns s as YYYY-MM-DD. Values already in that layout are
// returned unchanged; phrases such as "next friday" or "in 2 weeks" are
// resolved relative to now. Unparseable input is an error.
func Normalize(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(Layout, s); err == nil {
		return s, nil
	}

	r, err := parser.Parse(s, now)
	if err != nil {
		return "", fmt.Errorf("failed to parse due date %q: %w", s, err)
	}
	if r == nil {
		return "", fmt.Errorf("could not understand due date %q", s)
	}
	return r.Time.Format(Layout), nil
}

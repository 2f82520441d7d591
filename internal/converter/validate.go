package converter

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/endless-browser/resource-convert/internal/models"
)

// Ruleset patterns are written for a backtracking engine and routinely use
// lookahead, which RE2 cannot compile.
func compilePattern(expr string) error {
	_, err := regexp2.Compile(expr, regexp2.None)
	return err
}

// ValidatePatterns compiles every pattern in rs and reports the first one
// that fails
func ValidatePatterns(rs models.RuleSet) error {
	check := func(field, expr string) error {
		if err := compilePattern(expr); err != nil {
			return &models.ConvertError{
				Kind:   models.ErrPatternCompile,
				Detail: fmt.Sprintf("%s %q", field, expr),
				Cause:  err,
			}
		}
		return nil
	}

	for _, r := range rs.Rules {
		if err := check("rule from", r.From); err != nil {
			return err
		}
	}
	for _, sc := range rs.SecureCookies {
		if err := check("securecookie host", sc.Host); err != nil {
			return err
		}
		if err := check("securecookie name", sc.Name); err != nil {
			return err
		}
	}
	for _, ex := range rs.Exclusions {
		if err := check("exclusion pattern", ex.Pattern); err != nil {
			return err
		}
	}
	return nil
}

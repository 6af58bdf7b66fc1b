// Package validation checks user-provided market identifiers before they
// reach a URL path, a file name, or a sink query.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// symbolPattern matches chart-API symbols.
// Allows: index carets (^GSPC), futures suffixes (ES=F), class shares
// (BRK.B), and pairs (BTC-USD). Max length: 16.
var symbolPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,15}$`)

// periodPattern matches range values such as 2d, 6mo, 1y, 1wk, ytd, max.
var periodPattern = regexp.MustCompile(`^(?:[1-9][0-9]{0,2}(?:d|wk|mo|y)|ytd|max)$`)

// ValidateSymbol returns an error if symbol is not a chart-API symbol.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %q", symbol)
	}
	return nil
}

// SanitizeSymbol normalizes and validates a symbol.
func SanitizeSymbol(symbol string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if err := ValidateSymbol(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ValidatePeriod returns an error if period is not a chart-API range.
func ValidatePeriod(period string) error {
	if !periodPattern.MatchString(period) {
		return fmt.Errorf("invalid period: %q (want Nd, Nwk, Nmo, Ny, ytd or max)", period)
	}
	return nil
}

// FileSafe maps a symbol to a string usable in a file or object name.
func FileSafe(symbol string) string {
	return strings.NewReplacer("^", "", "=", "_", ".", "_").Replace(symbol)
}

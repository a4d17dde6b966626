package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Error reports malformed or missing input. It is raised before any
// external process is spawned.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a validation Error from a format string
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

var masterBillPattern = regexp.MustCompile(`^\d{9}$`)

// Trim removes surrounding whitespace from an input field
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// MasterBillNumber accepts exactly 9 ASCII digits (after trimming)
func MasterBillNumber(v string) error {
	v = strings.TrimSpace(v)
	if !masterBillPattern.MatchString(v) {
		return Errorf("master bill number must be exactly 9 digits, got: %s", v)
	}
	return nil
}

// Quantity accepts pallet counts of at least 1
func Quantity(q int) error {
	if q < 1 {
		return Errorf("quantity must be >= 1, got: %d", q)
	}
	return nil
}

// ProductCode rejects codes that are empty after trimming
func ProductCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return Errorf("product code cannot be empty")
	}
	return nil
}

// temperatureAliases maps shorthand used in the inbound emails to the
// canonical storage classes.
var temperatureAliases = map[string]string{
	"F":  "FREEZER",
	"C":  "COOLER",
	"R":  "COOLER",
	"FR": "FREEZER CRATES",
}

// NormalizeTemperature canonicalizes temperature shorthand. Unrecognized
// values are upper-cased and passed through unchanged rather than rejected;
// the canonical set is advisory at this layer, and the target form is the
// authority on what it accepts.
func NormalizeTemperature(v string) string {
	upper := strings.ToUpper(strings.TrimSpace(v))
	if canonical, ok := temperatureAliases[upper]; ok {
		return canonical
	}
	return upper
}

// InferTemperature derives a storage class from a product code's suffix.
// An FR suffix means freezer crates, a trailing F means freezer, a trailing
// C or R means cooler, and anything else defaults to freezer. This is a
// heuristic over the supplier's SKU naming convention, not a lookup against
// a product catalog; it is only used when extraction yields a product with
// no explicit temperature.
func InferTemperature(productCode string) string {
	code := strings.ToUpper(strings.TrimSpace(productCode))
	if code == "" {
		return "FREEZER"
	}
	if strings.HasSuffix(code, "FR") {
		return "FREEZER CRATES"
	}
	switch code[len(code)-1] {
	case 'F':
		return "FREEZER"
	case 'C', 'R':
		return "COOLER"
	}
	return "FREEZER"
}

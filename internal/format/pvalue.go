// Package format holds the display formatters applied to table columns at
// render time. Formatters are registered by name so a process-wide default
// can be configured without passing function values around.
package format

import (
	"fmt"
	"math"
	"strconv"
)

// PValueFormatter renders a numeric p-value for display. NaN input renders
// as the empty string so absent p-values leave their cell blank.
type PValueFormatter func(p float64) string

// StylePValue returns the standard p-value style with the given number of
// significant digits. Values below 0.001 render as "<0.001" and values above
// 0.9 render as ">0.9".
func StylePValue(digits int) PValueFormatter {
	if digits < 1 {
		digits = 1
	}
	return func(p float64) string {
		if math.IsNaN(p) {
			return ""
		}
		if p < 0.001 {
			return "<0.001"
		}
		if p > 0.9 {
			return ">0.9"
		}
		return strconv.FormatFloat(p, 'g', digits, 64)
	}
}

// built-in formatter registry
var formatters = map[string]PValueFormatter{
	"pvalue_3sig": StylePValue(3),
	"pvalue_2sig": StylePValue(2),
	"pvalue_1sig": StylePValue(1),
}

// ByName resolves a registered formatter
func ByName(name string) (PValueFormatter, bool) {
	f, ok := formatters[name]
	return f, ok
}

// Register adds or replaces a named formatter
func Register(name string, f PValueFormatter) error {
	if name == "" || f == nil {
		return fmt.Errorf("formatter registration requires a name and a function")
	}
	formatters[name] = f
	return nil
}

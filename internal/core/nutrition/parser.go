// Package nutrition turns food database description strings into macro
// records and scales them to a serving weight.
package nutrition

import (
	"math"
	"regexp"
	"strconv"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

// ReferenceGrams is the serving size descriptions are assumed to describe.
const ReferenceGrams = 100.0

// Each value is followed by arbitrary text (units, "per 100g", ...) up to the
// next delimiter. Calories only keep the leading integer run.
var descriptionRegex = regexp.MustCompile(
	`(?i)calories:\s*(\d+)[^|]*\|\s*fat:\s*(\d+(?:\.\d+)?)[^|]*\|\s*carbs:\s*(\d+(?:\.\d+)?)[^|]*\|\s*protein:\s*(\d+(?:\.\d+)?)`,
)

// Parse extracts macros from a description of the shape
// "Calories: 250kcal | Fat: 10.5g | Carbs: 20g | Protein: 5g".
// Unparseable input yields a zero record, never an error; use Parsed to
// tell the two apart.
func Parse(description string) domain.Macros {
	match := descriptionRegex.FindStringSubmatch(description)
	if match == nil {
		return domain.Macros{}
	}

	return domain.Macros{
		Calories: parseFloat(match[1]),
		Fat:      parseFloat(match[2]),
		Carbs:    parseFloat(match[3]),
		Protein:  parseFloat(match[4]),
	}
}

// Parsed reports whether a Parse result carries data.
func Parsed(m domain.Macros) bool {
	return !m.IsZero()
}

// Scale converts per-100g macros to weightGrams. Calories are rounded to the
// nearest kcal, the rest to two decimals.
func Scale(m domain.Macros, weightGrams float64) domain.Macros {
	factor := weightGrams / ReferenceGrams
	return domain.Macros{
		Calories: math.Round(m.Calories * factor),
		Carbs:    round2(m.Carbs * factor),
		Fat:      round2(m.Fat * factor),
		Protein:  round2(m.Protein * factor),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

package synthesis

import (
	"math"
	"strings"

	"github.com/deckster/chartgen/domain/dataset"
)

// ValidateRows checks user-supplied rows individually. Rows missing a
// label or carrying a non-finite value are rejected with a per-row
// reason; surviving rows keep their original order.
func ValidateRows(rows []dataset.Point) ([]dataset.Point, []dataset.RowError) {
	clean := make([]dataset.Point, 0, len(rows))
	var rowErrs []dataset.RowError

	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		label := strings.TrimSpace(row.Label)
		switch {
		case label == "":
			rowErrs = append(rowErrs, dataset.RowError{Index: i, Reason: "missing label"})
		case math.IsNaN(row.Value) || math.IsInf(row.Value, 0):
			rowErrs = append(rowErrs, dataset.RowError{Index: i, Reason: "value is not a finite number"})
		case seen[label] && row.Category == "":
			rowErrs = append(rowErrs, dataset.RowError{Index: i, Reason: "duplicate label " + label})
		default:
			seen[label] = true
			row.Label = label
			clean = append(clean, row)
		}
	}
	return clean, rowErrs
}

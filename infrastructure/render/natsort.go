package render

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/deckster/chartgen/domain/dataset"
)

// suffixPattern matches labels of the form <prefix><number>, the shape
// that exposes lexicographic ordering bugs ("Period_10" before
// "Period_2").
var suffixPattern = regexp.MustCompile(`^(.*?)(\d+)$`)

// orderPoints returns the points in category-axis order. Labels sharing
// a common prefix with a numeric suffix are sorted naturally by that
// suffix; anything else (month names, user categories) keeps its
// semantic input order.
func orderPoints(points []dataset.Point) []dataset.Point {
	type entry struct {
		point dataset.Point
		num   int
	}

	entries := make([]entry, len(points))
	var prefix string
	for i, p := range points {
		m := suffixPattern.FindStringSubmatch(p.Label)
		if m == nil {
			return points
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return points
		}
		if i == 0 {
			prefix = m[1]
		} else if m[1] != prefix {
			return points
		}
		entries[i] = entry{point: p, num: n}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].num < entries[j].num
	})

	ordered := make([]dataset.Point, len(points))
	for i, e := range entries {
		ordered[i] = e.point
	}
	return ordered
}

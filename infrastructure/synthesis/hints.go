package synthesis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Hints are domain plausibility bounds extracted from free text.
// Explicit numbers, currency amounts, and percentages in the request
// take precedence over default synthetic ranges.
type Hints struct {
	// Base is the central value for generation.
	Base float64

	// Spread bounds variation around the base.
	Spread float64

	// Percent constrains values to the 0-100 range.
	Percent bool

	// Explicit reports whether any hint was found in the text.
	Explicit bool
}

// numberPattern matches plain numbers, currency amounts, and
// percentages with magnitude suffixes ("$1.2M", "35%", "450k"). The
// suffix must be attached to the number: the words in "6 months" or
// "5 brands" are not magnitudes.
var numberPattern = regexp.MustCompile(`(?i)(\$)?(\d+(?:\.\d+)?)([kmb%])?`)

// magnitudes maps suffixes to multipliers.
var magnitudes = map[string]float64{
	"k": 1e3,
	"m": 1e6,
	"b": 1e9,
}

// ExtractHints parses plausibility hints from a request description.
// With no explicit figures the default base of 100 applies.
func ExtractHints(content string) Hints {
	h := Hints{Base: 100, Spread: 100}

	matches := numberPattern.FindAllStringSubmatchIndex(content, -1)
	for _, m := range matches {
		isCurrency := m[2] >= 0
		raw := content[m[4]:m[5]]
		var suffix string
		if m[6] >= 0 {
			suffix = strings.ToLower(content[m[6]:m[7]])
		}

		// A magnitude letter only counts when it ends the word: the
		// "k" of "450k" is a suffix, the "k" of "2kg" is not.
		if suffix != "" && suffix != "%" && startsWithLetter(content[m[7]:]) {
			suffix = ""
		}

		// Bare small numbers ("top 5", "2024") are not value hints.
		if !isCurrency && suffix == "" {
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		if suffix == "%" {
			h.Percent = true
			h.Base = value
			h.Spread = min(value, 100-value)
			h.Explicit = true
			continue
		}
		if mult, ok := magnitudes[suffix]; ok {
			value *= mult
		}
		h.Base = value
		h.Spread = value * 0.4
		h.Explicit = true
	}

	return h
}

// startsWithLetter reports whether s begins with a letter.
func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

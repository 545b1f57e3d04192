package chart

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/domain/theme"
)

// Request is the immutable input for one chart generation call.
type Request struct {
	// ID identifies the request in logs and diagnostics.
	ID string

	// Content is the free-text description of the desired chart.
	Content string

	// Title is an optional chart title; derived from Content when empty.
	Title string

	// ExplicitType is an optional chart type hint. When valid it is
	// honored with confidence 1.0.
	ExplicitType string

	// Data holds optional user-supplied rows.
	Data []dataset.Point

	// UseSyntheticData permits synthetic data when no usable user rows
	// exist. Defaults to true at the API boundary.
	UseSyntheticData bool

	// Theme optionally overrides the default theme seed.
	Theme *theme.Seed
}

// Validate checks the request invariants. A request that forbids
// synthesis and carries no data is a validation error, not a
// silently-empty chart.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if !r.UseSyntheticData && len(r.Data) == 0 {
		return fmt.Errorf("%w: synthetic data disabled and no data rows provided", ErrNoData)
	}
	if r.ExplicitType != "" {
		if _, ok := Parse(r.ExplicitType); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidType, r.ExplicitType)
		}
	}
	if r.Theme != nil && r.Theme.Style != "" && !r.Theme.Style.Valid() {
		return fmt.Errorf("%w: unknown theme style %q", ErrValidation, r.Theme.Style)
	}
	return nil
}

// ResolvedTitle returns the explicit title or a title derived from the
// content description. Truncation is on rune boundaries so multibyte
// content never yields an invalid title.
func (r Request) ResolvedTitle() string {
	if r.Title != "" {
		return r.Title
	}
	runes := []rune(strings.TrimSpace(r.Content))
	if len(runes) == 0 {
		return "Chart"
	}
	if len(runes) > 60 {
		runes = runes[:60]
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

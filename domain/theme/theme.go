// Package theme defines the theming entities: seed colors, visual
// styles, derived palettes, and per-chart-type style configurations.
// Themes are immutable once built; derivation lives in
// infrastructure/theme.
package theme

// Style is the overall visual style of a theme.
type Style string

const (
	StyleModern  Style = "modern"
	StyleClassic Style = "classic"
	StyleMinimal Style = "minimal"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case StyleModern, StyleClassic, StyleMinimal:
		return true
	}
	return false
}

// Seed holds the user-facing theme inputs: up to three seed colors as
// hex strings plus a style. Derivation from a seed is deterministic.
type Seed struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
	Style     Style  `json:"style,omitempty"`
}

// CacheKey returns a stable key for process-wide theme caching.
func (s Seed) CacheKey() string {
	return s.Primary + "|" + s.Secondary + "|" + s.Tertiary + "|" + string(s.Style)
}

// StyleConfig is the fixed-shape per-chart-type style resolution.
// Every supported chart type resolves to one of these.
type StyleConfig struct {
	// Colors is the ordered color list the renderer cycles through.
	Colors []string `json:"colors"`

	// Background is the chart background color.
	Background string `json:"background"`

	// Grid is the gridline color.
	Grid string `json:"grid"`

	// Edge is the shape edge/border color.
	Edge string `json:"edge"`

	// Text is the label/text color, contrast-checked against Background.
	Text string `json:"text"`

	// Colormap names a continuous colormap for density-style charts.
	Colormap string `json:"colormap,omitempty"`
}

// Theme is an immutable resolved theme: the seed it was built from, the
// full derived palette, and a resolver for per-chart-type styling.
type Theme struct {
	seed    Seed
	palette []string
	styles  map[string]StyleConfig
	base    StyleConfig
}

// New assembles a resolved theme. Intended for use by the theme engine;
// the styles map is keyed by chart type name with base as the fallback.
func New(seed Seed, palette []string, styles map[string]StyleConfig, base StyleConfig) Theme {
	return Theme{
		seed:    seed,
		palette: palette,
		styles:  styles,
		base:    base,
	}
}

// Seed returns the seed the theme was derived from.
func (t Theme) Seed() Seed {
	return t.seed
}

// Palette returns a copy of the ordered derived palette.
func (t Theme) Palette() []string {
	out := make([]string, len(t.palette))
	copy(out, t.palette)
	return out
}

// StyleFor resolves the style configuration for a chart type name.
// Types without a specialized entry fall back to the full-palette base
// configuration.
func (t Theme) StyleFor(chartType string) StyleConfig {
	if cfg, ok := t.styles[chartType]; ok {
		return cfg
	}
	return t.base
}

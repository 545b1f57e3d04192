// Package theme derives full visual themes from seed colors. All
// derivation is deterministic: the same seeds and style always produce
// the same palette and style map, so tests can assert exact output.
package theme

import (
	"fmt"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/theme"
)

// Luminance gap below which a text/background pairing is considered
// unreadable and gets substituted.
const minContrast = 0.4

// Lightness offsets for tint and shade derivation.
const (
	tintDelta  = 0.18
	shadeDelta = 0.18
)

// Fallback text colors used when a chosen foreground fails contrast.
const (
	textDark  = "#1f2937"
	textLight = "#f9fafb"
)

// defaultSeeds supplies seed colors per style when the caller provides
// none.
var defaultSeeds = map[theme.Style]theme.Seed{
	theme.StyleModern:  {Primary: "#2563eb", Secondary: "#7c3aed", Tertiary: "#0d9488"},
	theme.StyleClassic: {Primary: "#1e3a8a", Secondary: "#9a3412", Tertiary: "#365314"},
	theme.StyleMinimal: {Primary: "#111827", Secondary: "#6b7280", Tertiary: "#9ca3af"},
}

// backgrounds per style.
var backgrounds = map[theme.Style]string{
	theme.StyleModern:  "#ffffff",
	theme.StyleClassic: "#fdfaf4",
	theme.StyleMinimal: "#ffffff",
}

// gridColors per style.
var gridColors = map[theme.Style]string{
	theme.StyleModern:  "#e5e7eb",
	theme.StyleClassic: "#d6d3c8",
	theme.StyleMinimal: "#f3f4f6",
}

// colormaps per style for density-style charts.
var colormaps = map[theme.Style]string{
	theme.StyleModern:  "viridis",
	theme.StyleClassic: "plasma",
	theme.StyleMinimal: "Greys",
}

// Engine builds themes and caches them process-wide by seed.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]theme.Theme
}

// NewEngine creates a theme engine with an empty cache.
func NewEngine() *Engine {
	return &Engine{cache: make(map[string]theme.Theme)}
}

// Build derives a theme from the seed. Results are cached by seed; the
// cache is purely an optimization since derivation is deterministic.
func (e *Engine) Build(seed theme.Seed) (theme.Theme, error) {
	seed = normalize(seed)
	key := seed.CacheKey()

	e.mu.RLock()
	cached, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	built, err := derive(seed)
	if err != nil {
		return theme.Theme{}, err
	}

	e.mu.Lock()
	e.cache[key] = built
	e.mu.Unlock()
	return built, nil
}

// normalize fills missing seed fields from the style defaults.
func normalize(seed theme.Seed) theme.Seed {
	if seed.Style == "" || !seed.Style.Valid() {
		seed.Style = theme.StyleModern
	}
	defaults := defaultSeeds[seed.Style]
	if seed.Primary == "" {
		seed.Primary = defaults.Primary
	}
	if seed.Secondary == "" {
		seed.Secondary = defaults.Secondary
	}
	if seed.Tertiary == "" {
		seed.Tertiary = defaults.Tertiary
	}
	return seed
}

// derive computes the palette and style map for a normalized seed.
func derive(seed theme.Seed) (theme.Theme, error) {
	seedHexes := []string{seed.Primary, seed.Secondary, seed.Tertiary}
	seedColors := make([]colorful.Color, 0, len(seedHexes))
	for _, hex := range seedHexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			return theme.Theme{}, fmt.Errorf("invalid seed color %q: %w", hex, err)
		}
		seedColors = append(seedColors, c)
	}

	// Palette order: seeds, tints, shades, complementary of the
	// primary. Fixed HSL math, no randomness.
	palette := make([]string, 0, len(seedColors)*3+1)
	for _, c := range seedColors {
		palette = append(palette, c.Hex())
	}
	for _, c := range seedColors {
		palette = append(palette, shiftLightness(c, tintDelta).Hex())
	}
	for _, c := range seedColors {
		palette = append(palette, shiftLightness(c, -shadeDelta).Hex())
	}
	palette = append(palette, complement(seedColors[0]).Hex())

	background := backgrounds[seed.Style]
	base := theme.StyleConfig{
		Colors:     palette,
		Background: background,
		Grid:       gridColors[seed.Style],
		Edge:       shiftLightness(seedColors[0], -shadeDelta).Hex(),
		Text:       contrastSafe(seed.Primary, background),
	}

	styles := map[string]theme.StyleConfig{
		string(chart.TypeHeatmap):  withColormap(base, colormaps[seed.Style]),
		string(chart.TypeViolin):   withColormap(base, colormaps[seed.Style]),
		string(chart.TypePie):      withEdge(base, background),
		string(chart.TypeDoughnut): withEdge(base, background),
		string(chart.TypeTreemap):  withEdge(base, background),
	}

	return theme.New(seed, palette, styles, base), nil
}

// withColormap returns base with the colormap set.
func withColormap(base theme.StyleConfig, cmap string) theme.StyleConfig {
	base.Colormap = cmap
	return base
}

// withEdge returns base with the edge color set. Slice-of-pie charts
// separate segments with background-colored edges.
func withEdge(base theme.StyleConfig, edge string) theme.StyleConfig {
	base.Edge = edge
	return base
}

// shiftLightness moves a color's HSL lightness by delta, clamped away
// from pure white and pure black.
func shiftLightness(c colorful.Color, delta float64) colorful.Color {
	h, s, l := c.Hsl()
	l = math.Min(0.92, math.Max(0.08, l+delta))
	return colorful.Hsl(h, s, l)
}

// complement rotates the hue by 180 degrees.
func complement(c colorful.Color) colorful.Color {
	h, s, l := c.Hsl()
	return colorful.Hsl(math.Mod(h+180, 360), s, l)
}

// luminance returns the WCAG relative luminance of a color.
func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// contrastSafe returns fg if it is readable against bg, otherwise the
// opposite-contrast default (near-black on light, near-white on dark).
func contrastSafe(fg, bg string) string {
	fgc, err1 := colorful.Hex(fg)
	bgc, err2 := colorful.Hex(bg)
	if err1 != nil || err2 != nil {
		return textDark
	}

	if math.Abs(luminance(fgc)-luminance(bgc)) >= minContrast {
		return fg
	}
	if luminance(bgc) > 0.5 {
		return textDark
	}
	return textLight
}

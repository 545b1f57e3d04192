package render

import (
	"fmt"
	"strings"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/domain/theme"
)

// MermaidRenderer is the declarative renderer. It expands data into
// embeddable Mermaid markup for the simple chart set; anything outside
// that set is an explicit error, never a silent downgrade.
type MermaidRenderer struct{}

// NewMermaidRenderer creates the declarative renderer.
func NewMermaidRenderer() *MermaidRenderer {
	return &MermaidRenderer{}
}

// Render produces Mermaid markup for the spec.
func (r *MermaidRenderer) Render(spec chart.Spec, ds dataset.Dataset, th theme.Theme, title string) (string, error) {
	if !spec.Type.Declarative() {
		return "", fmt.Errorf("%w: %s", chart.ErrDeclarativeUnsupported, spec.Type)
	}
	if ds.Len() == 0 {
		return "", fmt.Errorf("%w: empty dataset", chart.ErrRender)
	}

	points := orderPoints(ds.Points)
	style := th.StyleFor(string(spec.Type))

	switch spec.Type {
	case chart.TypePie, chart.TypeDoughnut:
		return renderPie(points, style, title), nil
	case chart.TypeRadar:
		return renderRadar(points, style, title), nil
	default:
		return renderXY(spec.Type, points, style, title), nil
	}
}

// escapeLabel quotes a label for Mermaid, escaping embedded quotes and
// stripping newlines that would break the block.
func escapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\n", " ")
	label = strings.ReplaceAll(label, `"`, `'`)
	return `"` + label + `"`
}

// renderXY renders line and bar charts via xychart-beta.
func renderXY(typ chart.Type, points []dataset.Point, style theme.StyleConfig, title string) string {
	var b strings.Builder

	// Theme propagation uses a frontmatter config block.
	plotPalette := strings.Join(style.Colors, ", ")
	b.WriteString("---\n")
	b.WriteString("config:\n")
	b.WriteString("  themeVariables:\n")
	b.WriteString(fmt.Sprintf("    xyChart:\n      backgroundColor: %s\n      plotColorPalette: %s\n", escapeLabel(style.Background), escapeLabel(plotPalette)))
	b.WriteString("---\n")

	b.WriteString("xychart-beta\n")
	b.WriteString("  title " + escapeLabel(title) + "\n")

	labels := make([]string, len(points))
	values := make([]string, len(points))
	for i, p := range points {
		labels[i] = escapeLabel(p.Label)
		values[i] = formatValue(p.Value)
	}
	b.WriteString("  x-axis [" + strings.Join(labels, ", ") + "]\n")

	series := "line"
	if typ == chart.TypeBar {
		series = "bar"
	}
	b.WriteString("  " + series + " [" + strings.Join(values, ", ") + "]\n")
	return b.String()
}

// writeThemeHeader emits the frontmatter config block carrying theme
// variables for chart families without inline styling syntax.
func writeThemeHeader(b *strings.Builder, vars []string) {
	b.WriteString("---\n")
	b.WriteString("config:\n")
	b.WriteString("  themeVariables:\n")
	for _, v := range vars {
		b.WriteString("    " + v + "\n")
	}
	b.WriteString("---\n")
}

// renderPie renders pie and doughnut charts.
func renderPie(points []dataset.Point, style theme.StyleConfig, title string) string {
	var b strings.Builder

	// Mermaid pie sections read slice colors from pie1..pie12.
	vars := []string{
		"background: " + escapeLabel(style.Background),
		"pieTitleTextColor: " + escapeLabel(style.Text),
		"pieSectionTextColor: " + escapeLabel(style.Text),
	}
	for i := 0; len(style.Colors) > 0 && i < len(points) && i < 12; i++ {
		color := style.Colors[i%len(style.Colors)]
		vars = append(vars, fmt.Sprintf("pie%d: %s", i+1, escapeLabel(color)))
	}
	writeThemeHeader(&b, vars)

	b.WriteString("pie showData\n")
	b.WriteString("  title " + escapeLabel(title) + "\n")
	for _, p := range points {
		b.WriteString("  " + escapeLabel(p.Label) + " : " + formatValue(p.Value) + "\n")
	}
	return b.String()
}

// renderRadar renders radar charts via radar-beta.
func renderRadar(points []dataset.Point, style theme.StyleConfig, title string) string {
	var b strings.Builder

	vars := []string{
		"background: " + escapeLabel(style.Background),
		"radar:",
		"  axisColor: " + escapeLabel(style.Grid),
	}
	if len(style.Colors) > 0 {
		vars = append(vars, "  curveColors: ["+escapeLabel(style.Colors[0])+"]")
	}
	writeThemeHeader(&b, vars)

	b.WriteString("radar-beta\n")
	b.WriteString("  title " + escapeLabel(title) + "\n")

	axes := make([]string, len(points))
	values := make([]string, len(points))
	for i, p := range points {
		axes[i] = fmt.Sprintf("a%d[%s]", i+1, escapeLabel(p.Label))
		values[i] = formatValue(p.Value)
	}
	b.WriteString("  axis " + strings.Join(axes, ", ") + "\n")
	b.WriteString("  curve c1{" + strings.Join(values, ", ") + "}\n")
	return b.String()
}

// formatValue renders a number without exponent notation.
func formatValue(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

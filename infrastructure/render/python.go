package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/domain/executor"
	"github.com/deckster/chartgen/domain/theme"
)

// PythonRenderer is the code-generating renderer. It emits a
// self-contained matplotlib script for any chart type, with the theme
// threaded into every snippet. The script writes its PNG as base64 to
// stdout behind the bridge's output marker.
type PythonRenderer struct{}

// NewPythonRenderer creates the code-generating renderer.
func NewPythonRenderer() *PythonRenderer {
	return &PythonRenderer{}
}

// Render produces the plotting script for the spec.
func (r *PythonRenderer) Render(spec chart.Spec, ds dataset.Dataset, th theme.Theme, title string) (string, error) {
	if ds.Len() == 0 {
		return "", fmt.Errorf("%w: empty dataset", chart.ErrRender)
	}

	body, err := plotBody(spec.Type, ds)
	if err != nil {
		return "", err
	}

	points := orderPoints(ds.Points)
	style := th.StyleFor(string(spec.Type))

	var b strings.Builder
	b.WriteString("import base64\n")
	b.WriteString("import io\n\n")
	b.WriteString("import matplotlib\n")
	b.WriteString("matplotlib.use(\"Agg\")\n")
	b.WriteString("import matplotlib.pyplot as plt\n\n")

	b.WriteString("labels = " + pyList(labelsOf(points)) + "\n")
	b.WriteString("values = " + pyFloats(valuesOf(points)) + "\n")
	writeSeries(&b, ds)
	b.WriteString("colors = " + pyList(style.Colors) + "\n")
	b.WriteString(fmt.Sprintf("background = %q\n", style.Background))
	b.WriteString(fmt.Sprintf("grid_color = %q\n", style.Grid))
	b.WriteString(fmt.Sprintf("edge_color = %q\n", style.Edge))
	b.WriteString(fmt.Sprintf("text_color = %q\n", style.Text))
	cmap := style.Colormap
	if cmap == "" {
		cmap = "viridis"
	}
	b.WriteString(fmt.Sprintf("colormap = %q\n", cmap))
	b.WriteString("\n")

	b.WriteString("fig, ax = plt.subplots(figsize=(10, 6))\n")
	b.WriteString("fig.patch.set_facecolor(background)\n")
	b.WriteString("ax.set_facecolor(background)\n\n")

	b.WriteString(body)
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("ax.set_title(%q, color=text_color)\n", title))
	b.WriteString("ax.tick_params(colors=text_color)\n")
	b.WriteString("for spine in ax.spines.values():\n")
	b.WriteString("    spine.set_color(grid_color)\n")
	b.WriteString("fig.tight_layout()\n\n")

	b.WriteString("buf = io.BytesIO()\n")
	b.WriteString("fig.savefig(buf, format=\"png\", facecolor=background, dpi=120)\n")
	b.WriteString(fmt.Sprintf("print(%q + base64.b64encode(buf.getvalue()).decode())\n", executor.OutputMarker))
	return b.String(), nil
}

// plotBody returns the snippet selecting the correct plot primitive for
// the chart type. Each type maps to its true primitive: violinplot for
// violins, barh for horizontal bars, stackplot for stacked areas, raw
// values for histograms.
func plotBody(typ chart.Type, ds dataset.Dataset) (string, error) {
	switch typ {
	case chart.TypeLine:
		return "ax.plot(labels, values, color=colors[0], marker=\"o\")\nax.grid(color=grid_color)\n", nil

	case chart.TypeStep:
		return "ax.step(labels, values, color=colors[0], where=\"mid\")\nax.grid(color=grid_color)\n", nil

	case chart.TypeBar:
		return "ax.bar(labels, values, color=colors[: len(labels)] or colors, edgecolor=edge_color)\nax.grid(axis=\"y\", color=grid_color)\n", nil

	case chart.TypeHorizontalBar:
		return "ax.barh(labels, values, color=colors[: len(labels)] or colors, edgecolor=edge_color)\nax.grid(axis=\"x\", color=grid_color)\n", nil

	case chart.TypeArea:
		return "ax.fill_between(range(len(values)), values, color=colors[0], alpha=0.4)\n" +
			"ax.plot(range(len(values)), values, color=colors[0])\n" +
			"ax.set_xticks(range(len(labels)), labels)\nax.grid(color=grid_color)\n", nil

	case chart.TypeStackedArea:
		if len(ds.Series) < 2 {
			return "", fmt.Errorf("%w: stacked_area needs at least two series", chart.ErrRender)
		}
		return "ax.stackplot(labels, *series_values, labels=series_names, colors=colors)\n" +
			"ax.legend(loc=\"upper left\", labelcolor=text_color)\nax.grid(color=grid_color)\n", nil

	case chart.TypeGroupedBar:
		if len(ds.Series) < 2 {
			return "", fmt.Errorf("%w: grouped_bar needs at least two series", chart.ErrRender)
		}
		return "width = 0.8 / len(series_values)\n" +
			"for i, (name, vals) in enumerate(zip(series_names, series_values)):\n" +
			"    offsets = [x + i * width for x in range(len(labels))]\n" +
			"    ax.bar(offsets, vals, width, label=name, color=colors[i % len(colors)], edgecolor=edge_color)\n" +
			"ax.set_xticks([x + 0.4 for x in range(len(labels))], labels)\n" +
			"ax.legend(labelcolor=text_color)\nax.grid(axis=\"y\", color=grid_color)\n", nil

	case chart.TypeStackedBar:
		if len(ds.Series) < 2 {
			return "", fmt.Errorf("%w: stacked_bar needs at least two series", chart.ErrRender)
		}
		return "bottom = [0.0] * len(labels)\n" +
			"for i, (name, vals) in enumerate(zip(series_names, series_values)):\n" +
			"    ax.bar(labels, vals, bottom=bottom, label=name, color=colors[i % len(colors)], edgecolor=edge_color)\n" +
			"    bottom = [b + v for b, v in zip(bottom, vals)]\n" +
			"ax.legend(labelcolor=text_color)\nax.grid(axis=\"y\", color=grid_color)\n", nil

	case chart.TypeScatter:
		return "ax.scatter(range(len(values)), values, color=colors[0], edgecolor=edge_color)\n" +
			"ax.set_xticks(range(len(labels)), labels)\nax.grid(color=grid_color)\n", nil

	case chart.TypeBubble:
		return "vmax = max(abs(v) for v in values) or 1.0\n" +
			"sizes = [200 + 1200 * abs(v) / vmax for v in values]\n" +
			"ax.scatter(range(len(values)), values, s=sizes, color=colors[0], alpha=0.6, edgecolor=edge_color)\n" +
			"ax.set_xticks(range(len(labels)), labels)\nax.grid(color=grid_color)\n", nil

	case chart.TypeHistogram:
		// Raw values go straight to hist; binning belongs to matplotlib.
		return "ax.hist(values, bins=\"auto\", color=colors[0], edgecolor=edge_color)\n" +
			"ax.grid(axis=\"y\", color=grid_color)\n", nil

	case chart.TypeBox:
		return "box = ax.boxplot(values, patch_artist=True)\n" +
			"for patch in box[\"boxes\"]:\n" +
			"    patch.set_facecolor(colors[0])\n" +
			"ax.grid(axis=\"y\", color=grid_color)\n", nil

	case chart.TypeViolin:
		return "parts = ax.violinplot(values, showmedians=True)\n" +
			"for body in parts[\"bodies\"]:\n" +
			"    body.set_facecolor(colors[0])\n" +
			"    body.set_edgecolor(edge_color)\n" +
			"ax.grid(axis=\"y\", color=grid_color)\n", nil

	case chart.TypeHeatmap:
		return "import math\n" +
			"cols = max(1, math.ceil(math.sqrt(len(values))))\n" +
			"rows = math.ceil(len(values) / cols)\n" +
			"grid = [[0.0] * cols for _ in range(rows)]\n" +
			"for i, v in enumerate(values):\n" +
			"    grid[i // cols][i % cols] = v\n" +
			"im = ax.imshow(grid, cmap=colormap, aspect=\"auto\")\n" +
			"fig.colorbar(im, ax=ax)\n", nil

	case chart.TypeWaterfall:
		return "running = 0.0\n" +
			"for i, v in enumerate(values):\n" +
			"    color = colors[0] if v >= 0 else colors[-1]\n" +
			"    ax.bar(i, v, bottom=running, color=color, edgecolor=edge_color)\n" +
			"    running += v\n" +
			"ax.set_xticks(range(len(labels)), labels)\nax.grid(axis=\"y\", color=grid_color)\n", nil

	case chart.TypeFunnel:
		return "pairs = sorted(zip(values, labels), reverse=True)\n" +
			"for i, (v, label) in enumerate(pairs):\n" +
			"    ax.barh(-i, v, left=-v / 2, color=colors[i % len(colors)], edgecolor=edge_color)\n" +
			"    ax.text(0, -i, f\"{label}: {v:g}\", ha=\"center\", va=\"center\", color=text_color)\n" +
			"ax.set_yticks([])\nax.set_xticks([])\n", nil

	case chart.TypeTreemap:
		// Slice-and-dice layout, alternating split direction per level.
		return "total = sum(values) or 1.0\n" +
			"x, y, w, h = 0.0, 0.0, 1.0, 1.0\n" +
			"for i, (v, label) in enumerate(zip(values, labels)):\n" +
			"    frac = v / total if total else 0\n" +
			"    remaining = sum(values[i:]) / total or 1.0\n" +
			"    if w >= h:\n" +
			"        dw = w * frac / remaining\n" +
			"        ax.add_patch(plt.Rectangle((x, y), dw, h, facecolor=colors[i % len(colors)], edgecolor=edge_color))\n" +
			"        ax.text(x + dw / 2, y + h / 2, label, ha=\"center\", va=\"center\", color=text_color, fontsize=8)\n" +
			"        x += dw\n" +
			"        w -= dw\n" +
			"    else:\n" +
			"        dh = h * frac / remaining\n" +
			"        ax.add_patch(plt.Rectangle((x, y), w, dh, facecolor=colors[i % len(colors)], edgecolor=edge_color))\n" +
			"        ax.text(x + w / 2, y + dh / 2, label, ha=\"center\", va=\"center\", color=text_color, fontsize=8)\n" +
			"        y += dh\n" +
			"        h -= dh\n" +
			"ax.set_xlim(0, 1)\nax.set_ylim(0, 1)\nax.set_xticks([])\nax.set_yticks([])\n", nil

	case chart.TypePareto:
		return "pairs = sorted(zip(values, labels), reverse=True)\n" +
			"sorted_values = [v for v, _ in pairs]\n" +
			"sorted_labels = [l for _, l in pairs]\n" +
			"ax.bar(sorted_labels, sorted_values, color=colors[0], edgecolor=edge_color)\n" +
			"total = sum(sorted_values) or 1.0\n" +
			"cumulative = []\n" +
			"running = 0.0\n" +
			"for v in sorted_values:\n" +
			"    running += v\n" +
			"    cumulative.append(100 * running / total)\n" +
			"ax2 = ax.twinx()\n" +
			"ax2.plot(sorted_labels, cumulative, color=colors[-1], marker=\"o\")\n" +
			"ax2.set_ylim(0, 110)\n" +
			"ax2.tick_params(colors=text_color)\n", nil

	case chart.TypePie, chart.TypeDoughnut, chart.TypeRadar:
		// Declarative types render through Mermaid, not generated code.
		return "", fmt.Errorf("%w: %s renders declaratively", chart.ErrRender, typ)

	default:
		return "", fmt.Errorf("%w: unsupported chart type %s", chart.ErrRender, typ)
	}
}

// writeSeries emits series arrays for multi-series chart bodies.
func writeSeries(b *strings.Builder, ds dataset.Dataset) {
	if len(ds.Series) == 0 {
		return
	}
	names := make([]string, len(ds.Series))
	rows := make([][]float64, len(ds.Series))
	for i, s := range ds.Series {
		names[i] = s.Name
		rows[i] = make([]float64, len(s.Points))
		for j, p := range s.Points {
			rows[i][j] = p.Value
		}
	}
	b.WriteString("series_names = " + pyList(names) + "\n")
	b.WriteString("series_values = [\n")
	for _, row := range rows {
		b.WriteString("    " + pyFloats(row) + ",\n")
	}
	b.WriteString("]\n")
}

func labelsOf(points []dataset.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

func valuesOf(points []dataset.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// pyList renders a string slice as a Python list literal. JSON string
// and list syntax is valid Python for this shape.
func pyList(items []string) string {
	encoded, _ := json.Marshal(items)
	return string(encoded)
}

// pyFloats renders a float slice as a Python list literal.
func pyFloats(values []float64) string {
	encoded, _ := json.Marshal(values)
	return string(encoded)
}

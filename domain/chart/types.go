// Package chart defines the core entities of the chart generation
// pipeline: chart types, rendering methods, resolved specs, requests,
// and the artifacts the pipeline produces.
package chart

// Type identifies a supported chart type.
type Type string

// The canonical chart type set. Types in the declarative set render to
// embeddable markup; all others render through generated plotting code.
const (
	TypeLine          Type = "line"
	TypeBar           Type = "bar"
	TypePie           Type = "pie"
	TypeDoughnut      Type = "doughnut"
	TypeRadar         Type = "radar"
	TypeArea          Type = "area"
	TypeStackedArea   Type = "stacked_area"
	TypeHorizontalBar Type = "horizontal_bar"
	TypeGroupedBar    Type = "grouped_bar"
	TypeStackedBar    Type = "stacked_bar"
	TypeScatter       Type = "scatter"
	TypeBubble        Type = "bubble"
	TypeHistogram     Type = "histogram"
	TypeBox           Type = "box"
	TypeViolin        Type = "violin"
	TypeHeatmap       Type = "heatmap"
	TypeWaterfall     Type = "waterfall"
	TypeFunnel        Type = "funnel"
	TypeTreemap       Type = "treemap"
	TypePareto        Type = "pareto"
	TypeStep          Type = "step"
)

// Method identifies how a chart is rendered.
type Method string

const (
	// MethodDeclarative produces ready-to-embed markup without executing code.
	MethodDeclarative Method = "declarative"

	// MethodCodeGen produces plotting source code for out-of-process execution.
	MethodCodeGen Method = "code_generated"
)

// allTypes maps every valid chart type to the number of data dimensions
// it requires. The dimension count is the tie-break criterion during
// selection: simpler visualizations win ties.
var allTypes = map[Type]int{
	TypeLine:          2,
	TypeBar:           1,
	TypePie:           1,
	TypeDoughnut:      1,
	TypeRadar:         1,
	TypeArea:          2,
	TypeStackedArea:   3,
	TypeHorizontalBar: 1,
	TypeGroupedBar:    2,
	TypeStackedBar:    2,
	TypeScatter:       2,
	TypeBubble:        3,
	TypeHistogram:     1,
	TypeBox:           1,
	TypeViolin:        1,
	TypeHeatmap:       2,
	TypeWaterfall:     1,
	TypeFunnel:        1,
	TypeTreemap:       1,
	TypePareto:        1,
	TypeStep:          2,
}

// declarativeTypes is the fixed set of chart types the declarative
// renderer supports. Forcing declarative rendering for any other type
// is an explicit error, never a silent downgrade.
var declarativeTypes = map[Type]bool{
	TypeLine:     true,
	TypeBar:      true,
	TypePie:      true,
	TypeDoughnut: true,
	TypeRadar:    true,
}

// temporalTypes are the chart types suited to time-ordered data.
var temporalTypes = map[Type]bool{
	TypeLine: true,
	TypeArea: true,
	TypeBar:  true,
	TypeStep: true,
}

// Valid reports whether t is in the canonical chart type set.
func (t Type) Valid() bool {
	_, ok := allTypes[t]
	return ok
}

// Dimensions returns the number of data dimensions t requires.
// Unknown types report the maximum so they always lose ties.
func (t Type) Dimensions() int {
	if d, ok := allTypes[t]; ok {
		return d
	}
	return 99
}

// Declarative reports whether t is renderable as declarative markup.
func (t Type) Declarative() bool {
	return declarativeTypes[t]
}

// Temporal reports whether t is a time-series style chart.
func (t Type) Temporal() bool {
	return temporalTypes[t]
}

// MethodFor returns the single renderer family responsible for t.
// The mapping is fixed: a chart type never renders through more than
// one family.
func MethodFor(t Type) Method {
	if t.Declarative() {
		return MethodDeclarative
	}
	return MethodCodeGen
}

// Parse converts a string to a Type, reporting whether it is valid.
func Parse(s string) (Type, bool) {
	t := Type(s)
	return t, t.Valid()
}

// Types returns the canonical chart type set in no particular order.
func Types() []Type {
	out := make([]Type, 0, len(allTypes))
	for t := range allTypes {
		out = append(out, t)
	}
	return out
}

// Spec is the resolved strategy decision for one request: which chart
// type to draw, how to render it, and why.
type Spec struct {
	// Type is the selected chart type.
	Type Type

	// Method is the renderer family, fully determined by Type.
	Method Method

	// Confidence is the selection confidence in [0, 1]. Explicit
	// user-requested types carry 1.0.
	Confidence float64

	// Rationale records how the decision was made, including any
	// internal fallback that occurred. Diagnostic only.
	Rationale string
}

// NewSpec builds a spec for the given type with the method implied by
// the type's fixed classification.
func NewSpec(t Type, confidence float64, rationale string) Spec {
	return Spec{
		Type:       t,
		Method:     MethodFor(t),
		Confidence: confidence,
		Rationale:  rationale,
	}
}

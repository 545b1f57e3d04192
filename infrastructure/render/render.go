// Package render implements the two renderer families: declarative
// Mermaid markup for the simple chart set, and generated matplotlib
// code for everything else. A dispatcher routes each spec to the single
// family its method names.
package render

import (
	"fmt"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/domain/theme"
)

// Renderer turns a resolved spec, dataset, and theme into chart content:
// markup for declarative types, source code for code-generated types.
type Renderer interface {
	Render(spec chart.Spec, ds dataset.Dataset, th theme.Theme, title string) (string, error)
}

// Dispatcher routes a spec to the renderer family its method names.
// The mapping is fixed per chart type; no type renders through both.
type Dispatcher struct {
	declarative Renderer
	codegen     Renderer
}

// NewDispatcher wires the two renderer families.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		declarative: NewMermaidRenderer(),
		codegen:     NewPythonRenderer(),
	}
}

// Render produces the chart content for the spec.
func (d *Dispatcher) Render(spec chart.Spec, ds dataset.Dataset, th theme.Theme, title string) (string, error) {
	switch spec.Method {
	case chart.MethodDeclarative:
		return d.declarative.Render(spec, ds, th, title)
	case chart.MethodCodeGen:
		return d.codegen.Render(spec, ds, th, title)
	default:
		return "", fmt.Errorf("%w: unknown render method %q", chart.ErrRender, spec.Method)
	}
}

package chart

import (
	"time"

	"github.com/deckster/chartgen/domain/dataset"
)

// Artifact is the output of one generation call: either declarative
// markup, or generated source code with an optionally executed raster
// image. Every artifact carries the provenance of its dataset and a
// fixed-shape statistics summary.
type Artifact struct {
	// Type is the chart type actually rendered (after any fallback).
	Type Type `json:"chart_type"`

	// Method is the renderer family that produced the artifact.
	Method Method `json:"generation_method"`

	// Markup is the embeddable markup for declarative artifacts.
	Markup string `json:"markup,omitempty"`

	// SourceCode is the generated plotting code for code-generated
	// artifacts. Present even when execution succeeded.
	SourceCode string `json:"source_code,omitempty"`

	// Image is the rendered raster image, when execution ran.
	Image []byte `json:"image,omitempty"`

	// ImageEncoding names the raster encoding (typically "png").
	ImageEncoding string `json:"image_encoding,omitempty"`

	// Executed reports whether generated code actually ran. False with
	// non-empty SourceCode means the execution backend was unavailable,
	// which is distinct from a rendering failure.
	Executed bool `json:"executed"`

	// Dataset is the data the artifact visualizes.
	Dataset dataset.Dataset `json:"-"`

	// Statistics summarizes the rendered dataset.
	Statistics dataset.Statistics `json:"statistics"`

	// Insights are human-readable observations about the dataset.
	Insights []string `json:"insights,omitempty"`

	// RowErrors lists user rows rejected during validation.
	RowErrors []dataset.RowError `json:"row_errors,omitempty"`

	// ThemeApplied names the style of the applied theme.
	ThemeApplied string `json:"theme_applied,omitempty"`

	// Cached reports whether the artifact was served from the cache.
	Cached bool `json:"cached,omitempty"`

	// CreatedAt is the artifact creation timestamp.
	CreatedAt time.Time `json:"timestamp"`
}

// Content returns the primary payload: markup for declarative charts,
// otherwise the generated source code.
func (a Artifact) Content() string {
	if a.Method == MethodDeclarative {
		return a.Markup
	}
	return a.SourceCode
}

// Provenance returns the dataset source. Never empty for a valid
// artifact.
func (a Artifact) Provenance() dataset.Source {
	return a.Dataset.Source
}

package application

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/domain/theme"
)

// GenerateRequest is the external JSON request shape. Optional fields
// are pointers so absence is distinguishable from the zero value.
type GenerateRequest struct {
	// Content is the required free-text description.
	Content string `json:"content"`

	// Title optionally overrides the derived chart title.
	Title string `json:"title,omitempty"`

	// Data holds optional user-supplied rows.
	Data []DataRow `json:"data,omitempty"`

	// UseSyntheticData defaults to true when absent.
	UseSyntheticData *bool `json:"use_synthetic_data,omitempty"`

	// Theme optionally overrides the default theme seed.
	Theme *ThemeRequest `json:"theme,omitempty"`

	// ChartType optionally pins the chart type.
	ChartType string `json:"chart_type,omitempty"`
}

// DataRow is one external data row. Value is a pointer so a missing
// value is detected during row validation instead of silently becoming
// zero.
type DataRow struct {
	Label    string   `json:"label"`
	Value    *float64 `json:"value"`
	Category string   `json:"category,omitempty"`
}

// ThemeRequest is the external theme seed shape.
type ThemeRequest struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
	Style     string `json:"style,omitempty"`
}

// ToDomain converts the external request into the domain request.
// Missing row values become NaN so the row validator rejects them with
// a per-row error rather than charting zeros.
func (r GenerateRequest) ToDomain() chart.Request {
	req := chart.Request{
		Content:          r.Content,
		Title:            r.Title,
		ExplicitType:     r.ChartType,
		UseSyntheticData: true,
	}
	if r.UseSyntheticData != nil {
		req.UseSyntheticData = *r.UseSyntheticData
	}

	for _, row := range r.Data {
		value := math.NaN()
		if row.Value != nil {
			value = *row.Value
		}
		req.Data = append(req.Data, dataset.Point{
			Label:    row.Label,
			Value:    value,
			Category: row.Category,
		})
	}

	if r.Theme != nil {
		req.Theme = &theme.Seed{
			Primary:   r.Theme.Primary,
			Secondary: r.Theme.Secondary,
			Tertiary:  r.Theme.Tertiary,
			Style:     theme.Style(r.Theme.Style),
		}
	}
	return req
}

// ParseGenerateRequest decodes a JSON request body.
func ParseGenerateRequest(data []byte) (GenerateRequest, error) {
	var req GenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return GenerateRequest{}, fmt.Errorf("%w: %v", chart.ErrValidation, err)
	}
	return req, nil
}

// GenerateResponse is the external JSON response shape.
type GenerateResponse struct {
	Success  bool          `json:"success"`
	Chart    string        `json:"chart,omitempty"`
	Image    []byte        `json:"image,omitempty"`
	Data     *ResponseData `json:"data,omitempty"`
	Metadata *Metadata     `json:"metadata,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// ResponseData is the data section of a successful response.
type ResponseData struct {
	Labels     []string           `json:"labels"`
	Values     []float64          `json:"values"`
	Statistics dataset.Statistics `json:"statistics"`
}

// Metadata is the metadata section of a successful response.
type Metadata struct {
	ChartType        string             `json:"chart_type"`
	GenerationMethod string             `json:"generation_method"`
	DataSource       string             `json:"data_source"`
	ThemeApplied     string             `json:"theme_applied,omitempty"`
	Insights         []string           `json:"insights,omitempty"`
	RowErrors        []dataset.RowError `json:"row_errors,omitempty"`
	Executed         bool               `json:"executed"`
	Cached           bool               `json:"cached,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}

// NewGenerateResponse converts an artifact into the external response.
func NewGenerateResponse(artifact chart.Artifact) GenerateResponse {
	return GenerateResponse{
		Success: true,
		Chart:   artifact.Content(),
		Image:   artifact.Image,
		Data: &ResponseData{
			Labels:     artifact.Dataset.Labels(),
			Values:     artifact.Dataset.Values(),
			Statistics: artifact.Statistics,
		},
		Metadata: &Metadata{
			ChartType:        string(artifact.Type),
			GenerationMethod: string(artifact.Method),
			DataSource:       string(artifact.Dataset.Source),
			ThemeApplied:     artifact.ThemeApplied,
			Insights:         artifact.Insights,
			RowErrors:        artifact.RowErrors,
			Executed:         artifact.Executed,
			Cached:           artifact.Cached,
			Timestamp:        artifact.CreatedAt,
		},
	}
}

// NewErrorResponse converts a pipeline error into the external failure
// shape. The message carries the error category and cause, never a
// stack trace.
func NewErrorResponse(err error) GenerateResponse {
	return GenerateResponse{
		Success: false,
		Error:   err.Error(),
	}
}

// Package dataset defines the data entities the pipeline visualizes:
// labeled points, multi-series collections, provenance, and the
// statistics computed from a resolved dataset.
package dataset

// Source records where a dataset came from. Every dataset carries its
// provenance; it is never ambiguous whether data was user-provided.
type Source string

const (
	// SourceUser marks data supplied by the caller.
	SourceUser Source = "user"

	// SourceSynthetic marks algorithmically generated data.
	SourceSynthetic Source = "synthetic"
)

// Point is a single labeled value.
type Point struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Category string  `json:"category,omitempty"`

	// Synthetic marks points produced by the data synthesizer.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Series is a named sequence of points for multi-series charts.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Dataset is the resolved data for one chart. Points holds the primary
// sequence; Series is populated only for multi-series chart types.
type Dataset struct {
	Points []Point  `json:"points"`
	Series []Series `json:"series,omitempty"`
	Source Source   `json:"source"`
}

// RowError describes one rejected input row. Malformed rows are
// rejected individually, not as a whole-request failure.
type RowError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Statistics is the fixed-shape summary carried by every artifact.
type Statistics struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Total float64 `json:"total"`
}

// Len returns the number of primary points.
func (d Dataset) Len() int {
	return len(d.Points)
}

// Labels returns the labels of the primary points in order.
func (d Dataset) Labels() []string {
	labels := make([]string, len(d.Points))
	for i, p := range d.Points {
		labels[i] = p.Label
	}
	return labels
}

// Values returns the values of the primary points in order.
func (d Dataset) Values() []float64 {
	values := make([]float64, len(d.Points))
	for i, p := range d.Points {
		values[i] = p.Value
	}
	return values
}

// Stats computes the statistics summary from the primary points.
// An empty dataset yields the zero summary.
func (d Dataset) Stats() Statistics {
	if len(d.Points) == 0 {
		return Statistics{}
	}

	s := Statistics{
		Min: d.Points[0].Value,
		Max: d.Points[0].Value,
	}
	for _, p := range d.Points {
		if p.Value < s.Min {
			s.Min = p.Value
		}
		if p.Value > s.Max {
			s.Max = p.Value
		}
		s.Total += p.Value
	}
	s.Mean = s.Total / float64(len(d.Points))
	return s
}

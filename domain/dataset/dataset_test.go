package dataset

import (
	"math"
	"testing"
)

func points(values ...float64) []Point {
	pts := make([]Point, len(values))
	for i, v := range values {
		pts[i] = Point{Label: "p", Value: v}
	}
	return pts
}

func TestStats(t *testing.T) {
	t.Run("summary_bounds_every_value", func(t *testing.T) {
		d := Dataset{Points: points(45000, 52000, 48000, 61000), Source: SourceUser}
		s := d.Stats()

		if s.Min != 45000 || s.Max != 61000 {
			t.Errorf("min/max = %g/%g, want 45000/61000", s.Min, s.Max)
		}
		for _, v := range d.Values() {
			if v < s.Min || v > s.Max {
				t.Errorf("value %g outside [%g, %g]", v, s.Min, s.Max)
			}
		}
		if s.Total != 206000 {
			t.Errorf("total = %g, want 206000", s.Total)
		}
		if math.Abs(s.Mean-51500) > 1e-9 {
			t.Errorf("mean = %g, want 51500", s.Mean)
		}
	})

	t.Run("empty_dataset_yields_zero_summary", func(t *testing.T) {
		if s := (Dataset{}).Stats(); s != (Statistics{}) {
			t.Errorf("empty stats = %+v", s)
		}
	})
}

func TestAnalyzeTrend(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   Trend
	}{
		{"increasing", []float64{10, 20, 30, 40, 50}, TrendIncreasing},
		{"decreasing", []float64{50, 40, 30, 20, 10}, TrendDecreasing},
		{"stable", []float64{100, 100.1, 99.9, 100, 100}, TrendStable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := Analyze(Dataset{Points: points(tc.values...)})
			if in.Trend != tc.want {
				t.Errorf("trend = %s, want %s", in.Trend, tc.want)
			}
		})
	}
}

func TestAnalyzeOutliers(t *testing.T) {
	t.Run("flags_values_beyond_two_sigma", func(t *testing.T) {
		// One extreme spike among flat values.
		in := Analyze(Dataset{Points: points(10, 10, 10, 10, 10, 10, 10, 10, 10, 200)})
		if len(in.Outliers) != 1 || in.Outliers[0] != 9 {
			t.Errorf("outliers = %v, want [9]", in.Outliers)
		}
	})

	t.Run("uniform_data_has_no_outliers", func(t *testing.T) {
		in := Analyze(Dataset{Points: points(5, 5, 5, 5)})
		if len(in.Outliers) != 0 {
			t.Errorf("outliers = %v, want none", in.Outliers)
		}
	})
}

func TestDescribe(t *testing.T) {
	in := Analyze(Dataset{Points: points(1, 2, 3)})
	descs := in.Describe()
	if len(descs) < 2 {
		t.Fatalf("expected at least trend and range descriptions, got %v", descs)
	}
}

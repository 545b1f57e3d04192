package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for chart pipeline logging.

// RequestID adds a request ID field.
func RequestID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("request_id", id)
	}
}

// Stage adds a pipeline stage field.
func Stage(stage string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("stage", stage)
	}
}

// ChartType adds a chart type field.
func ChartType(t chart.Type) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("chart_type", string(t))
	}
}

// Method adds a rendering method field.
func Method(m chart.Method) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("method", string(m))
	}
}

// DataSource adds a dataset provenance field.
func DataSource(s dataset.Source) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("data_source", string(s))
	}
}

// Confidence adds a selection confidence field.
func Confidence(c float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Float64("confidence", c)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Cached adds a cached field.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// Executed adds an executed field for bridge results.
func Executed(executed bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("executed", executed)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Provider adds an LLM provider name field.
func Provider(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("provider", name)
	}
}

// Reason adds a reason field.
func Reason(reason string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("reason", reason)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Rows adds a row count field.
func Rows(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("rows", n)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an int field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/deckster/chartgen/application"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := application.NewEngine(application.EngineConfig{})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	srv, err := NewServer(ServerConfig{
		Name:    "chartgen-test",
		Version: "0.0.0",
		Engine:  engine,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("requires_engine", func(t *testing.T) {
		t.Parallel()
		if _, err := NewServer(ServerConfig{Name: "x"}); err == nil {
			t.Error("NewServer() without engine should fail")
		}
	})

	t.Run("exposes_underlying_server", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		if srv.Server() == nil {
			t.Error("Server() returned nil")
		}
	})
}

func TestHandleGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns_structured_response", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		out, err := srv.handleGenerate(context.Background(), json.RawMessage(`{"content": "monthly revenue trend"}`))
		if err != nil {
			t.Fatalf("handleGenerate() error = %v", err)
		}

		var resp application.GenerateResponse
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if !resp.Success {
			t.Errorf("success = false, error = %s", resp.Error)
		}
		if resp.Chart == "" {
			t.Error("chart payload is empty")
		}
	})

	t.Run("pipeline_failure_is_in_band", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		out, err := srv.handleGenerate(context.Background(), json.RawMessage(`{"content": "sales", "use_synthetic_data": false}`))
		if err != nil {
			t.Fatalf("pipeline failures must not become protocol errors: %v", err)
		}

		var resp application.GenerateResponse
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if resp.Success {
			t.Error("no-data request should fail")
		}
		if resp.Error == "" {
			t.Error("failure should carry an error message")
		}
	})
}

func TestHandleBatch(t *testing.T) {
	t.Parallel()

	t.Run("partial_results_are_collected", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		input := `{"requests": [
			{"content": "monthly revenue trend"},
			{"content": "sales", "use_synthetic_data": false}
		], "workers": 2}`
		out, err := srv.handleBatch(context.Background(), json.RawMessage(input))
		if err != nil {
			t.Fatalf("handleBatch() error = %v", err)
		}

		var resp struct {
			Results   []application.GenerateResponse `json:"results"`
			Succeeded int                            `json:"succeeded"`
			Failed    int                            `json:"failed"`
		}
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if len(resp.Results) != 2 {
			t.Fatalf("got %d results, want 2", len(resp.Results))
		}
		if resp.Succeeded != 1 || resp.Failed != 1 {
			t.Errorf("succeeded=%d failed=%d, want 1/1", resp.Succeeded, resp.Failed)
		}
	})

	t.Run("empty_batch_is_rejected", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		if _, err := srv.handleBatch(context.Background(), json.RawMessage(`{"requests": []}`)); err == nil {
			t.Error("empty batch should be rejected")
		}
	})
}

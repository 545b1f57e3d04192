// Package mcp exposes the chart pipeline as an MCP server so a
// deck-building agent can request charts as a tool call.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/felixgeelhaar/mcp-go"

	"github.com/deckster/chartgen/application"
	"github.com/deckster/chartgen/domain/chart"
)

// ServerConfig configures the chart MCP server.
type ServerConfig struct {
	// Name is the server name.
	Name string

	// Version is the server version.
	Version string

	// Engine is the generation engine backing the tools. Required.
	Engine *application.Engine

	// Instructions provides usage instructions for clients.
	Instructions string
}

// Server wraps an MCP server exposing chart generation tools.
type Server struct {
	srv    *mcpgo.Server
	engine *application.Engine
}

// NewServer creates the chart MCP server with the generate_chart and
// generate_batch tools registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Name == "" {
		cfg.Name = "chartgen"
	}

	info := mcpgo.ServerInfo{
		Name:    cfg.Name,
		Version: cfg.Version,
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	var opts []mcpgo.Option
	if cfg.Instructions != "" {
		opts = append(opts, mcpgo.WithInstructions(cfg.Instructions))
	}

	s := &Server{
		srv:    mcpgo.NewServer(info, opts...),
		engine: cfg.Engine,
	}

	s.srv.Tool("generate_chart").
		Description("Generate a chart from a free-text description with optional data rows, chart type, and theme. Returns markup or plotting code plus dataset statistics.").
		Handler(s.handleGenerate)

	s.srv.Tool("generate_batch").
		Description("Generate multiple charts for one deck with bounded concurrency. A failing chart does not abort its siblings.").
		Handler(s.handleBatch)

	return s, nil
}

// handleGenerate runs one generation request.
func (s *Server) handleGenerate(ctx context.Context, input json.RawMessage) (string, error) {
	req, err := application.ParseGenerateRequest(input)
	if err != nil {
		return marshalResponse(application.NewErrorResponse(err))
	}

	artifact, err := s.engine.Generate(ctx, req.ToDomain())
	if err != nil {
		return marshalResponse(application.NewErrorResponse(err))
	}
	return marshalResponse(application.NewGenerateResponse(artifact))
}

// batchInput is the generate_batch tool input.
type batchInput struct {
	Requests []application.GenerateRequest `json:"requests"`
	Workers  int                           `json:"workers,omitempty"`
}

// batchOutput is the generate_batch tool output.
type batchOutput struct {
	Results   []application.GenerateResponse `json:"results"`
	Succeeded int                            `json:"succeeded"`
	Failed    int                            `json:"failed"`
}

// handleBatch runs a batch of generation requests.
func (s *Server) handleBatch(ctx context.Context, input json.RawMessage) (string, error) {
	var in batchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("%w: %v", chart.ErrValidation, err)
	}
	if len(in.Requests) == 0 {
		return "", fmt.Errorf("%w: requests is required", chart.ErrValidation)
	}

	requests := make([]chart.Request, len(in.Requests))
	for i, r := range in.Requests {
		requests[i] = r.ToDomain()
	}

	result := s.engine.GenerateBatch(ctx, requests, in.Workers)
	out := batchOutput{
		Results:   make([]application.GenerateResponse, len(result.Items)),
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
	}
	for i, item := range result.Items {
		if item.Err != nil {
			out.Results[i] = application.NewErrorResponse(item.Err)
			continue
		}
		out.Results[i] = application.NewGenerateResponse(item.Artifact)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal batch response: %w", err)
	}
	return string(data), nil
}

// marshalResponse serializes a tool response. Pipeline failures are
// reported inside the payload so clients always receive the structured
// failure shape, never a bare protocol error.
func marshalResponse(resp application.GenerateResponse) (string, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshal response: %w", err)
	}
	return string(data), nil
}

// Server returns the underlying mcp-go server.
func (s *Server) Server() *mcpgo.Server {
	return s.srv
}

// ServeStdio runs the server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context, opts ...mcpgo.ServeOption) error {
	return mcpgo.ServeStdio(ctx, s.srv, opts...)
}

// ServeHTTP runs the server over HTTP with SSE.
func (s *Server) ServeHTTP(ctx context.Context, addr string, opts ...mcpgo.HTTPOption) error {
	return mcpgo.ServeHTTP(ctx, s.srv, addr, opts...)
}

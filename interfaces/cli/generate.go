package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckster/chartgen/application"
	"github.com/deckster/chartgen/domain/config"
	infraconfig "github.com/deckster/chartgen/infrastructure/config"
)

// generateOptions holds options for the generate command.
type generateOptions struct {
	configPath   string
	requestPath  string
	title        string
	chartType    string
	dataRows     []string
	noSynthetic  bool
	themePrimary string
	themeStyle   string
	outputPath   string
	pretty       bool
}

// newGenerateCmd creates the generate command.
func (a *App) newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Generate a chart from a description",
		Long: `Generate a chart from a free-text description or a JSON request file.

Examples:
  # Synthesize data from the description alone
  chartgen generate "monthly revenue trend for 2024"

  # Pin the chart type and supply data rows
  chartgen generate "quarterly sales" --type bar \
    --row Q1=45000 --row Q2=52000 --row Q3=48000 --row Q4=61000 --no-synthetic

  # Full request from a JSON file, themed, response to a file
  chartgen generate --request request.json --primary "#2563eb" -o chart.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(args, opts)
			if err != nil {
				return err
			}
			return a.runGenerate(cmd.Context(), opts, req)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to pipeline configuration file")
	cmd.Flags().StringVarP(&opts.requestPath, "request", "r", "", "Path to a JSON request file")
	cmd.Flags().StringVar(&opts.title, "title", "", "Chart title")
	cmd.Flags().StringVarP(&opts.chartType, "type", "t", "", "Explicit chart type (line, bar, pie, scatter, ...)")
	cmd.Flags().StringArrayVar(&opts.dataRows, "row", nil, "Data row as label=value (repeatable)")
	cmd.Flags().BoolVar(&opts.noSynthetic, "no-synthetic", false, "Forbid synthetic data")
	cmd.Flags().StringVar(&opts.themePrimary, "primary", "", "Primary theme seed color (hex)")
	cmd.Flags().StringVar(&opts.themeStyle, "style", "", "Theme style (modern, classic, minimal)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the response JSON to a file")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the response JSON")

	return cmd
}

// buildRequest assembles the external request from the file, the
// positional description, and flag overrides. Flags win over the file.
func buildRequest(args []string, opts *generateOptions) (application.GenerateRequest, error) {
	var req application.GenerateRequest

	if opts.requestPath != "" {
		data, err := os.ReadFile(opts.requestPath)
		if err != nil {
			return req, fmt.Errorf("reading request file: %w", err)
		}
		req, err = application.ParseGenerateRequest(data)
		if err != nil {
			return req, err
		}
	}

	if len(args) > 0 {
		req.Content = args[0]
	}
	if req.Content == "" {
		return req, fmt.Errorf("a chart description is required (argument or --request)")
	}
	if opts.title != "" {
		req.Title = opts.title
	}
	if opts.chartType != "" {
		req.ChartType = opts.chartType
	}
	if opts.noSynthetic {
		useSynthetic := false
		req.UseSyntheticData = &useSynthetic
	}

	for _, row := range opts.dataRows {
		label, raw, ok := strings.Cut(row, "=")
		if !ok {
			return req, fmt.Errorf("invalid --row %q, want label=value", row)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid --row value %q: %w", raw, err)
		}
		req.Data = append(req.Data, application.DataRow{Label: label, Value: &value})
	}

	if opts.themePrimary != "" || opts.themeStyle != "" {
		if req.Theme == nil {
			req.Theme = &application.ThemeRequest{}
		}
		if opts.themePrimary != "" {
			req.Theme.Primary = opts.themePrimary
		}
		if opts.themeStyle != "" {
			req.Theme.Style = opts.themeStyle
		}
	}
	return req, nil
}

// runGenerate builds the engine and runs one request.
func (a *App) runGenerate(ctx context.Context, opts *generateOptions, req application.GenerateRequest) error {
	engine, cleanup, err := a.buildEngine(opts.configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	artifact, err := engine.Generate(ctx, req.ToDomain())

	var resp application.GenerateResponse
	if err != nil {
		resp = application.NewErrorResponse(err)
	} else {
		resp = application.NewGenerateResponse(artifact)
	}

	if writeErr := a.writeResponse(resp, opts.outputPath, opts.pretty); writeErr != nil {
		return writeErr
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	return nil
}

// buildEngine loads the configuration and assembles the engine.
func (a *App) buildEngine(configPath string) (*application.Engine, func(), error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := infraconfig.NewLoader().LoadFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
	}

	engine, cleanup, err := application.Build(*cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("building pipeline: %w", err)
	}
	return engine, cleanup, nil
}

// writeResponse serializes the response to the output file or stdout.
func (a *App) writeResponse(resp application.GenerateResponse, path string, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(resp, "", "  ")
	} else {
		data, err = json.Marshal(resp)
	}
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	var out io.Writer = a.stdout
	if path != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return fmt.Errorf("creating output file: %w", createErr)
		}
		defer f.Close()
		out = f
	}

	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

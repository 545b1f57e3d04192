package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deckster/chartgen/application"
	"github.com/deckster/chartgen/domain/chart"
)

// batchOptions holds options for the batch command.
type batchOptions struct {
	configPath string
	workers    int
	outputPath string
	pretty     bool
}

// batchFile is the on-disk batch shape: a JSON array of requests.
type batchFile []application.GenerateRequest

// newBatchCmd creates the batch command.
func (a *App) newBatchCmd() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <requests.json>",
		Short: "Generate multiple charts from a JSON request array",
		Long: `Generate all charts for one deck from a JSON array of requests,
processed with bounded concurrency. A failing chart does not abort its
siblings; each result carries its own success flag.

Example:
  chartgen batch deck.json --workers 4 -o results.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to pipeline configuration file")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Worker pool size (default from configuration)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the result JSON to a file")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the result JSON")

	return cmd
}

// runBatch loads the batch file and processes it.
func (a *App) runBatch(cmd *cobra.Command, path string, opts *batchOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}

	var batch batchFile
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parsing batch file: %w", err)
	}
	if len(batch) == 0 {
		return fmt.Errorf("batch file contains no requests")
	}

	engine, cleanup, err := a.buildEngine(opts.configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	requests := make([]chart.Request, len(batch))
	for i, r := range batch {
		requests[i] = r.ToDomain()
	}

	result := engine.GenerateBatch(cmd.Context(), requests, opts.workers)

	responses := make([]application.GenerateResponse, len(result.Items))
	for i, item := range result.Items {
		if item.Err != nil {
			responses[i] = application.NewErrorResponse(item.Err)
			continue
		}
		responses[i] = application.NewGenerateResponse(item.Artifact)
	}

	out := struct {
		Results   []application.GenerateResponse `json:"results"`
		Succeeded int                            `json:"succeeded"`
		Failed    int                            `json:"failed"`
	}{responses, result.Succeeded(), result.Failed()}

	var payload []byte
	if opts.pretty {
		payload, err = json.MarshalIndent(out, "", "  ")
	} else {
		payload, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	if opts.outputPath != "" {
		if err := os.WriteFile(opts.outputPath, append(payload, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	} else {
		fmt.Fprintln(a.stdout, string(payload))
	}

	if result.Failed() > 0 {
		fmt.Fprintf(a.stderr, "%d of %d charts failed\n", result.Failed(), len(batch))
	}
	return nil
}

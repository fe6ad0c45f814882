package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/product-sitemap-scraper/internal/crawler"
)

type runOutput struct {
	Success bool                        `json:"success"`
	Data    []crawler.ProductDescriptor `json:"data,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <domain>",
		Short: "Runs the pipeline once and prints the result as JSON",
		Long: `Runs the full pipeline for a single domain and writes the same
{"success", "data", "error"} document the HTTP API returns to stdout. The
command exits non-zero when the run fails.`,
		Args: cobra.ExactArgs(1),
		RunE: runRunCommand,
	}
}

func runRunCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	defer releaseApp(appInstance)

	products, runErr := appInstance.Runner().Run(cmd.Context(), args[0])
	out := runOutput{Success: runErr == nil, Data: products}
	if runErr != nil {
		out.Error = runErr.Error()
		appInstance.Logger().Debug("run failed", zap.String("kind", crawler.Kind(runErr)))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("run %s: %w", args[0], runErr)
	}
	return nil
}

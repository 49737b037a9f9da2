package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdant-labs/docvault/internal/config"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [config]",
		Short: "Run one ingestion pass over the configured sources",
		Long: `Walks the configured sources, processes files whose signature
changed since the last run, and prints a JSON run summary to stdout.

Per-file extraction or indexing failures are logged to stderr and
counted in the summary; they do not fail the run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return err
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.ingestor.Run(cmd.Context(), cfg.Sources)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling summary: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdant-labs/docvault/internal/config"
	"github.com/verdant-labs/docvault/internal/core/services"
)

func newPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove indexed chunks no longer backed by the manifest",
		Long: `Ingestion only ever adds or overwrites chunks. Deleting a source
file, or re-ingesting a changed one, leaves its old chunks in the
collection until prune reconciles the index against the manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flagConfigPath)
			if err != nil {
				return err
			}

			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			removed, err := services.NewPruner(a.collection, a.manifests).Run(cmd.Context())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(map[string]any{
				"collection": a.collection.Name(),
				"removed":    removed,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdant-labs/docvault/internal/config"
)

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of indexed chunks and tracked files",
		Args:  cobra.NoArgs,
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

			chunks, err := a.collection.Count(cmd.Context())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(map[string]any{
				"collection":    a.collection.Name(),
				"chunks":        chunks,
				"tracked_files": len(a.manifests.Load().Files),
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling counts: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

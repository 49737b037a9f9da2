package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdant-labs/docvault/internal/config"
	"github.com/verdant-labs/docvault/internal/core/services"
)

func newQueryCmd() *cobra.Command {
	var (
		topK        int
		source      string
		contextOnly bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Retrieve the chunks most similar to the query text",
		Long: `Embeds the query text and prints the nearest indexed chunks as
JSON, each with its source path, chunk index and distance. With
--context the chunk texts are printed as one plain block instead,
ready to paste into a prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfigPath)
			if err != nil {
				return err
			}

			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			retriever := services.NewRetriever(a.collection)
			chunks, err := retriever.Query(cmd.Context(), args[0], topK, source)
			if err != nil {
				return err
			}

			if contextOnly {
				fmt.Fprintln(cmd.OutOrStdout(), services.Context(chunks))
				return nil
			}

			out, err := json.MarshalIndent(chunks, "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling results: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top", "k", services.DefaultTopK,
		"number of chunks to return")
	cmd.Flags().StringVar(&source, "source", "",
		"restrict results to one source file (resolved absolute path)")
	cmd.Flags().BoolVar(&contextOnly, "context", false,
		"print joined chunk texts instead of JSON")
	return cmd
}

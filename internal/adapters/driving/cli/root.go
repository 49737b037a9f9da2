// Package cli provides the docvault command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/verdant-labs/docvault/internal/logger"
)

// DefaultConfigPath is used when no config file is given.
const DefaultConfigPath = "config.yaml"

var (
	flagVerbose    bool
	flagConfigPath string
)

// NewRootCmd creates the root command with all subcommands attached.
// Running the root with no subcommand performs an ingest, so
// `docvault [config.yaml]` stays a one-shot pipeline invocation.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docvault [config]",
		Short: "Ingest documents into a local vector index",
		Long: `docvault walks configured source directories, extracts text from
PDF, DOCX, DOC, spreadsheet, image and plain-text files, chunks it,
and indexes the chunks in a local vector collection for retrieval.

Unchanged files are skipped between runs via a signature manifest.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetVerbose(flagVerbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", DefaultConfigPath,
		"path to the YAML configuration file")

	rootCmd.AddCommand(
		newIngestCmd(),
		newQueryCmd(),
		newCountCmd(),
		newPruneCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// configPath resolves the config file: a positional argument wins over
// the --config flag.
func configPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return flagConfigPath
}

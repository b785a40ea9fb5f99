package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/resume-ranker/internal/decoding"
	"github.com/spigell/resume-ranker/internal/features"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)

		if vocabulary, err := features.DefaultVocabulary(); err == nil {
			fmt.Printf("built-in vocabulary: %s (%d skills)\n", vocabulary.Version, len(vocabulary.Skills))
		}
		fmt.Printf("supported formats: %v\n", decoding.SupportedFormats())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

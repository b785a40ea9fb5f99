package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/features"
	"github.com/spigell/resume-ranker/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract <document or directory>...",
	Short: "Print the features found in documents without calling any ai provider",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		extract(args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

type extracted struct {
	DocumentID string                 `json:"document_id"`
	Path       string                 `json:"path"`
	Features   features.FeatureBundle `json:"feature_bundle"`
}

func extract(args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	extractor, err := newExtractor(config)
	if err != nil {
		logger.Fatal("building the extractor", zap.Error(err))
	}

	docs, err := loadDocuments(ctx, args, logger)
	if err != nil {
		logger.Fatal("loading documents", zap.Error(err))
	}

	out := make([]extracted, 0, docs.Len())
	for _, doc := range docs.Items {
		out = append(out, extracted{
			DocumentID: doc.ID,
			Path:       doc.Path,
			Features:   extractor.Extract(doc.Text),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("printing features", zap.Error(err))
	}
}

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/config"
	"github.com/spigell/resume-ranker/internal/decoding"
	"github.com/spigell/resume-ranker/internal/documents"
	"github.com/spigell/resume-ranker/internal/features"
	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/metrics"
	"github.com/spigell/resume-ranker/internal/ranking"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptPrintRanking        = "Print ranking"
	PromptReportByVerdict     = "Report by recommendation"
	PromptShowDetails         = "Show document details"
	PromptRankingToFile       = "Dump ranking to file"
	PromptAppendToExcludeFile = "Append ranked documents to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank [flags] <document or directory>...",
	Short: "Rank documents against a job description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("target", "t", "", "file with the job description")
	rankCmd.Flags().String("target-text", "", "job description given inline")
	rankCmd.Flags().StringP("output", "o", "", "write the ranking as JSON to this file")
	rankCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation, print the ranking and exit")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with documents to exclude. Default is unset.")
	rankCmd.Flags().IntP("workers", "w", ranking.DefaultWorkers, "documents scored in parallel")
	rankCmd.Flags().Float64("min-score", 0, "hide documents with a lower composite score")
	rankCmd.Flags().String("provider", "gemini", "ai provider: gemini, openai or ollama")
	rankCmd.Flags().String("metrics-file", "", "write prometheus metrics to this file after the run")

	viper.BindPFlag("exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("workers", rankCmd.Flags().Lookup("workers"))
	viper.BindPFlag("minimum-score", rankCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("ai.provider", rankCmd.Flags().Lookup("provider"))
	viper.BindPFlag("metrics-file", rankCmd.Flags().Lookup("metrics-file"))
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	target, err := readTarget(cmd)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err),
			zap.String("hint", "use --target <file> or --target-text <text>"),
		)
	}

	docs, err := loadDocuments(ctx, args, logger)
	if err != nil {
		logger.Fatal("loading documents", zap.Error(err))
	}

	filters := prepareFilters(config, logger)
	docs, err = filters.Run(ctx, docs)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if docs.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no documents left after filters"))
		return
	}

	autoApprove := cmd.Flag("yes").Value.String() == "true"
	if !autoApprove {
		confirm := promptui.Select{
			Label: fmt.Sprintf("Rank %d documents with %s?", docs.Len(), config.AI.Provider),
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := confirm.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	m := metrics.New()
	result, err := rankDocuments(ctx, config, docs, target, m, logger)
	if config.MetricsFile != "" {
		if err := m.WriteTextfile(config.MetricsFile); err != nil {
			logger.Warn("writing metrics", zap.Error(err))
		}
	}
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}

	if config.MinimumScore > 0 {
		above := result.AboveScore(config.MinimumScore)
		logger.Info("hiding documents below the minimum score",
			zap.Float64("minimum_score", config.MinimumScore),
			zap.Int("hidden", len(result.Entries)-len(above)),
		)
		result.Entries = above
	}

	if output := cmd.Flag("output").Value.String(); output != "" {
		if err := result.WriteFile(output); err != nil {
			logger.Fatal("writing the ranking", zap.Error(err))
		}
		logger.Info("ranking written", zap.String("filename", output))
	}

	if autoApprove || result.Interrupted {
		if err := result.WriteTable(os.Stdout); err != nil {
			logger.Fatal("printing the ranking", zap.Error(err))
		}
		return
	}

	menu := promptui.Select{
		Label: "What next?",
		Items: []string{PromptPrintRanking, PromptReportByVerdict, PromptShowDetails, PromptRankingToFile, PromptExit},
	}
	if config.ExcludeFile != "" {
		menu.Items = append(menu.Items.([]string), PromptAppendToExcludeFile)
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current ranking", zap.Int("count", len(result.Entries)), zap.Int("failed", len(result.Failures)))

		if err := handleAction(action, logger, config, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *config.Config, result *ranking.Result) error {
	switch action {
	case PromptPrintRanking:
		return result.WriteTable(os.Stdout)
	case PromptReportByVerdict:
		pretty, _ := json.MarshalIndent(result.ReportByRecommendation(), "", "  ")
		logger.Info(string(pretty), zap.Int("documents count", len(result.Entries)))
		return nil
	case PromptShowDetails:
		return showDetails(result)
	case PromptRankingToFile:
		filename, err := result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(config.ExcludeFile, result, logger)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(result *ranking.Result) error {
	for {
		items := make([]string, 0, len(result.Entries)+1)
		for i, entry := range result.Entries {
			items = append(items, fmt.Sprintf("%d %s / %.2f / %s", i+1, entry.DocumentID, entry.CompositeScore, entry.Verdict.Recommendation))
		}

		entryPrompt := promptui.Select{
			Label: "Choose a document and press ENTER",
			Items: append(items, PromptBack),
		}

		index, selected, err := entryPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		pretty, err := json.MarshalIndent(result.Entries[index], "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
	}
}

func appendToExcludeFile(path string, result *ranking.Result, logger *zap.Logger) error {
	excluded, err := documents.GetExcludedFromFile(path)
	if err != nil {
		return err
	}

	excluded.Append(result.ToExcluded())

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("documents", len(result.Entries)))

	result.Exclude(excluded.IDs())
	return nil
}

func readTarget(cmd *cobra.Command) (string, error) {
	text := cmd.Flag("target-text").Value.String()
	if file := cmd.Flag("target").Value.String(); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("job description is empty")
	}
	return text, nil
}

func loadDocuments(ctx context.Context, args []string, logger *zap.Logger) (*documents.Documents, error) {
	paths, err := documents.Expand(args, decoding.IsSupported)
	if err != nil {
		return nil, err
	}

	docs, failures, err := documents.Load(ctx, decoding.New(), paths, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("documents loaded", zap.Int("count", docs.Len()), zap.Int("skipped", len(failures)))
	return docs, nil
}

func prepareFilters(config *config.Config, logger *zap.Logger) *filtering.Filtering {
	filters := filtering.New(&filtering.Config{ExcludeFile: config.ExcludeFile}, filtering.Defaults(), logger)

	if config.Filters != nil {
		for _, name := range config.Filters.Disabled {
			filters.DisableByName(name, "disabled in config")
		}
	}

	if config.ExcludeFile == "" {
		filters.DisableByName("exclude_file", "exclude file is not configured")
	}

	return filters
}

func newExtractor(config *config.Config) (*features.Extractor, error) {
	vocabulary, err := features.LoadVocabulary(config.VocabularyFile)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	return features.NewExtractor(vocabulary)
}

func rankDocuments(ctx context.Context, cfg *config.Config, docs *documents.Documents, target string, m *metrics.Metrics, logger *zap.Logger) (*ranking.Result, error) {
	extractor, err := newExtractor(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := config.NewProvider(ctx, cfg.AI, m, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai provider: %w", err)
	}

	engine, err := ranking.NewEngine(cfg.RankingConfig(), ranking.Deps{
		Extractor: extractor,
		Embedder:  provider,
		Judge:     provider,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	run, err := engine.Prepare(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("preparing the run: %w", err)
	}

	result, err := engine.Rank(ctx, run, docs)
	if err != nil {
		return nil, err
	}

	if result.Interrupted {
		logger.Warn("ranking interrupted, showing partial results", zap.Int("ranked", len(result.Entries)))
	}
	return result, nil
}

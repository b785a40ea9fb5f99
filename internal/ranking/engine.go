package ranking

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ranker/internal/ai"
	"github.com/spigell/resume-ranker/internal/documents"
	"github.com/spigell/resume-ranker/internal/features"
	"github.com/spigell/resume-ranker/internal/judgment"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/metrics"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/similarity"
)

const (
	DefaultWorkers         = 4
	DefaultDocumentTimeout = 5 * time.Minute
)

// Config tunes the engine.
type Config struct {
	Workers int
	// DocumentTimeout bounds all external calls of one document. A started
	// document keeps running after the caller cancels, up to this limit.
	DocumentTimeout time.Duration
	Weights         scoring.Weights
}

// DefaultConfig returns four workers, a five minute document budget and the default weights.
func DefaultConfig() Config {
	return Config{
		Workers:         DefaultWorkers,
		DocumentTimeout: DefaultDocumentTimeout,
		Weights:         scoring.DefaultWeights(),
	}
}

// Deps are the collaborators of the engine.
type Deps struct {
	Extractor *features.Extractor
	Embedder  ai.Embedder
	Judge     ai.Judge
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Engine scores documents against a target and orders them.
type Engine struct {
	cfg       Config
	extractor *features.Extractor
	embedder  ai.Embedder
	judge     ai.Judge
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if deps.Extractor == nil || deps.Embedder == nil || deps.Judge == nil {
		return nil, errors.New("ranking engine requires an extractor, an embedder and a judge")
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DocumentTimeout <= 0 {
		cfg.DocumentTimeout = DefaultDocumentTimeout
	}

	return &Engine{
		cfg:       cfg,
		extractor: deps.Extractor,
		embedder:  deps.Embedder,
		judge:     deps.Judge,
		metrics:   deps.Metrics,
		logger:    logger.WithFields(deps.Logger),
	}, nil
}

// Run is the read-only context of one ranking: the target description and
// its embedding. It is shared by all documents of the run.
type Run struct {
	ID           string    `json:"run_id"`
	Target       string    `json:"-"`
	TargetVector ai.Vector `json:"-"`
	StartedAt    time.Time `json:"started_at"`
}

// Prepare embeds the target description and opens a run.
func (e *Engine) Prepare(ctx context.Context, target string) (*Run, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, &PreconditionError{Reason: "target description is empty"}
	}

	vec, err := e.embedder.Embed(ctx, target)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:           uuid.NewString(),
		Target:       target,
		TargetVector: vec,
		StartedAt:    time.Now().UTC(),
	}

	logger.WithRun(e.logger, run.ID).Info("run prepared",
		zap.Int("target_length", len(target)),
		zap.Int("embedding_dimensions", len(vec)),
	)

	return run, nil
}

// Entry is one ranked document.
type Entry struct {
	DocumentID     string                 `json:"document_id"`
	Path           string                 `json:"path,omitempty"`
	CompositeScore float64                `json:"composite_score"`
	Similarity     float64                `json:"similarity"`
	Features       features.FeatureBundle `json:"feature_bundle"`
	Verdict        judgment.Verdict       `json:"verdict"`
	// Position is the index of the document in the input.
	Position int `json:"position"`
}

// Result is the outcome of Rank.
type Result struct {
	RunID    string             `json:"run_id"`
	Target   string             `json:"target"`
	Entries  []*Entry           `json:"entries"`
	Failures []*DocumentFailure `json:"failures"`
	// Interrupted is set when the run was canceled before every document started.
	Interrupted bool `json:"interrupted"`
}

type outcome struct {
	entry   *Entry
	failure *DocumentFailure
}

// Rank scores every document independently on a bounded worker pool and
// returns the entries ordered by composite score, highest first. Entries with
// equal scores keep their input order.
//
// A failing document is reported in Result.Failures and does not affect the
// others. When ctx is canceled no new document is started; the ones already
// in flight run to completion within Config.DocumentTimeout, and the rest are
// reported with StageCanceled.
func (e *Engine) Rank(ctx context.Context, run *Run, docs *documents.Documents) (*Result, error) {
	if run == nil || len(run.TargetVector) == 0 {
		return nil, &PreconditionError{Reason: "target embedding is missing, call Prepare first"}
	}

	log := logger.WithRun(e.logger, run.ID)
	outcomes := make([]outcome, docs.Len())

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)

	for i, doc := range docs.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].failure = &DocumentFailure{DocumentID: doc.ID, Path: doc.Path, Stage: StageCanceled, Err: err}
				return nil
			}

			docCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.DocumentTimeout)
			defer cancel()

			outcomes[i] = e.process(docCtx, run, i, doc, log)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{RunID: run.ID, Target: run.Target, Entries: []*Entry{}, Failures: []*DocumentFailure{}}
	for _, o := range outcomes {
		if o.failure != nil {
			result.Failures = append(result.Failures, o.failure)
			if o.failure.Stage == StageCanceled {
				result.Interrupted = true
			}
			e.metrics.IncFailure(string(o.failure.Stage))
			continue
		}
		result.Entries = append(result.Entries, o.entry)
		e.metrics.ObserveRanked(o.entry.CompositeScore)
	}

	slices.SortStableFunc(result.Entries, func(a, b *Entry) int {
		return cmp.Compare(b.CompositeScore, a.CompositeScore)
	})

	log.Info("ranking finished",
		zap.Int("ranked", len(result.Entries)),
		zap.Int("failed", len(result.Failures)),
		zap.Bool("interrupted", result.Interrupted),
	)

	return result, nil
}

func (e *Engine) process(ctx context.Context, run *Run, position int, doc *documents.Document, log *zap.Logger) outcome {
	log = logger.WithFields(log, logger.DocumentFields(doc.ID, doc.Path)...)
	fail := func(stage Stage, err error) outcome {
		log.Warn("document failed", zap.String("stage", string(stage)), zap.Error(err))
		return outcome{failure: &DocumentFailure{DocumentID: doc.ID, Path: doc.Path, Stage: stage, Err: err}}
	}

	bundle := e.extractor.Extract(doc.Text)

	vec, err := e.embedder.Embed(ctx, bundle.NormalizedText)
	if err != nil {
		return fail(StageEmbed, err)
	}

	cos, err := similarity.Cosine(vec, run.TargetVector)
	if err != nil {
		return fail(StageSimilarity, err)
	}

	raw, err := e.judge.Judge(ctx, judgment.BuildPrompt(run.Target, bundle))
	if err != nil {
		return fail(StageJudge, err)
	}
	verdict := judgment.Parse(raw)

	percent := similarity.Percent(cos)
	composite := e.cfg.Weights.Aggregate(verdict.Score, percent, bundle.SkillCount())

	entry := &Entry{
		DocumentID:     doc.ID,
		Path:           doc.Path,
		CompositeScore: scoring.Round2(composite),
		Similarity:     scoring.Round2(percent),
		Features:       bundle,
		Verdict:        verdict,
		Position:       position,
	}

	log.Debug("document scored",
		zap.Float64("composite", entry.CompositeScore),
		zap.Float64("similarity", entry.Similarity),
		zap.Int("judgment", verdict.Score),
		zap.Int("skills", bundle.SkillCount()),
		zap.String("recommendation", string(verdict.Recommendation)),
	)

	return outcome{entry: entry}
}

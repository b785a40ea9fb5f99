package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/metrics"
	"github.com/spigell/resume-ranker/internal/utils"
)

const (
	DefaultTimeout         = 60 * time.Second
	DefaultMaxRetries      = 3
	DefaultInitialInterval = time.Second
	DefaultMaxInterval     = 30 * time.Second
	// DefaultMaxRetryAfter is the longest server-suggested delay still worth
	// waiting for. Longer hints usually mean an exhausted quota.
	DefaultMaxRetryAfter = 30 * time.Second

	defaultMaxLogLength = 200
)

var wait = utils.WaitFor

// RetryConfig bounds the retries of one call.
type RetryConfig struct {
	MaxRetries      int           `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	InitialInterval time.Duration `mapstructure:"initial-interval" validate:"gte=0"`
	MaxInterval     time.Duration `mapstructure:"max-interval" validate:"gte=0"`
	MaxRetryAfter   time.Duration `mapstructure:"max-retry-after" validate:"gte=0"`
}

// ResilientConfig configures Resilient.
type ResilientConfig struct {
	// Timeout bounds every single attempt. Zero disables it.
	Timeout time.Duration
	Retry   RetryConfig
	// Limiter is shared by every caller of the provider. Nil means unlimited.
	Limiter      *rate.Limiter
	Metrics      *metrics.Metrics
	MaxLogLength int
}

// DefaultResilientConfig returns the defaults used when nothing is configured.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Timeout: DefaultTimeout,
		Retry: RetryConfig{
			MaxRetries:      DefaultMaxRetries,
			InitialInterval: DefaultInitialInterval,
			MaxInterval:     DefaultMaxInterval,
			MaxRetryAfter:   DefaultMaxRetryAfter,
		},
		MaxLogLength: defaultMaxLogLength,
	}
}

// NewLimiter returns a limiter allowing rps calls per second with the given
// burst, or nil when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Resilient decorates a Provider with per-attempt timeouts, a shared rate
// limit and bounded exponential retries of retryable failures. Every error it
// returns is an *ExternalServiceError.
type Resilient struct {
	provider Provider
	cfg      ResilientConfig
	logger   *zap.Logger
}

func NewResilient(provider Provider, cfg ResilientConfig, log *zap.Logger) *Resilient {
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	if cfg.Retry.MaxRetries < 0 {
		cfg.Retry.MaxRetries = 0
	}
	return &Resilient{
		provider: provider,
		cfg:      cfg,
		logger:   logger.WithCommonFields(log, provider.Name(), provider.Model()),
	}
}

func (r *Resilient) Name() string  { return r.provider.Name() }
func (r *Resilient) Model() string { return r.provider.Model() }

func (r *Resilient) Embed(ctx context.Context, text string) (Vector, error) {
	return call(ctx, r, OpEmbed, text, r.provider.Embed)
}

func (r *Resilient) Judge(ctx context.Context, prompt string) (string, error) {
	out, err := call(ctx, r, OpJudge, prompt, r.provider.Judge)
	if err == nil {
		r.logger.Debug("judgment received",
			zap.Int("response_length", utf8.RuneCountInString(out)),
			zap.String("response_preview", utils.TruncateForLog(out, r.cfg.MaxLogLength)),
		)
	}
	return out, err
}

func call[T any](ctx context.Context, r *Resilient, op, input string, fn func(context.Context, string) (T, error)) (T, error) {
	var zero T

	schedule := backoff.NewExponentialBackOff()
	if r.cfg.Retry.InitialInterval > 0 {
		schedule.InitialInterval = r.cfg.Retry.InitialInterval
	}
	if r.cfg.Retry.MaxInterval > 0 {
		schedule.MaxInterval = r.cfg.Retry.MaxInterval
	}
	schedule.MaxElapsedTime = 0
	schedule.Reset()

	r.logger.Debug("external call",
		zap.String("op", op),
		zap.Int("input_length", utf8.RuneCountInString(input)),
		zap.String("input_preview", utils.TruncateForLog(input, r.cfg.MaxLogLength)),
	)

	for try := 0; ; try++ {
		if r.cfg.Limiter != nil {
			if err := r.cfg.Limiter.Wait(ctx); err != nil {
				return zero, r.wrap(op, err, false)
			}
		}

		out, err := callOnce(ctx, r, op, input, fn)
		if err == nil {
			return out, nil
		}

		ext := r.classify(ctx, op, err)
		if !ext.Retryable || try >= r.cfg.Retry.MaxRetries {
			return zero, ext
		}

		if limit := r.cfg.Retry.MaxRetryAfter; limit > 0 && ext.RetryAfter > limit {
			r.logger.Warn("not retrying: suggested delay is too long",
				zap.String("op", op),
				zap.Duration("retry_after", ext.RetryAfter),
				zap.Duration("max_retry_after", limit),
			)
			return zero, ext
		}

		delay := schedule.NextBackOff()
		if ext.RetryAfter > delay {
			delay = ext.RetryAfter
		}

		r.cfg.Metrics.IncRetry(r.provider.Name(), op)
		r.logger.Warn("retrying external call",
			zap.String("op", op),
			zap.Int("attempt", try+1),
			zap.Int("max_retries", r.cfg.Retry.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return zero, r.wrap(op, fmt.Errorf("%w (last error: %v)", err, ext.Err), false)
		}
	}
}

func callOnce[T any](ctx context.Context, r *Resilient, op, input string, fn func(context.Context, string) (T, error)) (T, error) {
	callCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := fn(callCtx, input)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case callCtx.Err() != nil && ctx.Err() == nil:
		outcome = metrics.OutcomeTimeout
	default:
		outcome = metrics.OutcomeFailure
	}
	r.cfg.Metrics.ObserveCall(r.provider.Name(), op, outcome, elapsed)

	return out, err
}

// classify turns any provider error into an ExternalServiceError. An attempt
// that hit its own timeout while the caller is still waiting is retryable.
func (r *Resilient) classify(ctx context.Context, op string, err error) *ExternalServiceError {
	timedOut := errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil

	var ext *ExternalServiceError
	if errors.As(err, &ext) {
		if ext.Provider == "" {
			ext.Provider = r.provider.Name()
		}
		if ext.Op == "" {
			ext.Op = op
		}
		if timedOut {
			ext.Retryable = true
		}
		return ext
	}

	return r.wrap(op, err, timedOut)
}

func (r *Resilient) wrap(op string, err error, retryable bool) *ExternalServiceError {
	return &ExternalServiceError{
		Provider:  r.provider.Name(),
		Op:        op,
		Retryable: retryable,
		Err:       err,
	}
}

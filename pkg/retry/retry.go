package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "flickrarchiver/pkg/errors"
	"flickrarchiver/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff strategy to use
	Backoff BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	// Context for cancellation
	Context context.Context
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig returns a retry configuration with the archiver's flat policy:
// three attempts with a 2 second delay between them.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 2 * time.Second},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.GetLogger(),
	}
}

// DefaultRetryIf is the default retry predicate
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return errs.IsRetryable(apiErr.Type)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Default to retrying unknown errors
	return true
}

// Do executes an operation with retry logic
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	attempt := 0

	for {
		attempt++

		err := op()
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		lastErr = err

		if !cfg.RetryIf(err) {
			if cfg.Logger != nil {
				cfg.Logger.DebugWithFields("error is not retryable", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return err
		}

		// The wait only happens between attempts, never after the last one
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			if cfg.Logger != nil {
				cfg.Logger.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts":   attempt,
					"last_error": lastErr.Error(),
				})
			}
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, cfg.Backoff.NextDelay(attempt))
		}

		delay := cfg.Backoff.NextDelay(attempt)

		if cfg.Logger != nil {
			cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
				"attempt":      attempt,
				"error":        err.Error(),
				"delay_ms":     delay.Milliseconds(),
				"max_attempts": cfg.MaxAttempts,
			})
		}

		if err := Wait(cfg.Context, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](op OperationWithResult[T], cfg *Config) (T, error) {
	var result T

	err := Do(func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)

	return result, err
}

// Default backoff delays for the remote-call retry policy
const (
	DefaultRetryDelay       = 2 * time.Second
	DefaultUnavailableDelay = 5 * time.Second
)

// APIRetrier applies the archiver's remote-call retry policy: a temporary
// "service unavailable" failure backs off linearly (5s, 10s, 15s by
// default) while any other retryable failure waits a flat delay, both
// capped at MaxAttempts.
type APIRetrier struct {
	maxAttempts        int
	unavailableBackoff BackoffStrategy
	defaultBackoff     BackoffStrategy
	logger             logger.Logger
}

// NewAPIRetrier creates a retrier with the default remote-call policy
func NewAPIRetrier(maxAttempts int, log logger.Logger) *APIRetrier {
	return NewAPIRetrierWithDelays(maxAttempts, DefaultRetryDelay, DefaultUnavailableDelay, log)
}

// NewAPIRetrierWithDelays creates a retrier with configured delays. The
// "service unavailable" backoff grows by unavailableDelay per attempt and
// caps at three times it.
func NewAPIRetrierWithDelays(maxAttempts int, retryDelay, unavailableDelay time.Duration, log logger.Logger) *APIRetrier {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	if unavailableDelay <= 0 {
		unavailableDelay = DefaultUnavailableDelay
	}
	return &APIRetrier{
		maxAttempts: maxAttempts,
		unavailableBackoff: &LinearBackoff{
			BaseDelay: unavailableDelay,
			Increment: unavailableDelay,
			MaxDelay:  3 * unavailableDelay,
		},
		defaultBackoff: &ConstantBackoff{Delay: retryDelay},
		logger:         log,
	}
}

// Do executes an operation, selecting the backoff from the error type of the
// most recent failure.
func (r *APIRetrier) Do(op Operation) error {
	cfg := &Config{
		MaxAttempts: r.maxAttempts,
		Backoff:     r.defaultBackoff,
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      r.logger,
	}

	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		var apiErr *errs.Error
		if errors.As(err, &apiErr) && apiErr.Type == errs.ErrorTypeServiceUnavailable {
			cfg.Backoff = r.unavailableBackoff
		} else {
			cfg.Backoff = r.defaultBackoff
		}
	}

	return Do(op, cfg)
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "flickrarchiver/pkg/errors"
	"flickrarchiver/pkg/logger"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, fastConfig(3))

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"}
		}
		return nil
	}, fastConfig(3))

	if err != nil {
		t.Fatalf("Expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return &errs.Error{Type: errs.ErrorTypeServerError, Message: "boom"}
	}, fastConfig(3))

	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", calls)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	notFound := &errs.Error{Type: errs.ErrorTypeNotFound, Message: "photo not found"}
	err := Do(func() error {
		calls++
		return notFound
	}, fastConfig(3))

	if !errors.Is(err, notFound) {
		t.Fatalf("Expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Non-retryable error should not be retried, got %d calls", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls == 1 {
			return "", &errs.Error{Type: errs.ErrorTypeNetwork, Message: "transient"}
		}
		return "payload", nil
	}, fastConfig(3))

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if result != "payload" {
		t.Errorf("Expected payload, got %q", result)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"network error", &errs.Error{Type: errs.ErrorTypeNetwork}, true},
		{"rate limit error", &errs.Error{Type: errs.ErrorTypeRateLimit}, true},
		{"service unavailable", &errs.Error{Type: errs.ErrorTypeServiceUnavailable}, true},
		{"server error", &errs.Error{Type: errs.ErrorTypeServerError}, true},
		{"not found", &errs.Error{Type: errs.ErrorTypeNotFound}, false},
		{"auth error", &errs.Error{Type: errs.ErrorTypeAuth}, false},
		{"context cancelled", context.Canceled, false},
		{"unknown plain error", errors.New("something"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestLinearBackoff(t *testing.T) {
	backoff := &LinearBackoff{
		BaseDelay: 5 * time.Second,
		Increment: 5 * time.Second,
		MaxDelay:  15 * time.Second,
	}

	expected := []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second, 15 * time.Second}
	for attempt, want := range expected {
		if got := backoff.NextDelay(attempt + 1); got != want {
			t.Errorf("NextDelay(%d) = %v, want %v", attempt+1, got, want)
		}
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 2 * time.Second}
	for attempt := 1; attempt <= 4; attempt++ {
		if got := backoff.NextDelay(attempt); got != 2*time.Second {
			t.Errorf("NextDelay(%d) = %v, want 2s", attempt, got)
		}
	}
}

func TestWaitCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Wait(ctx, 10*time.Second)
	if err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait should return promptly on cancellation, took %v", elapsed)
	}
}

func TestAPIRetrierSwitchesBackoffOnUnavailable(t *testing.T) {
	// The retrier itself carries the production delays, so exercise only
	// the backoff selection via OnRetry wiring.
	r := NewAPIRetrier(3, logger.NewTestLogger())
	r.unavailableBackoff = &LinearBackoff{BaseDelay: time.Millisecond, Increment: time.Millisecond, MaxDelay: 3 * time.Millisecond}
	r.defaultBackoff = &ConstantBackoff{Delay: time.Millisecond}

	calls := 0
	err := r.Do(func() error {
		calls++
		if calls < 3 {
			return &errs.Error{Type: errs.ErrorTypeServiceUnavailable, Message: "service currently unavailable", Code: 105}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestAPIRetrierConfiguredDelays(t *testing.T) {
	r := NewAPIRetrierWithDelays(3, 10*time.Millisecond, 20*time.Millisecond, logger.NewTestLogger())

	cb, ok := r.defaultBackoff.(*ConstantBackoff)
	if !ok || cb.Delay != 10*time.Millisecond {
		t.Errorf("Expected 10ms constant backoff, got %+v", r.defaultBackoff)
	}
	lb, ok := r.unavailableBackoff.(*LinearBackoff)
	if !ok {
		t.Fatalf("Expected linear unavailable backoff, got %+v", r.unavailableBackoff)
	}
	if lb.BaseDelay != 20*time.Millisecond || lb.Increment != 20*time.Millisecond || lb.MaxDelay != 60*time.Millisecond {
		t.Errorf("Unexpected unavailable backoff: %+v", lb)
	}
}

func TestAPIRetrierNonPositiveDelaysKeepDefaults(t *testing.T) {
	r := NewAPIRetrierWithDelays(3, 0, -time.Second, logger.NewTestLogger())

	if cb := r.defaultBackoff.(*ConstantBackoff); cb.Delay != DefaultRetryDelay {
		t.Errorf("Expected default retry delay, got %v", cb.Delay)
	}
	if lb := r.unavailableBackoff.(*LinearBackoff); lb.BaseDelay != DefaultUnavailableDelay {
		t.Errorf("Expected default unavailable delay, got %v", lb.BaseDelay)
	}
}

func TestAPIRetrierDoesNotRetryNotFound(t *testing.T) {
	r := NewAPIRetrier(3, logger.NewTestLogger())

	calls := 0
	err := r.Do(func() error {
		calls++
		return &errs.Error{Type: errs.ErrorTypeNotFound, Message: "photo not found", Code: 1}
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

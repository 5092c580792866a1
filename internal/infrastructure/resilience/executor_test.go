package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoMakesSingleAttemptByDefault(t *testing.T) {
	exec := NewExecutor(Config{BreakerEnabled: false})

	attempts := 0
	errBackend := errors.New("backend down")
	err := exec.Do(context.Background(), "extraction.upload", func(context.Context) error {
		attempts++
		return errBackend
	}, func(error) Outcome { return Outcome{Retryable: true, CountsAgainstBreaker: true} })
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoRetriesWhenConfigured(t *testing.T) {
	exec := NewExecutor(Config{Attempts: 3, RetryBackoff: time.Millisecond})

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) Outcome {
		return Outcome{Retryable: errors.Is(err, errTemp), CountsAgainstBreaker: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoOpensCircuitAndNotifies(t *testing.T) {
	var transitions []bool
	exec := NewExecutor(Config{
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	}).OnStateChange(func(_ string, open bool) {
		transitions = append(transitions, open)
	})

	errBackend := errors.New("backend down")
	for i := 0; i < 2; i++ {
		err := exec.Do(context.Background(), "assistant.chat", func(context.Context) error {
			return errBackend
		}, nil)
		if !errors.Is(err, errBackend) {
			t.Fatalf("iteration %d: expected backend error, got %v", i, err)
		}
	}

	err := exec.Do(context.Background(), "assistant.chat", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if len(transitions) != 1 || !transitions[0] {
		t.Fatalf("expected one open transition, got %v", transitions)
	}
}

func TestDoIgnoresCallerFaultsForBreaker(t *testing.T) {
	exec := NewExecutor(Config{
		BreakerEnabled:     true,
		BreakerMinRequests: 1,
		BreakerOpenTimeout: time.Minute,
	})

	errRejected := errors.New("bad request")
	for i := 0; i < 5; i++ {
		_ = exec.Do(context.Background(), "extraction.upload", func(context.Context) error {
			return errRejected
		}, func(error) Outcome { return Outcome{} })
	}

	called := false
	err := exec.Do(context.Background(), "extraction.upload", func(context.Context) error {
		called = true
		return nil
	}, nil)
	if err != nil || !called {
		t.Fatalf("expected breaker to stay closed, err=%v called=%v", err, called)
	}
}

package categories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", config.MaxAttempts)
	}
	if config.InitialBackoff != 250*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 250ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 5*time.Second {
		t.Errorf("MaxBackoff = %v, want 5s", config.MaxBackoff)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryConfig_ForClass(t *testing.T) {
	base := DefaultRetryConfig()

	rateLimited := base.forClass(ErrorClassRateLimit)
	if rateLimited.InitialBackoff != 4*base.InitialBackoff {
		t.Errorf("rate limit InitialBackoff = %v, want %v", rateLimited.InitialBackoff, 4*base.InitialBackoff)
	}
	if rateLimited.MaxBackoff != 4*base.MaxBackoff {
		t.Errorf("rate limit MaxBackoff = %v, want %v", rateLimited.MaxBackoff, 4*base.MaxBackoff)
	}

	server := base.forClass(ErrorClassServer)
	if server != base {
		t.Errorf("server config = %+v, want unchanged %+v", server, base)
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), zerolog.Nop(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), zerolog.Nop(), func() error {
		attempts++
		if attempts < 3 {
			return &APIError{StatusCode: 503, ErrorClass: ErrorClassServer, Message: "unavailable"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_ClientErrorNoRetry(t *testing.T) {
	attempts := 0
	clientErr := &APIError{StatusCode: 404, ErrorClass: ErrorClassClient, Message: "not found"}
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), zerolog.Nop(), func() error {
		attempts++
		return clientErr
	})

	if !errors.Is(err, clientErr) {
		t.Errorf("Expected client error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for client error, got %d", attempts)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	attempts := 0
	serverErr := &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "boom"}
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), zerolog.Nop(), func() error {
		attempts++
		return serverErr
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	if !errors.Is(err, serverErr) {
		t.Errorf("Expected exhausted error to wrap last error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    time.Second,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 1,
	}

	attempts := 0
	start := time.Now()
	err := retryWithBackoff(ctx, config, zerolog.Nop(), func() error {
		attempts++
		cancel()
		return errors.New("connection reset")
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("Expected ErrContextCancelled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("Cancellation should interrupt the backoff wait")
	}
}

func TestRetryWithBackoff_ZeroAttempts(t *testing.T) {
	attempts := 0
	_ = retryWithBackoff(context.Background(), RetryConfig{}, zerolog.Nop(), func() error {
		attempts++
		return nil
	})

	if attempts != 1 {
		t.Errorf("Expected at least one attempt, got %d", attempts)
	}
}

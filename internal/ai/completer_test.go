package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingCompleter) Provider() string { return "stub" }
func (blockingCompleter) Model() string    { return "stub-model" }

type staticCompleter struct {
	text string
	err  error
}

func (s staticCompleter) Complete(context.Context, Request) (string, error) {
	return s.text, s.err
}

func (staticCompleter) Provider() string { return "stub" }
func (staticCompleter) Model() string    { return "stub-model" }

func TestCompleteWithTimeoutExpiryIsTransportError(t *testing.T) {
	t.Parallel()

	_, err := CompleteWithTimeout(context.Background(), blockingCompleter{}, Request{Prompt: "p"}, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
	if !te.Temporary() {
		t.Fatal("timeout must be temporary")
	}
	if te.Provider != "stub" {
		t.Fatalf("unexpected provider: %q", te.Provider)
	}
}

func TestCompleteWithTimeoutWrapsPlainErrors(t *testing.T) {
	t.Parallel()

	_, err := CompleteWithTimeout(context.Background(), staticCompleter{err: errors.New("boom")}, Request{}, time.Second)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}

	text, err := CompleteWithTimeout(context.Background(), staticCompleter{text: "ok"}, Request{}, 0)
	if err != nil || text != "ok" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}
}

func TestTransportErrorTemporary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    *TransportError
		expect bool
	}{
		{name: "network", err: NewTransportError("p", 0, errors.New("connection reset")), expect: true},
		{name: "rate limited", err: NewTransportError("p", http.StatusTooManyRequests, nil), expect: true},
		{name: "server error", err: NewTransportError("p", http.StatusBadGateway, nil), expect: true},
		{name: "bad request", err: NewTransportError("p", http.StatusBadRequest, nil), expect: false},
		{name: "unauthorized", err: NewTransportError("p", http.StatusUnauthorized, nil), expect: false},
		{name: "canceled", err: NewTransportError("p", 0, context.Canceled), expect: false},
		{name: "truncated", err: NewTruncatedError("p", "max_tokens"), expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Temporary(); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestAsTransportKeepsExisting(t *testing.T) {
	t.Parallel()

	original := NewTransportError("gemini", http.StatusServiceUnavailable, nil)
	if got := AsTransport("other", original); got != error(original) {
		t.Fatalf("expected original error to be returned, got %v", got)
	}
	if AsTransport("p", nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestTruncatedErrorIsTransport(t *testing.T) {
	t.Parallel()

	_, err := CompleteWithTimeout(context.Background(), staticCompleter{err: NewTruncatedError("stub", "max_tokens")}, Request{}, time.Second)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation in chain, got %v", err)
	}
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Request is a single text-completion call.
type Request struct {
	Prompt          string
	MaxOutputTokens int
}

// Completer sends one prompt to a text-generation endpoint and returns the raw text.
// Implementations do not retry; any failure is reported as *TransportError.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
	Model() string
}

// ErrTruncated marks a response that stopped at the output token limit.
// The text is incomplete and must not be used.
var ErrTruncated = errors.New("response was cut off at the output token limit")

// NewTruncatedError reports a response that stopped at the output token limit.
func NewTruncatedError(provider, reason string) *TransportError {
	return NewTransportError(provider, 0, fmt.Errorf("%w (%s)", ErrTruncated, reason))
}

// TransportError is a network, HTTP or timeout failure while calling the endpoint.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func NewTransportError(provider string, status int, err error) *TransportError {
	return &TransportError{Provider: provider, StatusCode: status, Err: err}
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("ai transport")
	if e.Provider != "" {
		b.WriteString(" (" + e.Provider + ")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": http status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether repeating the same request may succeed.
func (e *TransportError) Temporary() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, ErrTruncated) {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}

	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsTransport returns err unchanged when it already is a transport failure and
// wraps it otherwise.
func AsTransport(provider string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransport(err) {
		return err
	}
	return NewTransportError(provider, 0, err)
}

// CompleteWithTimeout bounds a single call with timeout. Expiry and any other
// failure surface as *TransportError.
func CompleteWithTimeout(ctx context.Context, c Completer, req Request, timeout time.Duration) (string, error) {
	if c == nil {
		return "", errors.New("ai completer is not configured")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := c.Complete(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !IsTransport(err) {
			return "", NewTransportError(c.Provider(), 0, fmt.Errorf("%w: %v", ctxErr, err))
		}
		return "", AsTransport(c.Provider(), err)
	}

	return text, nil
}

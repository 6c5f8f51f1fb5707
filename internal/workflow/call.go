package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/logger"
	"github.com/spigell/career-boost/internal/parsing"
	"github.com/spigell/career-boost/internal/session"
	"github.com/spigell/career-boost/internal/utils"
)

const outcomeOK = "ok"

// invoke is the suspension point of a trigger: it calls the AI client for site
// and parses the answer, retrying as the site's policy allows.
func invoke[T any](ctx context.Context, m *Machine, s session.Session, site parsing.Site, prompt string, parse func(string) (T, error)) (T, error) {
	var zero T
	policy := m.cfg.policy(site)
	timeout := m.cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	req := ai.Request{Prompt: prompt, MaxOutputTokens: policy.MaxOutputTokens}

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		log := m.logger.With(logger.CallFields(s.ID, string(site), attempt)...)
		log.Debug("ai call started",
			zap.String(logger.FieldProvider, m.client.Provider()),
			zap.String(logger.FieldModel, m.client.Model()),
			zap.Int("max_output_tokens", req.MaxOutputTokens),
		)

		started := time.Now()
		out, err := callOnce(ctx, m, req, timeout, parse)
		elapsed := time.Since(started)

		outcome := outcomeOK
		if err != nil {
			kind, _, _ := classify(err)
			outcome = string(kind)
		}
		m.recorder.ObserveCall(string(site), outcome, elapsed)

		if err == nil {
			log.Debug("ai call succeeded", zap.Duration("elapsed", elapsed))
			return out, nil
		}

		lastErr = err
		if attempt == policy.Attempts || !retryable(err, policy) {
			break
		}

		log.Info("ai call failed, retrying",
			zap.String("outcome", outcome),
			zap.Duration("retry_delay", policy.RetryDelay),
			zap.Error(err),
		)
		if err := utils.WaitFor(ctx, policy.RetryDelay); err != nil {
			break
		}
	}

	return zero, lastErr
}

func callOnce[T any](ctx context.Context, m *Machine, req ai.Request, timeout time.Duration, parse func(string) (T, error)) (T, error) {
	var zero T
	raw, err := ai.CompleteWithTimeout(ctx, m.client, req, timeout)
	if err != nil {
		return zero, err
	}
	return parse(raw)
}

func retryable(err error, policy CallPolicy) bool {
	var te *ai.TransportError
	if errors.As(err, &te) {
		return te.Temporary()
	}

	var (
		sv *parsing.SchemaViolationError
		mr *parsing.MalformedResponseError
	)
	if errors.As(err, &sv) || errors.As(err, &mr) {
		return policy.RetryInvalid
	}
	return false
}

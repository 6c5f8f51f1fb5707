// Package openai provides an ai.Completer backed by the OpenAI Responses API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/logger"
	"github.com/spigell/career-boost/internal/utils"
)

const (
	defaultModel        = "gpt-4.1"
	defaultMaxLogLength = 200

	statusIncomplete      = "incomplete"
	reasonMaxOutputTokens = "max_output_tokens"
)

type responseService interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
}

// Client sends single-turn prompts to the Responses API.
type Client struct {
	responses responseService
	model     string
	logger    *zap.Logger
	maxLogLen int
}

// NewClient creates an OpenAI client with SDK retries disabled.
func NewClient(apiKey, model string, maxLogLength int, log *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	client := oai.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return newClient(&client.Responses, model, maxLogLength, log), nil
}

func newClient(svc responseService, model string, maxLogLength int, log *zap.Logger) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Client{
		responses: svc,
		model:     model,
		logger:    logger.WithCommonFields(log, ai.ProviderOpenAI, model),
		maxLogLen: maxLogLength,
	}
}

// Complete implements ai.Completer.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{OfString: oai.String(prompt)},
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = oai.Int(int64(req.MaxOutputTokens))
	}

	c.logger.Debug("openai response request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.Int("max_output_tokens", req.MaxOutputTokens),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	resp, err := c.responses.New(ctx, params)
	if err != nil {
		return "", classifyError(err)
	}

	output := ""
	if resp != nil {
		if string(resp.Status) == statusIncomplete {
			reason := string(resp.IncompleteDetails.Reason)
			c.logger.Warn("openai response incomplete", zap.String("reason", reason))
			if reason != "" && reason != reasonMaxOutputTokens {
				return "", ai.NewTransportError(ai.ProviderOpenAI, 0, fmt.Errorf("response incomplete: %s", reason))
			}
			return "", ai.NewTruncatedError(ai.ProviderOpenAI, reasonMaxOutputTokens)
		}
		output = strings.TrimSpace(resp.OutputText())
	}
	if output == "" {
		return "", ai.NewTransportError(ai.ProviderOpenAI, 0, errors.New("openai api returned empty response"))
	}

	c.logger.Debug("openai response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, c.maxLogLen)),
	)

	return output, nil
}

func (c *Client) Provider() string { return ai.ProviderOpenAI }

func (c *Client) Model() string { return c.model }

func classifyError(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return ai.NewTransportError(ai.ProviderOpenAI, apiErr.StatusCode, fmt.Errorf("create response: %w", err))
	}
	return ai.NewTransportError(ai.ProviderOpenAI, 0, fmt.Errorf("create response: %w", err))
}

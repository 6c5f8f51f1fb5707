// Package anthropic provides an ai.Completer backed by Anthropic Claude.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/logger"
	"github.com/spigell/career-boost/internal/utils"
)

const (
	defaultModel        = "claude-sonnet-4-5"
	defaultMaxTokens    = 1024
	defaultMaxLogLength = 200
)

type messageService interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Client sends single-turn prompts to the Messages API.
type Client struct {
	messages  messageService
	model     string
	logger    *zap.Logger
	maxLogLen int
}

// NewClient creates a Claude client. Retries are disabled so that the caller owns the retry policy.
func NewClient(apiKey, model string, maxLogLength int, log *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	client := sdk.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return newClient(&client.Messages, model, maxLogLength, log), nil
}

func newClient(messages messageService, model string, maxLogLength int, log *zap.Logger) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Client{
		messages:  messages,
		model:     model,
		logger:    logger.WithCommonFields(log, ai.ProviderAnthropic, model),
		maxLogLen: maxLogLength,
	}
}

// Complete implements ai.Completer.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	maxTokens := int64(req.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}

	c.logger.Debug("anthropic message request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.Int64("max_tokens", maxTokens),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	resp, err := c.messages.New(ctx, params)
	if err != nil {
		return "", classifyError(err)
	}

	var builder strings.Builder
	if resp != nil {
		for i := range resp.Content {
			block := &resp.Content[i]
			if block.Type != "text" {
				continue
			}
			builder.WriteString(block.Text)
		}
	}

	if resp != nil && resp.StopReason == sdk.StopReasonMaxTokens {
		c.logger.Warn("anthropic message truncated", zap.Int64("max_tokens", maxTokens))
		return "", ai.NewTruncatedError(ai.ProviderAnthropic, string(resp.StopReason))
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ai.NewTransportError(ai.ProviderAnthropic, 0, errors.New("anthropic api returned empty response"))
	}

	c.logger.Debug("anthropic message response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("stop_reason", string(resp.StopReason)),
		zap.String("response_preview", utils.TruncateForLog(output, c.maxLogLen)),
	)

	return output, nil
}

func (c *Client) Provider() string { return ai.ProviderAnthropic }

func (c *Client) Model() string { return c.model }

func classifyError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return ai.NewTransportError(ai.ProviderAnthropic, apiErr.StatusCode, fmt.Errorf("create message: %w", err))
	}
	return ai.NewTransportError(ai.ProviderAnthropic, 0, fmt.Errorf("create message: %w", err))
}

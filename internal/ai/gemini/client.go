package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/logger"
	"github.com/spigell/career-boost/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel        = "gemini-2.5-pro"
	defaultMaxLogLength = 200

	// DefaultThinkingBudget is added on top of the requested output budget
	// because thinking tokens count against MaxOutputTokens.
	DefaultThinkingBudget = 1024
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models         contentModels
	modelName      string
	logger         *zap.Logger
	maxLogLen      int
	thinkingBudget int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
// A zero thinkingBudget leaves the model's thinking settings alone.
func NewGenerator(ctx context.Context, apiKey, model string, thinkingBudget, maxLogLength int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g := newGenerator(client.Models, model, maxLogLength, log)
	if thinkingBudget > 0 {
		g.thinkingBudget = thinkingBudget
	}
	return g, nil
}

func newGenerator(models contentModels, model string, maxLogLength int, log *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Generator{
		models:    models,
		modelName: model,
		logger:    logger.WithCommonFields(log, ai.ProviderGemini, model),
		maxLogLen: maxLogLength,
	}
}

// Complete sends the prompt to Gemini and returns the concatenated text of all candidates.
func (g *Generator) Complete(ctx context.Context, req ai.Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if g.thinkingBudget > 0 {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(g.thinkingBudget))}
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens + g.thinkingBudget)
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.Int("max_output_tokens", req.MaxOutputTokens),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", classifyError(err)
	}

	if reason, ok := truncated(resp); ok {
		g.logger.Warn("gemini generate content truncated", zap.Int32("max_output_tokens", config.MaxOutputTokens))
		return "", ai.NewTruncatedError(ai.ProviderGemini, reason)
	}

	output := collectText(resp)
	if output == "" {
		return "", ai.NewTransportError(ai.ProviderGemini, 0, errors.New("gemini api returned empty response"))
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func (g *Generator) Provider() string {
	return ai.ProviderGemini
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func truncated(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, candidate := range resp.Candidates {
		if candidate != nil && candidate.FinishReason == genai.FinishReasonMaxTokens {
			return string(candidate.FinishReason), true
		}
	}
	return "", false
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ai.NewTransportError(ai.ProviderGemini, apiErr.Code, fmt.Errorf("generate content: %w", err))
	}
	return ai.NewTransportError(ai.ProviderGemini, 0, fmt.Errorf("generate content: %w", err))
}

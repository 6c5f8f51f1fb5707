package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/ai/anthropic"
	"github.com/spigell/career-boost/internal/ai/gemini"
	"github.com/spigell/career-boost/internal/ai/openai"
	"github.com/spigell/career-boost/internal/secrets"
)

// newCompleter builds the client of the configured provider.
func newCompleter(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Completer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case ai.ProviderGemini, "":
		key, err := loadAPIKey(ai.ProviderGemini, cfg.Gemini, "GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		client, err := gemini.NewGenerator(ctx, key, cfg.Gemini.Model, cfg.Gemini.ThinkingBudget, cfg.MaxLogLength, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ai.ProviderAnthropic:
		key, err := loadAPIKey(ai.ProviderAnthropic, cfg.Anthropic, "ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		client, err := anthropic.NewClient(key, cfg.Anthropic.Model, cfg.MaxLogLength, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ai.ProviderOpenAI:
		key, err := loadAPIKey(ai.ProviderOpenAI, cfg.OpenAI, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		client, err := openai.NewClient(key, cfg.OpenAI.Model, cfg.MaxLogLength, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func loadAPIKey(provider string, cfg ProviderConfig, env string) (string, error) {
	key, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		File:  cfg.APIKeyFile,
		Env:   env,
		Value: cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set ai.%s.api-key-file, %s_FILE or %s)", err, provider, env, env)
	}
	return key, nil
}

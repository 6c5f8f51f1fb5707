package cmd

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/ai/gemini"
	"github.com/spigell/career-boost/internal/parsing"
	"github.com/spigell/career-boost/internal/prompts"
	"github.com/spigell/career-boost/internal/workflow"
)

type Config struct {
	AI       *AIConfig       `mapstructure:"ai" validate:"required"`
	Workflow *WorkflowConfig `mapstructure:"workflow" validate:"required"`
	Purchase *PurchaseConfig `mapstructure:"purchase"`
	Metrics  *MetricsConfig  `mapstructure:"metrics"`
}

type AIConfig struct {
	Provider     string         `mapstructure:"provider" validate:"oneof=gemini anthropic openai"`
	Timeout      time.Duration  `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength int            `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       ProviderConfig `mapstructure:"gemini"`
	Anthropic    ProviderConfig `mapstructure:"anthropic"`
	OpenAI       ProviderConfig `mapstructure:"openai"`
}

type ProviderConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	// APIKey is an inline key; prefer the file or the environment.
	APIKey string `mapstructure:"api-key"`
	Model  string `mapstructure:"model"`
	// ThinkingBudget reserves output tokens for model reasoning (gemini only).
	ThinkingBudget int `mapstructure:"thinking-budget" validate:"gte=0"`
}

type WorkflowConfig struct {
	MaxResumeTokens int                   `mapstructure:"max-resume-tokens" validate:"gte=0"`
	Calls           map[string]CallConfig `mapstructure:"calls" validate:"dive,keys,oneof=analysis optimization questions feedback,endkeys"`
}

type CallConfig struct {
	MaxOutputTokens int           `mapstructure:"max-output-tokens" validate:"gte=0"`
	Attempts        int           `mapstructure:"attempts" validate:"gte=0,lte=10"`
	RetryDelay      time.Duration `mapstructure:"retry-delay" validate:"gte=0"`
	RetryInvalid    bool          `mapstructure:"retry-invalid"`
}

type PurchaseConfig struct {
	AutoConfirm bool `mapstructure:"auto-confirm"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

func setDefaults() {
	viper.SetDefault("ai.provider", ai.ProviderGemini)
	viper.SetDefault("ai.timeout", workflow.DefaultTimeout)
	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("ai.gemini.thinking-budget", gemini.DefaultThinkingBudget)
	viper.SetDefault("workflow.max-resume-tokens", prompts.DefaultMaxResumeTokens)

	defaults := workflow.DefaultConfig()
	for site, policy := range defaults.Calls {
		prefix := "workflow.calls." + string(site) + "."
		viper.SetDefault(prefix+"max-output-tokens", policy.MaxOutputTokens)
		viper.SetDefault(prefix+"attempts", policy.Attempts)
		viper.SetDefault(prefix+"retry-delay", 2*time.Second)
		viper.SetDefault(prefix+"retry-invalid", false)
	}

	viper.SetDefault("purchase.auto-confirm", false)
	viper.SetDefault("metrics.listen", "")
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	if config == nil {
		return nil, fmt.Errorf("config is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}

	if config.Purchase == nil {
		config.Purchase = &PurchaseConfig{}
	}
	if config.Metrics == nil {
		config.Metrics = &MetricsConfig{}
	}

	return config, nil
}

func (c *Config) workflowConfig() workflow.Config {
	cfg := workflow.DefaultConfig()
	if c.AI != nil && c.AI.Timeout > 0 {
		cfg.Timeout = c.AI.Timeout
	}
	if c.Workflow == nil {
		return cfg
	}

	for name, call := range c.Workflow.Calls {
		site := parsing.Site(name)
		policy := cfg.Calls[site]
		if call.MaxOutputTokens > 0 {
			policy.MaxOutputTokens = call.MaxOutputTokens
		}
		if call.Attempts > 0 {
			policy.Attempts = call.Attempts
		}
		policy.RetryDelay = call.RetryDelay
		policy.RetryInvalid = call.RetryInvalid
		cfg.Calls[site] = policy
	}

	return cfg
}

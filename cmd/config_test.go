package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/career-boost/internal/parsing"
)

func loadTestConfig(t *testing.T, yaml string) (*Config, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("read config: %v", err)
	}

	return getConfig()
}

func TestGetConfigDefaults(t *testing.T) {
	config, err := loadTestConfig(t, "ai:\n  gemini:\n    api-key-file: /run/secrets/gemini\n")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if config.AI.Provider != "gemini" {
		t.Fatalf("unexpected provider %q", config.AI.Provider)
	}
	if config.AI.Timeout != time.Minute {
		t.Fatalf("unexpected timeout %s", config.AI.Timeout)
	}
	if config.AI.Gemini.APIKeyFile != "/run/secrets/gemini" {
		t.Fatalf("unexpected key file %q", config.AI.Gemini.APIKeyFile)
	}
	if config.AI.Gemini.ThinkingBudget != 1024 {
		t.Fatalf("unexpected gemini thinking budget %d", config.AI.Gemini.ThinkingBudget)
	}
	if config.Workflow.MaxResumeTokens != 6000 {
		t.Fatalf("unexpected resume token budget %d", config.Workflow.MaxResumeTokens)
	}
	if config.Purchase.AutoConfirm {
		t.Fatal("purchases must not be confirmed automatically by default")
	}

	wf := config.workflowConfig()
	want := map[parsing.Site]int{
		parsing.SiteAnalysis:     1000,
		parsing.SiteOptimization: 4000,
		parsing.SiteQuestions:    1000,
		parsing.SiteFeedback:     2000,
	}
	for site, tokens := range want {
		if got := wf.Calls[site]; got.MaxOutputTokens != tokens || got.Attempts != 1 {
			t.Fatalf("unexpected policy for %s: %+v", site, got)
		}
	}
}

func TestGetConfigOverrides(t *testing.T) {
	config, err := loadTestConfig(t, `
ai:
  provider: anthropic
  timeout: 15s
workflow:
  calls:
    questions:
      attempts: 3
      retry-delay: 500ms
      retry-invalid: true
metrics:
  listen: ":9090"
`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wf := config.workflowConfig()
	if wf.Timeout != 15*time.Second {
		t.Fatalf("unexpected timeout %s", wf.Timeout)
	}
	q := wf.Calls[parsing.SiteQuestions]
	if q.Attempts != 3 || q.RetryDelay != 500*time.Millisecond || !q.RetryInvalid || q.MaxOutputTokens != 1000 {
		t.Fatalf("unexpected questions policy %+v", q)
	}
	if config.Metrics.Listen != ":9090" {
		t.Fatalf("unexpected metrics address %q", config.Metrics.Listen)
	}
}

func TestGetConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown provider", yaml: "ai:\n  provider: llama\n"},
		{name: "unknown call site", yaml: "workflow:\n  calls:\n    summary:\n      attempts: 1\n"},
		{name: "negative attempts", yaml: "workflow:\n  calls:\n    analysis:\n      attempts: -1\n"},
		{name: "bad metrics address", yaml: "metrics:\n  listen: nowhere\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadTestConfig(t, tt.yaml); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

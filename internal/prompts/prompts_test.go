package prompts

import (
	"strings"
	"testing"

	"github.com/spigell/career-boost/internal/session"
)

func newTestBuilder(t *testing.T, maxTokens int) *Builder {
	t.Helper()
	b, err := NewBuilder(maxTokens)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return b
}

func TestAnalysisEmbedsResume(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, 0)
	out := b.Analysis("  Experienced engineer with 10 years in Go.  ")

	if !strings.Contains(out, "Experienced engineer with 10 years in Go.") {
		t.Fatalf("resume text missing from prompt:\n%s", out)
	}
	if strings.Contains(out, "{{") {
		t.Fatalf("unrendered placeholder left in prompt:\n%s", out)
	}
	if !strings.Contains(out, `"atsScore"`) {
		t.Fatal("analysis prompt must describe the response shape")
	}
}

func TestOptimizationReferencesAnalysis(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, 0)
	analysis := session.ResumeAnalysis{
		ATSScore:        62,
		KeyIssues:       []string{"no measurable impact", "generic summary", "missing links"},
		MissingKeywords: []string{"kubernetes", "terraform", "grpc", "observability", "ci/cd"},
	}

	out := b.Optimization("Experienced engineer...", analysis)

	for _, want := range append(analysis.MissingKeywords, analysis.KeyIssues...) {
		if !strings.Contains(out, "- "+want) {
			t.Fatalf("expected %q in prompt:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Experienced engineer...") {
		t.Fatal("resume text missing from optimization prompt")
	}
}

func TestQuestionsAndFeedbackRenderContext(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, 0)
	ic := session.InterviewContext{JobTitle: "Backend Engineer", Company: "Acme", Industry: "Fintech"}

	q := b.Questions(ic)
	for _, want := range []string{"Role: Backend Engineer", "Company: Acme", "Industry: Fintech", "exactly 8"} {
		if !strings.Contains(q, want) {
			t.Fatalf("expected %q in questions prompt:\n%s", want, q)
		}
	}

	answers := []session.AnsweredQuestion{
		{Question: "Tell me about an outage.", Answer: "We rolled back within minutes."},
		{Question: "Why Acme?", Answer: "Payments at scale."},
	}
	f := b.Feedback(ic, answers)
	for _, want := range []string{
		"Question 1: Tell me about an outage.",
		"Answer 2: Payments at scale.",
		"exactly 2 entries",
	} {
		if !strings.Contains(f, want) {
			t.Fatalf("expected %q in feedback prompt:\n%s", want, f)
		}
	}
}

func TestResumeTrimmedToTokenBudget(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, 5)
	long := strings.Repeat("distributed systems engineer ", 200)

	trimmed := b.trimResume(long)
	if len(trimmed) >= len(strings.TrimSpace(long)) {
		t.Fatalf("expected resume to be trimmed, got %d chars", len(trimmed))
	}
	n, err := b.codec.Count(trimmed)
	if err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if n > 5 {
		t.Fatalf("expected at most 5 tokens, got %d", n)
	}

	short := "Go developer"
	if got := b.trimResume(short); got != short {
		t.Fatalf("short resume must be kept, got %q", got)
	}
}

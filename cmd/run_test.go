package cmd

import (
	"slices"
	"testing"

	"github.com/spigell/career-boost/internal/session"
)

func TestStageActionsOfferRestartAndQuit(t *testing.T) {
	unpaid := session.Session{Product: session.ProductInterview}
	paid := session.Session{Product: session.ProductInterview, Purchased: map[session.Product]bool{session.ProductInterview: true}}
	results := session.Session{Product: session.ProductResume}

	tests := []struct {
		name  string
		items []string
		first string
	}{
		{name: "results", items: resultsActions(results), first: "Unlock the optimized resume ($20)"},
		{name: "setup unpaid", items: setupActions(unpaid), first: "Enter the job details ($20)"},
		{name: "setup paid", items: setupActions(paid), first: PromptSetup},
		{name: "session", items: sessionActions(), first: PromptAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.items[0] != tt.first {
				t.Fatalf("expected %q first, got %v", tt.first, tt.items)
			}
			for _, want := range []string{PromptRestart, PromptQuit} {
				if !slices.Contains(tt.items, want) {
					t.Fatalf("expected %q in %v", want, tt.items)
				}
			}
		})
	}
}

func TestResultsActionsAfterOptimization(t *testing.T) {
	s := session.Session{
		Product:         session.ProductBundle,
		Purchased:       map[session.Product]bool{session.ProductBundle: true},
		OptimizedResume: "JANE DOE",
		InterviewQueued: true,
	}

	items := resultsActions(s)
	if slices.Contains(items, PromptUnlock) || slices.Contains(items, priced(PromptUnlock, s)) {
		t.Fatalf("unlock must not be offered twice: %v", items)
	}
	if items[0] != PromptContinue {
		t.Fatalf("expected continue first, got %v", items)
	}
}

package workflow

import (
	"context"
	"time"

	"github.com/spigell/career-boost/internal/session"
)

// PurchaseConfirmer reports whether the user paid for a product. The answer is trusted.
type PurchaseConfirmer interface {
	Confirm(ctx context.Context, product session.Product) (bool, error)
}

// PromptBuilder renders the prompt of each call site.
type PromptBuilder interface {
	Analysis(resumeText string) string
	Optimization(resumeText string, analysis session.ResumeAnalysis) string
	Questions(ic session.InterviewContext) string
	Feedback(ic session.InterviewContext, answers []session.AnsweredQuestion) string
}

// Recorder observes AI calls and stage transitions.
type Recorder interface {
	ObserveCall(site, outcome string, elapsed time.Duration)
	ObserveTransition(from, to string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCall(string, string, time.Duration) {}
func (nopRecorder) ObserveTransition(string, string)          {}

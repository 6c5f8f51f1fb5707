package session

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the exported view of a session.
type Report struct {
	SessionID       string             `yaml:"sessionId"`
	GeneratedAt     time.Time          `yaml:"generatedAt"`
	Product         string             `yaml:"product,omitempty"`
	Analysis        *ResumeAnalysis    `yaml:"analysis,omitempty"`
	OptimizedResume string             `yaml:"optimizedResume,omitempty"`
	Interview       *InterviewContext  `yaml:"interview,omitempty"`
	Questions       []Question         `yaml:"questions,omitempty"`
	Answers         []AnsweredQuestion `yaml:"answers,omitempty"`
	Feedback        *InterviewFeedback `yaml:"feedback,omitempty"`
}

// NewReport builds a report from a session snapshot.
func NewReport(s Session, now time.Time) Report {
	r := Report{
		SessionID:       s.ID,
		GeneratedAt:     now.UTC(),
		Analysis:        s.Analysis,
		OptimizedResume: s.OptimizedResume,
		Interview:       s.Interview,
		Questions:       s.Questions,
		Answers:         s.Answers,
		Feedback:        s.Feedback,
	}
	if s.Product != ProductNone {
		r.Product = s.Product.String()
	}
	return r
}

// DumpReport writes the session report as YAML into a new file under dir
// (os.TempDir when empty) and returns the file name.
func DumpReport(s Session, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "career-boost-report-*.yaml")
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(NewReport(s, time.Now())); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}

	return f.Name(), nil
}

package session

import "time"

// ResumeAnalysis is the validated compatibility assessment of an uploaded resume.
type ResumeAnalysis struct {
	ATSScore         int      `json:"atsScore" yaml:"atsScore" mapstructure:"atsScore"`
	KeyIssues        []string `json:"keyIssues" yaml:"keyIssues" mapstructure:"keyIssues"`
	Strengths        []string `json:"strengths" yaml:"strengths" mapstructure:"strengths"`
	MissingKeywords  []string `json:"missingKeywords" yaml:"missingKeywords" mapstructure:"missingKeywords"`
	ImprovementAreas []string `json:"improvementAreas" yaml:"improvementAreas" mapstructure:"improvementAreas"`
}

// InterviewContext is the user supplied target of a mock interview.
type InterviewContext struct {
	JobTitle string `json:"jobTitle" yaml:"jobTitle" validate:"required"`
	Company  string `json:"company" yaml:"company" validate:"required"`
	Industry string `json:"industry" yaml:"industry" validate:"required"`
}

// Category classifies an interview question.
type Category string

const (
	CategoryBehavioral  Category = "behavioral"
	CategoryTechnical   Category = "technical"
	CategorySituational Category = "situational"
	CategoryCultureFit  Category = "culture-fit"
)

// Categories lists every question category in canonical order.
func Categories() []Category {
	return []Category{CategoryBehavioral, CategoryTechnical, CategorySituational, CategoryCultureFit}
}

type Question struct {
	Text     string   `json:"question" yaml:"question" mapstructure:"question"`
	Category Category `json:"category" yaml:"category" mapstructure:"category"`
}

type AnsweredQuestion struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

type AnswerFeedback struct {
	Score        int    `json:"score" yaml:"score" mapstructure:"score"`
	Feedback     string `json:"feedback" yaml:"feedback" mapstructure:"feedback"`
	BetterAnswer string `json:"betterAnswer" yaml:"betterAnswer" mapstructure:"betterAnswer"`
}

// InterviewFeedback scores a finished interview. AnswerFeedback is parallel to the answers.
type InterviewFeedback struct {
	OverallScore   int              `json:"overallScore" yaml:"overallScore" mapstructure:"overallScore"`
	Strengths      []string         `json:"strengths" yaml:"strengths" mapstructure:"strengths"`
	Improvements   []string         `json:"improvements" yaml:"improvements" mapstructure:"improvements"`
	AnswerFeedback []AnswerFeedback `json:"answerFeedback" yaml:"answerFeedback" mapstructure:"answerFeedback"`
}

// FailureKind classifies a reported error.
type FailureKind string

const (
	FailureTransport         FailureKind = "transport"
	FailureMalformedResponse FailureKind = "malformed_response"
	FailureSchemaViolation   FailureKind = "schema_violation"
	FailureEmptyAnswer       FailureKind = "empty_answer"
	FailurePurchaseDeclined  FailureKind = "purchase_declined"
	FailureInvalidInput      FailureKind = "invalid_input"
	FailureInternal          FailureKind = "internal"
)

// Failure is the last error reported to the user. The stage it was raised in is left unchanged.
type Failure struct {
	Kind    FailureKind `json:"kind" yaml:"kind"`
	Stage   Stage       `json:"stage" yaml:"stage"`
	Field   string      `json:"field,omitempty" yaml:"field,omitempty"`
	Message string      `json:"message" yaml:"message"`
	At      time.Time   `json:"at" yaml:"at"`
}

// Session is the aggregate root of one user interaction.
type Session struct {
	ID      string
	Stage   Stage
	Product Product
	// Purchased holds products whose payment was confirmed in this session.
	Purchased map[Product]bool

	ResumeText      string
	Analysis        *ResumeAnalysis
	OptimizedResume string
	// InterviewQueued is set after a bundle optimization; the interview setup may follow.
	InterviewQueued bool

	Interview *InterviewContext
	Questions []Question
	Answers   []AnsweredQuestion
	Feedback  *InterviewFeedback

	Err *Failure
}

// HasPurchased reports whether the payment for p was confirmed.
func (s Session) HasPurchased(p Product) bool {
	return s.Purchased[p]
}

func (s Session) clone() Session {
	out := s

	if s.Purchased != nil {
		out.Purchased = make(map[Product]bool, len(s.Purchased))
		for k, v := range s.Purchased {
			out.Purchased[k] = v
		}
	}
	if s.Analysis != nil {
		a := *s.Analysis
		a.KeyIssues = append([]string(nil), a.KeyIssues...)
		a.Strengths = append([]string(nil), a.Strengths...)
		a.MissingKeywords = append([]string(nil), a.MissingKeywords...)
		a.ImprovementAreas = append([]string(nil), a.ImprovementAreas...)
		out.Analysis = &a
	}
	if s.Interview != nil {
		ic := *s.Interview
		out.Interview = &ic
	}
	out.Questions = append([]Question(nil), s.Questions...)
	out.Answers = append([]AnsweredQuestion(nil), s.Answers...)
	if s.Feedback != nil {
		f := *s.Feedback
		f.Strengths = append([]string(nil), f.Strengths...)
		f.Improvements = append([]string(nil), f.Improvements...)
		f.AnswerFeedback = append([]AnswerFeedback(nil), f.AnswerFeedback...)
		out.Feedback = &f
	}
	if s.Err != nil {
		e := *s.Err
		out.Err = &e
	}

	return out
}

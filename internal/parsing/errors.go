package parsing

import (
	"fmt"
	"strings"
)

// Site names the workflow step whose response is being parsed.
type Site string

const (
	SiteAnalysis     Site = "analysis"
	SiteOptimization Site = "optimization"
	SiteQuestions    Site = "questions"
	SiteFeedback     Site = "feedback"
)

// MalformedResponseError is returned when a response cannot be parsed as JSON.
type MalformedResponseError struct {
	Site Site
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Site, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaViolationError is returned when a response parses but does not match the
// expected shape. Field names the first offending field as a dotted path.
type SchemaViolationError struct {
	Site   Site
	Field  string
	Reason string
	// All holds every violation found, Field/Reason being the first of them.
	All []FieldError
}

func (e *SchemaViolationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s response violates schema: %s: %s", e.Site, e.Field, e.Reason)
	if extra := len(e.All) - 1; extra > 0 {
		fmt.Fprintf(&b, " (and %d more)", extra)
	}
	return b.String()
}

func violation(site Site, field, format string, args ...any) *SchemaViolationError {
	reason := fmt.Sprintf(format, args...)
	return &SchemaViolationError{
		Site:   site,
		Field:  field,
		Reason: reason,
		All:    []FieldError{{Field: field, Message: reason}},
	}
}

// Package parsing turns raw model output into validated domain values.
//
// Every response goes through the same steps: code fences are stripped, the
// remainder is parsed as JSON, validated against the call site's JSON schema,
// decoded into the domain type and finally checked for invariants the schema
// cannot express. Nothing is corrected or padded.
package parsing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/career-boost/internal/session"
)

const perCategory = 2

// StripFences removes markdown code fences the model may have wrapped the payload in.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "```")
	if start == -1 {
		return raw
	}

	body := raw[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		if isFenceTag(body[:nl]) {
			body = body[nl+1:]
		}
	} else {
		body = strings.TrimLeft(body, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}

	if end := strings.LastIndex(body, "```"); end != -1 {
		body = body[:end]
	}

	return strings.TrimSpace(body)
}

func isFenceTag(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	for _, r := range line {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '+') {
			return false
		}
	}
	return true
}

func decode(site Site, raw string, out any) error {
	cleaned := StripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return &MalformedResponseError{Site: site, Err: err}
	}

	if err := validateSchema(site, doc); err != nil {
		return err
	}

	if err := mapstructure.Decode(doc, out); err != nil {
		return violation(site, rootField, "decode: %v", err)
	}

	return nil
}

// ParseAnalysis parses a resume analysis response.
func ParseAnalysis(raw string) (session.ResumeAnalysis, error) {
	var out session.ResumeAnalysis
	if err := decode(SiteAnalysis, raw, &out); err != nil {
		return session.ResumeAnalysis{}, err
	}
	return out, nil
}

// ParseOptimizedResume extracts the rewritten resume text. The text is kept as
// returned apart from fence removal.
func ParseOptimizedResume(raw string) (string, error) {
	text := StripFences(raw)
	if text == "" {
		return "", violation(SiteOptimization, "optimizedResume", "response is empty")
	}
	return text, nil
}

type questionSet struct {
	Questions []session.Question `mapstructure:"questions"`
}

// ParseQuestions parses a question set. Exactly two questions of each category
// are required; their order is preserved.
func ParseQuestions(raw string) ([]session.Question, error) {
	var out questionSet
	if err := decode(SiteQuestions, raw, &out); err != nil {
		return nil, err
	}

	counts := make(map[session.Category]int, len(session.Categories()))
	for _, q := range out.Questions {
		counts[q.Category]++
	}
	for _, cat := range session.Categories() {
		if counts[cat] != perCategory {
			return nil, violation(SiteQuestions, "questions",
				"category %q appears %d times, want %d", cat, counts[cat], perCategory)
		}
	}

	return out.Questions, nil
}

// ParseFeedback parses interview feedback for the given number of answers.
func ParseFeedback(raw string, answered int) (session.InterviewFeedback, error) {
	var out session.InterviewFeedback
	if err := decode(SiteFeedback, raw, &out); err != nil {
		return session.InterviewFeedback{}, err
	}

	if got := len(out.AnswerFeedback); got != answered {
		return session.InterviewFeedback{}, violation(SiteFeedback, "answerFeedback",
			"got %d entries for %d answers", got, answered)
	}

	return out, nil
}

// Describe renders err for the user, naming the offending field when known.
func Describe(err error) string {
	var sv *SchemaViolationError
	if errors.As(err, &sv) {
		return fmt.Sprintf("the %s response was incomplete (%s: %s)", sv.Site, sv.Field, sv.Reason)
	}
	var mr *MalformedResponseError
	if errors.As(err, &mr) {
		return fmt.Sprintf("the %s response could not be read as JSON", mr.Site)
	}
	return err.Error()
}

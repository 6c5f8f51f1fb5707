// Package interview tracks progress through a mock interview.
package interview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/career-boost/internal/session"
)

// QuestionCount is the fixed size of an interview question set.
const QuestionCount = 8

// EmptyAnswerError is returned when a submitted answer is blank.
type EmptyAnswerError struct {
	Index int
}

func (e *EmptyAnswerError) Error() string {
	return fmt.Sprintf("answer to question %d is empty", e.Index+1)
}

var (
	ErrNotLoaded = errors.New("interview questions are not loaded")
	ErrComplete  = errors.New("all questions are already answered")
)

// Step describes the cursor after a submission.
type Step struct {
	// Index of the question that was just answered.
	Index int
	// Last is set when the answer completed the set and feedback is due.
	Last bool
}

// Cursor walks an ordered question list and accumulates answers.
// It is not safe for concurrent use; the workflow serialises access.
type Cursor struct {
	questions []session.Question
	answers   []session.AnsweredQuestion
}

func NewCursor() *Cursor {
	return &Cursor{}
}

// Load replaces the question set and rewinds the cursor.
func (c *Cursor) Load(questions []session.Question) error {
	if len(questions) != QuestionCount {
		return fmt.Errorf("expected %d questions, got %d", QuestionCount, len(questions))
	}
	c.questions = append([]session.Question(nil), questions...)
	c.answers = nil
	return nil
}

// Reset rewinds to the first question and drops all answers and questions.
func (c *Cursor) Reset() {
	c.questions = nil
	c.answers = nil
}

// Index is the position of the question awaiting an answer, in [0, QuestionCount).
// Once every question is answered it stays on the last one.
func (c *Cursor) Index() int {
	if n := len(c.answers); n < QuestionCount {
		return n
	}
	return QuestionCount - 1
}

// Answered is the number of accumulated answers.
func (c *Cursor) Answered() int {
	return len(c.answers)
}

// Complete reports whether every question has an answer.
func (c *Cursor) Complete() bool {
	return len(c.questions) > 0 && len(c.answers) == len(c.questions)
}

// Current returns the question awaiting an answer.
func (c *Cursor) Current() (session.Question, bool) {
	if len(c.questions) == 0 || c.Complete() {
		return session.Question{}, false
	}
	return c.questions[len(c.answers)], true
}

// Submit records an answer to the current question. Blank answers are rejected
// with *EmptyAnswerError and leave the cursor unchanged.
func (c *Cursor) Submit(text string) (Step, error) {
	if len(c.questions) == 0 {
		return Step{}, ErrNotLoaded
	}
	if c.Complete() {
		return Step{}, ErrComplete
	}

	idx := len(c.answers)
	answer := strings.TrimSpace(text)
	if answer == "" {
		return Step{}, &EmptyAnswerError{Index: idx}
	}

	c.answers = append(c.answers, session.AnsweredQuestion{
		Question: c.questions[idx].Text,
		Answer:   answer,
	})

	return Step{Index: idx, Last: idx == len(c.questions)-1}, nil
}

// Retract drops the most recent answer so that it can be submitted again.
func (c *Cursor) Retract() {
	if len(c.answers) > 0 {
		c.answers = c.answers[:len(c.answers)-1]
	}
}

// Answers returns a copy of the accumulated answers in submission order.
func (c *Cursor) Answers() []session.AnsweredQuestion {
	return append([]session.AnsweredQuestion{}, c.answers...)
}

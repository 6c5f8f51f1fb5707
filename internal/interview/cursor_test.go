package interview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spigell/career-boost/internal/session"
)

func questionSet() []session.Question {
	out := make([]session.Question, 0, QuestionCount)
	for i, cat := range session.Categories() {
		out = append(out,
			session.Question{Text: fmt.Sprintf("%s question %d", cat, 2*i+1), Category: cat},
			session.Question{Text: fmt.Sprintf("%s question %d", cat, 2*i+2), Category: cat},
		)
	}
	return out
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewCursor()
	if err := c.Load(questionSet()); err != nil {
		t.Fatalf("load: %v", err)
	}

	for i := 0; i < QuestionCount; i++ {
		if c.Index() != i {
			t.Fatalf("expected index %d, got %d", i, c.Index())
		}
		step, err := c.Submit(fmt.Sprintf("answer %d", i))
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if step.Index != i {
			t.Fatalf("expected step index %d, got %d", i, step.Index)
		}
		if step.Last != (i == QuestionCount-1) {
			t.Fatalf("unexpected last flag at %d", i)
		}
	}

	answers := c.Answers()
	if len(answers) != QuestionCount {
		t.Fatalf("expected %d answers, got %d", QuestionCount, len(answers))
	}
	for i, a := range answers {
		if a.Answer != fmt.Sprintf("answer %d", i) {
			t.Fatalf("answers out of order at %d: %q", i, a.Answer)
		}
		if a.Question != questionSet()[i].Text {
			t.Fatalf("question mismatch at %d: %q", i, a.Question)
		}
	}

	if !c.Complete() || c.Index() != QuestionCount-1 {
		t.Fatalf("expected complete cursor parked on last question, index %d", c.Index())
	}
	if _, err := c.Submit("extra"); !errors.Is(err, ErrComplete) {
		t.Fatalf("expected ErrComplete, got %v", err)
	}
}

func TestCursorRejectsBlankAnswers(t *testing.T) {
	t.Parallel()

	c := NewCursor()
	if err := c.Load(questionSet()); err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := c.Submit(input)
		var empty *EmptyAnswerError
		if !errors.As(err, &empty) {
			t.Fatalf("expected EmptyAnswerError for %q, got %v", input, err)
		}
	}
	if c.Answered() != 0 || c.Index() != 0 {
		t.Fatalf("blank answers must not move the cursor, answered %d", c.Answered())
	}

	if _, err := c.Submit("  trimmed  "); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := c.Answers()[0].Answer; got != "trimmed" {
		t.Fatalf("expected trimmed answer, got %q", got)
	}
}

func TestCursorResetIsIdempotent(t *testing.T) {
	t.Parallel()

	c := NewCursor()
	c.Reset()
	if c.Index() != 0 || len(c.Answers()) != 0 {
		t.Fatal("fresh reset must be empty")
	}

	if err := c.Load(questionSet()); err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := c.Submit("a"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		c.Reset()
		if c.Index() != 0 || len(c.Answers()) != 0 {
			t.Fatalf("reset %d: index %d answers %d", i, c.Index(), len(c.Answers()))
		}
	}
	if _, ok := c.Current(); ok {
		t.Fatal("no current question after reset")
	}
}

func TestCursorRetract(t *testing.T) {
	t.Parallel()

	c := NewCursor()
	if err := c.Load(questionSet()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := c.Submit("first"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c.Retract()
	if c.Answered() != 0 {
		t.Fatalf("expected retracted answer, got %d", c.Answered())
	}
	c.Retract()

	q, ok := c.Current()
	if !ok || q.Text != questionSet()[0].Text {
		t.Fatalf("unexpected current question %+v", q)
	}
}

func TestCursorLoadValidatesSize(t *testing.T) {
	t.Parallel()

	c := NewCursor()
	if err := c.Load(questionSet()[:7]); err == nil {
		t.Fatal("expected error for 7 questions")
	}
	if _, err := c.Submit("a"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

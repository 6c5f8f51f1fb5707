package workflow

import (
	"errors"
	"fmt"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/interview"
	"github.com/spigell/career-boost/internal/parsing"
	"github.com/spigell/career-boost/internal/session"
)

var (
	// ErrBusy rejects a trigger while an AI call is pending.
	ErrBusy = errors.New("workflow is busy: a request is already in progress")
	// ErrPurchaseDeclined is reported when the purchase was not confirmed.
	ErrPurchaseDeclined = errors.New("purchase was not confirmed")
)

// TransitionError is returned for an action that is not allowed in the current stage.
// It is not reported on the session: nothing was attempted.
type TransitionError struct {
	From   session.Stage
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s in stage %s", e.Action, e.From)
}

// InvalidInputError is returned when user input fails validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// classify maps err to the failure recorded on the session.
func classify(err error) (session.FailureKind, string, string) {
	var (
		sv      *parsing.SchemaViolationError
		mr      *parsing.MalformedResponseError
		te      *ai.TransportError
		empty   *interview.EmptyAnswerError
		invalid *InvalidInputError
	)

	switch {
	case errors.As(err, &sv):
		return session.FailureSchemaViolation, sv.Field, parsing.Describe(err)
	case errors.As(err, &mr):
		return session.FailureMalformedResponse, "", parsing.Describe(err)
	case errors.Is(err, ai.ErrTruncated):
		return session.FailureTransport, "", "the AI response was cut off at the output token limit; raise max-output-tokens for this step"
	case errors.As(err, &te):
		return session.FailureTransport, "", "the AI service could not be reached: " + te.Error()
	case errors.As(err, &empty):
		return session.FailureEmptyAnswer, "answer", "please type an answer before continuing"
	case errors.Is(err, ErrPurchaseDeclined):
		return session.FailurePurchaseDeclined, "", "the purchase was not confirmed"
	case errors.As(err, &invalid):
		return session.FailureInvalidInput, invalid.Field, invalid.Error()
	default:
		return session.FailureInternal, "", err.Error()
	}
}

// Package workflow drives a session through its stages and sequences the AI calls
// each stage needs.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/ai"
	"github.com/spigell/career-boost/internal/interview"
	"github.com/spigell/career-boost/internal/logger"
	"github.com/spigell/career-boost/internal/parsing"
	"github.com/spigell/career-boost/internal/session"
	"github.com/spigell/career-boost/internal/utils"
)

type Deps struct {
	Client    ai.Completer
	Prompts   PromptBuilder
	Purchases PurchaseConfirmer
	// Store defaults to a fresh session.
	Store    *session.Store
	Recorder Recorder
	Logger   *zap.Logger
}

// Machine is the workflow state machine. Every trigger holds the busy flag for
// its whole duration, so a trigger arriving while an AI call is pending is
// rejected with ErrBusy instead of starting a second call.
type Machine struct {
	cfg       Config
	client    ai.Completer
	prompts   PromptBuilder
	purchases PurchaseConfirmer
	store     *session.Store
	cursor    *interview.Cursor
	recorder  Recorder
	logger    *zap.Logger
	validate  *validator.Validate
	now       func() time.Time

	mu   sync.Mutex
	busy bool
}

func New(cfg Config, deps Deps) (*Machine, error) {
	if deps.Client == nil {
		return nil, errors.New("ai client is required")
	}
	if deps.Prompts == nil {
		return nil, errors.New("prompt builder is required")
	}
	if deps.Purchases == nil {
		return nil, errors.New("purchase confirmer is required")
	}

	if deps.Store == nil {
		deps.Store = session.NewStore()
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Machine{
		cfg:       cfg,
		client:    deps.Client,
		prompts:   deps.Prompts,
		purchases: deps.Purchases,
		store:     deps.Store,
		cursor:    interview.NewCursor(),
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		validate:  validate,
		now:       time.Now,
	}, nil
}

// Snapshot returns a copy of the current session.
func (m *Machine) Snapshot() session.Session {
	return m.store.Get()
}

// Busy reports whether a trigger is in progress.
func (m *Machine) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// CurrentQuestion returns the question awaiting an answer during an interview.
func (m *Machine) CurrentQuestion() (int, session.Question, bool) {
	if err := m.acquire(); err != nil {
		return 0, session.Question{}, false
	}
	defer m.release()

	q, ok := m.cursor.Current()
	return m.cursor.Index(), q, ok
}

// Start leaves the landing stage.
func (m *Machine) Start() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageLanding {
		return &TransitionError{From: s.Stage, Action: "start"}
	}

	m.moveTo(s, session.StageProductSelect)
	return nil
}

// SelectProduct picks the product and moves to the first stage it unlocks.
func (m *Machine) SelectProduct(p session.Product) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageProductSelect {
		return &TransitionError{From: s.Stage, Action: "select a product"}
	}

	var next session.Stage
	switch {
	case p.IncludesResume():
		next = session.StageResumeUpload
	case p == session.ProductInterview:
		next = session.StageInterviewSetup
	default:
		return m.fail(s, &InvalidInputError{Field: "product", Reason: fmt.Sprintf("unknown product %q", p)})
	}

	m.store.Set(session.Patch{Product: &p})
	m.moveTo(s, next)
	return nil
}

// SubmitResume stores the extracted resume text and requests its analysis.
// ResumeAnalyzing has no trigger of its own, so on failure the session returns
// to ResumeUpload and the reported Failure.Stage is ResumeUpload.
func (m *Machine) SubmitResume(ctx context.Context, text string) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageResumeUpload {
		return &TransitionError{From: s.Stage, Action: "submit a resume"}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return m.fail(s, &InvalidInputError{Field: "resumeText", Reason: "no text could be extracted from the document"})
	}

	m.store.ResetUpload()
	m.store.Set(session.Patch{ResumeText: &text})
	s = m.moveTo(s, session.StageResumeAnalyzing)

	analysis, err := invoke(ctx, m, s, parsing.SiteAnalysis, m.prompts.Analysis(text), parsing.ParseAnalysis)
	if err != nil {
		s = m.moveTo(s, session.StageResumeUpload)
		return m.fail(s, err)
	}

	m.store.Set(session.Patch{Analysis: &analysis})
	m.moveTo(s, session.StageResumeResults)
	return nil
}

// UnlockOptimization confirms the purchase, if not already made, and requests
// the optimized resume. The stage stays ResumeResults.
func (m *Machine) UnlockOptimization(ctx context.Context) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageResumeResults || s.Analysis == nil || !s.Product.IncludesResume() {
		return &TransitionError{From: s.Stage, Action: "unlock the optimized resume"}
	}
	if s.OptimizedResume != "" {
		return nil
	}

	if err := m.ensurePurchased(ctx, s); err != nil {
		return m.fail(s, err)
	}

	prompt := m.prompts.Optimization(s.ResumeText, *s.Analysis)
	text, err := invoke(ctx, m, s, parsing.SiteOptimization, prompt, parsing.ParseOptimizedResume)
	if err != nil {
		return m.fail(s, err)
	}

	patch := session.Patch{OptimizedResume: &text}
	if s.Product == session.ProductBundle {
		patch.InterviewQueued = session.Ptr(true)
	}
	m.store.Set(patch)
	m.store.Report(nil)
	return nil
}

// ContinueToInterview follows a bundle purchase from the resume results to the
// interview setup once the optimized resume is ready.
func (m *Machine) ContinueToInterview() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageResumeResults || !s.InterviewQueued {
		return &TransitionError{From: s.Stage, Action: "continue to the interview"}
	}

	m.store.Set(session.Patch{InterviewQueued: session.Ptr(false)})
	m.moveTo(s, session.StageInterviewSetup)
	return nil
}

// StartInterview validates the interview context, confirms the purchase and
// generates the question set.
func (m *Machine) StartInterview(ctx context.Context, ic session.InterviewContext) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageInterviewSetup || !s.Product.IncludesInterview() {
		return &TransitionError{From: s.Stage, Action: "start the interview"}
	}

	ic = session.InterviewContext{
		JobTitle: utils.CollapseWhitespace(ic.JobTitle),
		Company:  utils.CollapseWhitespace(ic.Company),
		Industry: utils.CollapseWhitespace(ic.Industry),
	}
	if err := m.validateContext(ic); err != nil {
		return m.fail(s, err)
	}

	if err := m.ensurePurchased(ctx, s); err != nil {
		return m.fail(s, err)
	}

	questions, err := invoke(ctx, m, s, parsing.SiteQuestions, m.prompts.Questions(ic), parsing.ParseQuestions)
	if err != nil {
		return m.fail(s, err)
	}
	if err := m.cursor.Load(questions); err != nil {
		return m.fail(s, err)
	}

	m.store.ResetInterview()
	m.store.Set(session.Patch{Interview: &ic, Questions: questions})
	m.moveTo(s, session.StageInterviewSession)
	return nil
}

// SubmitAnswer records the answer to the current question. The last answer
// triggers feedback generation; if that fails the answer is taken back so it
// can be submitted again.
func (m *Machine) SubmitAnswer(ctx context.Context, text string) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageInterviewSession || s.Interview == nil {
		return &TransitionError{From: s.Stage, Action: "answer a question"}
	}

	step, err := m.cursor.Submit(text)
	if err != nil {
		return m.fail(s, err)
	}

	answers := m.cursor.Answers()
	m.store.Set(session.Patch{Answers: answers})
	m.store.Report(nil)
	if !step.Last {
		return nil
	}

	prompt := m.prompts.Feedback(*s.Interview, answers)
	feedback, err := invoke(ctx, m, s, parsing.SiteFeedback, prompt, func(raw string) (session.InterviewFeedback, error) {
		return parsing.ParseFeedback(raw, len(answers))
	})
	if err != nil {
		m.cursor.Retract()
		m.store.Set(session.Patch{Answers: m.cursor.Answers()})
		return m.fail(s, err)
	}

	m.store.Set(session.Patch{Feedback: &feedback})
	m.moveTo(s, session.StageInterviewResults)
	return nil
}

// NewPracticeRound discards questions, answers and feedback and returns to the
// interview setup. The previous interview context is kept for reuse.
func (m *Machine) NewPracticeRound() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageInterviewResults {
		return &TransitionError{From: s.Stage, Action: "start a new practice round"}
	}

	m.cursor.Reset()
	m.store.ResetInterview()
	m.moveTo(s, session.StageInterviewSetup)
	return nil
}

// NewUpload discards the analysis and optimized resume and returns to the upload stage.
func (m *Machine) NewUpload() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	s := m.store.Get()
	if s.Stage != session.StageResumeResults {
		return &TransitionError{From: s.Stage, Action: "upload a new resume"}
	}

	m.store.ResetUpload()
	m.moveTo(s, session.StageResumeUpload)
	return nil
}

// Restart discards the whole session and starts over from the landing stage.
func (m *Machine) Restart() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	prev := m.store.Get()
	m.cursor.Reset()
	m.store.Reset()

	next := m.store.Get()
	m.logger.Info("session restarted",
		zap.String("previous_session_id", prev.ID),
		zap.String(logger.FieldSession, next.ID),
	)
	m.recorder.ObserveTransition(prev.Stage.String(), next.Stage.String())
	return nil
}

func (m *Machine) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrBusy
	}
	m.busy = true
	return nil
}

func (m *Machine) release() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *Machine) moveTo(s session.Session, to session.Stage) session.Session {
	from := s.Stage
	m.store.Set(session.Patch{Stage: &to})
	m.store.Report(nil)

	m.logger.Info("stage transition",
		zap.String(logger.FieldSession, s.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	m.recorder.ObserveTransition(from.String(), to.String())

	s.Stage = to
	return s
}

// fail records err on the session and returns it.
func (m *Machine) fail(s session.Session, err error) error {
	kind, field, message := classify(err)
	m.store.Report(&session.Failure{
		Kind:    kind,
		Stage:   s.Stage,
		Field:   field,
		Message: message,
		At:      m.now(),
	})

	m.logger.Warn("workflow step failed",
		zap.String(logger.FieldSession, s.ID),
		zap.Stringer("stage", s.Stage),
		zap.String("kind", string(kind)),
		zap.String("field", field),
		zap.Error(err),
	)
	return err
}

func (m *Machine) ensurePurchased(ctx context.Context, s session.Session) error {
	if s.HasPurchased(s.Product) {
		return nil
	}

	ok, err := m.purchases.Confirm(ctx, s.Product)
	if err != nil {
		return fmt.Errorf("confirm purchase of %s: %w", s.Product, err)
	}
	if !ok {
		return ErrPurchaseDeclined
	}

	m.store.Set(session.Patch{Purchased: &s.Product})
	m.logger.Info("purchase confirmed",
		zap.String(logger.FieldSession, s.ID),
		zap.Stringer("product", s.Product),
		zap.String("price", s.Product.Price()),
	)
	return nil
}

func (m *Machine) validateContext(ic session.InterviewContext) error {
	err := m.validate.Struct(ic)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &InvalidInputError{Field: verrs[0].Field(), Reason: "must not be empty"}
	}
	return &InvalidInputError{Field: "interview", Reason: err.Error()}
}

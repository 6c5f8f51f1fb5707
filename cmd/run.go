package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-boost/internal/extract"
	"github.com/spigell/career-boost/internal/interview"
	"github.com/spigell/career-boost/internal/logger"
	"github.com/spigell/career-boost/internal/metrics"
	"github.com/spigell/career-boost/internal/prompts"
	"github.com/spigell/career-boost/internal/purchase"
	"github.com/spigell/career-boost/internal/session"
	"github.com/spigell/career-boost/internal/workflow"
)

const (
	PromptUnlock       = "Unlock the optimized resume"
	PromptContinue     = "Continue to the mock interview"
	PromptSetup        = "Enter the job details"
	PromptAnswer       = "Answer the question"
	PromptNewUpload    = "Upload another resume"
	PromptNewRound     = "Start a new practice round"
	PromptExportReport = "Export report to file"
	PromptRestart      = "Start over"
	PromptQuit         = "Quit"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive career-boost session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-confirm", "y", false, "confirm every purchase without asking (demo mode)")
	runCmd.Flags().String("metrics-listen", "", "expose prometheus metrics on this address, e.g. :9090")

	viper.BindPFlag("purchase.auto-confirm", runCmd.Flags().Lookup("auto-confirm"))
	viper.BindPFlag("metrics.listen", runCmd.Flags().Lookup("metrics-listen"))
}

// run is the main command for the cli.
func run(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer func() { _ = logger.Sync() }()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the career-boost",
		zap.String("version", version),
		zap.String("ai_provider", config.AI.Provider),
	)

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating an ai client", zap.Error(err))
	}

	builder, err := prompts.NewBuilder(config.Workflow.MaxResumeTokens)
	if err != nil {
		logger.Fatal("loading prompt templates", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	if addr := config.Metrics.Listen; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, reg, logger); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	var confirmer workflow.PurchaseConfirmer = &purchase.Interactive{Logger: logger}
	if config.Purchase.AutoConfirm {
		logger.Warn("purchases are confirmed automatically")
		confirmer = purchase.Static{Approve: true}
	}

	machine, err := workflow.New(config.workflowConfig(), workflow.Deps{
		Client:    completer,
		Prompts:   builder,
		Purchases: confirmer,
		Recorder:  recorder,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("creating the workflow", zap.Error(err))
	}

	for {
		if err := step(ctx, machine, logger); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting", zap.String("session_id", machine.Snapshot().ID))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// step renders the current stage and performs one user action.
func step(ctx context.Context, m *workflow.Machine, logger *zap.Logger) error {
	s := m.Snapshot()
	renderFailure(s)

	var err error
	switch s.Stage {
	case session.StageLanding:
		fmt.Println("Welcome to career-boost: an ATS review of your resume, an optimized rewrite and a mock interview.")
		err = m.Start()
	case session.StageProductSelect:
		err = selectProduct(m)
	case session.StageResumeUpload:
		err = uploadResume(ctx, m)
	case session.StageResumeResults:
		err = resumeResults(ctx, m, s, logger)
	case session.StageInterviewSetup:
		err = interviewSetup(ctx, m, s, logger)
	case session.StageInterviewSession:
		err = answerQuestion(ctx, m, s, logger)
	case session.StageInterviewResults:
		err = interviewResults(m, s, logger)
	default:
		return fmt.Errorf("unexpected stage %s", s.Stage)
	}

	return settle(err, logger)
}

// settle keeps the loop going for failures already reported on the session.
func settle(err error, logger *zap.Logger) error {
	if err == nil || isPromptError(err) || errors.Is(err, errExit) {
		return err
	}

	var te *workflow.TransitionError
	if errors.As(err, &te) || errors.Is(err, workflow.ErrBusy) {
		logger.Warn("action is not available", zap.Error(err))
		return nil
	}

	logger.Debug("action failed", zap.Error(err))
	return nil
}

func isPromptError(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}

func renderFailure(s session.Session) {
	if s.Err == nil {
		return
	}
	fmt.Printf("\n! %s\n\n", s.Err.Message)
}

func selectProduct(m *workflow.Machine) error {
	products := session.Products()
	items := make([]string, 0, len(products)+1)
	for _, p := range products {
		items = append(items, fmt.Sprintf("%s (%s): %s", p.Title(), p.Price(), includes(p)))
	}

	sel := promptui.Select{
		Label: "Choose a product",
		Items: append(items, PromptQuit),
	}
	idx, _, err := sel.Run()
	if err != nil {
		return err
	}
	if idx == len(products) {
		return errExit
	}

	return m.SelectProduct(products[idx])
}

func uploadResume(ctx context.Context, m *workflow.Machine) error {
	p := promptui.Prompt{
		Label: "Path to your resume (pdf, docx, txt or md)",
		Validate: func(input string) error {
			info, err := os.Stat(strings.TrimSpace(input))
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", input)
			}
			return nil
		},
	}
	path, err := p.Run()
	if err != nil {
		return err
	}

	text, err := extract.File(ctx, strings.TrimSpace(path))
	if err != nil {
		fmt.Printf("\n! could not read the document: %s\n\n", err)
		return nil
	}

	fmt.Println("Analyzing your resume...")
	return m.SubmitResume(ctx, text)
}

func resumeResults(ctx context.Context, m *workflow.Machine, s session.Session, logger *zap.Logger) error {
	renderAnalysis(s)

	sel := promptui.Select{Label: "What next?", Items: resultsActions(s)}
	_, action, err := sel.Run()
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(action, PromptUnlock):
		fmt.Println("Rewriting your resume...")
		return m.UnlockOptimization(ctx)
	case action == PromptContinue:
		return m.ContinueToInterview()
	case action == PromptNewUpload:
		return m.NewUpload()
	default:
		return commonAction(action, m, s, logger)
	}
}

func interviewSetup(ctx context.Context, m *workflow.Machine, s session.Session, logger *zap.Logger) error {
	sel := promptui.Select{Label: "Mock interview", Items: setupActions(s)}
	_, action, err := sel.Run()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(action, PromptSetup) {
		return commonAction(action, m, s, logger)
	}

	var prev session.InterviewContext
	if s.Interview != nil {
		prev = *s.Interview
	}

	fields := []struct {
		label string
		value *string
	}{
		{label: "Job title", value: &prev.JobTitle},
		{label: "Company", value: &prev.Company},
		{label: "Industry", value: &prev.Industry},
	}

	for _, f := range fields {
		p := promptui.Prompt{
			Label:     f.label,
			Default:   *f.value,
			AllowEdit: true,
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("required")
				}
				return nil
			},
		}
		value, err := p.Run()
		if err != nil {
			return err
		}
		*f.value = value
	}

	fmt.Println("Preparing your interview questions...")
	return m.StartInterview(ctx, prev)
}

func answerQuestion(ctx context.Context, m *workflow.Machine, s session.Session, logger *zap.Logger) error {
	idx, q, ok := m.CurrentQuestion()
	if !ok {
		return fmt.Errorf("no question to answer")
	}

	fmt.Printf("\nQuestion %d of %d [%s]\n%s\n", idx+1, interview.QuestionCount, q.Category, q.Text)

	sel := promptui.Select{Label: "What next?", Items: sessionActions()}
	_, action, err := sel.Run()
	if err != nil {
		return err
	}
	if action != PromptAnswer {
		return commonAction(action, m, s, logger)
	}

	p := promptui.Prompt{Label: "Your answer"}
	answer, err := p.Run()
	if err != nil {
		return err
	}

	if idx == interview.QuestionCount-1 && strings.TrimSpace(answer) != "" {
		fmt.Println("Scoring your interview...")
	}
	return m.SubmitAnswer(ctx, answer)
}

func interviewResults(m *workflow.Machine, s session.Session, logger *zap.Logger) error {
	renderFeedback(s)

	sel := promptui.Select{
		Label: "What next?",
		Items: []string{PromptNewRound, PromptExportReport, PromptRestart, PromptQuit},
	}
	_, action, err := sel.Run()
	if err != nil {
		return err
	}

	if action == PromptNewRound {
		return m.NewPracticeRound()
	}
	return commonAction(action, m, s, logger)
}

// resultsActions lists the choices offered with the resume analysis.
func resultsActions(s session.Session) []string {
	items := make([]string, 0, 6)
	if s.Product.IncludesResume() && s.OptimizedResume == "" {
		items = append(items, priced(PromptUnlock, s))
	}
	if s.InterviewQueued {
		items = append(items, PromptContinue)
	}
	return append(items, PromptNewUpload, PromptExportReport, PromptRestart, PromptQuit)
}

func setupActions(s session.Session) []string {
	return []string{priced(PromptSetup, s), PromptRestart, PromptQuit}
}

func sessionActions() []string {
	return []string{PromptAnswer, PromptRestart, PromptQuit}
}

// priced appends the product price to label until the purchase is confirmed.
func priced(label string, s session.Session) string {
	if s.HasPurchased(s.Product) {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, s.Product.Price())
}

func commonAction(action string, m *workflow.Machine, s session.Session, logger *zap.Logger) error {
	switch action {
	case PromptExportReport:
		filename, err := session.DumpReport(s, "")
		if err != nil {
			logger.Warn("dumping report to file", zap.Error(err))
			return nil
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptRestart:
		return m.Restart()
	case PromptQuit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func renderAnalysis(s session.Session) {
	if s.Analysis == nil {
		return
	}
	a := s.Analysis

	fmt.Printf("\nATS score: %d/100\n", a.ATSScore)
	printList("Key issues", a.KeyIssues)
	printList("Strengths", a.Strengths)
	printList("Missing keywords", a.MissingKeywords)
	printList("Improvement areas", a.ImprovementAreas)

	if s.OptimizedResume != "" {
		fmt.Printf("\nOptimized resume:\n\n%s\n\n", s.OptimizedResume)
	}
}

func renderFeedback(s session.Session) {
	if s.Feedback == nil {
		return
	}
	f := s.Feedback

	fmt.Printf("\nOverall score: %d/100\n", f.OverallScore)
	printList("Strengths", f.Strengths)
	printList("Improvements", f.Improvements)

	for i, af := range f.AnswerFeedback {
		if i >= len(s.Answers) {
			break
		}
		fmt.Printf("\n%d. %s\n   Your answer: %s\n   Score: %d/10\n   %s\n   Better answer: %s\n",
			i+1, s.Answers[i].Question, s.Answers[i].Answer, af.Score, af.Feedback, af.BetterAnswer)
	}
	fmt.Println()
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

// Package prompts renders the prompt sent for each AI call site.
package prompts

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"github.com/spigell/career-boost/internal/session"
)

//go:embed templates/*.md
var templateFS embed.FS

const DefaultMaxResumeTokens = 6000

const (
	analysisTemplate     = "analysis"
	optimizationTemplate = "optimization"
	questionsTemplate    = "questions"
	feedbackTemplate     = "feedback"
)

// Builder renders prompts from the embedded templates.
type Builder struct {
	codec           tokenizer.Codec
	maxResumeTokens int
	templates       map[string]string
}

// NewBuilder loads the templates. Resume text longer than maxResumeTokens
// (GPT-4 encoding) is cut before rendering.
func NewBuilder(maxResumeTokens int) (*Builder, error) {
	if maxResumeTokens <= 0 {
		maxResumeTokens = DefaultMaxResumeTokens
	}

	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("create tokenizer codec: %w", err)
	}

	templates := make(map[string]string, 4)
	for _, name := range []string{analysisTemplate, optimizationTemplate, questionsTemplate, feedbackTemplate} {
		data, err := templateFS.ReadFile("templates/" + name + ".md")
		if err != nil {
			return nil, fmt.Errorf("read %s template: %w", name, err)
		}
		templates[name] = string(data)
	}

	return &Builder{codec: codec, maxResumeTokens: maxResumeTokens, templates: templates}, nil
}

// Analysis renders the resume assessment prompt.
func (b *Builder) Analysis(resumeText string) string {
	return b.render(analysisTemplate, "RESUME_TEXT", b.trimResume(resumeText))
}

// Optimization renders the rewrite prompt. The analysis supplies the keywords
// to work in and the issues to fix.
func (b *Builder) Optimization(resumeText string, analysis session.ResumeAnalysis) string {
	return b.render(optimizationTemplate,
		"RESUME_TEXT", b.trimResume(resumeText),
		"MISSING_KEYWORDS", bulletList(analysis.MissingKeywords),
		"KEY_ISSUES", bulletList(analysis.KeyIssues),
	)
}

// Questions renders the question generation prompt.
func (b *Builder) Questions(ic session.InterviewContext) string {
	return b.render(questionsTemplate, contextPairs(ic)...)
}

// Feedback renders the scoring prompt for the given answers.
func (b *Builder) Feedback(ic session.InterviewContext, answers []session.AnsweredQuestion) string {
	var sb strings.Builder
	for i, a := range answers {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Question %d: %s\nAnswer %d: %s", i+1, a.Question, i+1, a.Answer)
	}

	pairs := append(contextPairs(ic),
		"ANSWER_COUNT", strconv.Itoa(len(answers)),
		"ANSWERS", sb.String(),
	)
	return b.render(feedbackTemplate, pairs...)
}

func (b *Builder) trimResume(text string) string {
	text = strings.TrimSpace(text)
	ids, _, err := b.codec.Encode(text)
	if err != nil || len(ids) <= b.maxResumeTokens {
		return text
	}

	cut, err := b.codec.Decode(ids[:b.maxResumeTokens])
	if err != nil {
		return text
	}
	// a cut may land inside a multi-byte rune
	return strings.TrimSpace(strings.ToValidUTF8(cut, ""))
}

func (b *Builder) render(name string, pairs ...string) string {
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{{"+pairs[i]+"}}", pairs[i+1])
	}
	return strings.TrimSpace(strings.NewReplacer(oldnew...).Replace(b.templates[name]))
}

func contextPairs(ic session.InterviewContext) []string {
	return []string{
		"JOB_TITLE", strings.TrimSpace(ic.JobTitle),
		"COMPANY", strings.TrimSpace(ic.Company),
		"INDUSTRY", strings.TrimSpace(ic.Industry),
	}
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+strings.TrimSpace(item))
	}
	return strings.Join(lines, "\n")
}

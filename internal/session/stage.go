package session

import "fmt"

// Stage is a discrete point in the workflow. Exactly one is active at a time.
type Stage int

const (
	StageLanding Stage = iota
	StageProductSelect
	StageResumeUpload
	StageResumeAnalyzing
	StageResumeResults
	StageInterviewSetup
	StageInterviewSession
	StageInterviewResults
)

var stageNames = map[Stage]string{
	StageLanding:          "landing",
	StageProductSelect:    "product_select",
	StageResumeUpload:     "resume_upload",
	StageResumeAnalyzing:  "resume_analyzing",
	StageResumeResults:    "resume_results",
	StageInterviewSetup:   "interview_setup",
	StageInterviewSession: "interview_session",
	StageInterviewResults: "interview_results",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Product is the purchasable offering selected once per session.
type Product int

const (
	ProductNone Product = iota
	ProductResume
	ProductInterview
	ProductBundle
)

// Products lists the purchasable products in display order.
func Products() []Product {
	return []Product{ProductResume, ProductInterview, ProductBundle}
}

func (p Product) String() string {
	switch p {
	case ProductResume:
		return "resume"
	case ProductInterview:
		return "interview"
	case ProductBundle:
		return "bundle"
	default:
		return "none"
	}
}

func (p Product) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Title is the human readable product name.
func (p Product) Title() string {
	switch p {
	case ProductResume:
		return "Resume Optimizer"
	case ProductInterview:
		return "Interview Coach"
	case ProductBundle:
		return "Career Bundle"
	default:
		return ""
	}
}

// PriceCents returns the product price in US cents.
func (p Product) PriceCents() int {
	switch p {
	case ProductResume, ProductInterview:
		return 2000
	case ProductBundle:
		return 3000
	default:
		return 0
	}
}

// Price formats the price in dollars, e.g. "$20".
func (p Product) Price() string {
	cents := p.PriceCents()
	if cents%100 == 0 {
		return fmt.Sprintf("$%d", cents/100)
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// IncludesResume reports whether the product unlocks the resume flow.
func (p Product) IncludesResume() bool {
	return p == ProductResume || p == ProductBundle
}

// IncludesInterview reports whether the product unlocks the interview flow.
func (p Product) IncludesInterview() bool {
	return p == ProductInterview || p == ProductBundle
}

// ParseProduct converts a product name into a Product.
func ParseProduct(s string) (Product, error) {
	for _, p := range Products() {
		if p.String() == s {
			return p, nil
		}
	}
	return ProductNone, fmt.Errorf("unknown product %q", s)
}

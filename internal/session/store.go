package session

import (
	"sync"

	"github.com/google/uuid"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Stage           *Stage
	Product         *Product
	Purchased       *Product
	ResumeText      *string
	Analysis        *ResumeAnalysis
	OptimizedResume *string
	InterviewQueued *bool
	Interview       *InterviewContext
	Questions       []Question
	Answers         []AnsweredQuestion
	Feedback        *InterviewFeedback
}

// Store holds the live Session. Readers get deep copies; only the workflow writes.
// The zero value is usable but has no session ID; NewStore assigns one.
type Store struct {
	mu sync.RWMutex
	s  Session
}

func NewStore() *Store {
	st := &Store{}
	st.Reset()
	return st
}

// Get returns a deep copy of the session.
func (st *Store) Get() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.clone()
}

// Set applies the non-nil fields of p.
func (st *Store) Set(p Patch) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if p.Stage != nil {
		st.s.Stage = *p.Stage
	}
	if p.Product != nil {
		st.s.Product = *p.Product
	}
	if p.Purchased != nil {
		if st.s.Purchased == nil {
			st.s.Purchased = make(map[Product]bool)
		}
		st.s.Purchased[*p.Purchased] = true
	}
	if p.ResumeText != nil {
		st.s.ResumeText = *p.ResumeText
	}
	if p.Analysis != nil {
		a := *p.Analysis
		st.s.Analysis = &a
	}
	if p.OptimizedResume != nil {
		st.s.OptimizedResume = *p.OptimizedResume
	}
	if p.InterviewQueued != nil {
		st.s.InterviewQueued = *p.InterviewQueued
	}
	if p.Interview != nil {
		ic := *p.Interview
		st.s.Interview = &ic
	}
	if p.Questions != nil {
		st.s.Questions = append([]Question(nil), p.Questions...)
	}
	if p.Answers != nil {
		st.s.Answers = append([]AnsweredQuestion(nil), p.Answers...)
	}
	if p.Feedback != nil {
		f := *p.Feedback
		st.s.Feedback = &f
	}
}

// Report records f as the current error; nil clears it.
func (st *Store) Report(f *Failure) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if f == nil {
		st.s.Err = nil
		return
	}
	cp := *f
	st.s.Err = &cp
}

// Reset discards everything and starts a new session at the landing stage.
func (st *Store) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Session{
		ID:        uuid.NewString(),
		Stage:     StageLanding,
		Purchased: make(map[Product]bool),
	}
}

// ResetUpload discards the resume and everything derived from it.
func (st *Store) ResetUpload() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ResumeText = ""
	st.s.Analysis = nil
	st.s.OptimizedResume = ""
	st.s.InterviewQueued = false
}

// ResetInterview discards questions, answers and feedback. The interview context is
// kept so that a new practice round can offer it again.
func (st *Store) ResetInterview() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Questions = nil
	st.s.Answers = nil
	st.s.Feedback = nil
}

// Ptr returns a pointer to v, handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

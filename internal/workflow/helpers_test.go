package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/types"
)

// fakeLLM routes generated content through a test-provided function.
type fakeLLM struct {
	generate func(prompt string, tier llm.ModelTier) (string, error)
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.generate(prompt, tier)
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeLLM) Close() error { return nil }

// promptSubject pulls the "Subject: ..." line back out of a rendered prompt
// so fakes can vary behavior per email. The last occurrence is the email
// under test; earlier ones are few-shot examples baked into the template.
func promptSubject(prompt string) string {
	subject := ""
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(line, "Subject: "); ok {
			subject = strings.TrimSpace(rest)
		}
	}
	return subject
}

// memStore is an in-memory EmailStore. Failure hooks are keyed by email id.
type memStore struct {
	mu          sync.Mutex
	emails      map[string]types.Email
	order       []string
	failSummary map[string]bool
	failMark    map[string]bool
}

func newMemStore(emails ...types.Email) *memStore {
	s := &memStore{
		emails:      make(map[string]types.Email),
		failSummary: make(map[string]bool),
		failMark:    make(map[string]bool),
	}
	for _, e := range emails {
		s.emails[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	return s
}

func (s *memStore) InsertIfAbsent(_ context.Context, e types.Email) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.emails[e.ID]; exists {
		return false, nil
	}
	s.emails[e.ID] = e
	s.order = append(s.order, e.ID)
	return true, nil
}

func (s *memStore) Unprocessed(_ context.Context) ([]types.Email, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Email
	for _, id := range s.order {
		if e := s.emails[id]; !e.Processed {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) SaveSummary(_ context.Context, id, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSummary[id] {
		return fmt.Errorf("summary write refused for %s", id)
	}
	e := s.emails[id]
	e.Summary = summary
	s.emails[id] = e
	return nil
}

func (s *memStore) MarkProcessed(_ context.Context, id string, category types.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMark[id] {
		return fmt.Errorf("mark refused for %s", id)
	}
	e := s.emails[id]
	e.Processed = true
	e.Category = category
	s.emails[id] = e
	return nil
}

func (s *memStore) get(id string) types.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emails[id]
}

// fakeMail returns a fixed batch or a fixed error.
type fakeMail struct {
	emails []types.Email
	err    error
}

func (f *fakeMail) Fetch(context.Context, int) ([]types.Email, error) {
	return f.emails, f.err
}

// fakeJobs records which emails reached the job handler.
type fakeJobs struct {
	mu       sync.Mutex
	recorded []string
	err      error
}

func (f *fakeJobs) Record(_ context.Context, email types.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, email.ID)
	return f.err
}

// fakeNotifier records notifications and optionally fails.
type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (f *fakeNotifier) Notify(title, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	return f.err
}

// staticLLM answers every prompt with the same text.
func staticLLM(text string) *fakeLLM {
	return &fakeLLM{generate: func(string, llm.ModelTier) (string, error) {
		return text, nil
	}}
}

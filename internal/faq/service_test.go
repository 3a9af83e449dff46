package faq_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/coldflow/supportbot/internal/database"
	"github.com/coldflow/supportbot/internal/domain"
	"github.com/coldflow/supportbot/internal/faq"
)

type fakeStore struct {
	faqs       []*domain.FAQ
	nextID     int64
	viewCalls  []int64
	createdIDs []int64
}

func newFakeStore(faqs []*domain.FAQ) *fakeStore {
	return &fakeStore{faqs: faqs, nextID: 100}
}

func (f *fakeStore) ListActive(_ context.Context) ([]*domain.FAQ, error) {
	var active []*domain.FAQ
	for _, entry := range f.faqs {
		if entry.Active {
			active = append(active, entry)
		}
	}
	return active, nil
}

func (f *fakeStore) GetByQuestion(_ context.Context, question string) (*domain.FAQ, error) {
	for _, entry := range f.faqs {
		if strings.EqualFold(entry.Question, question) {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("faq %q: %w", question, database.ErrNotFound)
}

func (f *fakeStore) Create(_ context.Context, entry *domain.FAQ) error {
	f.nextID++
	entry.ID = f.nextID
	f.faqs = append(f.faqs, entry)
	f.createdIDs = append(f.createdIDs, entry.ID)
	return nil
}

func (f *fakeStore) IncrementViews(_ context.Context, faqID int64) error {
	f.viewCalls = append(f.viewCalls, faqID)
	return nil
}

type fakeCounter struct {
	counts   map[string]int
	modal    map[string]string
	modalErr error
}

func (f *fakeCounter) CountSimilarUserMessages(_ context.Context, content string) (int, error) {
	return f.counts[strings.ToLower(content)], nil
}

func (f *fakeCounter) MostCommonAssistantResponse(_ context.Context, content string) (string, error) {
	if f.modalErr != nil {
		return "", f.modalErr
	}
	if answer, ok := f.modal[strings.ToLower(content)]; ok {
		return answer, nil
	}
	return "", fmt.Errorf("no reply for %q: %w", content, database.ErrNotFound)
}

func newService(t *testing.T, store *fakeStore, counter *fakeCounter) *faq.Service {
	t.Helper()
	if counter == nil {
		counter = &fakeCounter{}
	}
	service, err := faq.NewService(context.Background(), store, counter, nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return service
}

func TestService_Lookup(t *testing.T) {
	store := newFakeStore(catalog())
	service := newService(t, store, nil)

	result, err := service.Lookup(context.Background(), "how do I defrost the freezer")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a FAQ answer")
	}
	if result.FAQID != 1 {
		t.Errorf("FAQID = %d, want 1", result.FAQID)
	}
	if result.Answer != "Unplug the unit and leave the door open." {
		t.Errorf("Answer = %q", result.Answer)
	}

	if len(store.viewCalls) != 1 || store.viewCalls[0] != 1 {
		t.Errorf("viewCalls = %v, want exactly one increment for FAQ 1", store.viewCalls)
	}
}

func TestService_Lookup_NoMatch(t *testing.T) {
	store := newFakeStore(catalog())
	service := newService(t, store, nil)

	result, err := service.Lookup(context.Background(), "completely unrelated question")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result != nil {
		t.Fatalf("expected no answer, got FAQ %d", result.FAQID)
	}
	if len(store.viewCalls) != 0 {
		t.Errorf("viewCalls = %v, want none", store.viewCalls)
	}
}

func TestService_ConsiderPromotion(t *testing.T) {
	question := "How long does delivery take for spare parts?"
	answer := "Spare parts usually arrive within five business days."

	testCases := []struct {
		name     string
		question string
		answer   string
		count    int
		created  bool
	}{
		{
			name:     "promoted once asked often enough",
			question: question,
			answer:   answer,
			count:    faq.MinQuestionCount,
			created:  true,
		},
		{
			name:     "below the ask threshold",
			question: question,
			answer:   answer,
			count:    faq.MinQuestionCount - 1,
			created:  false,
		},
		{
			name:     "question too short",
			question: "parts?",
			answer:   answer,
			count:    50,
			created:  false,
		},
		{
			name:     "answer too short",
			question: question,
			answer:   "Five days.",
			count:    50,
			created:  false,
		},
		{
			name:     "generic opener never promotes",
			question: "thank you",
			answer:   answer,
			count:    500,
			created:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore(nil)
			counter := &fakeCounter{counts: map[string]int{strings.ToLower(tc.question): tc.count}}
			service := newService(t, store, counter)

			created, err := service.ConsiderPromotion(context.Background(), tc.question, tc.answer)
			if err != nil {
				t.Fatalf("ConsiderPromotion failed: %v", err)
			}
			if created != tc.created {
				t.Fatalf("created = %v, want %v", created, tc.created)
			}
			if tc.created && len(store.createdIDs) != 1 {
				t.Errorf("createdIDs = %v, want one new FAQ", store.createdIDs)
			}
		})
	}
}

func TestService_ConsiderPromotion_DeduplicatesQuestions(t *testing.T) {
	question := "How long does delivery take for spare parts?"
	store := newFakeStore([]*domain.FAQ{{
		ID:       7,
		Question: question,
		Answer:   "Existing answer that is long enough.",
		Keywords: []string{"delivery"},
		Active:   true,
	}})
	counter := &fakeCounter{counts: map[string]int{strings.ToLower(question): 99}}
	service := newService(t, store, counter)

	created, err := service.ConsiderPromotion(context.Background(), question,
		"Spare parts usually arrive within five business days.")
	if err != nil {
		t.Fatalf("ConsiderPromotion failed: %v", err)
	}
	if created {
		t.Error("an existing question must not be promoted twice")
	}
}

func TestService_PromotionRefreshesIndex(t *testing.T) {
	question := "How long does delivery take for spare parts?"
	store := newFakeStore(nil)
	counter := &fakeCounter{counts: map[string]int{strings.ToLower(question): faq.MinQuestionCount}}
	service := newService(t, store, counter)

	created, err := service.ConsiderPromotion(context.Background(), question,
		"Spare parts usually arrive within five business days.")
	if err != nil {
		t.Fatalf("ConsiderPromotion failed: %v", err)
	}
	if !created {
		t.Fatal("expected the question to be promoted")
	}

	result, err := service.Lookup(context.Background(), "when does my delivery arrive")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected the freshly promoted FAQ to be matchable")
	}
	if result.Question != question {
		t.Errorf("Question = %q, want %q", result.Question, question)
	}
}

func TestService_ConsiderPromotion_UsesMostCommonAnswer(t *testing.T) {
	question := "How long does delivery take for spare parts?"
	modal := "Spare parts ship within five business days via courier."
	store := newFakeStore(nil)
	counter := &fakeCounter{
		counts: map[string]int{strings.ToLower(question): faq.MinQuestionCount},
		modal:  map[string]string{strings.ToLower(question): modal},
	}
	service := newService(t, store, counter)

	created, err := service.ConsiderPromotion(context.Background(), question,
		"It depends, usually somewhere around a week or so.")
	if err != nil {
		t.Fatalf("ConsiderPromotion failed: %v", err)
	}
	if !created {
		t.Fatal("expected the question to be promoted")
	}

	promoted, err := store.GetByQuestion(context.Background(), question)
	if err != nil {
		t.Fatalf("GetByQuestion failed: %v", err)
	}
	if promoted.Answer != modal {
		t.Errorf("Answer = %q, want the most common reply %q", promoted.Answer, modal)
	}
}

func TestService_ConsiderPromotion_AnswerFallsBackToCurrentReply(t *testing.T) {
	question := "How long does delivery take for spare parts?"
	fresh := "Spare parts usually arrive within five business days."

	testCases := []struct {
		name    string
		counter *fakeCounter
	}{
		{
			name: "no historical reply on record",
			counter: &fakeCounter{
				counts: map[string]int{strings.ToLower(question): faq.MinQuestionCount},
			},
		},
		{
			name: "historical reply too short",
			counter: &fakeCounter{
				counts: map[string]int{strings.ToLower(question): faq.MinQuestionCount},
				modal:  map[string]string{strings.ToLower(question): "A week."},
			},
		},
		{
			name: "history lookup fails",
			counter: &fakeCounter{
				counts:   map[string]int{strings.ToLower(question): faq.MinQuestionCount},
				modalErr: fmt.Errorf("connection reset"),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore(nil)
			service := newService(t, store, tc.counter)

			created, err := service.ConsiderPromotion(context.Background(), question, fresh)
			if err != nil {
				t.Fatalf("ConsiderPromotion failed: %v", err)
			}
			if !created {
				t.Fatal("expected the question to be promoted")
			}

			promoted, err := store.GetByQuestion(context.Background(), question)
			if err != nil {
				t.Fatalf("GetByQuestion failed: %v", err)
			}
			if promoted.Answer != fresh {
				t.Errorf("Answer = %q, want the current reply %q", promoted.Answer, fresh)
			}
		})
	}
}

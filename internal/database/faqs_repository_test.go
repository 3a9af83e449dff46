package database_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/coldflow/supportbot/internal/database"
	"github.com/coldflow/supportbot/internal/domain"
)

func TestFAQsRepository_CreateAndGet(t *testing.T) {
	repo := database.NewFAQsRepository(newTestDB(t))
	ctx := context.Background()

	faq := &domain.FAQ{
		Question: "How do I defrost the freezer?",
		Answer:   "Unplug the unit and leave the door open for a few hours.",
		Keywords: []string{"defrost", "freezer"},
		Active:   true,
	}

	if err := repo.Create(ctx, faq); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if faq.ID == 0 {
		t.Fatal("Create did not assign an ID")
	}

	loaded, err := repo.GetByID(ctx, faq.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if loaded.Question != faq.Question || loaded.Answer != faq.Answer {
		t.Errorf("loaded FAQ differs: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.Keywords, []string{"defrost", "freezer"}) {
		t.Errorf("Keywords = %v, want [defrost freezer]", loaded.Keywords)
	}
}

func TestFAQsRepository_NilKeywordsRoundTrip(t *testing.T) {
	repo := database.NewFAQsRepository(newTestDB(t))
	ctx := context.Background()

	faq := &domain.FAQ{Question: "q", Answer: "a", Active: true}
	if err := repo.Create(ctx, faq); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	loaded, err := repo.GetByID(ctx, faq.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if loaded.Keywords != nil {
		t.Errorf("Keywords = %v, want nil", loaded.Keywords)
	}
}

func TestFAQsRepository_GetByQuestion(t *testing.T) {
	repo := database.NewFAQsRepository(newTestDB(t))
	ctx := context.Background()

	faq := &domain.FAQ{Question: "What does the warranty cover?", Answer: "Parts and labour.", Active: true}
	if err := repo.Create(ctx, faq); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	loaded, err := repo.GetByQuestion(ctx, "what does the WARRANTY cover?")
	if err != nil {
		t.Fatalf("GetByQuestion failed: %v", err)
	}
	if loaded.ID != faq.ID {
		t.Errorf("ID = %d, want %d", loaded.ID, faq.ID)
	}

	if _, err = repo.GetByQuestion(ctx, "unknown question"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("GetByQuestion missing: err = %v, want ErrNotFound", err)
	}
}

func TestFAQsRepository_ListOrdersByViews(t *testing.T) {
	repo := database.NewFAQsRepository(newTestDB(t))
	ctx := context.Background()

	seed := []domain.FAQ{
		{Question: "rarely asked", Answer: "a", ViewCount: 1, Active: true},
		{Question: "often asked", Answer: "b", ViewCount: 40, Active: true},
		{Question: "retired", Answer: "c", ViewCount: 99, Active: false},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	actives, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(actives) != 2 {
		t.Fatalf("ListActive returned %d FAQs, want 2", len(actives))
	}
	if actives[0].Question != "often asked" {
		t.Errorf("first FAQ = %q, want the most viewed active one", actives[0].Question)
	}

	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Question != "retired" {
		t.Errorf("List = %d FAQs first %q, want 3 with the most viewed first", len(all), all[0].Question)
	}
}

func TestFAQsRepository_UpdateAndDelete(t *testing.T) {
	repo := database.NewFAQsRepository(newTestDB(t))
	ctx := context.Background()

	faq := &domain.FAQ{Question: "q", Answer: "a", Keywords: []string{"one"}, Active: true}
	if err := repo.Create(ctx, faq); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	faq.Answer = "updated answer"
	faq.Keywords = []string{"one", "two"}
	if err := repo.Update(ctx, faq); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	loaded, err := repo.GetByID(ctx, faq.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if loaded.Answer != "updated answer" || len(loaded.Keywords) != 2 {
		t.Errorf("update not persisted: %+v", loaded)
	}

	if err := repo.Delete(ctx, faq.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, faq.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("GetByID after delete: err = %v, want ErrNotFound", err)
	}
}

func TestFAQsRepository_IncrementViews(t *testing.T) {
	repo := database.NewFAQsRepository(newTestDB(t))
	ctx := context.Background()

	faq := &domain.FAQ{Question: "q", Answer: "a", Active: true}
	if err := repo.Create(ctx, faq); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.IncrementViews(ctx, faq.ID); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}
	if err := repo.IncrementViews(ctx, faq.ID); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}

	loaded, err := repo.GetByID(ctx, faq.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if loaded.ViewCount != 2 {
		t.Errorf("ViewCount = %d, want 2", loaded.ViewCount)
	}

	if err := repo.IncrementViews(ctx, 9999); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("IncrementViews missing: err = %v, want ErrNotFound", err)
	}
}

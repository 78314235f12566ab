package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-reminders/internal/ports/identity"
)

type testRepo struct {
	entries []Entry
}

func (r *testRepo) Create(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New("repo: id required")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *testRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, limit int) ([]Entry, error) {
	out := make([]Entry, 0)
	for _, e := range r.entries {
		if owner.Matches(e.OwnerRef) {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestService_Record_ValidatesAndPersists(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo, nil)

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if err := svc.Record(context.Background(), "", TypeMedicationTaken, "med-1"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing owner, got %v", err)
	}

	if err := svc.Record(context.Background(), "u1", TypeMedicationTaken, "med-1"); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" || e.OwnerRef != "u1" || e.Type != TypeMedicationTaken || !e.CreatedAt.Equal(now) {
		t.Fatalf("unexpected entry: %#v", e)
	}
}

func TestService_ListByOwner_RequiresOwner(t *testing.T) {
	svc := NewService(&testRepo{}, nil)

	if _, err := svc.ListByOwner(context.Background(), "  ", 10); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

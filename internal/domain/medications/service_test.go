package medications

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-reminders/internal/ports/identity"
)

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Medication
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) error {
	if m.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (Medication, error) {
	m, ok := r.byID[id]
	if !ok || !owner.Matches(m.OwnerRef) {
		return Medication{}, errRepoNotFound
	}
	return m, nil
}

func (r *testRepo) Update(ctx context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string, owner identity.OwnerFilter) error {
	m, ok := r.byID[id]
	if !ok || !owner.Matches(m.OwnerRef) {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if owner.Matches(m.OwnerRef) {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestService_Create_RequiresOwnerAndName(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Ibuprofeno"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing owner, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{OwnerRef: "u1"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}

	m, err := svc.Create(context.Background(), CreateInput{
		OwnerRef: "u1",
		Name:     "  Ibuprofeno  ",
		Dosage:   "400mg",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if m.Name != "Ibuprofeno" {
		t.Fatalf("expected trimmed name, got %q", m.Name)
	}
	if m.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestService_Update_PartialFields(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m, err := svc.Create(context.Background(), CreateInput{
		OwnerRef: "u1",
		Name:     "Amoxicilina",
		Dosage:   "500mg",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	dosage := "250mg"
	updated, err := svc.Update(context.Background(), m.ID, "u1", UpdateInput{Dosage: &dosage})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Dosage != "250mg" || updated.Name != "Amoxicilina" {
		t.Fatalf("expected only dosage changed, got %#v", updated)
	}

	empty := "  "
	if _, err := svc.Update(context.Background(), m.ID, "u1", UpdateInput{Name: &empty}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestService_OwnershipIsolation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	m, _ := svc.Create(context.Background(), CreateInput{OwnerRef: "u1", Name: "Paracetamol"})

	if _, err := svc.GetByID(context.Background(), m.ID, "intruso"); err != ErrNotFound {
		t.Fatalf("GetByID by other owner: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), m.ID, "intruso"); err != ErrNotFound {
		t.Fatalf("Delete by other owner: expected ErrNotFound, got %v", err)
	}
	if _, ok := repo.byID[m.ID]; !ok {
		t.Fatalf("record deleted by non-owner")
	}
}

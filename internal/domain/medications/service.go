package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-reminders/internal/domain/activity"
	"med-reminders/internal/ports/identity"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Recorder registra actividad del dueño. El service lo usa best-effort:
// un fallo del historial nunca tumba la operación que lo originó.
type Recorder interface {
	Record(ctx context.Context, ownerRef string, typ activity.Type, medicationID string) error
}

type Service struct {
	repo     Repository
	resolver identity.Resolver
	recorder Recorder
	now      func() time.Time
}

func NewService(repo Repository, resolver identity.Resolver, recorder Recorder) *Service {
	if resolver == nil {
		resolver = identity.Passthrough{}
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		recorder: recorder,
		now:      time.Now,
	}
}

type CreateInput struct {
	OwnerRef  string
	Name      string
	Dosage    string
	Frequency string
	Notes     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	ownerRef := strings.TrimSpace(in.OwnerRef)
	if ownerRef == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}

	now := s.now()
	m := Medication{
		ID:        uuid.NewString(),
		OwnerRef:  ownerRef,
		Name:      strings.TrimSpace(in.Name),
		Dosage:    strings.TrimSpace(in.Dosage),
		Frequency: strings.TrimSpace(in.Frequency),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}

	s.record(ctx, ownerRef, activity.TypeMedicationAdded, m.ID)
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id, ownerRef string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}

	owner, err := s.ownerFilter(ctx, ownerRef)
	if err != nil {
		return Medication{}, err
	}

	m, err := s.repo.GetByID(ctx, id, owner)
	if err != nil {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

type UpdateInput struct {
	Name      *string
	Dosage    *string
	Frequency *string
	Notes     *string
}

func (s *Service) Update(ctx context.Context, id, ownerRef string, in UpdateInput) (Medication, error) {
	m, err := s.GetByID(ctx, id, ownerRef)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = name
	}
	if in.Dosage != nil {
		m.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Frequency != nil {
		m.Frequency = strings.TrimSpace(*in.Frequency)
	}
	if in.Notes != nil {
		m.Notes = strings.TrimSpace(*in.Notes)
	}

	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}

	s.record(ctx, m.OwnerRef, activity.TypeMedicationUpdated, m.ID)
	return m, nil
}

// Delete borra el medicamento. No arrastra reminders: los que lo
// referencien quedan con un nombre placeholder al renderizarse.
func (s *Service) Delete(ctx context.Context, id, ownerRef string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	owner, err := s.ownerFilter(ctx, ownerRef)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, owner); err != nil {
		return ErrNotFound
	}

	s.record(ctx, strings.TrimSpace(ownerRef), activity.TypeMedicationRemoved, id)
	return nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerRef string) ([]Medication, error) {
	owner, err := s.ownerFilter(ctx, ownerRef)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, owner)
}

func (s *Service) ownerFilter(ctx context.Context, ownerRef string) (identity.OwnerFilter, error) {
	ownerRef = strings.TrimSpace(ownerRef)
	if ownerRef == "" {
		return identity.OwnerFilter{}, ErrInvalidInput
	}

	refs, err := s.resolver.Expand(ctx, ownerRef)
	if err != nil || len(refs) == 0 {
		// resolver caído no bloquea la operación
		refs = []string{ownerRef}
	}
	return identity.OwnerFilter{Refs: refs}, nil
}

func (s *Service) record(ctx context.Context, ownerRef string, typ activity.Type, medicationID string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, ownerRef, typ, medicationID) // best-effort
}

package activity

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-reminders/internal/ports/identity"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const DefaultListLimit = 50

type Service struct {
	repo     Repository
	resolver identity.Resolver
	now      func() time.Time
}

func NewService(repo Repository, resolver identity.Resolver) *Service {
	if resolver == nil {
		resolver = identity.Passthrough{}
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		now:      time.Now,
	}
}

// Record agrega una entrada al historial. Los llamadores de ciclo de vida
// lo tratan como best-effort; acá solo validamos y persistimos.
func (s *Service) Record(ctx context.Context, ownerRef string, typ Type, medicationID string) error {
	ownerRef = strings.TrimSpace(ownerRef)
	if ownerRef == "" || typ == "" {
		return ErrInvalidInput
	}

	e := Entry{
		ID:           uuid.NewString(),
		OwnerRef:     ownerRef,
		Type:         typ,
		MedicationID: strings.TrimSpace(medicationID),
		CreatedAt:    s.now(),
	}

	return s.repo.Create(ctx, e)
}

func (s *Service) ListByOwner(ctx context.Context, ownerRef string, limit int) ([]Entry, error) {
	ownerRef = strings.TrimSpace(ownerRef)
	if ownerRef == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = DefaultListLimit
	}

	owner := identity.OwnerFilter{Refs: []string{ownerRef}}
	if refs, err := s.resolver.Expand(ctx, ownerRef); err == nil && len(refs) > 0 {
		owner.Refs = refs
	}

	return s.repo.ListByOwner(ctx, owner, limit)
}

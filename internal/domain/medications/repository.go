package medications

import (
	"context"

	"med-reminders/internal/ports/identity"
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (Medication, error)
	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id string, owner identity.OwnerFilter) error

	// ListByOwner devuelve los medicamentos del dueño, created_at ascendente.
	ListByOwner(ctx context.Context, owner identity.OwnerFilter) ([]Medication, error)
}

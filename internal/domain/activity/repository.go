package activity

import (
	"context"

	"med-reminders/internal/ports/identity"
)

type Repository interface {
	Create(ctx context.Context, e Entry) error

	// ListByOwner devuelve entradas del dueño, más reciente primero.
	ListByOwner(ctx context.Context, owner identity.OwnerFilter, limit int) ([]Entry, error)
}

package reminders

import (
	"context"
	"time"

	"med-reminders/internal/ports/identity"
)

// ListFilter acota un listado por dueño. From es inclusivo, To exclusivo.
type ListFilter struct {
	From *time.Time
	To   *time.Time

	// NotStatuses excluye reminders en esos estados.
	NotStatuses []Status
}

type Repository interface {
	Create(ctx context.Context, rem Reminder) error

	// GetByID falla con not-found si el id no existe o el dueño no calza.
	GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (Reminder, error)

	// Update reemplaza el documento completo por id. Last-write-wins:
	// no hay token de concurrencia optimista en el modelo.
	Update(ctx context.Context, rem Reminder) error

	Delete(ctx context.Context, id string, owner identity.OwnerFilter) error

	// ListByOwner devuelve los reminders del dueño, scheduled_at ascendente.
	ListByOwner(ctx context.Context, owner identity.OwnerFilter, filter ListFilter) ([]Reminder, error)
}

package reminders

import "time"

// Reminder es una toma programada de un medicamento.
//
// CompletedAt solo se setea al completar; SnoozedUntil solo al posponer.
// Un complete posterior a un snooze NO limpia SnoozedUntil: ambos campos
// quedan como registro de lo que pasó con la toma.
type Reminder struct {
	ID       string
	OwnerRef string

	// MedicationID es una referencia débil: se usa solo para lookup y
	// denormalización en las respuestas, nunca para lógica del engine.
	MedicationID string

	ScheduledAt time.Time
	Status      Status

	CompletedAt  *time.Time
	SnoozedUntil *time.Time

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

package activity

import "time"

// Type clasifica cada entrada del historial de actividad.
type Type string

const (
	TypeReminderCreated   Type = "reminder_created"
	TypeMedicationTaken   Type = "medication_taken"
	TypeMedicationSkipped Type = "medication_skipped"
	TypeReminderSnoozed   Type = "reminder_snoozed"
	TypeMedicationAdded   Type = "medication_added"
	TypeMedicationUpdated Type = "medication_updated"
	TypeMedicationRemoved Type = "medication_removed"
)

// Entry es una entrada append-only del historial. Nunca se edita ni borra.
type Entry struct {
	ID       string
	OwnerRef string

	Type         Type
	MedicationID string

	CreatedAt time.Time
}

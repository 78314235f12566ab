package reminders

// Status es el estado de ciclo de vida de un reminder.
// @Enum pending, completed, missed, snoozed
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
	StatusSnoozed   Status = "snoozed"
)

// DefaultSnoozeMinutes se aplica cuando el snooze llega sin duración
// o con una duración no positiva.
const DefaultSnoozeMinutes = 15

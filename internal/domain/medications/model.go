package medications

import "time"

// Medication es un medicamento registrado por un dueño. Los reminders lo
// referencian de forma débil: borrarlo no arrastra sus reminders.
type Medication struct {
	ID       string
	OwnerRef string

	Name      string
	Dosage    string // "500mg", "2 tabletas", etc.
	Frequency string // texto libre por ahora: "cada 8h"

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

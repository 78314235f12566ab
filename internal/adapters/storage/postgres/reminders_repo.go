package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"med-reminders/internal/domain/reminders"
	"med-reminders/internal/ports/identity"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, owner_ref, medication_id,
			scheduled_at, status,
			completed_at, snoozed_until,
			notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		rem.ID,
		rem.OwnerRef,
		rem.MedicationID,
		rem.ScheduledAt,
		string(rem.Status),
		rem.CompletedAt,
		rem.SnoozedUntil,
		rem.Notes,
		rem.CreatedAt,
		rem.UpdatedAt,
	)
	return err
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(owner.Refs) == 0 {
		return reminders.Reminder{}, ErrNotFound
	}

	args := []any{id}
	in, _ := inClause(owner.Refs, &args, 2)

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, owner_ref, medication_id,
			scheduled_at, status,
			completed_at, snoozed_until,
			notes,
			created_at, updated_at
		FROM reminders
		WHERE id = $1 AND owner_ref IN `+in, args...)

	rem, err := scanReminder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return reminders.Reminder{}, ErrNotFound
		}
		return reminders.Reminder{}, err
	}
	return rem, nil
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET medication_id = $2,
			scheduled_at = $3,
			status = $4,
			completed_at = $5,
			snoozed_until = $6,
			notes = $7,
			updated_at = $8
		WHERE id = $1
	`,
		rem.ID,
		rem.MedicationID,
		rem.ScheduledAt,
		string(rem.Status),
		rem.CompletedAt,
		rem.SnoozedUntil,
		rem.Notes,
		rem.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) Delete(ctx context.Context, id string, owner identity.OwnerFilter) error {
	id = strings.TrimSpace(id)
	if id == "" || len(owner.Refs) == 0 {
		return ErrNotFound
	}

	args := []any{id}
	in, _ := inClause(owner.Refs, &args, 2)

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM reminders
		WHERE id = $1 AND owner_ref IN `+in, args...)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	if len(owner.Refs) == 0 {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, owner_ref, medication_id,
			scheduled_at, status,
			completed_at, snoozed_until,
			notes,
			created_at, updated_at
		FROM reminders
		WHERE owner_ref IN `)

	args := []any{}
	in, argN := inClause(owner.Refs, &args, 1)
	sb.WriteString(in)

	// From inclusivo, To exclusivo
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_at < $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	if len(filter.NotStatuses) > 0 {
		statuses := make([]string, 0, len(filter.NotStatuses))
		for _, st := range filter.NotStatuses {
			statuses = append(statuses, string(st))
		}
		var notIn string
		notIn, argN = inClause(statuses, &args, argN)
		sb.WriteString(" AND status NOT IN " + notIn)
	}

	sb.WriteString(" ORDER BY scheduled_at ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	var status string
	var completedAt, snoozedUntil sql.NullTime

	if err := row.Scan(
		&rem.ID,
		&rem.OwnerRef,
		&rem.MedicationID,
		&rem.ScheduledAt,
		&status,
		&completedAt,
		&snoozedUntil,
		&rem.Notes,
		&rem.CreatedAt,
		&rem.UpdatedAt,
	); err != nil {
		return reminders.Reminder{}, err
	}

	rem.Status = reminders.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		rem.CompletedAt = &t
	}
	if snoozedUntil.Valid {
		t := snoozedUntil.Time
		rem.SnoozedUntil = &t
	}

	return rem, nil
}

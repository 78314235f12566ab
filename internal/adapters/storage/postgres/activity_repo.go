package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"med-reminders/internal/domain/activity"
	"med-reminders/internal/ports/identity"
)

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) Create(ctx context.Context, e activity.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_entries (
			id, owner_ref, type, medication_id, created_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		e.ID,
		e.OwnerRef,
		string(e.Type),
		e.MedicationID,
		e.CreatedAt,
	)
	return err
}

func (r *ActivityRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, limit int) ([]activity.Entry, error) {
	if len(owner.Refs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = activity.DefaultListLimit
	}

	args := []any{}
	in, argN := inClause(owner.Refs, &args, 1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, owner_ref, type, medication_id, created_at
		FROM activity_entries
		WHERE owner_ref IN %s
		ORDER BY created_at DESC
		LIMIT $%d
	`, in, argN), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.Entry, 0)
	for rows.Next() {
		var e activity.Entry
		var typ string
		if err := rows.Scan(
			&e.ID,
			&e.OwnerRef,
			&typ,
			&e.MedicationID,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Type = activity.Type(typ)
		out = append(out, e)
	}

	return out, rows.Err()
}

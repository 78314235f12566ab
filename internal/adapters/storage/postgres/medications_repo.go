package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-reminders/internal/domain/medications"
	"med-reminders/internal/ports/identity"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, owner_ref,
			name, dosage, frequency,
			notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		m.ID,
		m.OwnerRef,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.Notes,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(owner.Refs) == 0 {
		return medications.Medication{}, ErrNotFound
	}

	args := []any{id}
	in, _ := inClause(owner.Refs, &args, 2)

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, owner_ref,
			name, dosage, frequency,
			notes,
			created_at, updated_at
		FROM medications
		WHERE id = $1 AND owner_ref IN `+in, args...)

	var m medications.Medication
	if err := row.Scan(
		&m.ID,
		&m.OwnerRef,
		&m.Name,
		&m.Dosage,
		&m.Frequency,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}

	return m, nil
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET name = $2,
			dosage = $3,
			frequency = $4,
			notes = $5,
			updated_at = $6
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.Notes,
		m.UpdatedAt,
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

func (r *MedicationsRepo) Delete(ctx context.Context, id string, owner identity.OwnerFilter) error {
	id = strings.TrimSpace(id)
	if id == "" || len(owner.Refs) == 0 {
		return ErrNotFound
	}

	args := []any{id}
	in, _ := inClause(owner.Refs, &args, 2)

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM medications
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

func (r *MedicationsRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter) ([]medications.Medication, error) {
	if len(owner.Refs) == 0 {
		return nil, nil
	}

	args := []any{}
	in, _ := inClause(owner.Refs, &args, 1)

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_ref,
			name, dosage, frequency,
			notes,
			created_at, updated_at
		FROM medications
		WHERE owner_ref IN `+in+`
		ORDER BY created_at ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		var m medications.Medication
		if err := rows.Scan(
			&m.ID,
			&m.OwnerRef,
			&m.Name,
			&m.Dosage,
			&m.Frequency,
			&m.Notes,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

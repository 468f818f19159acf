package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cura-agent/roster-service/internal/domain"
)

// RosterRepository persists roster entries so the in-memory rosters survive restarts.
type RosterRepository interface {
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.RosterEntry, error)
	Upsert(ctx context.Context, category domain.Category, entry domain.RosterEntry) error
	Delete(ctx context.Context, category domain.Category, id string) error
}

type rosterRepository struct {
	pool *pgxpool.Pool
}

// NewRosterRepository instantiates the repository.
func NewRosterRepository(pool *pgxpool.Pool) RosterRepository {
	return &rosterRepository{pool: pool}
}

func (r *rosterRepository) ListByCategory(ctx context.Context, category domain.Category) ([]domain.RosterEntry, error) {
	const query = `
        SELECT id, first_name, last_name, national_id, email, mobile, role, specialty
        FROM roster_entries
        WHERE category=$1
        ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RosterEntry
	for rows.Next() {
		var entry domain.RosterEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.FirstName,
			&entry.LastName,
			&entry.NationalID,
			&entry.Email,
			&entry.Mobile,
			&entry.Role,
			&entry.Specialty,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Upsert inserts entry at the end of its roster or updates it in place.
func (r *rosterRepository) Upsert(ctx context.Context, category domain.Category, entry domain.RosterEntry) error {
	const query = `
        INSERT INTO roster_entries (id, category, first_name, last_name, national_id, email, mobile, role, specialty)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (category, id) DO UPDATE
        SET first_name=EXCLUDED.first_name,
            last_name=EXCLUDED.last_name,
            national_id=EXCLUDED.national_id,
            email=EXCLUDED.email,
            mobile=EXCLUDED.mobile,
            role=EXCLUDED.role,
            specialty=EXCLUDED.specialty,
            updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		category,
		entry.FirstName,
		entry.LastName,
		entry.NationalID,
		entry.Email,
		entry.Mobile,
		entry.Role,
		entry.Specialty,
	)
	return err
}

func (r *rosterRepository) Delete(ctx context.Context, category domain.Category, id string) error {
	const query = `DELETE FROM roster_entries WHERE category=$1 AND id=$2`

	cmd, err := r.pool.Exec(ctx, query, category, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

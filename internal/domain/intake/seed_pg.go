package intake

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the part of *pgxpool.Pool the Postgres seed needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const seedQuery = `SELECT id::text AS id, nama, nik, diagnosa,
	to_char(tanggal_masuk, 'YYYY-MM-DD') AS tanggal_masuk, dokter, ruangan
	FROM patient ORDER BY created_at, id`

// PostgresSeed imports the starting roster from an existing patient table.
// It only reads; admissions made at runtime are never written back.
type PostgresSeed struct {
	db Querier
}

func NewPostgresSeed(db Querier) *PostgresSeed {
	return &PostgresSeed{db: db}
}

func (s *PostgresSeed) Load(ctx context.Context) ([]Patient, error) {
	rows, err := s.db.Query(ctx, seedQuery)
	if err != nil {
		return nil, fmt.Errorf("query seed patients: %w", err)
	}
	patients, err := pgx.CollectRows(rows, pgx.RowToStructByName[Patient])
	if err != nil {
		return nil, fmt.Errorf("scan seed patients: %w", err)
	}
	return NormalizeSeed(patients)
}

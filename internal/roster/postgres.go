package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
)

// PostgresStore keeps one roster row per org in the rosters table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a Postgres connection and verifies it.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "ping postgres")
	}
	return db, nil
}

// Load returns the org's roster.
func (s *PostgresStore) Load(ctx context.Context, orgID string) (Roster, error) {
	r := Roster{OrgID: orgID}
	var tenants []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document_id, tenants, updated_at FROM rosters WHERE org_id = $1`,
		orgID,
	).Scan(&r.DocumentID, &tenants, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Roster{}, eris.Wrapf(ErrNotFound, "org %s", orgID)
	}
	if err != nil {
		return Roster{}, eris.Wrapf(err, "load roster %s", orgID)
	}
	if err := json.Unmarshal(tenants, &r.Tenants); err != nil {
		return Roster{}, eris.Wrapf(err, "decode roster %s", orgID)
	}
	return r, nil
}

// Save upserts the org's roster.
func (s *PostgresStore) Save(ctx context.Context, r Roster) error {
	tenants, err := json.Marshal(r.Tenants)
	if err != nil {
		return eris.Wrap(err, "encode roster")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rosters (org_id, document_id, tenants, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (org_id) DO UPDATE
		   SET document_id = EXCLUDED.document_id,
		       tenants = EXCLUDED.tenants,
		       updated_at = EXCLUDED.updated_at`,
		r.OrgID, r.DocumentID, tenants, r.UpdatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "save roster %s", r.OrgID)
	}
	return nil
}

var _ Source = (*PostgresStore)(nil)


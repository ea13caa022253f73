package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// BoosterConfigRecord is one cached raw MTGJSON booster payload.
type BoosterConfigRecord struct {
	SetCode   string
	RawJSON   []byte
	SourceSet string // parent set code when inherited, else same as SetCode
	FetchedAt time.Time
}

// BoosterConfigRepository stores raw booster configuration payloads per set.
// The raw JSON is kept verbatim so conversion rules can change without
// refetching.
type BoosterConfigRepository struct {
	db *DB
}

// NewBoosterConfigRepository creates a repository over the cache database.
func NewBoosterConfigRepository(db *DB) *BoosterConfigRepository {
	return &BoosterConfigRepository{db: db}
}

// Save inserts or replaces a set's raw booster payload.
func (r *BoosterConfigRepository) Save(ctx context.Context, rec BoosterConfigRecord) error {
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO booster_configs (set_code, raw_json, source_set, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(set_code) DO UPDATE SET
			raw_json = excluded.raw_json,
			source_set = excluded.source_set,
			fetched_at = excluded.fetched_at
	`, rec.SetCode, string(rec.RawJSON), rec.SourceSet, rec.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("save booster config: %w", err)
	}
	return nil
}

// Get returns a set's cached payload, or ok=false on a cache miss or when
// the entry is older than the TTL. A zero TTL means entries never expire.
func (r *BoosterConfigRepository) Get(ctx context.Context, setCode string, ttl time.Duration) (BoosterConfigRecord, bool, error) {
	var rec BoosterConfigRecord
	var raw string
	err := r.db.conn.QueryRowContext(ctx, `
		SELECT set_code, raw_json, source_set, fetched_at
		FROM booster_configs
		WHERE set_code = ?
	`, setCode).Scan(&rec.SetCode, &raw, &rec.SourceSet, &rec.FetchedAt)
	if err == sql.ErrNoRows {
		return BoosterConfigRecord{}, false, nil
	}
	if err != nil {
		return BoosterConfigRecord{}, false, fmt.Errorf("query booster config: %w", err)
	}

	if ttl > 0 && time.Since(rec.FetchedAt) > ttl {
		return BoosterConfigRecord{}, false, nil
	}
	rec.RawJSON = []byte(raw)
	return rec, true, nil
}

// Delete removes a set's cached payload.
func (r *BoosterConfigRepository) Delete(ctx context.Context, setCode string) error {
	if _, err := r.db.conn.ExecContext(ctx, `DELETE FROM booster_configs WHERE set_code = ?`, setCode); err != nil {
		return fmt.Errorf("delete booster config: %w", err)
	}
	return nil
}

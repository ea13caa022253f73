package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
)

// SetCardRepository stores normalized catalog records per set.
type SetCardRepository struct {
	db *DB
}

// NewSetCardRepository creates a repository over the cache database.
func NewSetCardRepository(db *DB) *SetCardRepository {
	return &SetCardRepository{db: db}
}

// SaveCards inserts or replaces a set's card records in one transaction.
// Refreshing catalog data keeps the user's quantity and sorted state; new
// rows start at one owned copy, unsorted.
func (r *SetCardRepository) SaveCards(ctx context.Context, setCode string, list []*cards.Card, fetchedAt time.Time) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO set_cards (scryfall_id, set_code, name, rarity, fetched_at, quantity, sorted)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(scryfall_id) DO UPDATE SET
			set_code = excluded.set_code,
			name = excluded.name,
			rarity = excluded.rarity,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range list {
		quantity := c.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		if _, err := stmt.ExecContext(ctx, c.ScryfallID, setCode, c.Name, string(c.Rarity), fetchedAt.UTC(), quantity); err != nil {
			return fmt.Errorf("insert card %s: %w", c.ScryfallID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CardsBySet returns a set's cached cards ordered by name. An empty slice
// means the set is not cached.
func (r *SetCardRepository) CardsBySet(ctx context.Context, setCode string) ([]*cards.Card, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT scryfall_id, set_code, name, rarity, quantity, sorted
		FROM set_cards
		WHERE set_code = ?
		ORDER BY name
	`, setCode)
	if err != nil {
		return nil, fmt.Errorf("query set cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*cards.Card
	for rows.Next() {
		var c cards.Card
		var rarity string
		var sorted int
		if err := rows.Scan(&c.ScryfallID, &c.SetCode, &c.Name, &rarity, &c.Quantity, &sorted); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		c.Rarity = cards.Rarity(rarity)
		c.Sorted = sorted != 0
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}
	return list, nil
}

// IsSetCached reports whether a set has cached cards newer than the TTL.
// A zero TTL means cached data never expires.
func (r *SetCardRepository) IsSetCached(ctx context.Context, setCode string, ttl time.Duration) (bool, error) {
	var fetchedAt sql.NullTime
	err := r.db.conn.QueryRowContext(ctx, `
		SELECT MIN(fetched_at) FROM set_cards WHERE set_code = ?
	`, setCode).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query cache age: %w", err)
	}
	if !fetchedAt.Valid {
		return false, nil
	}

	if ttl > 0 && time.Since(fetchedAt.Time) > ttl {
		return false, nil
	}
	return true, nil
}

// SetSorted flags one card of a set as sorted or unsorted. Returns false when
// no card of that name exists in the set.
func (r *SetCardRepository) SetSorted(ctx context.Context, setCode, name string, sorted bool) (bool, error) {
	flag := 0
	if sorted {
		flag = 1
	}
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE set_cards SET sorted = ? WHERE set_code = ? AND name = ?
	`, flag, setCode, name)
	if err != nil {
		return false, fmt.Errorf("update sorted flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update sorted flag: %w", err)
	}
	return affected > 0, nil
}

// SetQuantity records how many copies of a card the user owns. Returns false
// when no card of that name exists in the set.
func (r *SetCardRepository) SetQuantity(ctx context.Context, setCode, name string, quantity int) (bool, error) {
	if quantity < 0 {
		return false, fmt.Errorf("quantity cannot be negative: %d", quantity)
	}
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE set_cards SET quantity = ? WHERE set_code = ? AND name = ?
	`, quantity, setCode, name)
	if err != nil {
		return false, fmt.Errorf("update quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update quantity: %w", err)
	}
	return affected > 0, nil
}

// DeleteSet removes a set's cached cards.
func (r *SetCardRepository) DeleteSet(ctx context.Context, setCode string) error {
	if _, err := r.db.conn.ExecContext(ctx, `DELETE FROM set_cards WHERE set_code = ?`, setCode); err != nil {
		return fmt.Errorf("delete set cards: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"log/slog"
)

// SQLiteStore keeps the ledger in the seen_items table.
type SQLiteStore struct {
	db *DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := NewConnection(path)
	if err != nil {
		return nil, err
	}

	schema, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("State database ready", "path", path, "schema_version", schema.Version)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, first_seen FROM seen_items`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen items: %w", err)
	}
	defer rows.Close()

	state := NewState()
	for rows.Next() {
		var key string
		var value any
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan seen item row: %w", err)
		}

		switch v := value.(type) {
		case int64:
			state.seen[key] = v
		case []byte:
			state.setMalformed(key, string(v))
		default:
			state.setMalformed(key, v)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seen item rows: %w", err)
	}

	return state, nil
}

// Save replaces the table contents in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, state *State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_items`); err != nil {
		return fmt.Errorf("failed to clear seen items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO seen_items (key, first_seen) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, ts := range state.seen {
		if _, err := stmt.ExecContext(ctx, key, ts); err != nil {
			return fmt.Errorf("failed to insert seen item: %w", err)
		}
	}
	for key, value := range state.malformed {
		if _, err := stmt.ExecContext(ctx, key, sqliteValue(value)); err != nil {
			return fmt.Errorf("failed to insert malformed item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqliteValue(value any) any {
	switch v := value.(type) {
	case string, float64, int64, bool:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

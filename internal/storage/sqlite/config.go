package sqlite

import (
	"context"
)

// SetConfig stores a configuration key/value pair, replacing any existing value.
func (s *SQLiteStorage) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	return wrapDBErrorf(err, "set config %s", key)
}

// GetConfig returns the value for a configuration key.
// Returns storage.ErrNotFound (wrapped) when the key is absent.
func (s *SQLiteStorage) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", wrapDBErrorf(err, "get config %s", key)
	}
	return value, nil
}

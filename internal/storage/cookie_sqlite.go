package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var _ CookieStore = (*SQLiteCookieStore)(nil)

type SQLiteCookieStore struct {
	db *sql.DB
}

// NewSQLiteCookieStore expects db to have the cookies migration applied.
func NewSQLiteCookieStore(db *sql.DB) *SQLiteCookieStore {
	return &SQLiteCookieStore{db: db}
}

func (s *SQLiteCookieStore) Load(ctx context.Context) ([]StoredCookie, error) {
	now := time.Now().UTC()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, now,
	); err != nil {
		return nil, fmt.Errorf("failed to prune expired cookies: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT host, name, value, path, domain, expires_at, secure, http_only
		FROM cookies
		ORDER BY host, domain, path, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []StoredCookie
	for rows.Next() {
		var (
			c       StoredCookie
			expires sql.NullTime
		)
		if err := rows.Scan(&c.Host, &c.Name, &c.Value, &c.Path, &c.Domain, &expires, &c.Secure, &c.HttpOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expires.Valid {
			c.Expires = expires.Time
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookies: %w", err)
	}
	return out, nil
}

func (s *SQLiteCookieStore) Save(ctx context.Context, cookies []StoredCookie) error {
	if len(cookies) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cookies (host, name, value, path, domain, expires_at, secure, http_only, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (host, domain, path, name) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cookie upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range cookies {
		var expires sql.NullTime
		if !c.Expires.IsZero() {
			expires = sql.NullTime{Time: c.Expires.UTC(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, c.Host, c.Name, c.Value, c.Path, c.Domain, expires, c.Secure, c.HttpOnly); err != nil {
			return fmt.Errorf("failed to save cookie %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cookies: %w", err)
	}
	return nil
}

func (s *SQLiteCookieStore) Delete(ctx context.Context, host string, domain string, path string, name string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE host = ? AND domain = ? AND path = ? AND name = ?`,
		host, domain, path, name,
	); err != nil {
		return fmt.Errorf("failed to delete cookie %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteCookieStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

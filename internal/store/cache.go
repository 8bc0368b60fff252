package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetCachedReport returns the cached response body for (user, route), or ""
// when there is no entry newer than ttl. Stale rows are left in place and
// simply overwritten by the next SaveReport.
func (s *Store) GetCachedReport(user, route string, ttl time.Duration) (string, error) {
	row := s.db.QueryRow(
		"SELECT body, created FROM ReportCache WHERE user = ? AND route = ?", user, route)
	var body string
	var created time.Time
	err := row.Scan(&body, &created)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting cached report: %w", err)
	}

	if time.Since(created) > ttl {
		return "", nil
	}
	return body, nil
}

// SaveReport stores a successful response body for (user, route). Errors are
// never cached; callers only reach this after a fully assembled report.
func (s *Store) SaveReport(user, route, body string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO ReportCache (user, route, body, created) VALUES (?, ?, ?, ?)",
		user, route, body, time.Now())
	if err != nil {
		return fmt.Errorf("saving cached report: %w", err)
	}
	return nil
}

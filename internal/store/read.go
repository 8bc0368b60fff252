package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Token is the persisted OAuth credential for a user.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// GetToken returns the stored credential, or a zero Token when the user has
// never authenticated.
func (s *Store) GetToken(user string) (Token, error) {
	row := s.db.QueryRow(
		"SELECT access_token, refresh_token, token_expiry FROM User WHERE name = ?", user)
	var tok Token
	var expiry sql.NullTime
	err := row.Scan(&tok.AccessToken, &tok.RefreshToken, &expiry)
	if err == sql.ErrNoRows {
		return Token{}, nil
	}
	if err != nil {
		return Token{}, fmt.Errorf("getting token: %w", err)
	}
	tok.Expiry = expiry.Time
	return tok, nil
}

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last updated: %w", err)
	}
	return t.Time, nil
}

// GetLatestListen returns the time of the most recent archived play.
func (s *Store) GetLatestListen(user string) (time.Time, error) {
	query := "SELECT date FROM Listen WHERE user = ? ORDER BY date DESC LIMIT 1"
	row := s.db.QueryRow(query, user)
	var date int64
	err := row.Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("scanning latest listen: %w", err)
	}
	return time.Unix(date, 0), nil
}

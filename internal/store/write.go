package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PlayImport is one recently-played event ready for archiving.
type PlayImport struct {
	Artist     string
	Album      string
	TrackName  string
	SpotifyID  string
	Popularity int
	PlayedAt   time.Time
}

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(user string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec("INSERT INTO User (name) VALUES (?)", user)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetLastUpdated(user string, updated time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_updated = ? WHERE name = ?", updated, user)
	if err != nil {
		return fmt.Errorf("updating last_updated for %q: %w", user, err)
	}
	return nil
}

// SaveToken stores the user's OAuth credentials. The refresh token is kept
// when the API rotates it out of the response.
func (s *Store) SaveToken(user string, tok Token) error {
	if tok.RefreshToken == "" {
		_, err := s.db.Exec(
			"UPDATE User SET access_token = ?, token_expiry = ? WHERE name = ?",
			tok.AccessToken, tok.Expiry, user)
		if err != nil {
			return fmt.Errorf("updating token for %q: %w", user, err)
		}
		return nil
	}

	_, err := s.db.Exec(
		"UPDATE User SET access_token = ?, refresh_token = ?, token_expiry = ? WHERE name = ?",
		tok.AccessToken, tok.RefreshToken, tok.Expiry, user)
	if err != nil {
		return fmt.Errorf("updating token for %q: %w", user, err)
	}
	return nil
}

// AddRecentPlays inserts a batch of play events transactionally. Replayed
// events are ignored, so re-importing an overlapping window is idempotent.
func (s *Store) AddRecentPlays(user string, plays []PlayImport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, play := range plays {
		if err := createArtist(tx, play.Artist); err != nil {
			return err
		}
		if err := createAlbum(tx, play.Artist, play.Album); err != nil {
			return err
		}
		trackID, err := createTrack(tx, play)
		if err != nil {
			return err
		}
		if err := createListen(tx, user, trackID, play.PlayedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func createArtist(tx *sql.Tx, name string) error {
	var dummy string
	err := tx.QueryRow("SELECT name FROM Artist WHERE name = ?", name).Scan(&dummy)
	if err == sql.ErrNoRows {
		_, err := tx.Exec("INSERT INTO Artist (name) VALUES (?)", name)
		if err != nil {
			return fmt.Errorf("inserting artist %q: %w", name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking artist %q: %w", name, err)
	}
	return nil
}

func createAlbum(tx *sql.Tx, artist, name string) error {
	var dummy string
	err := tx.QueryRow("SELECT name FROM Album WHERE artist = ? AND name = ?", artist, name).Scan(&dummy)
	if err == sql.ErrNoRows {
		_, err := tx.Exec("INSERT INTO Album (artist, name) VALUES (?, ?)", artist, name)
		if err != nil {
			return fmt.Errorf("inserting album %q for %q: %w", name, artist, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking album %q for %q: %w", name, artist, err)
	}
	return nil
}

func createTrack(tx *sql.Tx, play PlayImport) (int64, error) {
	var id int64
	err := tx.QueryRow(
		"SELECT id FROM Track WHERE artist = ? AND album = ? AND name = ?",
		play.Artist, play.Album, play.TrackName).Scan(&id)
	if err == nil {
		// Popularity drifts over time, keep the latest observation.
		if _, err := tx.Exec("UPDATE Track SET popularity = ? WHERE id = ?", play.Popularity, id); err != nil {
			return 0, fmt.Errorf("updating track %q: %w", play.TrackName, err)
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking track %q: %w", play.TrackName, err)
	}

	result, err := tx.Exec(
		"INSERT INTO Track (spotify_id, artist, album, name, popularity) VALUES (?, ?, ?, ?, ?)",
		play.SpotifyID, play.Artist, play.Album, play.TrackName, play.Popularity)
	if err != nil {
		return 0, fmt.Errorf("inserting track %q: %w", play.TrackName, err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting track id for %q: %w", play.TrackName, err)
	}
	return id, nil
}

func createListen(tx *sql.Tx, user string, trackID int64, playedAt time.Time) error {
	_, err := tx.Exec(
		"INSERT OR IGNORE INTO Listen (user, track, date) VALUES (?, ?, ?)",
		user, trackID, playedAt.Unix())
	if err != nil {
		return fmt.Errorf("inserting listen: %w", err)
	}
	return nil
}

package spotify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/acrompton/spotify-season-tools/internal/store"
)

const (
	authURL  = "https://accounts.spotify.com/authorize"
	tokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes covers everything the season summary needs: top items, the
// recently-played feed, and private playlist writes.
var Scopes = []string{
	"user-top-read",
	"user-read-recently-played",
	"playlist-modify-private",
}

// OAuthConfig builds the authorization-code config for the Spotify accounts
// service.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}
}

// TokenStore persists OAuth credentials between runs.
type TokenStore interface {
	GetToken(user string) (store.Token, error)
	SaveToken(user string, tok store.Token) error
}

// StoredTokenSource is an oauth2.TokenSource backed by the local store.
// Expiry-check-then-refresh happens under the mutex, and a rotated refresh
// token is persisted before the new access token is handed out.
type StoredTokenSource struct {
	cfg   *oauth2.Config
	store TokenStore
	user  string

	mu sync.Mutex
}

func NewStoredTokenSource(cfg *oauth2.Config, ts TokenStore, user string) *StoredTokenSource {
	return &StoredTokenSource{cfg: cfg, store: ts, user: user}
}

// expirySkew refreshes slightly early so a token never expires mid-request.
const expirySkew = 60 * time.Second

func (s *StoredTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.store.GetToken(s.user)
	if err != nil {
		return nil, fmt.Errorf("reading stored token: %w", err)
	}
	if saved.AccessToken == "" && saved.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	current := &oauth2.Token{
		AccessToken:  saved.AccessToken,
		RefreshToken: saved.RefreshToken,
		Expiry:       saved.Expiry,
		TokenType:    "Bearer",
	}
	if saved.AccessToken != "" && time.Until(saved.Expiry) > expirySkew {
		return current, nil
	}

	fresh, err := s.cfg.TokenSource(context.Background(), current).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w: %v", ErrNotAuthenticated, err)
	}

	if err := s.store.SaveToken(s.user, store.Token{
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		Expiry:       fresh.Expiry,
	}); err != nil {
		return nil, fmt.Errorf("persisting refreshed token: %w", err)
	}
	return fresh, nil
}

// Exchange completes the authorization-code flow and persists the resulting
// credential for the user.
func (s *StoredTokenSource) Exchange(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := s.store.SaveToken(s.user, store.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	return nil
}

package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	ytapi "google.golang.org/api/youtube/v3"
)

// ErrNoStoredToken is returned when the token file does not exist
var ErrNoStoredToken = errors.New("no stored YouTube token")

// Scopes needed to upload videos and manage comments
var Scopes = []string{ytapi.YoutubeUploadScope, ytapi.YoutubeForceSslScope}

// TokenStore keeps an OAuth token on disk and refreshes it when a client
// ID and secret are configured.
type TokenStore struct {
	config *oauth2.Config
	file   string
	mu     sync.Mutex
}

// NewTokenStore creates a token store. clientID and clientSecret may be empty,
// in which case stored tokens are returned without refresh.
func NewTokenStore(clientID, clientSecret, file string) *TokenStore {
	store := &TokenStore{file: file}
	if clientID != "" && clientSecret != "" {
		store.config = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		}
	}
	return store
}

// AccessToken returns a usable access token, refreshing and persisting it
// when it has expired.
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := tokenFromFile(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoStoredToken
		}
		return "", fmt.Errorf("failed to read token file %s: %w", s.file, err)
	}

	if s.config == nil {
		if tok.AccessToken == "" {
			return "", fmt.Errorf("token file %s has no access token", s.file)
		}
		return tok.AccessToken, nil
	}

	fresh, err := s.config.TokenSource(ctx, tok).Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh YouTube token: %w", err)
	}

	if fresh.AccessToken != tok.AccessToken {
		if err := saveToken(s.file, fresh); err != nil {
			logrus.Warnf("Refreshed token could not be saved: %v", err)
		} else {
			logrus.Info("Refreshed YouTube access token")
		}
	}

	return fresh.AccessToken, nil
}

// Save stores a token, creating the parent directory when needed
func (s *TokenStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveToken(s.file, tok)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}

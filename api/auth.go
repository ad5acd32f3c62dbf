// ABOUTME: OAuth2 setup for the YouTube service
// ABOUTME: Loads client credentials and a cached token from disk

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// NewService builds an authenticated YouTube service from a client
// credentials file and a cached token file. The token must already exist;
// run any installed-app OAuth consent flow once to produce it. Refreshed
// tokens are written back so the next session starts with a live one.
func NewService(ctx context.Context, credentialsPath, tokenPath string) (*youtube.Service, error) {
	credBytes, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", credentialsPath, err)
	}

	oauthConfig, err := google.ConfigFromJSON(credBytes, youtube.YoutubeScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w (run the auth setup first)", tokenPath, err)
	}

	source := &persistingTokenSource{
		path: tokenPath,
		src:  oauthConfig.TokenSource(ctx, token),
		last: token,
	}

	service, err := youtube.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return service, nil
}

// persistingTokenSource writes tokens back to disk whenever the wrapped
// source hands out a refreshed one.
type persistingTokenSource struct {
	path string
	src  oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil || token.AccessToken != s.last.AccessToken {
		if err := SaveToken(s.path, token); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}

		s.last = token
	}

	return token, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	return token, nil
}

// SaveToken writes a token to disk with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	return nil
}

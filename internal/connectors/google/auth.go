package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Scopes are the read-only OAuth2 scopes the connectors need.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/documents.readonly",
}

// NewTokenSource builds an oauth2.TokenSource, preferring application
// default credentials and falling back to an installed-app credentials
// file with a cached token. Returns domain.ErrAuthRequired when no
// cached token exists; run Authorise to create one.
func NewTokenSource(ctx context.Context, credentialsFile, tokenFile string) (oauth2.TokenSource, error) {
	if creds, err := googleoauth.FindDefaultCredentials(ctx, Scopes...); err == nil {
		logger.Debug("using application default credentials")
		return creds.TokenSource, nil
	}

	cfg, err := readOAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}

	token, err := readToken(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: no cached token at %s, run auth first", domain.ErrAuthRequired, tokenFile)
	}

	// Persist refreshed tokens so the next run skips the refresh.
	return &savingTokenSource{
		wrapped:   cfg.TokenSource(ctx, token),
		tokenFile: tokenFile,
	}, nil
}

// Authorise runs the installed-app authorisation flow: a loopback
// redirect server captures the code, and the exchanged token is written
// to tokenFile. notify receives the URL the user must open.
func Authorise(ctx context.Context, credentialsFile, tokenFile string, notify func(url string)) error {
	cfg, err := readOAuthConfig(credentialsFile)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close()

	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())
	state := uuid.NewString()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				errCh <- errors.New("authorisation state mismatch")
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "missing code", http.StatusBadRequest)
				errCh <- errors.New("authorisation response missing code")
				return
			}
			fmt.Fprintln(w, "Authorisation complete. You can close this tab.")
			codeCh <- code
		}),
	}
	go server.Serve(listener) //nolint:errcheck // shut down below
	defer server.Close()

	notify(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	var code string
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	case code = <-codeCh:
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorisation code: %w", err)
	}

	if err := writeToken(tokenFile, token); err != nil {
		return err
	}
	logger.Info("saved token to %s", tokenFile)
	return nil
}

// readOAuthConfig parses an installed-app credentials file.
func readOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: credentials file %s not found", domain.ErrAuthRequired, credentialsFile)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	cfg, err := googleoauth.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

// readToken loads a cached OAuth2 token from disk.
func readToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}

// writeToken persists a token with restricted permissions.
func writeToken(tokenFile string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(tokenFile, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// savingTokenSource writes tokens back to disk after a refresh so the
// refresh token round-trip happens once, not per run.
type savingTokenSource struct {
	wrapped   oauth2.TokenSource
	tokenFile string
	last      string
}

// Token implements oauth2.TokenSource.
func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.wrapped.Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := writeToken(s.tokenFile, token); err != nil {
			logger.Warn("could not persist refreshed token: %v", err)
		}
	}
	return token, nil
}

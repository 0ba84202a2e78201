package refresh

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-enrollment-client/httpclient"
	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	MessageSessionExpired       = "Your session has expired. Please log in again."
	MessageAuthenticationFailed = "Authentication failed. Please log in again."

	DefaultPath = "/auth/refresh-token"

	flightKey = "refresh"
)

// SessionStore is the part of token.Store the coordinator writes to.
type SessionStore interface {
	RotateAccessToken(ctx context.Context, tok string) error
	Clear(ctx context.Context) error
}

// LoginRedirector is the part of redirect.Notifier used on failure.
type LoginRedirector interface {
	RedirectToLogin(message string, showToast bool)
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Coordinator guarantees at most one refresh call is outstanding. Every
// caller that asks while a refresh is in flight shares its outcome.
type Coordinator struct {
	client   *httpclient.Client
	store    SessionStore
	redirect LoginRedirector
	path     string
	log      zerolog.Logger

	group singleflight.Group

	mu       sync.Mutex
	settling bool // A failed flight is clearing the session; Forget must not detach it
}

var _ httpclient.Refresher = (*Coordinator)(nil)

// New creates a coordinator. client must carry the cookie jar holding the
// refresh credential; path defaults to DefaultPath.
func New(client *httpclient.Client, store SessionStore, redirect LoginRedirector, path string, log zerolog.Logger) *Coordinator {
	if path == "" {
		path = DefaultPath
	}
	return &Coordinator{
		client:   client,
		store:    store,
		redirect: redirect,
		path:     path,
		log:      log.With().Str("component", "refresh").Logger(),
	}
}

// Refresh returns a new access token. The shared refresh is not cancelled
// when ctx is; ctx only bounds how long this caller waits for it.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Forget drops the in-flight marker so the next Refresh starts a new call.
// Callers already waiting still receive the outcome of the old one. It is a
// no-op while a failing flight ends the session itself, so callers arriving
// during that teardown still join the failing flight.
func (c *Coordinator) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settling {
		return
	}
	c.group.Forget(flightKey)
}

func (c *Coordinator) refresh(ctx context.Context) (string, error) {
	var resp refreshResponse
	err := c.client.Post(ctx, c.path, nil, &resp)
	if err == nil && resp.AccessToken == "" {
		err = &httpclient.DecodeError{Err: fmt.Errorf("refresh response has no accessToken")}
	}
	if err != nil {
		return "", c.fail(ctx, err)
	}

	// The token must be stored before waiters are released so their retries use it
	if err := c.store.RotateAccessToken(ctx, resp.AccessToken); err != nil {
		if errors.Is(err, errors.ErrSessionNotFound) {
			c.log.Debug().Msg("Session was cleared while refreshing; discarding token")
			return "", err
		}
		return "", c.fail(ctx, err)
	}

	c.log.Debug().Msg("Access token refreshed")
	return resp.AccessToken, nil
}

func (c *Coordinator) fail(ctx context.Context, cause error) error {
	sentinel, message := errors.ErrAuthenticationFailed, MessageAuthenticationFailed
	if status, ok := httpclient.StatusCode(cause); ok && status == http.StatusUnauthorized {
		sentinel, message = errors.ErrSessionExpired, MessageSessionExpired
	}

	c.mu.Lock()
	c.settling = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.settling = false
		c.mu.Unlock()
	}()

	c.log.Info().Err(cause).Msg("Token refresh failed; ending session")
	if err := c.store.Clear(ctx); err != nil {
		c.log.Err(err).Msg("Failed to clear session after refresh failure")
	}
	c.redirect.RedirectToLogin(message, true)

	return fmt.Errorf("%w: %w", sentinel, cause)
}

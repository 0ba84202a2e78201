package auth

import (
	"context"

	"github.com/jrsteele09/go-enrollment-client/httpclient"
	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/token"
	"github.com/jrsteele09/go-enrollment-client/users"
	"github.com/rs/zerolog"
)

const MessageLoggedOut = "You have been logged out."

// Redirector is the part of redirect.Notifier the session flows drive.
type Redirector interface {
	RedirectToLogin(message string, showToast bool)
	RedirectToDashboard(role users.RoleType)
}

// Paths are the backend endpoints used by the session flows, relative to the
// client's base URL.
type Paths struct {
	Login  string
	Logout string
}

type loginResponse struct {
	AccessToken string         `json:"accessToken"`
	User        *users.Profile `json:"user"`
}

// Service runs login, logout and app-start restore on top of the token store.
type Service struct {
	client    *httpclient.Client   // API client; auth paths are sent without a bearer token
	store     *token.Store         // Session state
	refresher httpclient.Refresher // Shared refresh used by Restore
	redirect  Redirector           // Screen changes after login and logout
	paths     Paths
	log       zerolog.Logger
}

func NewService(client *httpclient.Client, store *token.Store, refresher httpclient.Refresher, redirect Redirector, paths Paths, log zerolog.Logger) *Service {
	if paths.Login == "" {
		paths.Login = "/auth/login"
	}
	if paths.Logout == "" {
		paths.Logout = "/auth/logout"
	}
	return &Service{
		client:    client,
		store:     store,
		refresher: refresher,
		redirect:  redirect,
		paths:     paths,
		log:       log.With().Str("component", "auth").Logger(),
	}
}

// Login exchanges credentials for a session. The refresh credential arrives
// as a cookie and is kept by the client's jar; the access token and profile
// are stored together before the user is sent to their dashboard.
func (s *Service) Login(ctx context.Context, creds Credentials) (*users.Profile, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := s.client.Post(ctx, s.paths.Login, creds, &resp); err != nil {
		s.log.Info().Err(err).Bool("email", creds.IsEmail()).Msg("Login rejected")
		return nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, errors.ErrInvalidLoginResponse
	}
	if !resp.User.Role.Valid() {
		s.log.Warn().Str("role", string(resp.User.Role)).Msg("Login returned an unknown role")
	}

	if err := s.store.Establish(ctx, resp.AccessToken, resp.User); err != nil {
		return nil, errors.Wrapf(err, "[auth Service] establish session")
	}

	s.log.Info().Str("userID", resp.User.ID).Str("role", string(resp.User.Role)).Msg("Logged in")
	s.redirect.RedirectToDashboard(resp.User.Role)
	return resp.User, nil
}

// Logout tells the backend to revoke the refresh credential, then ends the
// local session whatever the backend said. Only a local teardown failure is
// returned.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, s.paths.Logout, nil, nil); err != nil {
		s.log.Warn().Err(err).Msg("Logout request failed; clearing local session anyway")
	}

	err := s.store.Clear(ctx)
	s.redirect.RedirectToLogin(MessageLoggedOut, true)
	if err != nil {
		return errors.Wrapf(err, "[auth Service] logout")
	}
	s.log.Info().Msg("Logged out")
	return nil
}

// Restore resumes a stored session at app start. A missing or expired access
// token is refreshed once; if that fails the refresher has already ended the
// session and scheduled the login redirect.
func (s *Service) Restore(ctx context.Context) (*users.Profile, error) {
	profile := s.store.UserProfile(ctx)
	if profile == nil {
		return nil, errors.ErrNotAuthenticated
	}

	if tok := s.store.AccessToken(ctx); tok != "" && !s.store.IsExpired(tok) {
		return profile, nil
	}

	s.log.Debug().Msg("Stored access token missing or expired; refreshing")
	if _, err := s.refresher.Refresh(ctx); err != nil {
		return nil, err
	}
	return profile, nil
}

// CurrentUser returns the stored profile, or nil when logged out.
func (s *Service) CurrentUser(ctx context.Context) *users.Profile {
	return s.store.UserProfile(ctx)
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.store.IsAuthenticated(ctx)
}

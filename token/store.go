package token

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/storage"
	"github.com/jrsteele09/go-enrollment-client/users"
	"github.com/rs/zerolog"
)

// Storage keys for the persisted session
const (
	AccessTokenKey = "accessToken"
	UserKey        = "user"
	UserRoleKey    = "userRole"
)

var sessionKeys = []string{AccessTokenKey, UserKey, UserRoleKey}

// Store is the single source of truth for the access token and cached user
// profile. Mutations are serialised; the token is cached in memory and
// read back from storage when a fresh Store has not seen it yet.
type Store struct {
	repo storage.Repo
	log  zerolog.Logger

	mu          sync.RWMutex
	accessToken string
	hidden      map[string]bool // Keys cleared in this process; storage is not consulted for them
	onClear     []func()
}

func NewStore(repo storage.Repo, log zerolog.Logger) *Store {
	return &Store{
		repo:   repo,
		log:    log.With().Str("component", "token-store").Logger(),
		hidden: map[string]bool{},
	}
}

// OnClear registers fn to run after every Clear.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// AccessToken returns the current token or "" when there is none.
func (s *Store) AccessToken(ctx context.Context) string {
	s.mu.RLock()
	tok := s.accessToken
	s.mu.RUnlock()
	if tok != "" {
		return tok
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken != "" || s.hidden[AccessTokenKey] {
		return s.accessToken
	}
	stored, err := s.repo.Get(ctx, AccessTokenKey)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			s.log.Warn().Err(err).Msg("Failed to read access token from storage")
		}
		return ""
	}
	s.accessToken = stored
	return stored
}

// SetAccessToken stores tok; "" removes it. The token's shape is not checked.
func (s *Store) SetAccessToken(ctx context.Context, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setAccessTokenLocked(ctx, tok)
}

func (s *Store) setAccessTokenLocked(ctx context.Context, tok string) error {
	var err error
	if tok == "" {
		err = s.repo.Delete(ctx, AccessTokenKey)
	} else {
		err = s.repo.Set(ctx, AccessTokenKey, tok)
	}
	if err != nil {
		return errors.Wrapf(err, "[token Store] persist access token")
	}
	s.accessToken = tok
	delete(s.hidden, AccessTokenKey)
	return nil
}

// UserProfile returns the cached profile, or nil if it is missing or unreadable.
func (s *Store) UserProfile(ctx context.Context) *users.Profile {
	s.mu.RLock()
	hidden := s.hidden[UserKey]
	s.mu.RUnlock()
	if hidden {
		return nil
	}

	raw, err := s.repo.Get(ctx, UserKey)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			s.log.Warn().Err(err).Msg("Failed to read user profile from storage")
		}
		return nil
	}
	var p users.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Debug().Err(err).Msg("Discarding unreadable user profile")
		return nil
	}
	return &p
}

// SetUserProfile persists the profile and its role; nil removes both.
func (s *Store) SetUserProfile(ctx context.Context, profile *users.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile == nil {
		return errors.Wrapf(s.repo.Delete(ctx, UserKey, UserRoleKey), "[token Store] remove user profile")
	}
	values, err := profileValues(profile)
	if err != nil {
		return err
	}
	if err := s.repo.SetMulti(ctx, values); err != nil {
		return errors.Wrapf(err, "[token Store] persist user profile")
	}
	delete(s.hidden, UserKey)
	delete(s.hidden, UserRoleKey)
	return nil
}

// Establish starts a session: the token, profile and role are written in one
// storage transaction, so either all of them are stored or none is.
func (s *Store) Establish(ctx context.Context, tok string, profile *users.Profile) error {
	if tok == "" || profile == nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "[token Store] session needs both a token and a profile")
	}
	values, err := profileValues(profile)
	if err != nil {
		return err
	}
	values[AccessTokenKey] = tok

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.SetMulti(ctx, values); err != nil {
		return errors.Wrapf(err, "[token Store] establish session")
	}
	s.accessToken = tok
	s.hidden = map[string]bool{}
	return nil
}

// RotateAccessToken replaces the token of an existing session. It fails with
// ErrSessionNotFound once the session has been cleared, so a refresh that
// finishes after logout cannot resurrect a token without a profile.
func (s *Store) RotateAccessToken(ctx context.Context, tok string) error {
	if tok == "" {
		return errors.ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hidden[UserKey] {
		return errors.ErrSessionNotFound
	}
	if _, err := s.repo.Get(ctx, UserKey); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.ErrSessionNotFound
		}
		return errors.Wrapf(err, "[token Store] read user profile")
	}
	return s.setAccessTokenLocked(ctx, tok)
}

// Clear removes the token, profile and role from memory and storage and then
// runs the OnClear hooks, even when the storage delete fails. Either way the
// store reports no session until the next Establish.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken = ""
	for _, k := range sessionKeys {
		s.hidden[k] = true
	}
	err := s.repo.Delete(ctx, sessionKeys...)
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return errors.Wrapf(err, "[token Store] clear session")
}

// IsAuthenticated holds when both a token and a profile are present.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.AccessToken(ctx) != "" && s.UserProfile(ctx) != nil
}

func (s *Store) IsExpired(tok string) bool {
	return IsExpired(tok)
}

func profileValues(profile *users.Profile) (map[string]string, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, errors.Wrapf(err, "[token Store] encode user profile")
	}
	return map[string]string{
		UserKey:     string(data),
		UserRoleKey: string(profile.Role),
	}, nil
}

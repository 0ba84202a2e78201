package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/storage"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// CookieStorageKey is where the jar keeps its cookies in storage.Repo.
const CookieStorageKey = "cookies"

type storedCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// PersistentJar is a cookie jar whose contents survive a restart. It is how
// the backend's refresh cookie outlives the process; the session layer
// never reads cookie values.
type PersistentJar struct {
	jar  *cookiejar.Jar
	repo storage.Repo
	log  zerolog.Logger

	mu      sync.Mutex
	cookies map[string]storedCookie // host|path|name -> cookie
}

var _ http.CookieJar = (*PersistentJar)(nil)

// NewCookieJar loads previously saved cookies from repo.
func NewCookieJar(ctx context.Context, repo storage.Repo, log zerolog.Logger) (*PersistentJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrapf(err, "[httpclient NewCookieJar] create jar")
	}
	j := &PersistentJar{
		jar:     jar,
		repo:    repo,
		log:     log,
		cookies: make(map[string]storedCookie),
	}

	raw, err := repo.Get(ctx, CookieStorageKey)
	if errors.Is(err, errors.ErrNotFound) {
		return j, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[httpclient NewCookieJar] load cookies")
	}

	var saved []storedCookie
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable saved cookies")
		return j, nil
	}
	now := time.Now()
	for _, c := range saved {
		u, err := url.Parse(c.URL)
		if err != nil || c.expired(now) {
			continue
		}
		j.jar.SetCookies(u, []*http.Cookie{c.httpCookie()})
		j.cookies[cookieID(u, c.Path, c.Name)] = c
	}
	return j, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	// Keep the request path so a restored cookie without a Path gets the same default path
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
	for _, c := range cookies {
		id := cookieID(u, c.Path, c.Name)
		sc := storedCookie{
			URL:      origin,
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || c.Value == "" || sc.expired(now) {
			delete(j.cookies, id)
			continue
		}
		j.cookies[id] = sc
	}
	j.saveLocked()
}

func (j *PersistentJar) saveLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(j.cookies) == 0 {
		if err := j.repo.Delete(ctx, CookieStorageKey); err != nil {
			j.log.Warn().Err(err).Msg("Failed to remove saved cookies")
		}
		return
	}

	list := make([]storedCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		list = append(list, c)
	}
	data, err := json.Marshal(list)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to encode cookies")
		return
	}
	if err := j.repo.Set(ctx, CookieStorageKey, string(data)); err != nil {
		j.log.Warn().Err(err).Msg("Failed to save cookies")
	}
}

func (c storedCookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

func cookieID(u *url.URL, path, name string) string {
	return u.Host + "|" + path + "|" + name
}

package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// TokenSource supplies the current access token ("" when there is none).
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Refresher exchanges the refresh credential for a new access token.
// Concurrent callers are expected to share a single refresh.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// retryKey marks a request that is already the retry of a 401. Its value is
// the refreshed token to send.
type retryKey struct{}

// AuthTransport attaches the bearer token to outgoing requests and recovers
// from one 401 per request by refreshing the token and re-issuing the request.
// Requests to authentication endpoints pass through untouched.
type AuthTransport struct {
	next      http.RoundTripper
	tokens    TokenSource
	refresher Refresher
	authPaths map[string]struct{} // Request paths, base path included
	log       zerolog.Logger
}

// NewAuthTransport exempts authPaths, resolved against the path of baseURL
// (e.g. "/auth/login" under "https://host/api" is "/api/auth/login").
func NewAuthTransport(next http.RoundTripper, tokens TokenSource, refresher Refresher, baseURL string, authPaths []string, log zerolog.Logger) *AuthTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	var basePath string
	if u, err := url.Parse(baseURL); err == nil {
		basePath = strings.TrimRight(u.Path, "/")
	}
	exempt := make(map[string]struct{}, len(authPaths))
	for _, p := range authPaths {
		if p = strings.Trim(p, "/"); p != "" {
			exempt[basePath+"/"+p] = struct{}{}
		}
	}
	return &AuthTransport{
		next:      next,
		tokens:    tokens,
		refresher: refresher,
		authPaths: exempt,
		log:       log,
	}
}

// AuthInterceptor returns the AuthTransport as a chain element.
func AuthInterceptor(tokens TokenSource, refresher Refresher, baseURL string, authPaths []string, log zerolog.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return NewAuthTransport(next, tokens, refresher, baseURL, authPaths, log)
	}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.isAuthEndpoint(req.URL.Path) {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	retryToken, isRetry := ctx.Value(retryKey{}).(string)

	tok := retryToken
	if !isRetry {
		tok = t.tokens.AccessToken(ctx)
	}

	out := req.Clone(ctx)
	if tok != "" {
		setBearer(out, tok)
	}

	resp, err := t.next.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if isRetry {
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		t.log.Warn().Str("path", req.URL.Path).Msg("401 on a request whose body cannot be replayed; not retrying")
		return resp, nil
	}

	drainAndClose(resp.Body)

	newToken, err := t.refresher.Refresh(ctx)
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	retry := req.Clone(context.WithValue(ctx, retryKey{}, newToken))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	t.log.Debug().Str("path", req.URL.Path).Msg("Retrying request with refreshed token")
	return t.RoundTrip(retry)
}

func (t *AuthTransport) isAuthEndpoint(path string) bool {
	_, ok := t.authPaths[strings.TrimRight(path, "/")]
	return ok
}

func setBearer(r *http.Request, tok string) {
	(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(r)
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

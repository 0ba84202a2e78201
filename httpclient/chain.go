package httpclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Interceptor wraps a RoundTripper with request or response handling.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base so that the first interceptor sees the request first.
func Chain(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	chained := base
	// Apply interceptors in reverse order
	for i := len(interceptors) - 1; i >= 0; i-- {
		chained = interceptors[i](chained)
	}
	return chained
}

const RequestIDHeader = "X-Request-Id"

// RequestIDInterceptor tags each request with a fresh id unless one is set.
func RequestIDInterceptor() Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(r)
			}
			out := r.Clone(r.Context())
			out.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(out)
		})
	}
}

// LoggingInterceptor writes one debug line per round trip.
func LoggingInterceptor(log zerolog.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			evt := log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get(RequestIDHeader)).
				Dur("took", time.Since(start))
			if err != nil {
				evt.Err(err).Msg("Request error")
				return resp, err
			}
			evt.Int("status", resp.StatusCode).Msg("Request")
			return resp, nil
		})
	}
}

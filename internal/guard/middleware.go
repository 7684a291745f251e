package guard

import (
	"net/http"

	"go.uber.org/zap"
)

// AuthProvider resolves the AuthState of an incoming request.
type AuthProvider interface {
	AuthState(r *http.Request) AuthState
}

// DenyFunc writes the response for a request that must not see the view.
type DenyFunc func(w http.ResponseWriter, r *http.Request, d Decision)

type options struct {
	logger  *zap.SugaredLogger
	deny    DenyFunc
	onCheck func(Decision)
}

// Option configures Require.
type Option func(*options)

// WithLogger logs every decision at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithDeny replaces the default redirect, e.g. with a JSON 401/403 for APIs.
func WithDeny(f DenyFunc) Option {
	return func(o *options) { o.deny = f }
}

// WithObserver is called with every decision, used for metrics.
func WithObserver(f func(Decision)) Option {
	return func(o *options) { o.onCheck = f }
}

// RedirectDeny sends the client to the decision's target.
func RedirectDeny(w http.ResponseWriter, r *http.Request, d Decision) {
	http.Redirect(w, r, d.RedirectTo, http.StatusFound)
}

const loadingPage = `<!doctype html><html><head><meta charset="utf-8"><title>Loading</title></head>` +
	`<body><div class="loading" aria-busy="true">Loading...</div></body></html>`

// Require wraps next so that it only runs for requests Decide allows.
func Require(provider AuthProvider, req Requirements, opts ...Option) func(http.Handler) http.Handler {
	o := options{deny: RedirectDeny}
	for _, opt := range opts {
		opt(&o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Decide(provider.AuthState(r), req)
			if o.onCheck != nil {
				o.onCheck(d)
			}
			if o.logger != nil {
				o.logger.Debugw("route guard",
					"path", r.URL.Path,
					"outcome", d.Outcome.String(),
					"redirect", d.RedirectTo,
				)
			}
			switch d.Outcome {
			case OutcomeAllow:
				next.ServeHTTP(w, r)
			case OutcomeLoading:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Cache-Control", "no-store")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(loadingPage))
			default:
				o.deny(w, r, d)
			}
		})
	}
}

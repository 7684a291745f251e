package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/auth"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/guard"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/menu"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/offline"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/subscriber"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/user"
	"github.com/ovaphlow/pitchfork/service-stefano-api/pkg/utilities"
)

const (
	ServiceName     = "stefano-api"
	RequestIDHeader = "X-Request-ID"
)

// Deps are the components mounted by RegisterRoutes.
type Deps struct {
	Menu        *menu.Handler
	Users       *user.Handler
	Subscribers *subscriber.Handler
	Offline     *offline.Handler
	Host        *offline.Host
	Sessions    *auth.Provider
	Registry    *prometheus.Registry
}

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs requests at debug level with their request id.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", w.Header().Get(RequestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// RequestIDMiddleware echoes an incoming X-Request-ID or assigns a new KSUID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = utilities.NewKSUID()
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// menu images may come from any https host
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:; object-src 'none'; base-uri 'self';")
			}

			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// serviceWorkerScope lets the worker script control the whole site.
func serviceWorkerScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Service-Worker-Allowed", "/")
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "service": ServiceName})
}

// RegisterRoutes mounts HTTP handlers on the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, d Deps) http.Handler {
	mux := http.NewServeMux()

	decisions := promauto.With(d.Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "stefano",
		Subsystem: "guard",
		Name:      "decisions_total",
		Help:      "Route guard decisions by route and outcome.",
	}, []string{"route", "outcome"})
	protect := func(route string, req guard.Requirements, opts ...guard.Option) func(http.Handler) http.Handler {
		opts = append([]guard.Option{
			guard.WithLogger(logger),
			guard.WithObserver(func(dec guard.Decision) {
				decisions.WithLabelValues(route, dec.Outcome.String()).Inc()
			}),
		}, opts...)
		return guard.Require(d.Sessions, req, opts...)
	}
	// credential and subscription endpoints share one per-client budget
	throttle := RateLimitMiddleware(rate.Every(time.Second), 10, logger)
	limited := func(h http.HandlerFunc) http.Handler { return throttle(h) }
	adminAPI := func(route string) func(http.Handler) http.Handler {
		return protect(route, guard.Requirements{RequireAdmin: true}, guard.WithDeny(auth.JSONDeny))
	}

	mux.HandleFunc("GET /health", health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /.well-known/jwks.json", auth.JWKSHandler(d.Sessions.Tokens()))

	// menu
	mux.HandleFunc("GET /api/menu", d.Menu.List)
	mux.Handle("POST /api/menu", adminAPI("menu_create")(http.HandlerFunc(d.Menu.Create)))

	// auth and users
	mux.Handle("POST /api/auth/signup", limited(d.Users.Signup))
	mux.Handle("POST /api/auth/login", limited(d.Users.Login))
	mux.HandleFunc("POST /api/auth/logout", d.Users.Logout)
	mux.HandleFunc("GET /api/auth/me", d.Users.Me)
	mux.Handle("PUT /api/users/{id}/flags", adminAPI("user_flags")(http.HandlerFunc(d.Users.UpdateFlags)))

	// push
	signedIn := protect("push_subscribe", guard.Requirements{}, guard.WithDeny(auth.JSONDeny))
	mux.Handle("POST /api/push/subscribe", throttle(signedIn(http.HandlerFunc(d.Subscribers.Subscribe))))
	mux.Handle("GET /api/push/subscribers", adminAPI("push_subscribers")(http.HandlerFunc(d.Subscribers.List)))
	mux.Handle("POST /api/push", adminAPI("push")(http.HandlerFunc(d.Offline.Push)))

	// offline cache administration
	mux.Handle("GET /api/offline/status", adminAPI("offline_status")(http.HandlerFunc(d.Offline.Status)))
	mux.Handle("POST /api/offline/install", adminAPI("offline_install")(http.HandlerFunc(d.Offline.Install)))

	// guarded pages, served from the offline host once allowed
	pages := []struct {
		path string
		req  guard.Requirements
	}{
		{"/order", guard.Requirements{}},
		{"/admin", guard.Requirements{RequireAdmin: true}},
		{"/loyalty", guard.Requirements{RequireLoyalty: true}},
	}
	for _, p := range pages {
		page := protect(p.path[1:], p.req)(d.Host)
		mux.Handle("GET "+p.path, page)
		mux.Handle("GET "+p.path+"/", page)
	}

	mux.Handle("GET /sw.js", serviceWorkerScope(d.Host))
	mux.Handle("/", d.Host)

	return RequestIDMiddleware()(LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux)))
}

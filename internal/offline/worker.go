// Package offline keeps a versioned precache of the site shell, serves
// requests from it before touching the network, and shows push messages.
package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-stefano-api/pkg/utilities"
)

// State is the lifecycle position of a Worker.
type State int

const (
	StateUninstalled State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActive
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateRedundant:
		return "redundant"
	default:
		return "unknown"
	}
}

var (
	ErrInstallFailed      = errors.New("install failed")
	ErrInvalidState       = errors.New("invalid lifecycle state")
	ErrIncompleteManifest = errors.New("precache manifest must list the root document and the web app manifest")
)

// Doer performs network requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Worker.
type Options struct {
	// Version names the cache bucket; it is fixed for the worker's lifetime.
	Version  string
	Origin   string
	Manifest []string
	Client   Doer
	Notifier Notifier
	Metrics  *Metrics
	Logger   *zap.SugaredLogger
}

// Worker is one deployed version of the offline cache.
type Worker struct {
	version  string
	origin   *url.URL
	precache []string
	storage  *Storage
	client   Doer
	notifier Notifier
	metrics  *Metrics
	logger   *zap.SugaredLogger

	mu    sync.RWMutex
	state State
}

// NewWorker validates opts and returns an uninstalled worker.
func NewWorker(storage *Storage, opts Options) (*Worker, error) {
	if strings.TrimSpace(opts.Version) == "" {
		return nil, errors.New("offline: version is required")
	}
	origin, err := url.Parse(opts.Origin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("offline: invalid origin %q", opts.Origin)
	}
	if err := validateManifest(opts.Manifest); err != nil {
		return nil, err
	}
	precache := make([]string, 0, len(opts.Manifest))
	seen := map[string]bool{}
	for _, p := range opts.Manifest {
		ref, err := url.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("offline: invalid manifest entry %q: %w", p, err)
		}
		abs := origin.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			precache = append(precache, abs)
		}
	}
	w := &Worker{
		version:  opts.Version,
		origin:   origin,
		precache: precache,
		storage:  storage,
		client:   opts.Client,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	if w.client == nil {
		w.client = &http.Client{Timeout: 10 * time.Second}
	}
	if w.metrics == nil {
		w.metrics = NewMetrics(nil)
	}
	if w.logger == nil {
		w.logger = zap.NewNop().Sugar()
	}
	return w, nil
}

func validateManifest(paths []string) error {
	var hasRoot, hasManifest bool
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "/" || p == "/index.html" {
			hasRoot = true
		}
		base := path.Base(p)
		if strings.HasSuffix(base, ".webmanifest") || strings.HasSuffix(base, "manifest.json") {
			hasManifest = true
		}
	}
	if !hasRoot || !hasManifest {
		return ErrIncompleteManifest
	}
	return nil
}

func (w *Worker) Version() string { return w.version }

// Origin is the base URL manifest entries and proxied requests resolve against.
func (w *Worker) Origin() *url.URL { return w.origin }

// Precache returns the absolute URLs stored at install time.
func (w *Worker) Precache() []string { return append([]string(nil), w.precache...) }

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) transition(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != from {
		return fmt.Errorf("%w: %s, want %s", ErrInvalidState, w.state, from)
	}
	w.state = to
	return nil
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Install fetches every precache URL and stores them all in the version's
// bucket. Any failure aborts the install and nothing is stored.
func (w *Worker) Install(ctx context.Context) error {
	if err := w.transition(StateUninstalled, StateInstalling); err != nil {
		return err
	}
	entries := make([]*Entry, 0, len(w.precache))
	for _, u := range w.precache {
		e, err := w.fetchForCache(ctx, u)
		if err != nil {
			w.setState(StateRedundant)
			w.metrics.installs.WithLabelValues("failed").Inc()
			w.logger.Warnw("offline install failed", "version", w.version, "url", u, "err", err)
			return fmt.Errorf("%w: %s: %v", ErrInstallFailed, u, err)
		}
		entries = append(entries, e)
	}
	w.storage.Put(w.version, entries)
	w.setState(StateInstalled)
	w.metrics.installs.WithLabelValues("ok").Inc()
	w.logger.Infow("offline install complete", "version", w.version, "entries", len(entries))
	return nil
}

func (w *Worker) fetchForCache(ctx context.Context, u string) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return capture(u, resp)
}

// Activate deletes every bucket that does not belong to this version. Once
// started it runs to completion.
func (w *Worker) Activate(_ context.Context) error {
	if err := w.transition(StateInstalled, StateActivating); err != nil {
		return err
	}
	for _, name := range w.storage.Keys() {
		if name != w.version && w.storage.Delete(name) {
			w.logger.Infow("offline cache pruned", "bucket", name, "version", w.version)
		}
	}
	w.setState(StateActive)
	w.metrics.activations.Inc()
	return nil
}

// Fetch answers GET requests from any bucket and falls through to the network
// for everything else. Network responses are not stored.
func (w *Worker) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet {
		if e, ok := w.storage.Match(req.URL.String()); ok {
			w.metrics.fetches.WithLabelValues("hit").Inc()
			return e.Response(req), nil
		}
	}
	resp, err := w.client.Do(req.WithContext(ctx))
	if err != nil {
		w.metrics.fetches.WithLabelValues("error").Inc()
		return nil, err
	}
	w.metrics.fetches.WithLabelValues("miss").Inc()
	return resp, nil
}

// Push shows a notification for payload, or for DefaultPushMessage when the
// payload is empty.
func (w *Worker) Push(ctx context.Context, payload []byte) (Notification, error) {
	body := strings.TrimSpace(string(payload))
	if body == "" {
		body = DefaultPushMessage
	}
	n := Notification{
		Title:   NotificationTitle,
		Body:    body,
		Icon:    NotificationIcon,
		Badge:   NotificationBadge,
		Tag:     utilities.NewSnowflakeID(),
		Vibrate: append([]int(nil), NotificationVibrate...),
		Data: NotificationData{
			DateOfArrival: time.Now().UTC(),
			PrimaryKey:    primaryKey,
		},
	}
	if w.notifier == nil {
		w.metrics.pushes.WithLabelValues("shown").Inc()
		return n, nil
	}
	if err := w.notifier.Notify(ctx, n); err != nil {
		w.metrics.pushes.WithLabelValues("failed").Inc()
		return n, fmt.Errorf("show notification: %w", err)
	}
	w.metrics.pushes.WithLabelValues("shown").Inc()
	return n, nil
}

func (w *Worker) markRedundant() { w.setState(StateRedundant) }

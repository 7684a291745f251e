package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrNoController = errors.New("no active offline worker")

// credentials for this API never reach the static origin
var privateHeaders = []string{"Authorization", "Cookie"}

// hop-by-hop headers are not forwarded to the origin
var hopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

// Host runs workers: it sequences install and activate, keeps the single
// controlling worker and dispatches fetch and push events to it.
type Host struct {
	storage *Storage
	origin  *url.URL
	client  Doer
	logger  *zap.SugaredLogger

	registerMu sync.Mutex
	controller atomic.Pointer[Worker]
	claimedAt  atomic.Int64
}

// NewHost returns a host proxying to origin. Until a worker is registered every
// request goes straight to the network.
func NewHost(storage *Storage, origin string, client Doer, logger *zap.SugaredLogger) (*Host, error) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("offline: invalid origin %q", origin)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Host{storage: storage, origin: u, client: client, logger: logger}, nil
}

// Storage returns the bucket set shared by every worker of this host.
func (h *Host) Storage() *Storage { return h.storage }

// Controller returns the worker governing fetches, or nil.
func (h *Host) Controller() *Worker { return h.controller.Load() }

// Register installs w and, on success, activates it straight away and makes it
// the controller of every client. A failed install leaves the current
// controller in place.
func (h *Host) Register(ctx context.Context, w *Worker) error {
	h.registerMu.Lock()
	defer h.registerMu.Unlock()

	if err := w.Install(ctx); err != nil {
		return err
	}
	prev := h.controller.Load()
	if err := w.Activate(ctx); err != nil {
		w.markRedundant()
		return err
	}
	if prev != nil && prev != w {
		prev.markRedundant()
	}
	h.controller.Store(w)
	h.claimedAt.Store(time.Now().UnixNano())
	h.logger.Infow("offline worker took control", "version", w.Version(), "buckets", h.storage.Keys())
	return nil
}

// Fetch routes req through the controller, or straight to the network when
// nothing is installed.
func (h *Host) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	if w := h.controller.Load(); w != nil {
		return w.Fetch(ctx, req)
	}
	return h.client.Do(req.WithContext(ctx))
}

// Push hands payload to the controller.
func (h *Host) Push(ctx context.Context, payload []byte) (Notification, error) {
	w := h.controller.Load()
	if w == nil {
		return Notification{}, ErrNoController
	}
	return w.Push(ctx, payload)
}

// Status is a snapshot of the host for diagnostics.
type Status struct {
	Version   string    `json:"version,omitempty"`
	State     string    `json:"state"`
	Buckets   []string  `json:"buckets"`
	Precache  []string  `json:"precache,omitempty"`
	ClaimedAt time.Time `json:"claimed_at,omitempty"`
}

func (h *Host) Status() Status {
	st := Status{State: StateUninstalled.String(), Buckets: h.storage.Keys()}
	if w := h.controller.Load(); w != nil {
		st.Version = w.Version()
		st.State = w.State().String()
		st.Precache = w.Precache()
		st.ClaimedAt = time.Unix(0, h.claimedAt.Load()).UTC()
	}
	return st
}

// ServeHTTP forwards r to the site origin through the controller, if any.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := h.origin.ResolveReference(&url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery})
	out, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	out.Header = r.Header.Clone()
	for _, hh := range hopHeaders {
		out.Header.Del(hh)
	}
	for _, ph := range privateHeaders {
		out.Header.Del(ph)
	}
	out.ContentLength = r.ContentLength

	resp, err := h.Fetch(r.Context(), out)
	if err != nil {
		h.logger.Warnw("offline fetch failed", "url", target.String(), "err", err)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	// origin values replace defaults set by outer middleware
	for k, vv := range resp.Header {
		w.Header().Del(k)
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	for _, hh := range hopHeaders {
		w.Header().Del(hh)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

package offline

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://origin.test"

var testManifest = []string{"/", "/index.html", "/manifest.json", "/icons/icon-192x192.png"}

func htmlResponder(body string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(http.StatusOK, body)
		if resp.Header == nil {
			resp.Header = http.Header{}
		}
		resp.Header.Set("Content-Type", "text/html; charset=utf-8")
		resp.Header.Set("X-Origin", "yes")
		resp.Request = req
		return resp, nil
	}
}

// newOrigin returns a mock transport serving every manifest entry.
func newOrigin() *httpmock.MockTransport {
	mt := httpmock.NewMockTransport()
	for _, p := range testManifest {
		mt.RegisterResponder(http.MethodGet, testOrigin+p, htmlResponder("content of "+p))
	}
	return mt
}

func newTestWorker(t *testing.T, storage *Storage, version string, mt *httpmock.MockTransport, n Notifier) *Worker {
	t.Helper()
	w, err := NewWorker(storage, Options{
		Version:  version,
		Origin:   testOrigin,
		Manifest: testManifest,
		Client:   &http.Client{Transport: mt},
		Notifier: n,
	})
	require.NoError(t, err)
	return w
}

type recordingNotifier struct {
	mu    sync.Mutex
	shown []Notification
	err   error
}

func (r *recordingNotifier) Notify(ctx context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.shown = append(r.shown, n)
	return nil
}

var errDisplay = errors.New("display unavailable")

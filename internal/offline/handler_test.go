package offline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, mt *httpmock.MockTransport, n Notifier) (*Handler, *Host) {
	t.Helper()
	h := newTestHost(t, mt)
	factory := func() (*Worker, error) {
		return NewWorker(h.Storage(), Options{
			Version:  "stefano-v1",
			Origin:   testOrigin,
			Manifest: testManifest,
			Client:   &http.Client{Transport: mt},
			Notifier: n,
		})
	}
	return NewHandler(h, factory, zap.NewNop().Sugar()), h
}

func TestHandler_InstallThenStatus(t *testing.T) {
	hd, host := newTestHandler(t, newOrigin(), nil)

	rec := httptest.NewRecorder()
	hd.Install(rec, httptest.NewRequest(http.MethodPost, "/api/offline/install", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, host.Controller())

	rec = httptest.NewRecorder()
	hd.Status(rec, httptest.NewRequest(http.MethodGet, "/api/offline/status", http.NoBody))
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "stefano-v1", st.Version)
	assert.Equal(t, "active", st.State)
}

func TestHandler_InstallFailure(t *testing.T) {
	mt := newOrigin()
	mt.RegisterResponder(http.MethodGet, testOrigin+"/", httpmock.NewStringResponder(http.StatusNotFound, ""))
	hd, host := newTestHandler(t, mt, nil)

	rec := httptest.NewRecorder()
	hd.Install(rec, httptest.NewRequest(http.MethodPost, "/api/offline/install", http.NoBody))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Nil(t, host.Controller())
}

func TestHandler_Push(t *testing.T) {
	n := &recordingNotifier{}
	hd, _ := newTestHandler(t, newOrigin(), n)

	rec := httptest.NewRecorder()
	hd.Push(rec, httptest.NewRequest(http.MethodPost, "/api/push", strings.NewReader("hello")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	hd.Install(rec, httptest.NewRequest(http.MethodPost, "/api/offline/install", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	hd.Push(rec, httptest.NewRequest(http.MethodPost, "/api/push", strings.NewReader("Two for one on Tuesday")))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var shown Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shown))
	assert.Equal(t, "Two for one on Tuesday", shown.Body)
	assert.Len(t, n.shown, 1)

	n.err = errDisplay
	rec = httptest.NewRecorder()
	hd.Push(rec, httptest.NewRequest(http.MethodPost, "/api/push", http.NoBody))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandler_PushRejectsOversizedOrInvalidPayload(t *testing.T) {
	n := &recordingNotifier{}
	hd, _ := newTestHandler(t, newOrigin(), n)
	rec := httptest.NewRecorder()
	hd.Install(rec, httptest.NewRequest(http.MethodPost, "/api/offline/install", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	// multi-byte runes straddle the size limit
	big := strings.Repeat("è", maxPushPayload/2+50)
	rec = httptest.NewRecorder()
	hd.Push(rec, httptest.NewRequest(http.MethodPost, "/api/push", strings.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	hd.Push(rec, httptest.NewRequest(http.MethodPost, "/api/push", strings.NewReader("pizza \xff")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	exact := strings.Repeat("a", maxPushPayload)
	rec = httptest.NewRecorder()
	hd.Push(rec, httptest.NewRequest(http.MethodPost, "/api/push", strings.NewReader(exact)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.Len(t, n.shown, 1)
	assert.Equal(t, exact, n.shown[0].Body)
}

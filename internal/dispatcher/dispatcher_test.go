// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/farmlink/internal/app"
	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/internal/mock"
	"github.com/MKhiriev/farmlink/internal/service"
	"github.com/MKhiriev/farmlink/internal/store"
	"github.com/MKhiriev/farmlink/internal/utils"
	"github.com/MKhiriev/farmlink/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testBaseDelay = 10 * time.Millisecond

// staticSessions — простая заглушка SessionProvider с фиксированным токеном.
type staticSessions struct {
	token        string
	refreshCalls atomic.Int32
	cleared      atomic.Bool
}

func (s *staticSessions) AccessToken() string { return s.token }

func (s *staticSessions) RefreshIfStale(context.Context, string) (models.Session, error) {
	s.refreshCalls.Add(1)
	return models.Session{}, app.ErrSessionExpired
}

func (s *staticSessions) ClearSession() { s.cleared.Store(true) }

// sleepRecorder replaces real backoff sleeps and records the requested
// delays.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func newTestDispatcher(t *testing.T, serverURL string, sessions SessionProvider) (*Dispatcher, *sleepRecorder) {
	t.Helper()
	cfg := config.Adapter{
		HTTPAddress:      serverURL,
		RequestTimeout:   2 * time.Second,
		MaxAttempts:      3,
		RetryBaseDelay:   testBaseDelay,
		BatchConcurrency: 4,
	}

	d, err := New(cfg, config.Upload{}, sessions, logger.Nop())
	require.NoError(t, err)

	rec := &sleepRecorder{}
	d.sleep = rec.sleep
	return d, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type field struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ── Headers ──────────────────────────────────────────────────────────────────

func TestDispatch_SendsHeaderContract(t *testing.T) {
	var requestIDs []string
	var mu sync.Mutex
	var hits atomic.Int32

	r := chi.NewRouter()
	r.Post("/api/fields", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		assert.Equal(t, utils.CSRFToken(), r.Header.Get("X-CSRF-Token"))
		assert.NotEmpty(t, r.Header.Get("X-CSRF-Token"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "north", r.Header.Get("X-Farm-Zone"))

		mu.Lock()
		requestIDs = append(requestIDs, r.Header.Get("X-Request-ID"))
		mu.Unlock()

		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusCreated, field{ID: "f-1", Name: "North"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, &staticSessions{token: "at-1"})
	resp, err := d.Dispatch(context.Background(), models.Request{
		Method: http.MethodPost,
		Path:   "/api/fields",
		Body:   field{Name: "North"},
		Header: http.Header{"X-Farm-Zone": {"north"}},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	require.Len(t, requestIDs, 2)
	assert.NotEmpty(t, requestIDs[0])
	assert.Equal(t, requestIDs[0], requestIDs[1], "request id is stable across retries")
}

func TestDispatch_NoSessionNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, nil)
	resp, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/health"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Nil(t, resp.Data)
}

func TestDispatch_RequestIDFromContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trace-42", r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, nil)
	ctx := utils.WithRequestID(context.Background(), "trace-42")
	_, err := d.Dispatch(ctx, models.Request{Method: http.MethodGet, Path: "/"})
	require.NoError(t, err)
}

// ── Response decoding ────────────────────────────────────────────────────────

func TestDispatch_DecodesJSONIntoResult(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/fields", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, []field{{ID: "f-1", Name: "North"}, {ID: "f-2", Name: "South"}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, nil)

	var fields []field
	resp, err := d.Dispatch(context.Background(), models.Request{
		Method: http.MethodGet,
		Path:   "/api/fields",
		Query:  url.Values{"status": {"active"}},
		Result: &fields,
	})

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "South", fields[1].Name)

	data, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestDispatch_PlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, nil)
	resp, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/ping"})

	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Data)
}

func TestDispatch_StatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		want    app.Kind
		wantMsg string
	}{
		{http.StatusBadRequest, `{"message":"name is required"}`, app.KindBadRequest, "name is required"},
		{http.StatusForbidden, ``, app.KindAuthorizationDenied, app.MsgAuthorizationDenied},
		{http.StatusNotFound, `{"error":"field f-9 not found"}`, app.KindNotFound, "field f-9 not found"},
		{http.StatusConflict, `stale version`, app.KindConflict, "stale version"},
		{http.StatusTooManyRequests, ``, app.KindRateLimited, app.MsgRateLimited},
		{http.StatusUnprocessableEntity, `{"message":"bad geometry"}`, app.KindRequestFailed, "bad geometry"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			d, rec := newTestDispatcher(t, srv.URL, nil)
			_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/x"})

			require.Error(t, err)
			assert.Equal(t, tt.want, app.KindOf(err))

			var appErr *app.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, tt.status, appErr.Status)

			assert.Equal(t, int32(1), hits.Load(), "never retried")
			assert.Empty(t, rec.recorded())
		})
	}
}

// ── Retry ────────────────────────────────────────────────────────────────────

func TestDispatch_TransportFailureRetryCeiling(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			_ = conn.Close()
		}
	}))
	defer srv.Close()

	d, rec := newTestDispatcher(t, srv.URL, nil)
	_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodPost, Path: "/api/tasks", Body: map[string]string{"title": "scout"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrTransportFailure)
	assert.NotNil(t, (err.(*app.Error)).Cause, "underlying transport error is kept")

	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []time.Duration{testBaseDelay, 2 * testBaseDelay}, rec.recorded())
}

func TestDispatch_ServerErrorRetriedThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	d, rec := newTestDispatcher(t, srv.URL, nil)
	resp, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/api/status"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "ok"}, resp.Data)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []time.Duration{testBaseDelay, 2 * testBaseDelay}, rec.recorded())
}

func TestDispatch_ServerErrorExhaustsBudget(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, nil)
	_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/"})

	assert.ErrorIs(t, err, app.ErrServerError)
	assert.Equal(t, int32(3), hits.Load())
}

func TestDispatch_AttemptTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, nil)
	d.requestTimeout = 50 * time.Millisecond
	d.maxAttempts = 2

	_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/slow"})

	assert.ErrorIs(t, err, app.ErrTimeout)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDispatch_CallerCancelSkipsRetries(t *testing.T) {
	var hits atomic.Int32
	arrived := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		arrived <- struct{}{}
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	d, rec := newTestDispatcher(t, srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-arrived
		cancel()
	}()

	_, err := d.Dispatch(ctx, models.Request{Method: http.MethodGet, Path: "/slow"})

	assert.ErrorIs(t, err, app.ErrCanceled)
	assert.Equal(t, int32(1), hits.Load())
	assert.Empty(t, rec.recorded())
}

func TestBackoff(t *testing.T) {
	d := &Dispatcher{baseDelay: 100 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, d.backoff(1))
	assert.Equal(t, 200*time.Millisecond, d.backoff(2))
	assert.Equal(t, 400*time.Millisecond, d.backoff(3))
}

// ── 401 / refresh ────────────────────────────────────────────────────────────

func newSessionManager(t *testing.T, ctrl *gomock.Controller) (*service.SessionManager, *mock.MockIdentityBackend) {
	t.Helper()
	backend := mock.NewMockIdentityBackend(ctrl)
	sm := service.NewSessionManager(backend, store.NewCredentialStore(), config.Adapter{RefreshTimeout: time.Second}, logger.Nop())

	require.NoError(t, sm.RestoreSession(models.Session{
		Identity:     models.Identity{ID: "u-1", Email: "a@b.com", Role: models.RoleWorker},
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
	}))
	return sm, backend
}

func refreshedTokens() models.AuthTokens {
	return models.AuthTokens{AccessToken: "at-2", RefreshToken: "rt-2", ExpiresIn: 3600}
}

// tokenGatedServer answers 401 unless the request carries "Bearer at-2".
func tokenGatedServer(hits *atomic.Int32) *httptest.Server {
	r := chi.NewRouter()
	r.Get("/api/fields", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer at-2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
			return
		}
		writeJSON(w, http.StatusOK, []field{{ID: "f-1", Name: "North"}})
	})
	return httptest.NewServer(r)
}

func TestDispatch_UnauthorizedRefreshesAndReplaysOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	sm, backend := newSessionManager(t, ctrl)
	backend.EXPECT().Refresh(gomock.Any(), "rt-1").Return(refreshedTokens(), nil).Times(1)

	var hits atomic.Int32
	srv := tokenGatedServer(&hits)
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, sm)

	var fields []field
	_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/api/fields", Result: &fields})

	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, int32(2), hits.Load(), "original + one replay")
	assert.Equal(t, "at-2", sm.AccessToken())
}

func TestDispatch_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	sm, backend := newSessionManager(t, ctrl)

	backend.EXPECT().Refresh(gomock.Any(), "rt-1").
		DoAndReturn(func(context.Context, string) (models.AuthTokens, error) {
			time.Sleep(30 * time.Millisecond)
			return refreshedTokens(), nil
		}).
		Times(1)

	var hits atomic.Int32
	srv := tokenGatedServer(&hits)
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, sm)

	const n = 12
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/api/fields"})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, hits.Load(), int32(2*n))
}

func TestDispatch_ConcurrentUnauthorizedRefreshFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	sm, backend := newSessionManager(t, ctrl)

	backend.EXPECT().Refresh(gomock.Any(), "rt-1").
		DoAndReturn(func(context.Context, string) (models.AuthTokens, error) {
			time.Sleep(30 * time.Millisecond)
			return models.AuthTokens{}, app.ErrSessionExpired
		}).
		Times(1)

	var hits atomic.Int32
	srv := tokenGatedServer(&hits)
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, sm)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/api/fields"})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, app.ErrAuthenticationRequired)
	}
	assert.False(t, sm.IsAuthenticated())
}

func TestDispatch_RefreshFailureClearsSession(t *testing.T) {
	var hits atomic.Int32
	srv := tokenGatedServer(&hits)
	defer srv.Close()

	sessions := &staticSessions{token: "at-1"}
	d, _ := newTestDispatcher(t, srv.URL, sessions)

	_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/api/fields"})

	assert.ErrorIs(t, err, app.ErrAuthenticationRequired)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int32(1), sessions.refreshCalls.Load())
	assert.True(t, sessions.cleared.Load())
}

func TestDispatch_ReplayUnauthorizedClearsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	sm, backend := newSessionManager(t, ctrl)
	backend.EXPECT().Refresh(gomock.Any(), "rt-1").Return(refreshedTokens(), nil).Times(1)

	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/fields", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "user revoked"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, sm)

	_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/api/fields"})

	assert.ErrorIs(t, err, app.ErrAuthenticationRequired)
	assert.Equal(t, int32(2), hits.Load(), "original + one replay, no second refresh")
	assert.False(t, sm.IsAuthenticated())
	assert.Empty(t, sm.AccessToken())
}

func TestDispatch_UnauthorizedWithoutSessionProvider(t *testing.T) {
	var hits atomic.Int32
	srv := tokenGatedServer(&hits)
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, nil)
	_, err := d.Dispatch(context.Background(), models.Request{Method: http.MethodGet, Path: "/api/fields"})

	assert.ErrorIs(t, err, app.ErrAuthenticationRequired)
	assert.Equal(t, int32(1), hits.Load())
}

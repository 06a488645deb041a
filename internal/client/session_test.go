package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ctrlmap-tools/cmapsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSession(SessionOptions{
		BaseURL: srv.URL + "/",
		Tenant:  "acme",
		Token:   "tok-1",
	})
}

// TestSession_Headers tests that every request carries the auth headers
func TestSession_Headers(t *testing.T) {
	var got http.Header
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	})

	var out map[string]any
	require.NoError(t, s.GetJSON(context.Background(), "/procedure/1", &out))

	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.Equal(t, "cmapjwt", got.Get("x-authprovider"))
	assert.Equal(t, "acme", got.Get("x-tenanturi"))
	assert.Contains(t, got.Get("User-Agent"), "cmapsync/")
}

// TestSession_StatusMapping tests the status code to error taxonomy mapping
func TestSession_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "401 maps to auth", status: http.StatusUnauthorized, sentinel: domain.ErrAuth},
		{name: "403 maps to auth", status: http.StatusForbidden, sentinel: domain.ErrAuth},
		{name: "404 maps to not found", status: http.StatusNotFound, sentinel: domain.ErrNotFound},
		{name: "429 maps to transient", status: http.StatusTooManyRequests, sentinel: domain.ErrTransient},
		{name: "500 maps to transient", status: http.StatusInternalServerError, sentinel: domain.ErrTransient},
		{name: "503 maps to transient", status: http.StatusServiceUnavailable, sentinel: domain.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			err := s.GetJSON(context.Background(), "/procedure/1", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "procedure/1", apiErr.Path)
		})
	}
}

func TestSession_OtherStatusCarriesBody(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate"}`))
	})

	err := s.GetJSON(context.Background(), "/procedure/1", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAuth)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrTransient)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "duplicate")
}

func TestSession_ConnectionFailureMapsToNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	s := NewSession(SessionOptions{BaseURL: srv.URL, Tenant: "acme", Token: "tok"})

	err := s.GetJSON(context.Background(), "/procedures", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestSession_InvalidJSON(t *testing.T) {
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	var out map[string]any
	err := s.GetJSON(context.Background(), "/procedure/1", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON response")
}

func TestSession_PostJSONSendsBody(t *testing.T) {
	var gotMethod, gotBody string
	s := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`[]`))
	})

	var out []any
	err := s.PostJSON(context.Background(), "/procedures", map[string]int{"startpos": 0}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.JSONEq(t, `{"startpos":0}`, gotBody)
}

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phantoooomCam/sabanas-server/internal/config"
)

func TestRequireAPIKeyRejectsMissingKey(t *testing.T) {
	s := &Server{cfg: config.HTTPConfig{APIKey: "secret"}}
	called := false
	h := s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/jobs/sabanas", nil)
	h(w, r)

	if called {
		t.Fatal("next handler should not run without a valid API key")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAPIKeyAcceptsHeaderKey(t *testing.T) {
	s := &Server{cfg: config.HTTPConfig{APIKey: "secret"}}
	called := false
	h := s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/jobs/sabanas", nil)
	r.Header.Set("X-API-Key", "secret")
	h(w, r)

	if !called {
		t.Fatal("next handler should run with a valid X-API-Key header")
	}
}

func TestRequireAPIKeyAcceptsBearerToken(t *testing.T) {
	s := &Server{cfg: config.HTTPConfig{APIKey: "secret"}}
	called := false
	h := s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/jobs/sabanas", nil)
	r.Header.Set("Authorization", "Bearer secret")
	h(w, r)

	if !called {
		t.Fatal("next handler should run with a valid bearer token")
	}
}

func TestRequireAPIKeySkippedWhenUnconfigured(t *testing.T) {
	s := &Server{cfg: config.HTTPConfig{APIKey: ""}}
	called := false
	h := s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/jobs/sabanas", nil)
	h(w, r)

	if !called {
		t.Fatal("next handler should run when no API key is configured")
	}
}

func TestHandleAcceptJobRejectsMissingFileID(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/jobs/sabanas", strings.NewReader(`{"fileId":0}`))
	s.handleAcceptJob(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleAcceptJobRejectsMalformedBody(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/jobs/sabanas", strings.NewReader(`not json`))
	s.handleAcceptJob(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleHealthAlias(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.handleHealthAlias(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("body = %q, want ok:true", w.Body.String())
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paintquotepro/quote-platform/internal/tenancy"
)

func TestRequireCompanyIDFromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
	req.Header.Set(CompanyIDHeader, "acme")
	rec := httptest.NewRecorder()

	var got string
	RequireCompanyID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = tenancy.CompanyIDFromContext(r.Context())
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got != "acme" {
		t.Fatalf("expected company id %q, got %q", "acme", got)
	}
}

func TestRequireCompanyIDFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/chat/ws?company=acme", nil)
	rec := httptest.NewRecorder()

	var got string
	RequireCompanyID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = tenancy.CompanyIDFromContext(r.Context())
	})).ServeHTTP(rec, req)

	if got != "acme" {
		t.Fatalf("expected company id %q, got %q", "acme", got)
	}
}

func TestRequireCompanyIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
	rec := httptest.NewRecorder()

	called := false
	RequireCompanyID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	if called {
		t.Fatalf("expected handler not to be called")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

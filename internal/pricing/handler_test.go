package pricing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	handler := NewHandler(newTestStore(t), nil)
	r := chi.NewRouter()
	r.Mount("/companies", handler.Routes())
	return r
}

func TestGetConfigReturnsDefaults(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/companies/acme/pricing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cfg CompanyConfig
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cfg))
	assert.Equal(t, "acme", cfg.CompanyID)
	assert.Equal(t, 3.50, cfg.BaseRates.Walls)
}

func TestUpdateConfigPartial(t *testing.T) {
	router := newTestRouter(t)

	body := `{"minimum_job_price": 600, "seasonal_pricing": {"summer": 1.2}}`
	req := httptest.NewRequest(http.MethodPut, "/companies/acme/pricing", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cfg CompanyConfig
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cfg))
	assert.Equal(t, 600.0, cfg.MinimumJobPrice)
	assert.Equal(t, map[string]float64{"summer": 1.2}, cfg.SeasonalPricing)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3.50, cfg.BaseRates.Walls)
	assert.False(t, cfg.LastUpdated.IsZero())

	// The save persisted: a follow-up GET sees the new value.
	req = httptest.NewRequest(http.MethodGet, "/companies/acme/pricing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cfg))
	assert.Equal(t, 600.0, cfg.MinimumJobPrice)
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	router := newTestRouter(t)

	body := `{"rush_job_multiplier": -2}`
	req := httptest.NewRequest(http.MethodPut, "/companies/acme/pricing", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConfigRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/companies/acme/pricing", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

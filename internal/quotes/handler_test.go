package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paintquotepro/quote-platform/internal/tenancy"
)

func newTestRouter(repo Repository) chi.Router {
	h := NewHandler(repo, nil)
	r := chi.NewRouter()
	r.Post("/quotes", h.CreateQuote)
	r.Get("/admin/companies/{companyID}/quotes", h.ListQuotes)
	r.Get("/admin/companies/{companyID}/quotes/{quoteID}", h.GetQuote)
	return r
}

func TestCreateQuoteHandler(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	body := `{"customer_name":"Jane Doe","address":"123 Main St","space_type":"whole house"}`
	req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(body))
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), "acme"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var quote Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.NotEmpty(t, quote.ID)
	assert.Equal(t, "acme", quote.CompanyID)
	assert.Equal(t, StatusDraft, quote.Status)
}

func TestCreateQuoteHandlerMissingCompany(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(`{"customer_name":"Jane"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateQuoteHandlerBadJSON(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(`{not json`))
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), "acme"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuoteHandler(t *testing.T) {
	repo := NewInMemoryRepository()
	created, err := repo.Create(context.Background(), &CreateQuoteRequest{
		CompanyID:    "acme",
		CustomerName: "Jane Doe",
		SpaceType:    "single room",
	})
	require.NoError(t, err)

	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/admin/companies/acme/quotes/"+created.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var quote Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "Jane Doe", quote.CustomerName)

	req = httptest.NewRequest(http.MethodGet, "/admin/companies/other/quotes/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListQuotesHandler(t *testing.T) {
	repo := NewInMemoryRepository()
	for _, name := range []string{"Alice", "Bob"} {
		_, err := repo.Create(context.Background(), &CreateQuoteRequest{
			CompanyID:    "acme",
			CustomerName: name,
			SpaceType:    "single room",
		})
		require.NoError(t, err)
	}

	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/admin/companies/acme/quotes?limit=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListQuotesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.Limit)
	assert.Len(t, resp.Quotes, 1)
}

package quotes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/paintquotepro/quote-platform/internal/tenancy"
	"github.com/paintquotepro/quote-platform/pkg/logging"
)

// Handler handles HTTP requests for quotes.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new quotes handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// CreateQuote handles POST /quotes requests.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	companyID, ok := tenancy.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing company context", http.StatusBadRequest)
		return
	}
	req.CompanyID = companyID

	quote, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quote", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("quote created", "id", quote.ID, "customer", quote.CustomerName, "source", quote.Source)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(quote)
}

// GetQuote handles GET /admin/companies/{companyID}/quotes/{quoteID}.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	quoteID := chi.URLParam(r, "quoteID")
	if companyID == "" || quoteID == "" {
		http.Error(w, "missing company_id or quote_id", http.StatusBadRequest)
		return
	}

	quote, err := h.repo.GetByID(r.Context(), companyID, quoteID)
	if err != nil {
		if errors.Is(err, ErrQuoteNotFound) {
			http.Error(w, "quote not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get quote", "error", err, "quote_id", quoteID)
		http.Error(w, "failed to get quote", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}

// ListQuotesResponse is the response for listing quotes.
type ListQuotesResponse struct {
	Quotes []*Quote `json:"quotes"`
	Count  int      `json:"count"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
}

// ListQuotes handles GET /admin/companies/{companyID}/quotes requests.
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	if companyID == "" {
		http.Error(w, "missing company_id", http.StatusBadRequest)
		return
	}

	filter := ListQuotesFilter{
		Limit:  50,
		Offset: 0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = status
	}

	list, err := h.repo.ListByCompany(r.Context(), companyID, filter)
	if err != nil {
		h.logger.Error("failed to list quotes", "error", err, "company_id", companyID)
		http.Error(w, "failed to list quotes", http.StatusInternalServerError)
		return
	}

	response := ListQuotesResponse{
		Quotes: list,
		Count:  len(list),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

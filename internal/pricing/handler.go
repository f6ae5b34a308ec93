package pricing

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paintquotepro/quote-platform/pkg/logging"
)

// Handler provides HTTP endpoints for pricing configuration management.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new pricing config HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Routes returns a chi router with pricing admin routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{companyID}/pricing", h.GetConfig)
	r.Put("/{companyID}/pricing", h.UpdateConfig)
	return r
}

// GetConfig returns the pricing configuration for a company.
// GET /admin/companies/{companyID}/pricing
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	if companyID == "" {
		http.Error(w, `{"error": "company_id required"}`, http.StatusBadRequest)
		return
	}

	cfg, err := h.store.Get(r.Context(), companyID)
	if err != nil {
		h.logger.Error("failed to get pricing config", "company_id", companyID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		h.logger.Error("failed to encode pricing config", "company_id", companyID, "error", err)
	}
}

// UpdateConfigRequest is the request body for updating pricing config.
// Pointer fields distinguish "not provided" from zero so the settings form
// can save partial edits; absent fields keep their current values.
type UpdateConfigRequest struct {
	BaseRates             *BaseRates         `json:"base_rates,omitempty"`
	SeasonalPricing       map[string]float64 `json:"seasonal_pricing,omitempty"`
	LocationPricing       map[string]float64 `json:"location_pricing,omitempty"`
	PaintSuppliers        *PaintSuppliers    `json:"paint_suppliers,omitempty"`
	OverheadPercent       *float64           `json:"overhead_percent,omitempty"`
	ProfitMargin          *float64           `json:"profit_margin,omitempty"`
	MinimumJobPrice       *float64           `json:"minimum_job_price,omitempty"`
	RushJobMultiplier     *float64           `json:"rush_job_multiplier,omitempty"`
	PrepWorkMultipliers   map[string]float64 `json:"prep_work_multipliers,omitempty"`
	ComplexityMultipliers map[string]float64 `json:"complexity_multipliers,omitempty"`
	HeightMultipliers     map[string]float64 `json:"height_multipliers,omitempty"`
}

// UpdateConfig applies a partial update and saves the whole config.
// PUT /admin/companies/{companyID}/pricing
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	if companyID == "" {
		http.Error(w, `{"error": "company_id required"}`, http.StatusBadRequest)
		return
	}

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	cfg, err := h.store.Get(r.Context(), companyID)
	if err != nil {
		h.logger.Error("failed to get pricing config", "company_id", companyID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	if req.BaseRates != nil {
		cfg.BaseRates = *req.BaseRates
	}
	if req.SeasonalPricing != nil {
		cfg.SeasonalPricing = req.SeasonalPricing
	}
	if req.LocationPricing != nil {
		cfg.LocationPricing = req.LocationPricing
	}
	if req.PaintSuppliers != nil {
		cfg.PaintSuppliers = *req.PaintSuppliers
	}
	if req.OverheadPercent != nil {
		cfg.OverheadPercent = *req.OverheadPercent
	}
	if req.ProfitMargin != nil {
		cfg.ProfitMargin = *req.ProfitMargin
	}
	if req.MinimumJobPrice != nil {
		cfg.MinimumJobPrice = *req.MinimumJobPrice
	}
	if req.RushJobMultiplier != nil {
		cfg.RushJobMultiplier = *req.RushJobMultiplier
	}
	if req.PrepWorkMultipliers != nil {
		cfg.PrepWorkMultipliers = req.PrepWorkMultipliers
	}
	if req.ComplexityMultipliers != nil {
		cfg.ComplexityMultipliers = req.ComplexityMultipliers
	}
	if req.HeightMultipliers != nil {
		cfg.HeightMultipliers = req.HeightMultipliers
	}

	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.Set(r.Context(), cfg); err != nil {
		h.logger.Error("failed to save pricing config", "company_id", companyID, "error", err)
		http.Error(w, `{"error": "failed to save config"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("pricing config updated", "company_id", companyID)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		h.logger.Error("failed to encode pricing config", "company_id", companyID, "error", err)
	}
}

package quotes

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/paintquotepro/quote-platform/internal/intake"
)

// Quote statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Quote sources.
const (
	SourceGuided = "guided"
	SourceQuick  = "quick"
)

// Quote is a stored quote request produced by a completed intake
// conversation (or the quick-quote fast path), awaiting pricing.
type Quote struct {
	ID            string         `json:"id"`
	CompanyID     string         `json:"company_id"`
	CustomerName  string         `json:"customer_name"`
	Address       string         `json:"address"`
	SpaceType     string         `json:"space_type"`
	Surfaces      string         `json:"surfaces"`
	PaintGrade    string         `json:"paint_grade"`
	PrepCondition string         `json:"prep_condition"`
	Timeline      string         `json:"timeline"`
	// Details carries the full collected field map for the pricing engine.
	Details   map[string]any `json:"details,omitempty"`
	Source    string         `json:"source"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateQuoteRequest represents the request body for creating a quote.
type CreateQuoteRequest struct {
	CompanyID     string         `json:"-"`
	CustomerName  string         `json:"customer_name"`
	Address       string         `json:"address"`
	SpaceType     string         `json:"space_type"`
	Surfaces      string         `json:"surfaces"`
	PaintGrade    string         `json:"paint_grade"`
	PrepCondition string         `json:"prep_condition"`
	Timeline      string         `json:"timeline"`
	Details       map[string]any `json:"details,omitempty"`
	Source        string         `json:"source"`
}

// Field length caps applied during sanitization.
const (
	maxNameLen    = 120
	maxAddressLen = 300
	maxFieldLen   = 500
)

// Validate sanitizes the request in place and checks it is persistable.
// User-supplied text is trimmed, stripped of control characters, and capped.
func (r *CreateQuoteRequest) Validate() error {
	r.CustomerName = sanitize(r.CustomerName, maxNameLen)
	r.Address = sanitize(r.Address, maxAddressLen)
	r.SpaceType = sanitize(r.SpaceType, maxFieldLen)
	r.Surfaces = sanitize(r.Surfaces, maxFieldLen)
	r.PaintGrade = sanitize(r.PaintGrade, maxFieldLen)
	r.PrepCondition = sanitize(r.PrepCondition, maxFieldLen)
	r.Timeline = sanitize(r.Timeline, maxFieldLen)

	if strings.TrimSpace(r.CompanyID) == "" {
		return ErrMissingCompanyID
	}
	if r.CustomerName == "" {
		return ErrMissingCustomer
	}
	if r.SpaceType == "" && r.Surfaces == "" && len(r.Details) == 0 {
		return ErrNoScope
	}
	if r.Source == "" {
		r.Source = SourceGuided
	}
	return nil
}

// sanitize trims, strips control characters, and caps a user-supplied string.
func sanitize(s string, max int) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if runes := []rune(out); len(runes) > max {
		out = string(runes[:max])
	}
	return out
}

// NewRequestFromIntake maps a completed conversation's collected data onto a
// create request. The field names here are the data contract with the intake
// step graph.
func NewRequestFromIntake(companyID string, data map[string]any) CreateQuoteRequest {
	customer := intake.ParseCustomerDetails(fieldString(data, "customerDetails"))
	return CreateQuoteRequest{
		CompanyID:     companyID,
		CustomerName:  customer.CustomerName,
		Address:       customer.Address,
		SpaceType:     fieldString(data, "spaceType"),
		Surfaces:      fieldString(data, "surfaces"),
		PaintGrade:    fieldString(data, "paintProducts"),
		PrepCondition: fieldString(data, "prepCondition"),
		Timeline:      fieldString(data, "timeline"),
		Details:       data,
		Source:        SourceGuided,
	}
}

// NewRequestFromQuickQuote maps a quick-quote draft onto a create request.
func NewRequestFromQuickQuote(companyID string, draft *intake.QuickQuoteDraft) CreateQuoteRequest {
	var surfaces []string
	for _, s := range []struct {
		on   bool
		name string
	}{
		{draft.Surfaces.Walls, "walls"},
		{draft.Surfaces.Ceilings, "ceilings"},
		{draft.Surfaces.Trim, "trim"},
		{draft.Surfaces.Doors, "doors"},
		{draft.Surfaces.Windows, "windows"},
	} {
		if s.on {
			surfaces = append(surfaces, s.name)
		}
	}

	details := map[string]any{
		"measurements": draft.Measurements,
	}
	if draft.PaintCostPerGallon > 0 {
		details["paintCostPerGallon"] = draft.PaintCostPerGallon
	}
	if draft.CoverageSqftPerGal > 0 {
		details["coverageSqftPerGallon"] = draft.CoverageSqftPerGal
	}
	if draft.PaintName != "" {
		details["paintName"] = draft.PaintName
	}

	return CreateQuoteRequest{
		CompanyID:    companyID,
		CustomerName: draft.Customer.CustomerName,
		Address:      draft.Customer.Address,
		Surfaces:     strings.Join(surfaces, ", "),
		Details:      details,
		Source:       SourceQuick,
	}
}

// fieldString renders a collected field as a string. Collected values are
// string, float64 or []string in memory, and []any after a JSON round trip
// through a session store.
func fieldString(data map[string]any, field string) string {
	v, ok := data[field]
	if !ok || v == nil {
		return ""
	}
	switch value := v.(type) {
	case string:
		return value
	case []string:
		return strings.Join(value, ", ")
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

package quotes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paintquotepro/quote-platform/internal/intake"
)

func TestValidateSanitizes(t *testing.T) {
	req := CreateQuoteRequest{
		CompanyID:    "acme",
		CustomerName: "  Jane\x00 Doe\t",
		Address:      "123 Main St\r\n",
		SpaceType:    "whole house",
	}
	require.NoError(t, req.Validate())

	assert.Equal(t, "Jane Doe", req.CustomerName)
	assert.Equal(t, "123 Main St", req.Address)
	assert.Equal(t, SourceGuided, req.Source)
}

func TestValidateCapsLength(t *testing.T) {
	req := CreateQuoteRequest{
		CompanyID:    "acme",
		CustomerName: strings.Repeat("a", 500),
		SpaceType:    "single room",
	}
	require.NoError(t, req.Validate())
	assert.Len(t, req.CustomerName, maxNameLen)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		req  CreateQuoteRequest
		want error
	}{
		{
			name: "missing company",
			req:  CreateQuoteRequest{CustomerName: "Jane", SpaceType: "single room"},
			want: ErrMissingCompanyID,
		},
		{
			name: "missing customer",
			req:  CreateQuoteRequest{CompanyID: "acme", SpaceType: "single room"},
			want: ErrMissingCustomer,
		},
		{
			name: "whitespace-only customer",
			req:  CreateQuoteRequest{CompanyID: "acme", CustomerName: "   ", SpaceType: "single room"},
			want: ErrMissingCustomer,
		},
		{
			name: "no scope",
			req:  CreateQuoteRequest{CompanyID: "acme", CustomerName: "Jane"},
			want: ErrNoScope,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.req.Validate(), tc.want)
		})
	}
}

func TestNewRequestFromIntake(t *testing.T) {
	data := map[string]any{
		"spaceType":       "whole house",
		"houseDetails":    "2400 sqft, two stories",
		"surfaces":        "walls and ceilings",
		"paintProducts":   "premium",
		"prepCondition":   "fair",
		"timeline":        "flexible",
		"customerDetails": "Jane Doe, 123 Main St, Springfield",
	}

	req := NewRequestFromIntake("acme", data)

	assert.Equal(t, "acme", req.CompanyID)
	assert.Equal(t, "Jane Doe", req.CustomerName)
	assert.Equal(t, "123 Main St, Springfield", req.Address)
	assert.Equal(t, "whole house", req.SpaceType)
	assert.Equal(t, "premium", req.PaintGrade)
	assert.Equal(t, "fair", req.PrepCondition)
	assert.Equal(t, "flexible", req.Timeline)
	assert.Equal(t, SourceGuided, req.Source)
	assert.Equal(t, data, req.Details)

	require.NoError(t, req.Validate())
}

func TestNewRequestFromIntakeHandlesJSONRoundTrip(t *testing.T) {
	// After a session-store round trip, multiselect values arrive as []any.
	data := map[string]any{
		"customerDetails": "Bob Smith, 44 Oak Ave",
		"surfaces":        []any{"walls", "trim"},
	}
	req := NewRequestFromIntake("acme", data)
	assert.Equal(t, "walls, trim", req.Surfaces)
}

func TestNewRequestFromQuickQuote(t *testing.T) {
	draft := &intake.QuickQuoteDraft{
		Customer: intake.CustomerDetails{CustomerName: "Jane Doe", Address: "123 Main St"},
		Measurements: intake.Measurements{
			LinearFeetWalls: 120,
			CeilingHeight:   9,
			WallSqft:        1080,
		},
		PaintCostPerGallon: 45,
		PaintName:          "Benjamin Moore Regal",
		Surfaces:           intake.SurfaceScope{Walls: true, Trim: true},
	}

	req := NewRequestFromQuickQuote("acme", draft)

	assert.Equal(t, SourceQuick, req.Source)
	assert.Equal(t, "walls, trim", req.Surfaces)
	assert.Equal(t, 45.0, req.Details["paintCostPerGallon"])
	assert.Equal(t, "Benjamin Moore Regal", req.Details["paintName"])
	require.NoError(t, req.Validate())
}

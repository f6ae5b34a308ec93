package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paintquotepro/quote-platform/internal/quotes"
	"github.com/paintquotepro/quote-platform/internal/tenancy"
)

func newTestHandler(t *testing.T) (*Handler, *quotes.InMemoryRepository) {
	t.Helper()
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Stop)
	repo := quotes.NewInMemoryRepository()
	return NewHandler(store, repo, nil, nil), repo
}

func postMessage(t *testing.T, h *Handler, companyID, sessionID, text string) MessageResponse {
	t.Helper()
	body := fmt.Sprintf(`{"session_id":%q,"text":%q}`, sessionID, text)
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), companyID))
	rec := httptest.NewRecorder()

	h.HandleMessage(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleMessageStartsSession(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := postMessage(t, h, "acme", "", "")
	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Reply, greeting)
	assert.Contains(t, resp.Reply, "single room")
	assert.False(t, resp.Complete)
}

func TestHandleMessageFullConversationCreatesQuote(t *testing.T) {
	h, repo := newTestHandler(t)

	resp := postMessage(t, h, "acme", "", "")
	sessionID := resp.SessionID

	answers := []string{
		"whole house",
		"about 2400 sqft, two stories",
		"walls and trim",
		"6 doors and baseboards throughout",
		"premium",
		"fair",
		"flexible",
		"Jane Doe, 123 Main St, Springfield",
	}
	for _, answer := range answers {
		resp = postMessage(t, h, "acme", sessionID, answer)
	}

	require.True(t, resp.Complete)
	require.NotEmpty(t, resp.QuoteID)
	assert.Equal(t, "whole house", resp.Collected["spaceType"])

	quote, err := repo.GetByID(context.Background(), "acme", resp.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", quote.CustomerName)
	assert.Equal(t, "premium", quote.PaintGrade)
	assert.Equal(t, quotes.SourceGuided, quote.Source)

	// Further input after completion stays idempotent: same quote, no dup.
	again := postMessage(t, h, "acme", sessionID, "hello?")
	assert.True(t, again.Complete)
	assert.Equal(t, resp.QuoteID, again.QuoteID)

	list, err := repo.ListByCompany(context.Background(), "acme", quotes.ListQuotesFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHandleMessageRepromptKeepsStep(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := postMessage(t, h, "acme", "", "")
	sessionID := resp.SessionID

	rejected := postMessage(t, h, "acme", sessionID, "a castle")
	assert.Contains(t, rejected.Reply, "single room")
	assert.Empty(t, rejected.Collected)

	accepted := postMessage(t, h, "acme", sessionID, "a single room please")
	assert.Equal(t, "single room", accepted.Collected["spaceType"])
}

func TestHandleMessageMissingCompany(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuickQuote(t *testing.T) {
	h, repo := newTestHandler(t)

	body := `{"text":"Quote for Jane Doe at 123 Main Street. 120 linear feet, 9 ft ceilings, using Benjamin Moore Regal at $45 per gallon, covers 400 sqft per gallon. Walls and trim, not painting the ceiling."}`
	req := httptest.NewRequest(http.MethodPost, "/chat/quick", strings.NewReader(body))
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), "acme"))
	rec := httptest.NewRecorder()

	h.HandleQuickQuote(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var quote quotes.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "Jane Doe", quote.CustomerName)
	assert.Equal(t, quotes.SourceQuick, quote.Source)

	stored, err := repo.GetByID(context.Background(), "acme", quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "walls, trim", stored.Surfaces)
}

func TestHandleQuickQuoteRejectsVagueMessage(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/quick", strings.NewReader(`{"text":"I need a quote for a blue house"}`))
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), "acme"))
	rec := httptest.NewRecorder()

	h.HandleQuickQuote(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleReset(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := postMessage(t, h, "acme", "", "")
	sessionID := resp.SessionID
	postMessage(t, h, "acme", sessionID, "whole house")

	body := fmt.Sprintf(`{"session_id":%q}`, sessionID)
	req := httptest.NewRequest(http.MethodPost, "/chat/reset", strings.NewReader(body))
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), "acme"))
	rec := httptest.NewRecorder()
	h.HandleReset(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The next message starts over from the beginning.
	fresh := postMessage(t, h, "acme", sessionID, "")
	assert.Contains(t, fresh.Reply, "single room")
	assert.Empty(t, fresh.Collected)
}

func TestHandleHistory(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := postMessage(t, h, "acme", "", "")
	sessionID := resp.SessionID
	postMessage(t, h, "acme", sessionID, "whole house")

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session="+sessionID, nil)
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), "acme"))
	rec := httptest.NewRecorder()
	h.HandleHistory(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Messages)
	assert.Equal(t, "assistant", payload.Messages[0].Role)
	assert.Contains(t, payload.Messages[0].Text, greeting)

	var sawUser bool
	for _, m := range payload.Messages {
		if m.Role == "user" && m.Text == "whole house" {
			sawUser = true
		}
	}
	assert.True(t, sawUser)
}

func TestHandleHistoryUnknownSession(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=nope", nil)
	req = req.WithContext(tenancy.WithCompanyID(req.Context(), "acme"))
	rec := httptest.NewRecorder()
	h.HandleHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Empty(t, payload.Messages)
}

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/paintquotepro/quote-platform/internal/intake"
	"github.com/paintquotepro/quote-platform/internal/observability/metrics"
	"github.com/paintquotepro/quote-platform/internal/quotes"
	"github.com/paintquotepro/quote-platform/internal/tenancy"
	"github.com/paintquotepro/quote-platform/pkg/logging"
)

const greeting = "Hi! I can put together a painting quote for you in just a few questions."

// Handler manages chat sessions and drives the intake conversation.
type Handler struct {
	store   Store
	repo    quotes.Repository
	metrics *metrics.IntakeMetrics
	logger  *logging.Logger
}

// NewHandler creates a chat handler. metrics may be nil.
func NewHandler(store Store, repo quotes.Repository, m *metrics.IntakeMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:   store,
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// MessageRequest is one turn of the guided conversation. An empty session_id
// starts a new session; an empty text returns the current question without
// consuming a turn.
type MessageRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// MessageResponse is the assistant's side of the turn.
type MessageResponse struct {
	SessionID string         `json:"session_id"`
	Reply     string         `json:"reply"`
	Complete  bool           `json:"complete"`
	QuoteID   string         `json:"quote_id,omitempty"`
	Collected map[string]any `json:"collected,omitempty"`
}

// HandleMessage handles POST /chat/message.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenancy.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing company context", http.StatusBadRequest)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.processMessage(r.Context(), companyID, req.SessionID, req.Text)
	if err != nil {
		h.logger.Error("chat: failed to process message", "error", err, "company_id", companyID)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// processMessage runs one turn: restore the session, feed the manager, and
// persist the updated state. A completed conversation is turned into a
// stored quote exactly once.
func (h *Handler) processMessage(ctx context.Context, companyID, sessionID, text string) (*MessageResponse, error) {
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	key := SessionKey(companyID, sessionID)

	sess, err := h.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	mgr := intake.NewManager()
	fresh := sess == nil
	if !fresh {
		if err := mgr.Restore(sess.State); err != nil {
			// A stale snapshot from an older graph; start over.
			h.logger.Warn("chat: discarding unrestorable session", "error", err, "session_id", sessionID)
			mgr.Reset()
			fresh = true
			sess = nil
		}
	}
	if sess == nil {
		sess = &Session{}
	}

	if fresh {
		h.metrics.ObserveConversationStarted()
		mgr.AddMessage(intake.RoleAssistant, greeting)
		mgr.AddMessage(intake.RoleAssistant, mgr.CurrentQuestion())
	}

	resp := &MessageResponse{SessionID: sessionID}

	if strings.TrimSpace(text) == "" {
		resp.Reply = mgr.CurrentQuestion()
		if fresh {
			resp.Reply = greeting + " " + resp.Reply
		}
		resp.Complete = mgr.IsComplete()
		resp.Collected = mgr.CollectedData()
	} else {
		wasComplete := mgr.IsComplete()
		fieldsBefore := len(mgr.CollectedFields())

		result := mgr.ProcessInput(text)
		resp.Reply = result.Reply
		resp.Complete = result.Complete
		resp.Collected = result.Collected

		if !result.Complete && len(mgr.CollectedFields()) == fieldsBefore {
			h.metrics.ObserveReprompt(mgr.CurrentStep())
		}
		if result.Complete && !wasComplete {
			h.metrics.ObserveConversationCompleted()
		}
	}

	if mgr.IsQuoteReady() && sess.QuoteID == "" {
		quoteReq := quotes.NewRequestFromIntake(companyID, mgr.CollectedData())
		start := time.Now()
		quote, err := h.repo.Create(ctx, &quoteReq)
		h.metrics.ObservePersistLatency(time.Since(start).Seconds())
		if err != nil {
			h.logger.Error("chat: failed to persist quote", "error", err, "company_id", companyID)
		} else {
			sess.QuoteID = quote.ID
			h.logger.Info("chat: quote created from conversation",
				"quote_id", quote.ID, "company_id", companyID, "session_id", sessionID)
		}
	}
	resp.QuoteID = sess.QuoteID

	sess.State = mgr.Snapshot()
	if err := h.store.Save(ctx, key, sess); err != nil {
		return nil, err
	}
	return resp, nil
}

// QuickQuoteRequest is the one-shot fast path: a single message carrying
// measurements, paint and customer details.
type QuickQuoteRequest struct {
	Text string `json:"text"`
}

// HandleQuickQuote handles POST /chat/quick.
func (h *Handler) HandleQuickQuote(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenancy.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing company context", http.StatusBadRequest)
		return
	}

	var req QuickQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	draft := intake.ParseQuickQuote(req.Text)
	if draft == nil {
		h.metrics.ObserveQuickQuote("rejected")
		http.Error(w, "message does not contain enough detail for a quick quote", http.StatusUnprocessableEntity)
		return
	}

	quoteReq := quotes.NewRequestFromQuickQuote(companyID, draft)
	start := time.Now()
	quote, err := h.repo.Create(r.Context(), &quoteReq)
	h.metrics.ObservePersistLatency(time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObserveQuickQuote("rejected")
		h.logger.Warn("chat: quick quote rejected", "error", err, "company_id", companyID)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.metrics.ObserveQuickQuote("created")
	h.logger.Info("chat: quick quote created", "quote_id", quote.ID, "company_id", companyID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(quote)
}

// HandleReset handles POST /chat/reset, discarding a session.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenancy.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing company context", http.StatusBadRequest)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), SessionKey(companyID, req.SessionID)); err != nil {
		h.logger.Error("chat: failed to reset session", "error", err)
		http.Error(w, "failed to reset session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// HandleHistory handles GET /chat/history?session=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenancy.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing company context", http.StatusBadRequest)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	sess, err := h.store.Load(r.Context(), SessionKey(companyID, sessionID))
	if err != nil {
		h.logger.Error("chat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	history := []HistoryMessage{}
	if sess != nil {
		for _, m := range sess.State.Messages {
			history = append(history, HistoryMessage{
				Role:      m.Role,
				Text:      m.Content,
				Timestamp: m.Timestamp.Format(time.RFC3339),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": history})
}

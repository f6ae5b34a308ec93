package chat

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"
)

// InboundMessage is what the chat widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "session", "history", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Complete  bool             `json:"complete,omitempty"`
	QuoteID   string           `json:"quote_id,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HandleWebSocket upgrades to WebSocket and runs the conversation in real
// time. Tenancy comes from the company query parameter since browsers
// cannot set headers on WebSocket upgrades.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	companyID := r.URL.Query().Get("company")
	if companyID == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing company parameter"})
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	// Replay history for a resumed session.
	if sess, err := h.store.Load(r.Context(), SessionKey(companyID, sessionID)); err == nil && sess != nil && len(sess.State.Messages) > 0 {
		history := make([]HistoryMessage, 0, len(sess.State.Messages))
		for _, m := range sess.State.Messages {
			history = append(history, HistoryMessage{
				Role:      m.Role,
				Text:      m.Content,
				Timestamp: m.Timestamp.Format(time.RFC3339),
			})
		}
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
	} else {
		// New session: open with the greeting and first question.
		resp, err := h.processMessage(r.Context(), companyID, sessionID, "")
		if err != nil {
			h.logger.Error("chat: failed to open session", "error", err, "company_id", companyID)
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
			return
		}
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "message", Role: "assistant", Text: resp.Reply})
	}

	h.logger.Info("chat: websocket opened", "company_id", companyID, "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat: websocket closed", "company_id", companyID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		resp, err := h.processMessage(r.Context(), companyID, sessionID, msg.Text)
		if err != nil {
			h.logger.Error("chat: failed to process message", "error", err, "company_id", companyID)
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:     "message",
			Role:     "assistant",
			Text:     resp.Reply,
			Complete: resp.Complete,
			QuoteID:  resp.QuoteID,
		})
	}
}

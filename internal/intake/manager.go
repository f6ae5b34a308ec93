package intake

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Chat roles used in the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversation transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the mutable per-conversation session state. It is fully
// serializable so session stores can snapshot and restore conversations.
type State struct {
	CurrentStep string         `json:"current_step"`
	Collected   map[string]any `json:"collected"`
	// FieldOrder preserves the order fields were answered in.
	FieldOrder []string  `json:"field_order,omitempty"`
	Messages   []Message `json:"messages,omitempty"`
	Complete   bool      `json:"complete"`
	QuoteReady bool      `json:"quote_ready"`
}

// Result is the outcome of processing one user input.
type Result struct {
	Reply     string         `json:"reply"`
	Complete  bool           `json:"complete"`
	Collected map[string]any `json:"collected"`
}

// Canned responses. Invalid input never errors; it re-prompts.
const (
	fallbackReply   = "Sorry, I didn't quite catch that. Could you rephrase?"
	invalidValueMsg = "Hmm, that doesn't look right. Could you try that again?"
	numberReprompt  = "Please provide a valid number (for example 350)."
	closingReply    = "Perfect, that's everything I need! Give me a moment to put your painting quote together."
)

// Manager drives a single quote-intake conversation over a fixed step graph.
// A Manager owns exactly one logical conversation; callers must serialize
// calls per session. No internal locking is provided.
type Manager struct {
	graph Graph
	state State
	now   func() time.Time
}

// NewManager creates a manager over the default intake graph.
func NewManager() *Manager {
	m, err := NewManagerWithGraph(DefaultGraph())
	if err != nil {
		// The default graph is static; a failure here is a programming error.
		panic(err)
	}
	return m
}

// NewManagerWithGraph creates a manager over a custom graph.
func NewManagerWithGraph(g Graph) (*Manager, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{graph: g, now: time.Now}
	m.Reset()
	return m, nil
}

// Reset reinitializes the conversation to the start step with an empty
// transcript and no collected data.
func (m *Manager) Reset() {
	m.state = State{
		CurrentStep: m.graph.Start,
		Collected:   make(map[string]any),
	}
}

// CurrentQuestion returns the prompt for the step awaiting an answer. When
// the conversation is complete, or the step id is somehow unknown, a
// fallback message is returned instead.
func (m *Manager) CurrentQuestion() string {
	if m.state.Complete {
		return closingReply
	}
	step, ok := m.graph.Steps[m.state.CurrentStep]
	if !ok {
		return fallbackReply
	}
	return step.Question
}

// ProcessInput parses one user message against the current step. Invalid
// input produces a re-prompt and leaves the step and collected data
// untouched. Once the conversation is complete, further input is a no-op
// that idempotently returns the closing message.
func (m *Manager) ProcessInput(input string) Result {
	if m.state.Complete {
		return Result{Reply: closingReply, Complete: true, Collected: m.CollectedData()}
	}

	step, ok := m.graph.Steps[m.state.CurrentStep]
	if !ok {
		// Misconfigured graph. Recover with a generic message, mutate nothing.
		return Result{Reply: fallbackReply, Collected: m.CollectedData()}
	}

	m.appendMessage(RoleUser, input)

	value, reprompt := parseAnswer(step, input)
	if reprompt != "" {
		m.appendMessage(RoleAssistant, reprompt)
		return Result{Reply: reprompt, Collected: m.CollectedData()}
	}

	if step.Validate != "" {
		if validate := validators[step.Validate]; validate != nil && !validate(value) {
			m.appendMessage(RoleAssistant, invalidValueMsg)
			return Result{Reply: invalidValueMsg, Collected: m.CollectedData()}
		}
	}

	m.storeField(step.Field, value)

	nextID := step.Next.Resolve(value)
	if nextID == "" {
		m.state.Complete = true
		m.state.QuoteReady = true
		m.appendMessage(RoleAssistant, closingReply)
		return Result{Reply: closingReply, Complete: true, Collected: m.CollectedData()}
	}

	m.state.CurrentStep = nextID
	next := m.graph.Steps[nextID]
	m.appendMessage(RoleAssistant, next.Question)
	return Result{Reply: next.Question, Collected: m.CollectedData()}
}

// parseAnswer converts raw input to the step's typed value. A non-empty
// reprompt means the input was rejected.
func parseAnswer(step Step, input string) (value any, reprompt string) {
	trimmed := strings.TrimSpace(input)

	switch step.Type {
	case FieldNumber:
		n, err := strconv.ParseFloat(strings.TrimPrefix(trimmed, "$"), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, numberReprompt
		}
		return n, ""

	case FieldSelect:
		if match := matchOption(trimmed, step.Options); match != "" {
			return match, ""
		}
		return nil, "Please choose one of: " + strings.Join(step.Options, ", ") + "."

	case FieldMultiSelect:
		selected := matchOptions(trimmed, step.Options)
		if len(selected) == 0 {
			return nil, "Please pick at least one of: " + strings.Join(step.Options, ", ") + "."
		}
		return selected, ""

	default: // FieldText: pass through; structure extraction is the parsers' job.
		if step.Required && trimmed == "" {
			return nil, invalidValueMsg
		}
		return trimmed, ""
	}
}

// matchOption finds the canonical option for an answer: case-insensitive
// exact match, or substring containment in either direction.
func matchOption(answer string, options []string) string {
	lower := strings.ToLower(answer)
	if lower == "" {
		return ""
	}
	for _, opt := range options {
		optLower := strings.ToLower(opt)
		if lower == optLower || strings.Contains(lower, optLower) || strings.Contains(optLower, lower) {
			return opt
		}
	}
	return ""
}

// matchOptions splits a multiselect answer on commas/whitespace and keeps
// the tokens that name an option.
func matchOptions(answer string, options []string) []string {
	tokens := strings.FieldsFunc(answer, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	var selected []string
	seen := make(map[string]struct{})
	for _, token := range tokens {
		match := matchOption(strings.TrimSpace(token), options)
		if match == "" {
			continue
		}
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		selected = append(selected, match)
	}
	return selected
}

func (m *Manager) storeField(field string, value any) {
	if _, exists := m.state.Collected[field]; !exists {
		m.state.FieldOrder = append(m.state.FieldOrder, field)
	}
	m.state.Collected[field] = value
}

func (m *Manager) appendMessage(role, content string) {
	m.state.Messages = append(m.state.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
	})
}

// AddMessage seeds the transcript without going through step logic, e.g. to
// inject the opening greeting.
func (m *Manager) AddMessage(role, content string) {
	m.appendMessage(role, content)
}

// CollectedData returns a copy of the field values collected so far.
func (m *Manager) CollectedData() map[string]any {
	out := make(map[string]any, len(m.state.Collected))
	for k, v := range m.state.Collected {
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}

// CollectedFields returns the field names in the order they were answered.
func (m *Manager) CollectedFields() []string {
	return append([]string(nil), m.state.FieldOrder...)
}

// Messages returns a copy of the transcript.
func (m *Manager) Messages() []Message {
	return append([]Message(nil), m.state.Messages...)
}

// CurrentStep returns the id of the step awaiting an answer.
func (m *Manager) CurrentStep() string { return m.state.CurrentStep }

// IsComplete reports whether the conversation reached a terminal step.
func (m *Manager) IsComplete() bool { return m.state.Complete }

// IsQuoteReady reports whether enough data was collected to price a quote.
func (m *Manager) IsQuoteReady() bool { return m.state.QuoteReady }

// Snapshot returns a deep copy of the session state for persistence.
func (m *Manager) Snapshot() State {
	snap := State{
		CurrentStep: m.state.CurrentStep,
		Collected:   make(map[string]any, len(m.state.Collected)),
		FieldOrder:  append([]string(nil), m.state.FieldOrder...),
		Messages:    append([]Message(nil), m.state.Messages...),
		Complete:    m.state.Complete,
		QuoteReady:  m.state.QuoteReady,
	}
	for k, v := range m.state.Collected {
		if list, ok := v.([]string); ok {
			snap.Collected[k] = append([]string(nil), list...)
			continue
		}
		snap.Collected[k] = v
	}
	return snap
}

// Restore replaces the session state with a previously taken snapshot. The
// snapshot's current step must exist in the graph unless the conversation
// already completed.
func (m *Manager) Restore(snap State) error {
	if !snap.Complete {
		if _, ok := m.graph.Steps[snap.CurrentStep]; !ok {
			return fmt.Errorf("intake: snapshot references unknown step %q", snap.CurrentStep)
		}
	}
	if snap.Collected == nil {
		snap.Collected = make(map[string]any)
	}
	m.state = snap
	return nil
}

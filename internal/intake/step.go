// Package intake implements the conversation-driven quote intake flow: a
// fixed branching graph of questions that collects enough structured data to
// price a painting job.
package intake

import (
	"fmt"
	"strings"
)

// FieldType governs how a step's answer is parsed and validated.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
)

// Step is a single author-defined node in the question graph. Steps are
// constructed once at manager initialization and never mutated.
type Step struct {
	ID       string    `json:"id"`
	Question string    `json:"question"`
	// Field is the key the parsed answer is stored under in the collected data.
	Field    string    `json:"field"`
	Type     FieldType `json:"type"`
	// Options lists the allowed values for select/multiselect steps.
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
	// Validate names an entry in the validator registry, applied to the
	// parsed value before the step advances. Empty means no extra check.
	Validate string     `json:"validate,omitempty"`
	Next     Transition `json:"next"`
}

// Transition maps a parsed answer to the next step id. Rules are evaluated
// in order; the first match wins, otherwise Default applies. An empty target
// terminates the conversation.
type Transition struct {
	Rules   []TransitionRule `json:"rules,omitempty"`
	Default string           `json:"default,omitempty"`
}

// TransitionRule matches a parsed answer. Exactly one of Equals or
// ContainsAny should be set.
type TransitionRule struct {
	// Equals matches the answer case-insensitively (select answers are
	// already canonicalized to an option value).
	Equals string `json:"equals,omitempty"`
	// ContainsAny matches when the lowercased answer contains any of the
	// given substrings. Used for branching on free-text answers.
	ContainsAny []string `json:"contains_any,omitempty"`
	Then        string   `json:"then"`
}

// Resolve returns the next step id for a parsed answer, or "" for terminal.
func (t Transition) Resolve(value any) string {
	answer := strings.ToLower(strings.TrimSpace(answerString(value)))
	for _, rule := range t.Rules {
		if rule.Equals != "" && strings.EqualFold(rule.Equals, answer) {
			return rule.Then
		}
		for _, sub := range rule.ContainsAny {
			if strings.Contains(answer, strings.ToLower(sub)) {
				return rule.Then
			}
		}
	}
	return t.Default
}

func answerString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Graph is a complete step graph with a designated start step.
type Graph struct {
	Start string          `json:"start"`
	Steps map[string]Step `json:"steps"`
}

// Validate checks that the graph is well-formed: the start step exists,
// every transition target references an existing step, select steps carry
// options, and named validators are registered.
func (g Graph) Validate() error {
	if _, ok := g.Steps[g.Start]; !ok {
		return fmt.Errorf("intake: start step %q not defined", g.Start)
	}
	for id, step := range g.Steps {
		if step.ID != id {
			return fmt.Errorf("intake: step %q keyed as %q", step.ID, id)
		}
		if step.Field == "" {
			return fmt.Errorf("intake: step %q has no field", id)
		}
		switch step.Type {
		case FieldText, FieldNumber, FieldSelect, FieldMultiSelect:
		default:
			return fmt.Errorf("intake: step %q has unknown type %q", id, step.Type)
		}
		if (step.Type == FieldSelect || step.Type == FieldMultiSelect) && len(step.Options) == 0 {
			return fmt.Errorf("intake: step %q requires options", id)
		}
		if step.Validate != "" {
			if _, ok := validators[step.Validate]; !ok {
				return fmt.Errorf("intake: step %q references unknown validator %q", id, step.Validate)
			}
		}
		targets := []string{step.Next.Default}
		for _, rule := range step.Next.Rules {
			targets = append(targets, rule.Then)
		}
		for _, target := range targets {
			if target == "" {
				continue
			}
			if _, ok := g.Steps[target]; !ok {
				return fmt.Errorf("intake: step %q transitions to unknown step %q", id, target)
			}
		}
	}
	return nil
}

// validators is the registry of named validation predicates referenced by
// Step.Validate. Keeping predicates out of the graph keeps it serializable.
var validators = map[string]func(value any) bool{
	"positive": func(value any) bool {
		n, ok := value.(float64)
		return ok && n > 0
	},
	"nonempty": func(value any) bool {
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	},
}

// Step ids of the default graph.
const (
	StepStart          = "start"
	StepRoomDimensions = "roomDimensions"
	StepHouseSize      = "houseSize"
	StepSurfaces       = "surfaces"
	StepTrimDetails    = "trimDetails"
	StepPaintSelection = "paintSelection"
	StepCondition      = "condition"
	StepTimeline       = "timeline"
	StepCustomerInfo   = "customerInfo"
)

// DefaultGraph returns the standard quote-intake question graph. Downstream
// pricing code depends on the field names; do not rename them without
// updating the consumers.
func DefaultGraph() Graph {
	return Graph{
		Start: StepStart,
		Steps: map[string]Step{
			StepStart: {
				ID:       StepStart,
				Question: "Hi! I can put together a painting quote for you. What are we painting — a single room, multiple rooms, or the whole house?",
				Field:    "spaceType",
				Type:     FieldSelect,
				Options:  []string{"single room", "multiple rooms", "whole house"},
				Required: true,
				Next: Transition{
					Rules: []TransitionRule{
						{Equals: "whole house", Then: StepHouseSize},
					},
					Default: StepRoomDimensions,
				},
			},
			StepRoomDimensions: {
				ID:       StepRoomDimensions,
				Question: "Got it. Can you give me the room measurements? Linear feet of wall, ceiling height, and the room size (like \"12 by 10\") all help.",
				Field:    "roomDimensions",
				Type:     FieldText,
				Required: true,
				Validate: "nonempty",
				Next:     Transition{Default: StepSurfaces},
			},
			StepHouseSize: {
				ID:       StepHouseSize,
				Question: "A whole house — great. Roughly how big is it? Square footage, number of rooms, number of stories — whatever you know.",
				Field:    "houseDetails",
				Type:     FieldText,
				Required: true,
				Validate: "nonempty",
				Next:     Transition{Default: StepSurfaces},
			},
			StepSurfaces: {
				ID:       StepSurfaces,
				Question: "Which surfaces are we painting? Walls, ceilings, trim, doors, windows — list everything that applies.",
				Field:    "surfaces",
				Type:     FieldText,
				Required: true,
				Validate: "nonempty",
				Next: Transition{
					Rules: []TransitionRule{
						{ContainsAny: []string{"trim", "door"}, Then: StepTrimDetails},
					},
					Default: StepPaintSelection,
				},
			},
			StepTrimDetails: {
				ID:       StepTrimDetails,
				Question: "How much trim and how many doors are we talking about? A rough count or footage is fine.",
				Field:    "trimDetails",
				Type:     FieldText,
				Required: true,
				Validate: "nonempty",
				Next:     Transition{Default: StepPaintSelection},
			},
			StepPaintSelection: {
				ID:       StepPaintSelection,
				Question: "What grade of paint would you like — economy, standard, premium, or luxury?",
				Field:    "paintProducts",
				Type:     FieldSelect,
				Options:  []string{"economy", "standard", "premium", "luxury"},
				Required: true,
				Next:     Transition{Default: StepCondition},
			},
			StepCondition: {
				ID:       StepCondition,
				Question: "How's the condition of the surfaces — good, fair, or poor? (Poor means lots of patching and prep work.)",
				Field:    "prepCondition",
				Type:     FieldSelect,
				Options:  []string{"good", "fair", "poor"},
				Required: true,
				Next:     Transition{Default: StepTimeline},
			},
			StepTimeline: {
				ID:       StepTimeline,
				Question: "When would you like the work done — ASAP, within 2 weeks, within a month, or are you flexible?",
				Field:    "timeline",
				Type:     FieldSelect,
				Options:  []string{"asap", "within 2 weeks", "within a month", "flexible"},
				Required: true,
				Next:     Transition{Default: StepCustomerInfo},
			},
			StepCustomerInfo: {
				ID:       StepCustomerInfo,
				Question: "Last thing — what's your name and the address of the job?",
				Field:    "customerDetails",
				Type:     FieldText,
				Required: true,
				Validate: "nonempty",
				Next:     Transition{},
			},
		},
	}
}

// Package feedback decides what a user reply to a presented itinerary means.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/llm"
	"lazy-tourist-be/pkg/planner/preferences"
)

type Action string

const (
	ActionClarify Action = "clarify"
	ActionRefine  Action = "refine"
	ActionSave    Action = "save"
)

const (
	DefaultHistoryWindow   = 6
	DefaultClarifyResponse = "I'm here to help! What would you like to know?"
	DefaultRefineResponse  = "Working on your changes..."
)

type Decision struct {
	Action    Action `json:"action"`
	Reasoning string `json:"reasoning"`
	Response  string `json:"response"`
	// Fallback is true when the oracle could not be used and refine was assumed.
	Fallback bool `json:"-"`
}

// Context is what the classifier may see besides the message itself.
// History must not include the message being classified.
type Context struct {
	Preferences *preferences.Preferences
	History     []string
}

type Classifier struct {
	llmProvider   llm.LLMProvider
	logger        logger.ILogger
	historyWindow int
}

func NewClassifier(llmProvider llm.LLMProvider, log logger.ILogger, historyWindow int) *Classifier {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &Classifier{
		llmProvider:   llmProvider,
		logger:        log,
		historyWindow: historyWindow,
	}
}

// Classify never fails: a blank message means save, and anything the oracle
// cannot settle is treated as a refinement request.
func (c *Classifier) Classify(ctx context.Context, text string, fc Context) Decision {
	text = strings.TrimSpace(text)
	if text == "" {
		return Decision{Action: ActionSave, Reasoning: "empty reply"}
	}

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: classifierSystemPrompt},
		{Role: llm.RoleUser, Content: c.buildPrompt(text, fc)},
	}
	response, err := c.llmProvider.Chat(ctx, history, llm.WithTemperature(0.3), llm.WithJSONMode())
	if err != nil {
		c.logger.Warn("FEEDBACK", "Classifier call failed, defaulting to refine", map[string]interface{}{"error": err.Error()})
		return Decision{Action: ActionRefine, Fallback: true}
	}

	var d Decision
	if err := llm.DecodeJSON(response, &d); err != nil {
		c.logger.Warn("FEEDBACK", "Classifier output unreadable, defaulting to refine", map[string]interface{}{"error": err.Error()})
		return Decision{Action: ActionRefine, Fallback: true}
	}

	d.Action = Action(strings.ToLower(strings.TrimSpace(string(d.Action))))
	switch d.Action {
	case ActionClarify, ActionSave, ActionRefine:
	default:
		c.logger.Warn("FEEDBACK", "Unknown action, defaulting to refine", map[string]interface{}{"action": d.Action})
		d.Action = ActionRefine
	}
	d.Response = strings.TrimSpace(d.Response)

	c.logger.Info("FEEDBACK", "Feedback classified", map[string]interface{}{
		"action":    d.Action,
		"reasoning": d.Reasoning,
	})
	return d
}

const classifierSystemPrompt = `You are a travel planning assistant analyzing user feedback on an itinerary.
Decide the user's intent:
1. clarify: a question that needs no itinerary change (destination, weather, culture, what/how questions).
2. refine: the user wants to change something (activities, hotels, flights, budget, dates, duration, travelers).
3. save: the user is satisfied or wants to finish ("looks good", "perfect", "save").
Return ONLY a JSON object:
{"action": "clarify" | "refine" | "save", "reasoning": "why", "response": "answer for clarify, short acknowledgement for refine, confirmation for save"}`

func (c *Classifier) buildPrompt(text string, fc Context) string {
	var prompt strings.Builder

	prompt.WriteString("<itinerary_context>\n")
	if p := fc.Preferences; p != nil {
		prompt.WriteString(fmt.Sprintf("Destination: %s\n", p.Destination))
		prompt.WriteString(fmt.Sprintf("Duration: %d days\n", p.DurationDays))
		prompt.WriteString(fmt.Sprintf("Budget: $%.0f\n", p.Budget))
	} else {
		prompt.WriteString("No itinerary yet.\n")
	}
	prompt.WriteString("</itinerary_context>\n\n")

	if recent := lastN(fc.History, c.historyWindow); len(recent) > 0 {
		prompt.WriteString("<previous_conversation>\n")
		prompt.WriteString(strings.Join(recent, "\n"))
		prompt.WriteString("\n</previous_conversation>\n\n")
	}

	prompt.WriteString(fmt.Sprintf("Current user feedback: %q\n", text))
	prompt.WriteString("Is this a clarification question, a refinement request, or a save request?")
	return prompt.String()
}

func lastN(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

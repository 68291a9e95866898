// Package intent turns free-text travel requests into structured preferences.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/llm"
	"lazy-tourist-be/pkg/planner/preferences"
)

// FallbackMessage is asked when the oracle cannot be understood or reached.
const FallbackMessage = "I'm having trouble understanding your request. Could you please tell me where you'd like to go, how many days, how many people, and your budget?"

// Resolution is either complete (Preferences set) or a request for more
// information (Missing and FollowUp set). Partial always carries what is known.
type Resolution struct {
	Preferences *preferences.Preferences
	Partial     preferences.Extracted
	Missing     []string
	FollowUp    string
	// Fallback is true when the oracle output was unusable.
	Fallback bool
}

// Complete reports whether planning can proceed.
func (r Resolution) Complete() bool {
	return r.Preferences != nil
}

type extraction struct {
	Extracted preferences.Extracted `json:"extracted"`
	Missing   []string              `json:"missing"`
}

type Resolver struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	now         func() time.Time
}

func NewResolver(llmProvider llm.LLMProvider, log logger.ILogger, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		llmProvider: llmProvider,
		logger:      log,
		now:         now,
	}
}

// Resolve reads the whole conversation and merges what the oracle finds into
// partial. Which fields are missing is decided locally, not by the oracle.
func (r *Resolver) Resolve(ctx context.Context, history []string, partial preferences.Extracted) (Resolution, error) {
	response, err := r.llmProvider.Generate(ctx, r.buildPrompt(history, partial), llm.WithTemperature(0), llm.WithJSONMode())
	if err != nil {
		r.logger.Error("INTENT", "Extraction call failed", map[string]interface{}{"error": err.Error()})
		return r.fallback(partial), nil
	}

	var out extraction
	if err := llm.DecodeJSON(response, &out); err != nil {
		r.logger.Warn("INTENT", "Extraction output unreadable, asking user to rephrase", map[string]interface{}{
			"error": err.Error(),
			"raw":   response,
		})
		return r.fallback(partial), nil
	}

	merged := partial.Merge(out.Extracted)
	missing := preferences.RequiredMissing(merged)
	if !sameFields(missing, out.Missing) {
		r.logger.Debug("INTENT", "Oracle missing list disagrees with local check", map[string]interface{}{
			"oracle": out.Missing,
			"local":  missing,
		})
	}

	if len(missing) > 0 {
		r.logger.Info("INTENT", "Missing critical information", map[string]interface{}{"missing": missing})
		return Resolution{
			Partial:  merged,
			Missing:  missing,
			FollowUp: r.askForMissing(ctx, merged, missing),
		}, nil
	}

	prefs, err := preferences.Normalize(merged, r.now())
	if err != nil {
		return Resolution{}, fmt.Errorf("normalize preferences: %w", err)
	}

	r.logger.Info("INTENT", "All required information collected", map[string]interface{}{
		"origin":      prefs.Origin,
		"destination": prefs.Destination,
		"departure":   prefs.DepartureDate,
		"return":      prefs.ReturnDate,
		"passengers":  prefs.TotalPassengers,
		"budget":      prefs.Budget,
	})
	return Resolution{Preferences: &prefs, Partial: merged}, nil
}

func (r *Resolver) fallback(partial preferences.Extracted) Resolution {
	return Resolution{
		Partial:  partial,
		Missing:  preferences.RequiredMissing(partial),
		FollowUp: FallbackMessage,
		Fallback: true,
	}
}

func (r *Resolver) askForMissing(ctx context.Context, known preferences.Extracted, missing []string) string {
	response, err := r.llmProvider.Generate(ctx, buildFollowUpPrompt(known, missing), llm.WithTemperature(0))
	if err != nil {
		r.logger.Warn("INTENT", "Follow-up generation failed, using template", map[string]interface{}{"error": err.Error()})
		return DefaultFollowUp(missing)
	}
	if msg := strings.TrimSpace(llm.StripCodeFence(response)); msg != "" {
		return msg
	}
	return DefaultFollowUp(missing)
}

var fieldQuestions = map[string]string{
	preferences.FieldOrigin:       "where you'll be travelling from",
	preferences.FieldDestination:  "where you'd like to go",
	preferences.FieldDurationDays: "how many days the trip should last",
	preferences.FieldNumAdults:    "how many adults are travelling",
	preferences.FieldBudget:       "your total budget in USD",
}

// DefaultFollowUp asks for the given fields without the oracle.
func DefaultFollowUp(missing []string) string {
	parts := make([]string, 0, len(missing))
	for _, f := range missing {
		if q, ok := fieldQuestions[f]; ok {
			parts = append(parts, q)
		} else {
			parts = append(parts, strings.ReplaceAll(f, "_", " "))
		}
	}

	var list string
	switch len(parts) {
	case 0:
		return FallbackMessage
	case 1:
		list = parts[0]
	default:
		list = strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
	return fmt.Sprintf("Sounds like a great trip! To start planning, could you tell me %s?", list)
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		seen[f] = true
	}
	for _, f := range b {
		if !seen[f] {
			return false
		}
	}
	return true
}

func knownJSON(known preferences.Extracted) string {
	data, err := json.MarshalIndent(known, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

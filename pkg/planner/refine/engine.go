// Package refine turns a change request into updated preferences and decides
// how much of the plan has to be rebuilt.
package refine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/llm"
	"lazy-tourist-be/pkg/planner/preferences"
)

// Route names where planning resumes after a refinement.
type Route string

const (
	RouteSearch   Route = "search_flights"
	RouteCompile  Route = "compile_itinerary"
	RouteFormat   Route = "format_output"
	RouteFeedback Route = "get_feedback"
)

// researchFields change search parameters, so any update to them forces a
// new search whatever the oracle says.
var researchFields = map[string]bool{
	preferences.FieldDurationDays:  true,
	preferences.FieldBudget:        true,
	preferences.FieldNumAdults:     true,
	preferences.FieldNumChildren:   true,
	preferences.FieldMinHotelStars: true,
	preferences.FieldOrigin:        true,
	preferences.FieldDestination:   true,
	preferences.FieldDepartureDate: true,
	preferences.FieldReturnDate:    true,
}

type Change struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %v → %v", c.Field, c.Old, c.New)
}

type Outcome struct {
	Route              Route
	Preferences        preferences.Preferences
	Changes            []Change
	ChangesNeeded      []string
	Summary            string
	ClarifyingQuestion string
	// FormatNotes are passed to the presenter when only presentation changes.
	FormatNotes string
	ParseFailed bool
}

// Applied reports whether any preference was changed.
func (o Outcome) Applied() bool {
	return len(o.Changes) > 0
}

type refinement struct {
	ChangesNeeded      []string              `json:"changes_needed"`
	RequiresNewSearch  bool                  `json:"requires_new_search"`
	ClarifyingQuestion *string               `json:"clarifying_question"`
	UpdatedSummary     string                `json:"updated_summary"`
	UpdatedPreferences preferences.Extracted `json:"updated_preferences"`
	PresentationOnly   bool                  `json:"presentation_only"`
}

type Engine struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	now         func() time.Time
}

func NewEngine(llmProvider llm.LLMProvider, log logger.ILogger, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{llmProvider: llmProvider, logger: log, now: now}
}

// Refine asks the oracle what the feedback changes. A transport failure is
// returned as an error; unreadable output recompiles with prefs unchanged.
func (e *Engine) Refine(ctx context.Context, feedback string, prefs preferences.Preferences) (Outcome, error) {
	history := []llm.Message{
		{Role: llm.RoleSystem, Content: refineSystemPrompt},
		{Role: llm.RoleUser, Content: buildRefinePrompt(feedback, prefs)},
	}
	response, err := e.llmProvider.Chat(ctx, history, llm.WithTemperature(0.3), llm.WithJSONMode())
	if err != nil {
		e.logger.Error("REFINE", "Refinement call failed", map[string]interface{}{"error": err.Error()})
		return Outcome{}, fmt.Errorf("refinement oracle: %w", err)
	}

	var r refinement
	if err := llm.DecodeJSON(response, &r); err != nil {
		e.logger.Warn("REFINE", "Refinement output unreadable, recompiling as is", map[string]interface{}{
			"error":    err.Error(),
			"feedback": feedback,
		})
		return Outcome{Route: RouteCompile, Preferences: prefs.Clone(), ParseFailed: true}, nil
	}

	out := Outcome{
		Preferences:   prefs.Clone(),
		ChangesNeeded: r.ChangesNeeded,
		Summary:       strings.TrimSpace(r.UpdatedSummary),
	}

	if r.ClarifyingQuestion != nil && strings.TrimSpace(*r.ClarifyingQuestion) != "" {
		out.Route = RouteFeedback
		out.ClarifyingQuestion = strings.TrimSpace(*r.ClarifyingQuestion)
		e.logger.Info("REFINE", "Feedback unclear, asking a question", map[string]interface{}{"question": out.ClarifyingQuestion})
		return out, nil
	}

	out.Changes = e.apply(&out.Preferences, r.UpdatedPreferences)
	for _, c := range out.Changes {
		e.logger.Info("REFINE", "Preference updated", map[string]interface{}{
			"field":  c.Field,
			"change": c.String(),
		})
	}

	forced := false
	for _, f := range r.UpdatedPreferences.Fields() {
		if researchFields[f] {
			forced = true
			break
		}
	}

	switch {
	case forced || r.RequiresNewSearch:
		if forced && !r.RequiresNewSearch {
			e.logger.Info("REFINE", "Critical preference changed, forcing new search", nil)
		}
		out.Route = RouteSearch
	case r.PresentationOnly && !out.Applied():
		out.Route = RouteFormat
		out.FormatNotes = out.Summary
		if out.FormatNotes == "" {
			out.FormatNotes = feedback
		}
	default:
		out.Route = RouteCompile
	}

	e.logger.Info("REFINE", "Refinement decided", map[string]interface{}{
		"route":   out.Route,
		"changes": len(out.Changes),
		"summary": out.Summary,
	})
	return out, nil
}

// apply overwrites every field the update mentions and keeps the derived
// fields consistent. Duration wins over a return date given in the same update.
func (e *Engine) apply(p *preferences.Preferences, u preferences.Extracted) []Change {
	var changes []Change
	record := func(field string, old, new interface{}) {
		changes = append(changes, Change{Field: field, Old: old, New: new})
	}

	if u.Origin != nil && strings.TrimSpace(*u.Origin) != "" {
		record(preferences.FieldOrigin, p.Origin, *u.Origin)
		p.Origin = strings.TrimSpace(*u.Origin)
	}
	if u.Destination != nil && strings.TrimSpace(*u.Destination) != "" {
		record(preferences.FieldDestination, p.Destination, *u.Destination)
		p.Destination = strings.TrimSpace(*u.Destination)
	}
	if u.DepartureDate != nil {
		old := p.DepartureDate
		if err := p.SetDepartureDate(*u.DepartureDate); err != nil {
			e.logger.Warn("REFINE", "Ignoring departure date", map[string]interface{}{"error": err.Error()})
		} else {
			record(preferences.FieldDepartureDate, old, p.DepartureDate)
		}
	}
	switch {
	case u.DurationDays != nil && *u.DurationDays > 0:
		oldDuration, oldReturn := p.DurationDays, p.ReturnDate
		p.SetDuration(*u.DurationDays)
		record(preferences.FieldDurationDays, oldDuration, p.DurationDays)
		record(preferences.FieldReturnDate, oldReturn, p.ReturnDate)
	case u.ReturnDate != nil:
		oldDuration, oldReturn := p.DurationDays, p.ReturnDate
		if err := p.SetReturnDate(*u.ReturnDate); err != nil {
			e.logger.Warn("REFINE", "Ignoring return date", map[string]interface{}{"error": err.Error()})
		} else {
			record(preferences.FieldReturnDate, oldReturn, p.ReturnDate)
			record(preferences.FieldDurationDays, oldDuration, p.DurationDays)
		}
	}
	if u.NumAdults != nil || u.NumChildren != nil {
		adults, children := p.NumAdults, p.NumChildren
		if u.NumAdults != nil && *u.NumAdults > 0 {
			adults = *u.NumAdults
		}
		if u.NumChildren != nil && *u.NumChildren >= 0 {
			children = *u.NumChildren
		}
		oldTotal := p.TotalPassengers
		if adults != p.NumAdults {
			record(preferences.FieldNumAdults, p.NumAdults, adults)
		}
		if children != p.NumChildren {
			record(preferences.FieldNumChildren, p.NumChildren, children)
		}
		p.SetTravelers(adults, children)
		if oldTotal != p.TotalPassengers {
			record(preferences.FieldTotalPassengers, oldTotal, p.TotalPassengers)
		}
	}
	if u.Budget != nil && *u.Budget > 0 {
		record(preferences.FieldBudget, p.Budget, *u.Budget)
		p.Budget = *u.Budget
	}
	if len(u.Interests) > 0 {
		record(preferences.FieldInterests, p.Interests, u.Interests)
		p.Interests = append([]string(nil), u.Interests...)
	}
	if u.MinHotelStars != nil && *u.MinHotelStars > 0 {
		record(preferences.FieldMinHotelStars, p.MinHotelStars, *u.MinHotelStars)
		p.MinHotelStars = *u.MinHotelStars
	}

	p.ApplyDateDefaults(e.now())
	return changes
}

// Package presenter turns a compiled trip into a readable markdown document.
package presenter

import (
	"context"

	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/compiler"
	"lazy-tourist-be/pkg/planner/preferences"
)

// Document is everything the presenter may show. Any pointer may be nil.
type Document struct {
	Preferences     preferences.Preferences   `json:"preferences"`
	Outbound        *catalog.Flight           `json:"outbound_flight,omitempty"`
	Return          *catalog.Flight           `json:"return_flight,omitempty"`
	Hotel           *catalog.Hotel            `json:"hotel,omitempty"`
	DailyItinerary  []compiler.DayPlan        `json:"daily_itinerary"`
	Budget          *compiler.BudgetBreakdown `json:"budget,omitempty"`
	DestinationInfo *catalog.DestinationInfo  `json:"destination_info,omitempty"`
	Notices         []string                  `json:"notices,omitempty"`
	// Notes are presentation-only requests from the user ("make it shorter").
	Notes string `json:"notes,omitempty"`
}

type Renderer interface {
	Render(ctx context.Context, doc Document) (string, error)
}

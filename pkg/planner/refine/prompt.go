package refine

import (
	"fmt"
	"strings"

	"lazy-tourist-be/pkg/planner/preferences"
)

const refineSystemPrompt = `You are a travel planning assistant refining an itinerary from user feedback.
Understand what the user wants to change and extract any updated preference values.

Set "requires_new_search" to true if duration, budget, travelers, dates, origin, destination or hotel star rating change.
Set it to false when only activities or interests change.
Set "presentation_only" to true when the user only wants the document written differently (shorter, more detail, different layout).
If the feedback is unclear, put one question in "clarifying_question" and leave everything else empty.

Return ONLY a JSON object:
{
  "changes_needed": ["specific change"],
  "requires_new_search": false,
  "clarifying_question": null,
  "updated_summary": "what will change",
  "presentation_only": false,
  "updated_preferences": {
    "origin": null, "destination": null, "departure_date": null, "return_date": null,
    "duration_days": null, "num_adults": null, "num_children": null,
    "budget": null, "interests": null, "min_hotel_stars": null
  }
}
Only fill updated_preferences fields the user actually wants to change. interests must be the full new list.`

func buildRefinePrompt(feedback string, p preferences.Preferences) string {
	var prompt strings.Builder

	prompt.WriteString("<current_trip>\n")
	prompt.WriteString(fmt.Sprintf("Route: %s to %s\n", p.Origin, p.Destination))
	prompt.WriteString(fmt.Sprintf("Dates: %s to %s (%d days)\n", p.DepartureDate, p.ReturnDate, p.DurationDays))
	prompt.WriteString(fmt.Sprintf("Travelers: %d adults, %d children\n", p.NumAdults, p.NumChildren))
	prompt.WriteString(fmt.Sprintf("Budget: $%.0f\n", p.Budget))
	prompt.WriteString(fmt.Sprintf("Interests: %s\n", strings.Join(p.Interests, ", ")))
	prompt.WriteString(fmt.Sprintf("Hotel preference: %d+ stars\n", p.MinHotelStars))
	prompt.WriteString("</current_trip>\n\n")

	prompt.WriteString(fmt.Sprintf("User feedback: %q\n", feedback))
	prompt.WriteString("What changes should be made? Extract any updated preference values.")
	return prompt.String()
}

package intent

import (
	"fmt"
	"strings"

	"lazy-tourist-be/pkg/planner/preferences"
)

func (r *Resolver) buildPrompt(history []string, known preferences.Extracted) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an expert at extracting structured travel information from natural language.\n")
	prompt.WriteString(fmt.Sprintf("Today's date is %s.\n", r.now().Format(preferences.DateLayout)))
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<fields>\n")
	prompt.WriteString("- origin: departure city or airport\n")
	prompt.WriteString("- destination: arrival city or country\n")
	prompt.WriteString("- departure_date: YYYY-MM-DD [optional, defaults to 60 days from today]\n")
	prompt.WriteString("- return_date: YYYY-MM-DD [optional, derived from duration]\n")
	prompt.WriteString("- duration_days: number of days for the trip\n")
	prompt.WriteString("- num_adults: number of adult travelers\n")
	prompt.WriteString("- num_children: number of children [optional, defaults to 0]\n")
	prompt.WriteString("- budget: total budget in USD, a number\n")
	prompt.WriteString("- interests: list such as food, history, adventure, culture, beach [optional]\n")
	prompt.WriteString("- min_hotel_stars: minimum hotel star rating [optional, defaults to 3]\n")
	prompt.WriteString("</fields>\n\n")

	if !known.IsEmpty() {
		prompt.WriteString("<already_known>\n")
		prompt.WriteString(knownJSON(known))
		prompt.WriteString("\n</already_known>\n\n")
	}

	prompt.WriteString("<conversation>\n")
	prompt.WriteString(strings.Join(history, "\n"))
	prompt.WriteString("\n</conversation>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Return ONLY a JSON object with two keys:\n")
	prompt.WriteString(`{"extracted": {...fields explicitly mentioned...}, "missing": [...critical fields still unknown...]}`)
	prompt.WriteString("\nCritical fields: origin, destination, duration_days (or a return_date), num_adults, budget.\n")
	prompt.WriteString("Never list optional fields as missing. Use null for anything not mentioned.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func buildFollowUpPrompt(known preferences.Extracted, missing []string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a friendly travel agent. The user wants to plan a trip but some information is missing.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<already_provided>\n")
	prompt.WriteString(knownJSON(known))
	prompt.WriteString("\n</already_provided>\n\n")

	prompt.WriteString("<missing>\n")
	prompt.WriteString(strings.Join(missing, ", "))
	prompt.WriteString("\n</missing>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString("Write one short, conversational message asking for ALL of the missing items.\n")
	prompt.WriteString("Return ONLY the message text, no JSON.\n")
	prompt.WriteString("</task>")

	return prompt.String()
}

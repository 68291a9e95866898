package presenter

import (
	"context"
	"fmt"
	"math"
	"strings"

	"lazy-tourist-be/pkg/planner/catalog"
)

// MarkdownRenderer lays the document out deterministically.
type MarkdownRenderer struct{}

var _ Renderer = MarkdownRenderer{}

func (MarkdownRenderer) Render(ctx context.Context, doc Document) (string, error) {
	var md strings.Builder
	p := doc.Preferences

	md.WriteString(fmt.Sprintf("# %d Days in %s\n\n", p.DurationDays, p.Destination))

	md.WriteString("## Trip Overview\n\n")
	md.WriteString(fmt.Sprintf("- **Route:** %s to %s\n", p.Origin, p.Destination))
	md.WriteString(fmt.Sprintf("- **Dates:** %s to %s (%d days)\n", p.DepartureDate, p.ReturnDate, p.DurationDays))
	md.WriteString(fmt.Sprintf("- **Travelers:** %d (%d adults, %d children)\n", p.TotalPassengers, p.NumAdults, p.NumChildren))
	md.WriteString(fmt.Sprintf("- **Budget:** %s\n", money(p.Budget)))
	if len(p.Interests) > 0 {
		md.WriteString(fmt.Sprintf("- **Interests:** %s\n", strings.Join(p.Interests, ", ")))
	}
	md.WriteString("\n")

	if len(doc.Notices) > 0 {
		md.WriteString("> **Heads up**\n")
		for _, n := range doc.Notices {
			md.WriteString(fmt.Sprintf("> - %s\n", n))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n## Flights\n\n")
	writeFlight(&md, "Outbound", doc.Outbound)
	writeFlight(&md, "Return", doc.Return)

	md.WriteString("---\n\n## Accommodation\n\n")
	if h := doc.Hotel; h != nil {
		md.WriteString(fmt.Sprintf("### %s (%d stars)\n\n", h.Name, h.Stars))
		if h.ImageURL != "" {
			md.WriteString(fmt.Sprintf("<img src=\"%s\" alt=\"%s\" width=\"80mm\">\n\n", h.ImageURL, h.Name))
		}
		if h.Description != "" {
			md.WriteString(h.Description + "\n\n")
		}
		md.WriteString(fmt.Sprintf("- **Location:** %s (%s from center)\n", h.Location, h.DistanceToCenter))
		md.WriteString(fmt.Sprintf("- **Rating:** %.1f (%d reviews)\n", h.Rating, h.Reviews))
		if len(h.Amenities) > 0 {
			md.WriteString(fmt.Sprintf("- **Amenities:** %s\n", strings.Join(h.Amenities, ", ")))
		}
		md.WriteString(fmt.Sprintf("- **Price:** %s per night, %s for %d nights\n\n", money(h.PricePerNight), money(h.TotalPrice), h.Nights))
	} else {
		md.WriteString("No hotel selected yet.\n\n")
	}

	md.WriteString("---\n\n## Day-by-Day Itinerary\n\n")
	for _, day := range doc.DailyItinerary {
		md.WriteString(fmt.Sprintf("### Day %d - %s\n\n", day.Day, day.Date))
		md.WriteString(fmt.Sprintf("*%s*\n\n", day.Notes))
		for _, a := range day.Activities {
			line := fmt.Sprintf("- **%s**", a.Name)
			if a.Duration != "" {
				line += fmt.Sprintf(" (%s)", a.Duration)
			}
			if a.Price > 0 {
				line += fmt.Sprintf(" - %s per person", money(a.Price))
			}
			if a.Description != "" {
				line += ": " + a.Description
			}
			md.WriteString(line + "\n")
		}
		if day.EstimatedCost > 0 {
			md.WriteString(fmt.Sprintf("\nEstimated cost: %s\n", money(day.EstimatedCost)))
		}
		md.WriteString("\n")
	}

	if b := doc.Budget; b != nil {
		md.WriteString("---\n\n## Budget Breakdown\n\n")
		md.WriteString("| Category | Cost |\n|---|---:|\n")
		md.WriteString(fmt.Sprintf("| Flights (round trip) | %s |\n", money(b.Flights)))
		md.WriteString(fmt.Sprintf("| Accommodation | %s |\n", money(b.Accommodation)))
		md.WriteString(fmt.Sprintf("| Activities | %s |\n", money(b.Activities)))
		md.WriteString(fmt.Sprintf("| Meals | %s |\n", money(b.Meals)))
		md.WriteString(fmt.Sprintf("| Local transportation | %s |\n", money(b.Transportation)))
		md.WriteString(fmt.Sprintf("| Miscellaneous | %s |\n", money(b.Miscellaneous)))
		md.WriteString(fmt.Sprintf("| **Total** | **%s** |\n\n", money(b.Total)))
		if b.OverBudget() {
			md.WriteString(fmt.Sprintf("**Over budget by %s.**\n\n", money(math.Abs(b.Remaining))))
		} else {
			md.WriteString(fmt.Sprintf("**Under budget by %s.**\n\n", money(b.Remaining)))
		}
	}

	if info := doc.DestinationInfo; info != nil {
		md.WriteString("---\n\n## Destination Tips\n\n")
		md.WriteString(fmt.Sprintf("- **Best time to visit:** %s\n", info.BestTimeToVisit))
		md.WriteString(fmt.Sprintf("- **Currency:** %s\n", info.Currency))
		md.WriteString(fmt.Sprintf("- **Language:** %s\n", info.Language))
		writeList(&md, "Safety", info.SafetyTips)
		writeList(&md, "Local tips", info.LocalTips)
		md.WriteString("\n")
	}

	md.WriteString("---\n\nHave a wonderful trip!\n")
	return md.String(), nil
}

func writeFlight(md *strings.Builder, label string, f *catalog.Flight) {
	if f == nil {
		md.WriteString(fmt.Sprintf("**%s:** no flight selected.\n\n", label))
		return
	}
	md.WriteString(fmt.Sprintf("**%s:** %s %s, %s %s to %s %s (%s", label, f.Airline, f.FlightNumber,
		f.Departure, f.DepartureTime, f.Arrival, f.ArrivalTime, f.Duration))
	if f.Stops > 0 {
		md.WriteString(fmt.Sprintf(", %d stop", f.Stops))
		if f.Layover != "" {
			md.WriteString(" via " + f.Layover)
		}
	}
	md.WriteString(fmt.Sprintf(")  \n%s per person, %s total\n\n", money(f.PricePerPerson), money(f.TotalPrice)))
}

func writeList(md *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	md.WriteString(fmt.Sprintf("- **%s:**\n", label))
	for _, i := range items {
		md.WriteString(fmt.Sprintf("  - %s\n", i))
	}
}

func money(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("$%.0f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

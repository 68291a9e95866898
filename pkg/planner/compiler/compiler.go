// Package compiler lays selected travel options out as a day-by-day plan and
// prices the whole trip. Everything here is pure.
package compiler

import (
	"fmt"

	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/preferences"
)

const (
	MealsPerPersonPerDay = 50
	LocalTransportation  = 100
	Miscellaneous        = 200

	// activities per exploration day when there is nothing to distribute
	emptyActivitiesPerDay = 2
)

// PlannedActivity is one entry of a day. Travel stubs carry only name,
// duration, price and description.
type PlannedActivity struct {
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Duration    string  `json:"duration"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating,omitempty"`
	Description string  `json:"description"`
	BestTime    string  `json:"best_time,omitempty"`
}

type DayPlan struct {
	Day           int               `json:"day"`
	Date          string            `json:"date"`
	Activities    []PlannedActivity `json:"activities"`
	EstimatedCost float64           `json:"estimated_cost"`
	Notes         string            `json:"notes"`
}

type BudgetBreakdown struct {
	Flights        float64 `json:"flights"`
	Outbound       float64 `json:"outbound"`
	Return         float64 `json:"return"`
	Accommodation  float64 `json:"accommodation"`
	Activities     float64 `json:"activities"`
	Meals          float64 `json:"meals"`
	Transportation float64 `json:"transportation"`
	Miscellaneous  float64 `json:"miscellaneous"`
	Total          float64 `json:"total"`
	Budget         float64 `json:"budget"`
	Remaining      float64 `json:"remaining"`
}

// OverBudget reports whether the estimate exceeds the stated budget.
func (b BudgetBreakdown) OverBudget() bool {
	return b.Remaining < 0
}

// Selections are the chosen options. Any of them may be nil.
type Selections struct {
	Outbound *catalog.Flight
	Return   *catalog.Flight
	Hotel    *catalog.Hotel
}

type Result struct {
	DailyItinerary []DayPlan
	Budget         BudgetBreakdown
}

// Select picks the first option of each list.
func Select(outbound, ret []catalog.Flight, hotels []catalog.Hotel) Selections {
	var s Selections
	if len(outbound) > 0 {
		f := outbound[0]
		s.Outbound = &f
	}
	if len(ret) > 0 {
		f := ret[0]
		s.Return = &f
	}
	if len(hotels) > 0 {
		h := hotels[0]
		s.Hotel = &h
	}
	return s
}

// Compile builds the plan. The first day is arrival, the last departure and
// activities are spread in contiguous, equally sized slices over the days in
// between. Activities that do not fit an equal share are dropped.
func Compile(prefs preferences.Preferences, sel Selections, activities []catalog.Activity) Result {
	duration := prefs.DurationDays
	days := make([]DayPlan, 0, max(duration, 0))

	activityDays := max(1, duration-2)
	perDay := emptyActivitiesPerDay
	if len(activities) > 0 {
		perDay = max(1, len(activities)/activityDays)
	}

	start := prefs.Departure()
	for day := 1; day <= duration; day++ {
		plan := DayPlan{
			Day:        day,
			Date:       start.AddDate(0, 0, day-1).Format(preferences.DateLayout),
			Activities: []PlannedActivity{},
		}

		switch day {
		case 1:
			plan.Notes = fmt.Sprintf("Arrival day - Flight arrives, check into %s", hotelName(sel.Hotel))
			plan.Activities = append(plan.Activities, PlannedActivity{
				Name:        "Airport Transfer & Hotel Check-in",
				Duration:    "2-3 hours",
				Description: "Arrive at destination and settle into accommodation",
			})
		case duration:
			plan.Notes = "Departure day - Check out and head to airport"
			plan.Activities = append(plan.Activities, PlannedActivity{
				Name:        "Hotel Check-out & Airport Transfer",
				Duration:    "2-3 hours",
				Description: "Check out and depart for return flight",
			})
		default:
			from := min((day-2)*perDay, len(activities))
			to := min(from+perDay, len(activities))
			for _, a := range activities[from:to] {
				plan.Activities = append(plan.Activities, PlannedActivity{
					Name:        a.Name,
					Category:    a.Category,
					Duration:    a.Duration,
					Price:       a.Price,
					Rating:      a.Rating,
					Description: a.Description,
					BestTime:    a.BestTime,
				})
				plan.EstimatedCost += a.Price
			}
			plan.Notes = fmt.Sprintf("Exploration day - %d activities planned", to-from)
		}

		days = append(days, plan)
	}

	return Result{
		DailyItinerary: days,
		Budget:         Estimate(prefs, sel, days),
	}
}

// Estimate prices the trip from the selections and the planned days.
func Estimate(prefs preferences.Preferences, sel Selections, days []DayPlan) BudgetBreakdown {
	b := BudgetBreakdown{
		Meals:          float64(MealsPerPersonPerDay * prefs.TotalPassengers * max(prefs.DurationDays, 0)),
		Transportation: LocalTransportation,
		Miscellaneous:  Miscellaneous,
		Budget:         prefs.Budget,
	}
	if sel.Outbound != nil {
		b.Outbound = sel.Outbound.TotalPrice
	}
	if sel.Return != nil {
		b.Return = sel.Return.TotalPrice
	}
	b.Flights = b.Outbound + b.Return
	if sel.Hotel != nil {
		b.Accommodation = sel.Hotel.TotalPrice
	}
	for _, d := range days {
		b.Activities += d.EstimatedCost
	}

	b.Total = b.Flights + b.Accommodation + b.Activities + b.Meals + b.Transportation + b.Miscellaneous
	b.Remaining = prefs.Budget - b.Total
	return b
}

func hotelName(h *catalog.Hotel) string {
	if h == nil || h.Name == "" {
		return "hotel"
	}
	return h.Name
}


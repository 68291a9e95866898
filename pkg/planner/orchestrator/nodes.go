package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/compiler"
	"lazy-tourist-be/pkg/planner/feedback"
	"lazy-tourist-be/pkg/planner/persistence"
	"lazy-tourist-be/pkg/planner/preferences"
	"lazy-tourist-be/pkg/planner/presenter"
	"lazy-tourist-be/pkg/planner/refine"
	"lazy-tourist-be/pkg/planner/state"
)

// Price ceilings derived from the budget.
const (
	flightBudgetShare    = 0.4
	hotelBudgetShare     = 0.3
	fallbackHotelCeiling = 200
	activityPriceCeiling = 200
)

var errNoPreferences = errors.New("preferences not resolved")

func flightCeiling(p preferences.Preferences) int {
	return int(p.Budget * flightBudgetShare / 2)
}

func hotelCeiling(p preferences.Preferences) int {
	nights := p.DurationDays - 1
	if nights <= 0 {
		return fallbackHotelCeiling
	}
	return int(p.Budget * hotelBudgetShare / float64(nights))
}

func (p *Planner) extractIntent(ctx context.Context, s *state.Session) error {
	res, err := p.deps.Resolver.Resolve(ctx, s.ConversationHistory, s.Partial)
	if err != nil {
		return err
	}
	s.Partial = res.Partial

	if !res.Complete() {
		s.NeedsUserInput = true
		s.AssistantResponse = res.FollowUp
		s.AddAssistant(res.FollowUp)
		s.NextStep = state.NodeExtractIntent
		return nil
	}

	s.Preferences = res.Preferences
	s.NeedsUserInput = false
	s.AssistantResponse = ""
	s.NextStep = state.NodeResearchDestination
	return nil
}

func (p *Planner) researchDestination(ctx context.Context, s *state.Session) error {
	if s.Preferences == nil {
		return errNoPreferences
	}
	s.Notices = nil
	p.refreshDestinationInfo(ctx, s)
	s.NextStep = state.NodeSearchFlights
	return nil
}

func (p *Planner) refreshDestinationInfo(ctx context.Context, s *state.Session) {
	res, err := p.deps.Catalog.DestinationInfo(ctx, s.Preferences.Destination)
	if err != nil {
		s.Notices = append(s.Notices, fmt.Sprintf("Error fetching destination info: %v", err))
	} else if res.Message != "" {
		s.Notices = append(s.Notices, res.Message)
	}
	info := res.Info
	info.Destination = s.Preferences.Destination
	s.DestinationInfo = &info
}

func (p *Planner) searchFlights(ctx context.Context, s *state.Session) error {
	if s.Preferences == nil {
		return errNoPreferences
	}
	prefs := *s.Preferences

	criteria := catalog.FlightCriteria{
		Origin:      prefs.Origin,
		Destination: prefs.Destination,
		Date:        prefs.DepartureDate,
		Passengers:  prefs.TotalPassengers,
		MaxPrice:    flightCeiling(prefs),
	}
	out, err := p.deps.Catalog.SearchFlights(ctx, criteria)
	s.Flights = out.Flights
	s.NoteSearch("outbound flights", out.Message, err)

	criteria.Date = prefs.ReturnDate
	ret, err := p.deps.Catalog.SearchReturnFlights(ctx, criteria)
	s.ReturnFlights = ret.Flights
	s.NoteSearch("return flights", ret.Message, err)

	p.deps.Logger.Info("ORCHESTRATOR", "Flights searched", map[string]interface{}{
		"session_id": s.ID,
		"max_price":  criteria.MaxPrice,
		"outbound":   len(s.Flights),
		"return":     len(s.ReturnFlights),
	})
	s.NextStep = state.NodeSearchHotels
	return nil
}

func (p *Planner) searchHotels(ctx context.Context, s *state.Session) error {
	if s.Preferences == nil {
		return errNoPreferences
	}
	prefs := *s.Preferences

	res, err := p.deps.Catalog.SearchHotels(ctx, catalog.HotelCriteria{
		Destination:      prefs.Destination,
		CheckIn:          prefs.DepartureDate,
		CheckOut:         prefs.ReturnDate,
		Guests:           prefs.TotalPassengers,
		MinStars:         prefs.MinHotelStars,
		MaxPricePerNight: hotelCeiling(prefs),
	})
	s.Hotels = res.Hotels
	s.NoteSearch("hotels", res.Message, err)

	s.NextStep = state.NodeSearchActivities
	return nil
}

func (p *Planner) searchActivities(ctx context.Context, s *state.Session) error {
	if s.Preferences == nil {
		return errNoPreferences
	}
	prefs := *s.Preferences

	if s.DestinationInfo == nil || !strings.EqualFold(s.DestinationInfo.Destination, prefs.Destination) {
		p.refreshDestinationInfo(ctx, s)
	}

	res, err := p.deps.Catalog.SearchActivities(ctx, catalog.ActivityCriteria{
		Destination: prefs.Destination,
		Interests:   prefs.Interests,
		MaxPrice:    activityPriceCeiling,
	})
	s.Activities = res.Activities
	s.NoteSearch("activities", res.Message, err)

	s.NextStep = state.NodeCompileItinerary
	return nil
}

func (p *Planner) compileItinerary(ctx context.Context, s *state.Session) error {
	if s.Preferences == nil {
		return errNoPreferences
	}

	sel := compiler.Select(s.Flights, s.ReturnFlights, s.Hotels)
	s.SelectedFlight, s.SelectedReturnFlight, s.SelectedHotel = sel.Outbound, sel.Return, sel.Hotel

	res := compiler.Compile(*s.Preferences, sel, s.Activities)
	s.DailyItinerary = res.DailyItinerary
	s.Budget = &res.Budget
	s.FinalItinerary = ""

	p.deps.Logger.Info("ORCHESTRATOR", "Itinerary compiled", map[string]interface{}{
		"session_id":  s.ID,
		"days":        len(res.DailyItinerary),
		"total":       res.Budget.Total,
		"remaining":   res.Budget.Remaining,
		"over_budget": res.Budget.OverBudget(),
	})
	s.NextStep = state.NodeFormatOutput
	return nil
}

func (p *Planner) formatOutput(ctx context.Context, s *state.Session) error {
	if s.Preferences == nil {
		return errNoPreferences
	}

	markdown, err := p.deps.Renderer.Render(ctx, presenter.Document{
		Preferences:     *s.Preferences,
		Outbound:        s.SelectedFlight,
		Return:          s.SelectedReturnFlight,
		Hotel:           s.SelectedHotel,
		DailyItinerary:  s.DailyItinerary,
		Budget:          s.Budget,
		DestinationInfo: s.DestinationInfo,
		Notices:         s.Notices,
		Notes:           s.FormatNotes,
	})
	if err != nil {
		return fmt.Errorf("render itinerary: %w", err)
	}

	s.FinalItinerary = markdown
	s.FormatNotes = ""
	s.ShowItinerary = true
	s.NextStep = state.NodeGetFeedback
	return nil
}

func (p *Planner) getFeedback(ctx context.Context, s *state.Session) error {
	if !s.HasFeedbackInput {
		s.NeedsUserInput = true
		s.NextStep = state.NodeGetFeedback
		return nil
	}

	text := strings.TrimSpace(s.UserFeedbackInput)
	s.UserFeedbackInput = ""
	s.HasFeedbackInput = false
	s.NeedsUserInput = false

	if text == "" {
		s.UserSatisfied = true
		s.NextStep = state.NodeSaveAndExit
		return nil
	}

	before := s.ConversationHistory[:len(s.ConversationHistory):len(s.ConversationHistory)]
	s.AddUser(text)
	d := p.deps.Classifier.Classify(ctx, text, feedback.Context{Preferences: s.Preferences, History: before})

	switch d.Action {
	case feedback.ActionSave:
		s.UserSatisfied = true
		s.ShowItinerary = true
		s.AssistantResponse = d.Response
		s.NextStep = state.NodeSaveAndExit
	case feedback.ActionClarify:
		msg := d.Response
		if msg == "" {
			msg = feedback.DefaultClarifyResponse
		}
		s.AssistantResponse = msg
		s.AddAssistant(msg)
		s.ShowItinerary = false
		s.NextStep = state.NodeGetFeedback
	default:
		ack := d.Response
		if ack == "" {
			ack = feedback.DefaultRefineResponse
		}
		s.UserSatisfied = false
		s.FeedbackMessage = text
		s.AssistantResponse = ack
		s.AddAssistant(ack)
		s.ShowItinerary = true
		s.NextStep = state.NodeRefineItinerary
	}
	return nil
}

func (p *Planner) refineItinerary(ctx context.Context, s *state.Session) error {
	if s.Preferences == nil {
		return errNoPreferences
	}

	out, err := p.deps.Refiner.Refine(ctx, s.FeedbackMessage, *s.Preferences)
	if err != nil {
		return err
	}
	s.FeedbackMessage = ""

	if out.Route == refine.RouteFeedback {
		s.AssistantResponse = out.ClarifyingQuestion
		s.AddAssistant(out.ClarifyingQuestion)
		s.ShowItinerary = false
		s.NextStep = state.NodeGetFeedback
		return nil
	}

	prefs := out.Preferences
	s.Preferences = &prefs
	s.IterationCount++

	switch out.Route {
	case refine.RouteSearch:
		s.Notices = nil
		s.NextStep = state.NodeSearchFlights
	case refine.RouteFormat:
		s.FormatNotes = out.FormatNotes
		s.NextStep = state.NodeFormatOutput
	default:
		s.NextStep = state.NodeCompileItinerary
	}
	return nil
}

func (p *Planner) saveAndExit(ctx context.Context, s *state.Session) error {
	if s.SaveName == "" {
		destination := "trip"
		if s.Preferences != nil {
			destination = s.Preferences.Destination
		}
		s.SaveName = persistence.SuggestName(destination, p.deps.Now())
	}

	location, err := p.deps.Saver.Save(ctx, s.FinalItinerary, s.SaveName)
	if err != nil {
		return fmt.Errorf("save itinerary: %w", err)
	}

	s.SavedLocation = location
	s.Status = state.StatusCompleted
	s.UserSatisfied = true
	s.NeedsUserInput = false
	s.AssistantResponse = fmt.Sprintf("Your itinerary has been saved to %s. Have an amazing trip!", location)
	s.NextStep = state.NodeEnd

	p.deps.Logger.Info("ORCHESTRATOR", "Itinerary saved", map[string]interface{}{
		"session_id": s.ID,
		"location":   location,
		"iterations": s.IterationCount,
	})
	return nil
}

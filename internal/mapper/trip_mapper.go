package mapper

import (
	"lazy-tourist-be/internal/dto"
	"lazy-tourist-be/pkg/planner/state"
)

type TripMapper struct{}

func NewTripMapper() *TripMapper {
	return &TripMapper{}
}

func (m *TripMapper) ToResponse(s *state.Session) *dto.TripResponse {
	if s == nil {
		return nil
	}

	res := &dto.TripResponse{
		SessionId:     s.ID,
		Status:        string(s.Status),
		Node:          string(s.NextStep),
		NeedsInput:    s.Suspended(),
		ShowItinerary: s.ShowItinerary,
		Message:       s.AssistantResponse,
		Notices:       make([]string, 0, len(s.Notices)),
		SavedLocation: s.SavedLocation,
		Iterations:    s.IterationCount,
		Error:         s.Error,
	}
	res.Notices = append(res.Notices, s.Notices...)

	if s.ShowItinerary {
		res.Itinerary = s.FinalItinerary
	}
	if b := s.Budget; b != nil {
		res.Budget = &dto.BudgetResponse{
			Flights:        b.Flights,
			Accommodation:  b.Accommodation,
			Activities:     b.Activities,
			Meals:          b.Meals,
			Transportation: b.Transportation,
			Miscellaneous:  b.Miscellaneous,
			Total:          b.Total,
			Budget:         b.Budget,
			Remaining:      b.Remaining,
			OverBudget:     b.OverBudget(),
		}
	}
	return res
}

// Package state defines the record threaded through every planner step.
package state

import (
	"fmt"
	"time"

	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/compiler"
	"lazy-tourist-be/pkg/planner/preferences"
)

type Node string

const (
	NodeExtractIntent       Node = "extract_intent"
	NodeResearchDestination Node = "research_destination"
	NodeSearchFlights       Node = "search_flights"
	NodeSearchHotels        Node = "search_hotels"
	NodeSearchActivities    Node = "search_activities"
	NodeCompileItinerary    Node = "compile_itinerary"
	NodeFormatOutput        Node = "format_output"
	NodeGetFeedback         Node = "get_feedback"
	NodeRefineItinerary     Node = "refine_itinerary"
	NodeSaveAndExit         Node = "save_and_exit"
	NodeEnd                 Node = "end"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
)

const (
	UserPrefix      = "User: "
	AssistantPrefix = "Assistant: "
)

// Session is the whole conversation state. Only node handlers mutate it,
// apart from the driver merging user input while the session is suspended.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`

	Preferences         *preferences.Preferences `json:"preferences,omitempty"`
	Partial             preferences.Extracted    `json:"partial"`
	ConversationHistory []string                 `json:"conversation_history"`

	// Search results, replaced wholesale by each search.
	Flights         []catalog.Flight         `json:"flights"`
	ReturnFlights   []catalog.Flight         `json:"return_flights"`
	Hotels          []catalog.Hotel          `json:"hotels"`
	Activities      []catalog.Activity       `json:"activities"`
	DestinationInfo *catalog.DestinationInfo `json:"destination_info,omitempty"`
	Notices         []string                 `json:"notices,omitempty"`

	SelectedFlight       *catalog.Flight `json:"selected_flight,omitempty"`
	SelectedReturnFlight *catalog.Flight `json:"selected_return_flight,omitempty"`
	SelectedHotel        *catalog.Hotel  `json:"selected_hotel,omitempty"`

	DailyItinerary []compiler.DayPlan        `json:"daily_itinerary"`
	Budget         *compiler.BudgetBreakdown `json:"budget,omitempty"`
	FinalItinerary string                    `json:"final_itinerary"`
	FormatNotes    string                    `json:"format_notes,omitempty"`

	NextStep          Node   `json:"next_step"`
	NeedsUserInput    bool   `json:"needs_user_input"`
	ShowItinerary     bool   `json:"show_itinerary"`
	AssistantResponse string `json:"assistant_response,omitempty"`
	FeedbackMessage   string `json:"feedback_message,omitempty"`
	UserFeedbackInput string `json:"user_feedback_input,omitempty"`
	HasFeedbackInput  bool   `json:"has_feedback_input"`
	UserSatisfied     bool   `json:"user_satisfied"`
	IterationCount    int    `json:"iteration_count"`
	Turns             int    `json:"turns"`
	SavedLocation     string `json:"saved_location,omitempty"`
	SaveName          string `json:"save_name,omitempty"`
}

// New returns an active session positioned at extract_intent.
func New(id string, now time.Time) *Session {
	return &Session{
		ID:                  id,
		CreatedAt:           now,
		UpdatedAt:           now,
		Status:              StatusActive,
		NextStep:            NodeExtractIntent,
		ConversationHistory: []string{},
	}
}

func (s *Session) AddUser(text string) {
	s.ConversationHistory = append(s.ConversationHistory, UserPrefix+text)
}

func (s *Session) AddAssistant(text string) {
	s.ConversationHistory = append(s.ConversationHistory, AssistantPrefix+text)
}

// Suspended reports whether the session is waiting for user input.
func (s *Session) Suspended() bool {
	return s.NeedsUserInput && s.NextStep != NodeEnd
}

// Done reports whether the session reached the terminal node.
func (s *Session) Done() bool {
	return s.NextStep == NodeEnd
}

// Fail moves the session to end with the given cause.
func (s *Session) Fail(err error) {
	s.Status = StatusFailed
	if err != nil {
		s.Error = err.Error()
	}
	s.NeedsUserInput = false
	s.NextStep = NodeEnd
}

// NoteSearch records a catalog message or failure for the current search round.
func (s *Session) NoteSearch(kind, message string, err error) {
	switch {
	case err != nil:
		s.Notices = append(s.Notices, fmt.Sprintf("Error fetching %s: %v", kind, err))
	case message != "":
		s.Notices = append(s.Notices, message)
	}
}

package dto

type StartTripRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// SendMessageRequest may carry an empty message: at the feedback step that
// means "save as is".
type SendMessageRequest struct {
	Message string `json:"message" validate:"max=4000"`
}

type BudgetResponse struct {
	Flights        float64 `json:"flights"`
	Accommodation  float64 `json:"accommodation"`
	Activities     float64 `json:"activities"`
	Meals          float64 `json:"meals"`
	Transportation float64 `json:"transportation"`
	Miscellaneous  float64 `json:"miscellaneous"`
	Total          float64 `json:"total"`
	Budget         float64 `json:"budget"`
	Remaining      float64 `json:"remaining"`
	OverBudget     bool    `json:"over_budget"`
}

type TripResponse struct {
	SessionId     string          `json:"session_id"`
	Status        string          `json:"status"`
	Node          string          `json:"node"`
	NeedsInput    bool            `json:"needs_input"`
	ShowItinerary bool            `json:"show_itinerary"`
	Message       string          `json:"message"`
	Itinerary     string          `json:"itinerary,omitempty"`
	Notices       []string        `json:"notices"`
	Budget        *BudgetResponse `json:"budget,omitempty"`
	SavedLocation string          `json:"saved_location,omitempty"`
	Iterations    int             `json:"iterations"`
	Error         string          `json:"error,omitempty"`
}

type StartTripResponse struct {
	TripResponse
	Token string `json:"token"`
}

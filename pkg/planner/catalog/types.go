// Package catalog answers flight, hotel, activity and destination queries
// against a keyed travel dataset.
package catalog

// DefaultKey is the fallback entry used when no route or destination matches.
const DefaultKey = "DEFAULT"

type Flight struct {
	Airline        string  `json:"airline" yaml:"airline"`
	FlightNumber   string  `json:"flight_number" yaml:"flight_number"`
	Departure      string  `json:"departure" yaml:"departure"`
	Arrival        string  `json:"arrival" yaml:"arrival"`
	Duration       string  `json:"duration" yaml:"duration"`
	Price          float64 `json:"price" yaml:"price"`
	Stops          int     `json:"stops" yaml:"stops"`
	Layover        string  `json:"layover,omitempty" yaml:"layover,omitempty"`
	DepartureTime  string  `json:"departure_time" yaml:"departure_time"`
	ArrivalTime    string  `json:"arrival_time" yaml:"arrival_time"`
	TotalPrice     float64 `json:"total_price,omitempty" yaml:"-"`
	PricePerPerson float64 `json:"price_per_person,omitempty" yaml:"-"`
}

type Hotel struct {
	Name             string   `json:"name" yaml:"name"`
	Stars            int      `json:"stars" yaml:"stars"`
	PricePerNight    float64  `json:"price_per_night" yaml:"price_per_night"`
	Location         string   `json:"location" yaml:"location"`
	Rating           float64  `json:"rating" yaml:"rating"`
	Reviews          int      `json:"reviews" yaml:"reviews"`
	Amenities        []string `json:"amenities" yaml:"amenities"`
	DistanceToCenter string   `json:"distance_to_center" yaml:"distance_to_center"`
	ImageURL         string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Description      string   `json:"description" yaml:"description"`
	Nights           int      `json:"nights,omitempty" yaml:"-"`
	TotalPrice       float64  `json:"total_price,omitempty" yaml:"-"`
}

type Activity struct {
	Name        string  `json:"name" yaml:"name"`
	Category    string  `json:"category" yaml:"category"`
	Duration    string  `json:"duration" yaml:"duration"`
	Price       float64 `json:"price" yaml:"price"`
	Rating      float64 `json:"rating" yaml:"rating"`
	Description string  `json:"description" yaml:"description"`
	BestTime    string  `json:"best_time" yaml:"best_time"`
}

type DestinationInfo struct {
	Destination     string   `json:"destination" yaml:"-"`
	BestTimeToVisit string   `json:"best_time_to_visit" yaml:"best_time_to_visit"`
	Currency        string   `json:"currency" yaml:"currency"`
	Language        string   `json:"language" yaml:"language"`
	SafetyTips      []string `json:"safety_tips" yaml:"safety_tips"`
	LocalTips       []string `json:"local_tips" yaml:"local_tips"`
}

// GenericDestinationInfo is returned when the dataset knows nothing about a place.
func GenericDestinationInfo(destination string) DestinationInfo {
	return DestinationInfo{
		Destination:     destination,
		BestTimeToVisit: "Varies by region - research specific destination",
		Currency:        "Local currency",
		Language:        "Local language",
		SafetyTips:      []string{"Research local safety information", "Register with embassy"},
		LocalTips:       []string{"Research local customs", "Get travel insurance"},
	}
}

// Dataset is the whole catalog. Flight maps are keyed "ORIGIN-DEST", the
// others by upper-case destination.
type Dataset struct {
	OutboundFlights map[string][]Flight        `json:"outbound_flights" yaml:"outbound_flights"`
	ReturnFlights   map[string][]Flight        `json:"return_flights" yaml:"return_flights"`
	Hotels          map[string][]Hotel         `json:"hotels" yaml:"hotels"`
	Activities      map[string][]Activity      `json:"activities" yaml:"activities"`
	DestinationInfo map[string]DestinationInfo `json:"destination_info" yaml:"destination_info"`
}

type FlightCriteria struct {
	Origin      string
	Destination string
	Date        string
	Passengers  int
	MaxPrice    int // per person
}

type HotelCriteria struct {
	Destination      string
	CheckIn          string
	CheckOut         string
	Guests           int
	MinStars         int
	MaxPricePerNight int
}

type ActivityCriteria struct {
	Destination string
	Interests   []string
	MaxPrice    int
}

// FlightResult carries the matching options; Message explains an empty list.
type FlightResult struct {
	Flights []Flight `json:"flights"`
	Message string   `json:"message,omitempty"`
}

type HotelResult struct {
	Hotels  []Hotel `json:"hotels"`
	Nights  int     `json:"nights"`
	Message string  `json:"message,omitempty"`
}

type ActivityResult struct {
	Activities []Activity `json:"activities"`
	TotalFound int        `json:"total_found"`
	Message    string     `json:"message,omitempty"`
}

type DestinationResult struct {
	Info    DestinationInfo `json:"info"`
	Message string          `json:"message,omitempty"`
}

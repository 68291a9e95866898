// Package preferences holds the canonical trip request and the rules that keep
// its derived fields (dates, passenger totals) consistent.
package preferences

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of every date in the planner.
const DateLayout = "2006-01-02"

const (
	DefaultNumChildren         = 0
	DefaultMinHotelStars       = 3
	DefaultDurationDays        = 5
	DefaultDepartureOffsetDays = 60
)

// Field names as they appear in oracle JSON.
const (
	FieldOrigin          = "origin"
	FieldDestination     = "destination"
	FieldDepartureDate   = "departure_date"
	FieldReturnDate      = "return_date"
	FieldDurationDays    = "duration_days"
	FieldNumAdults       = "num_adults"
	FieldNumChildren     = "num_children"
	FieldTotalPassengers = "total_passengers"
	FieldBudget          = "budget"
	FieldInterests       = "interests"
	FieldMinHotelStars   = "min_hotel_stars"
)

func DefaultInterests() []string {
	return []string{"sightseeing"}
}

// Preferences is a fully normalized trip request.
type Preferences struct {
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	DepartureDate   string   `json:"departure_date"`
	ReturnDate      string   `json:"return_date"`
	DurationDays    int      `json:"duration_days"`
	NumAdults       int      `json:"num_adults"`
	NumChildren     int      `json:"num_children"`
	TotalPassengers int      `json:"total_passengers"`
	Budget          float64  `json:"budget"`
	Interests       []string `json:"interests"`
	MinHotelStars   int      `json:"min_hotel_stars"`
}

// MissingFieldsError lists the required fields that could not be found.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Normalize validates required fields, applies defaults and derives dates.
// now anchors the default departure date.
func Normalize(extracted Extracted, now time.Time) (Preferences, error) {
	if missing := RequiredMissing(extracted); len(missing) > 0 {
		return Preferences{}, &MissingFieldsError{Fields: missing}
	}

	p := Preferences{
		Origin:        strings.TrimSpace(*extracted.Origin),
		Destination:   strings.TrimSpace(*extracted.Destination),
		NumAdults:     *extracted.NumAdults,
		NumChildren:   DefaultNumChildren,
		Budget:        *extracted.Budget,
		Interests:     cleanInterests(extracted.Interests),
		MinHotelStars: DefaultMinHotelStars,
	}
	if extracted.NumChildren != nil && *extracted.NumChildren > 0 {
		p.NumChildren = *extracted.NumChildren
	}
	if len(p.Interests) == 0 {
		p.Interests = DefaultInterests()
	}
	if extracted.MinHotelStars != nil && *extracted.MinHotelStars > 0 {
		p.MinHotelStars = *extracted.MinHotelStars
	}

	departure, ok := parseDate(extracted.DepartureDate)
	if !ok {
		departure = dateOnly(now).AddDate(0, 0, DefaultDepartureOffsetDays)
	}
	p.DepartureDate = departure.Format(DateLayout)

	returnDate, hasReturn := parseDate(extracted.ReturnDate)
	switch {
	case extracted.DurationDays != nil && *extracted.DurationDays > 0:
		p.SetDuration(*extracted.DurationDays)
	case hasReturn:
		p.ReturnDate = returnDate.Format(DateLayout)
		p.DurationDays = daysBetween(departure, returnDate)
	default:
		p.SetDuration(DefaultDurationDays)
	}

	p.recomputePassengers()
	return p, nil
}

// RequiredMissing reports the required fields absent from extracted, in canonical order.
// A trip length counts as present when either duration_days or a parseable return_date is given.
func RequiredMissing(extracted Extracted) []string {
	var missing []string
	if blank(extracted.Origin) {
		missing = append(missing, FieldOrigin)
	}
	if blank(extracted.Destination) {
		missing = append(missing, FieldDestination)
	}
	hasDuration := extracted.DurationDays != nil && *extracted.DurationDays > 0
	if _, hasReturn := parseDate(extracted.ReturnDate); !hasDuration && !hasReturn {
		missing = append(missing, FieldDurationDays)
	}
	if extracted.NumAdults == nil || *extracted.NumAdults <= 0 {
		missing = append(missing, FieldNumAdults)
	}
	if extracted.Budget == nil || *extracted.Budget <= 0 {
		missing = append(missing, FieldBudget)
	}
	return missing
}

// SetDuration makes duration authoritative and derives the return date.
func (p *Preferences) SetDuration(days int) {
	p.DurationDays = days
	p.ReturnDate = p.Departure().AddDate(0, 0, days).Format(DateLayout)
}

// SetReturnDate makes the return date authoritative and derives the duration.
func (p *Preferences) SetReturnDate(value string) error {
	ret, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid return_date %q: %w", value, err)
	}
	p.ReturnDate = ret.Format(DateLayout)
	p.DurationDays = daysBetween(p.Departure(), ret)
	return nil
}

// SetDepartureDate moves the trip; duration stays authoritative.
func (p *Preferences) SetDepartureDate(value string) error {
	dep, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid departure_date %q: %w", value, err)
	}
	p.DepartureDate = dep.Format(DateLayout)
	p.SetDuration(p.DurationDays)
	return nil
}

// ApplyDateDefaults fills in whatever trip dates are still unset. A usable
// return date derives the duration; with neither, the default duration applies.
func (p *Preferences) ApplyDateDefaults(now time.Time) {
	if p.Departure().IsZero() {
		p.DepartureDate = dateOnly(now).AddDate(0, 0, DefaultDepartureOffsetDays).Format(DateLayout)
	}
	switch {
	case p.DurationDays > 0:
		p.SetDuration(p.DurationDays)
	case !p.Return().IsZero():
		p.DurationDays = daysBetween(p.Departure(), p.Return())
	default:
		p.SetDuration(DefaultDurationDays)
	}
}

// SetTravelers updates the party and recomputes total_passengers.
func (p *Preferences) SetTravelers(adults, children int) {
	p.NumAdults = adults
	p.NumChildren = children
	p.recomputePassengers()
}

func (p *Preferences) recomputePassengers() {
	p.TotalPassengers = p.NumAdults + p.NumChildren
}

// Departure returns the parsed departure date (zero time if unset).
func (p Preferences) Departure() time.Time {
	t, _ := time.Parse(DateLayout, p.DepartureDate)
	return t
}

// Return returns the parsed return date (zero time if unset).
func (p Preferences) Return() time.Time {
	t, _ := time.Parse(DateLayout, p.ReturnDate)
	return t
}

func (p Preferences) Clone() Preferences {
	out := p
	out.Interests = append([]string(nil), p.Interests...)
	return out
}

func parseDate(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func cleanInterests(in []string) []string {
	var out []string
	for _, i := range in {
		if i = strings.TrimSpace(i); i != "" {
			out = append(out, i)
		}
	}
	return out
}

package preferences

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Extracted is a partially known trip request, as reported by the oracle.
// Nil means "not mentioned".
type Extracted struct {
	Origin        *string  `json:"origin,omitempty"`
	Destination   *string  `json:"destination,omitempty"`
	DepartureDate *string  `json:"departure_date,omitempty"`
	ReturnDate    *string  `json:"return_date,omitempty"`
	DurationDays  *int     `json:"duration_days,omitempty"`
	NumAdults     *int     `json:"num_adults,omitempty"`
	NumChildren   *int     `json:"num_children,omitempty"`
	Budget        *float64 `json:"budget,omitempty"`
	Interests     []string `json:"interests,omitempty"`
	MinHotelStars *int     `json:"min_hotel_stars,omitempty"`
}

func String(v string) *string { return &v }

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

// Merge returns e overlaid with every field newer mentions.
func (e Extracted) Merge(newer Extracted) Extracted {
	out := e
	if newer.Origin != nil {
		out.Origin = newer.Origin
	}
	if newer.Destination != nil {
		out.Destination = newer.Destination
	}
	if newer.DepartureDate != nil {
		out.DepartureDate = newer.DepartureDate
	}
	if newer.ReturnDate != nil {
		out.ReturnDate = newer.ReturnDate
	}
	if newer.DurationDays != nil {
		out.DurationDays = newer.DurationDays
	}
	if newer.NumAdults != nil {
		out.NumAdults = newer.NumAdults
	}
	if newer.NumChildren != nil {
		out.NumChildren = newer.NumChildren
	}
	if newer.Budget != nil {
		out.Budget = newer.Budget
	}
	if len(newer.Interests) > 0 {
		out.Interests = append([]string(nil), newer.Interests...)
	}
	if newer.MinHotelStars != nil {
		out.MinHotelStars = newer.MinHotelStars
	}
	return out
}

// Fields lists the field names that are set, in canonical order.
func (e Extracted) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(e.Origin != nil, FieldOrigin)
	add(e.Destination != nil, FieldDestination)
	add(e.DepartureDate != nil, FieldDepartureDate)
	add(e.ReturnDate != nil, FieldReturnDate)
	add(e.DurationDays != nil, FieldDurationDays)
	add(e.NumAdults != nil, FieldNumAdults)
	add(e.NumChildren != nil, FieldNumChildren)
	add(e.Budget != nil, FieldBudget)
	add(len(e.Interests) > 0, FieldInterests)
	add(e.MinHotelStars != nil, FieldMinHotelStars)
	return fields
}

// IsEmpty reports whether nothing is known yet.
func (e Extracted) IsEmpty() bool {
	return len(e.Fields()) == 0
}

// UnmarshalJSON accepts what language models tend to produce: numbers as
// strings ("$2,000", "5 days"), null for unknown, interests as one string.
func (e *Extracted) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Extracted{
		Origin:        rawString(raw[FieldOrigin]),
		Destination:   rawString(raw[FieldDestination]),
		DepartureDate: rawString(raw[FieldDepartureDate]),
		ReturnDate:    rawString(raw[FieldReturnDate]),
		DurationDays:  rawInt(raw[FieldDurationDays]),
		NumAdults:     rawInt(raw[FieldNumAdults]),
		NumChildren:   rawInt(raw[FieldNumChildren]),
		Budget:        rawFloat(raw[FieldBudget]),
		Interests:     rawStrings(raw[FieldInterests]),
		MinHotelStars: rawInt(raw[FieldMinHotelStars]),
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func rawString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil
		}
		s = n.String()
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func rawFloat(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	s := rawString(raw)
	if s == nil {
		return nil
	}
	f, ok := parseLooseNumber(*s)
	if !ok {
		return nil
	}
	return &f
}

func rawInt(raw json.RawMessage) *int {
	f := rawFloat(raw)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func rawStrings(raw json.RawMessage) []string {
	if isNull(raw) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanInterests(list)
	}
	s := rawString(raw)
	if s == nil {
		return nil
	}
	return cleanInterests(strings.Split(*s, ","))
}

// parseLooseNumber keeps the first run of digits (with one decimal point)
// found in s, ignoring currency symbols, thousands separators and units.
func parseLooseNumber(s string) (float64, bool) {
	var b strings.Builder
	seenDigit, seenDot := false, false
scan:
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			seenDigit = true
		case r == '.' && seenDigit && !seenDot:
			b.WriteRune(r)
			seenDot = true
		case r == ',' && seenDigit:
			continue
		case seenDigit:
			break scan
		}
	}
	if !seenDigit {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

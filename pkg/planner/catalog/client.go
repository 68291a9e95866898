package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"lazy-tourist-be/internal/pkg/logger"
)

const (
	maxFlightOptions   = 3
	maxHotelOptions    = 4
	maxActivityOptions = 6
)

// Client searches a Source. "No results" is reported through the result
// Message; an error means the source itself failed.
type Client struct {
	source Source
	logger logger.ILogger
}

func NewClient(source Source, log logger.ILogger) *Client {
	return &Client{source: source, logger: log}
}

func (c *Client) load(ctx context.Context) (*Dataset, error) {
	ds, err := c.source.Load(ctx)
	if err != nil {
		c.logger.Error("CATALOG", "Failed to load catalog", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	return ds, nil
}

// SearchFlights finds outbound options for ORIGIN-DEST.
func (c *Client) SearchFlights(ctx context.Context, criteria FlightCriteria) (FlightResult, error) {
	ds, err := c.load(ctx)
	if err != nil {
		return FlightResult{}, fmt.Errorf("outbound flights: %w", err)
	}

	key := routeKey(criteria.Origin, criteria.Destination)
	flights, matched := matchRoute(ds.OutboundFlights, key, normalizeKey(criteria.Destination), routeDest)
	if !matched {
		return FlightResult{Message: fmt.Sprintf("No catalog data for flights from %s to %s.", criteria.Origin, criteria.Destination)}, nil
	}

	result := FlightResult{Flights: priceFlights(flights, criteria)}
	if len(result.Flights) == 0 {
		result.Message = fmt.Sprintf("No flights found from %s to %s under $%d per person.", criteria.Origin, criteria.Destination, criteria.MaxPrice)
	}
	c.logger.Debug("CATALOG", "Outbound flight search", map[string]interface{}{"route": key, "found": len(result.Flights)})
	return result, nil
}

// SearchReturnFlights finds options for DEST-ORIGIN. Criteria keep the
// outbound orientation: Origin is home, Destination is where the trip ends.
func (c *Client) SearchReturnFlights(ctx context.Context, criteria FlightCriteria) (FlightResult, error) {
	ds, err := c.load(ctx)
	if err != nil {
		return FlightResult{}, fmt.Errorf("return flights: %w", err)
	}

	key := routeKey(criteria.Destination, criteria.Origin)
	flights, matched := matchRoute(ds.ReturnFlights, key, normalizeKey(criteria.Destination), routeOrigin)
	if !matched {
		return FlightResult{Message: fmt.Sprintf("No catalog data for return flights from %s to %s.", criteria.Destination, criteria.Origin)}, nil
	}

	result := FlightResult{Flights: priceFlights(flights, criteria)}
	if len(result.Flights) == 0 {
		result.Message = fmt.Sprintf("No return flights found from %s to %s under $%d per person.", criteria.Destination, criteria.Origin, criteria.MaxPrice)
	}
	c.logger.Debug("CATALOG", "Return flight search", map[string]interface{}{"route": key, "found": len(result.Flights)})
	return result, nil
}

func (c *Client) SearchHotels(ctx context.Context, criteria HotelCriteria) (HotelResult, error) {
	ds, err := c.load(ctx)
	if err != nil {
		return HotelResult{}, fmt.Errorf("hotels: %w", err)
	}

	nights := nightsBetween(criteria.CheckIn, criteria.CheckOut)
	hotels, matched := matchDestination(ds.Hotels, criteria.Destination)
	if !matched {
		return HotelResult{Nights: nights, Message: fmt.Sprintf("No catalog data for hotels in %s.", criteria.Destination)}, nil
	}

	result := HotelResult{Nights: nights, Hotels: []Hotel{}}
	for _, h := range hotels {
		if h.Stars < criteria.MinStars || h.PricePerNight > float64(criteria.MaxPricePerNight) {
			continue
		}
		h.Amenities = append([]string(nil), h.Amenities...)
		h.Nights = nights
		h.TotalPrice = h.PricePerNight * float64(nights)
		result.Hotels = append(result.Hotels, h)
		if len(result.Hotels) == maxHotelOptions {
			break
		}
	}
	if len(result.Hotels) == 0 {
		result.Message = fmt.Sprintf("No hotels found in %s matching your criteria.", criteria.Destination)
	}
	c.logger.Debug("CATALOG", "Hotel search", map[string]interface{}{"destination": criteria.Destination, "nights": nights, "found": len(result.Hotels)})
	return result, nil
}

// SearchActivities filters by price, then prefers activities mentioning one
// of the interest keywords. When no keyword matches the price-filtered list is kept.
func (c *Client) SearchActivities(ctx context.Context, criteria ActivityCriteria) (ActivityResult, error) {
	ds, err := c.load(ctx)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("activities: %w", err)
	}

	activities, matched := matchDestination(ds.Activities, criteria.Destination)
	if !matched {
		return ActivityResult{Message: fmt.Sprintf("No catalog data for activities in %s.", criteria.Destination)}, nil
	}

	var affordable []Activity
	for _, a := range activities {
		if a.Price <= float64(criteria.MaxPrice) {
			affordable = append(affordable, a)
		}
	}

	if keywords := interestKeywords(criteria.Interests); len(keywords) > 0 {
		var interesting []Activity
		for _, a := range affordable {
			text := strings.ToLower(a.Name + " " + a.Category + " " + a.Description)
			for _, k := range keywords {
				if strings.Contains(text, k) {
					interesting = append(interesting, a)
					break
				}
			}
		}
		if len(interesting) > 0 {
			affordable = interesting
		}
	}

	result := ActivityResult{TotalFound: len(affordable), Activities: []Activity{}}
	if len(affordable) > maxActivityOptions {
		affordable = affordable[:maxActivityOptions]
	}
	result.Activities = append(result.Activities, affordable...)
	if len(result.Activities) == 0 {
		result.Message = fmt.Sprintf("No activities found in %s under $%d.", criteria.Destination, criteria.MaxPrice)
	}
	c.logger.Debug("CATALOG", "Activity search", map[string]interface{}{"destination": criteria.Destination, "found": result.TotalFound})
	return result, nil
}

// DestinationInfo never comes back empty: unknown places get generic advice.
func (c *Client) DestinationInfo(ctx context.Context, destination string) (DestinationResult, error) {
	ds, err := c.load(ctx)
	if err != nil {
		return DestinationResult{Info: GenericDestinationInfo(destination)}, fmt.Errorf("destination info: %w", err)
	}

	info, matched := matchDestination(ds.DestinationInfo, destination)
	if !matched {
		return DestinationResult{
			Info:    GenericDestinationInfo(destination),
			Message: fmt.Sprintf("No catalog data for %s, using general travel advice.", destination),
		}, nil
	}
	info.Destination = destination
	info.SafetyTips = append([]string(nil), info.SafetyTips...)
	info.LocalTips = append([]string(nil), info.LocalTips...)
	return DestinationResult{Info: info}, nil
}

// Keys lists the dataset keys per kind, sorted. Used by the catalog CLI command.
func (c *Client) Keys(ctx context.Context) (map[string][]string, error) {
	ds, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return map[string][]string{
		"outbound_flights": sortedKeys(ds.OutboundFlights),
		"return_flights":   sortedKeys(ds.ReturnFlights),
		"hotels":           sortedKeys(ds.Hotels),
		"activities":       sortedKeys(ds.Activities),
		"destination_info": sortedKeys(ds.DestinationInfo),
	}, nil
}

func priceFlights(flights []Flight, criteria FlightCriteria) []Flight {
	out := []Flight{}
	for _, f := range flights {
		if f.Price > float64(criteria.MaxPrice) {
			continue
		}
		f.PricePerPerson = f.Price
		f.TotalPrice = f.Price * float64(criteria.Passengers)
		out = append(out, f)
		if len(out) == maxFlightOptions {
			break
		}
	}
	return out
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func routeKey(from, to string) string {
	return normalizeKey(from) + "-" + normalizeKey(to)
}

func routeOrigin(key string) string {
	origin, _, _ := strings.Cut(key, "-")
	return origin
}

func routeDest(key string) string {
	_, dest, _ := strings.Cut(key, "-")
	return dest
}

func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// matchRoute tries the exact route key, then any route whose relevant half
// overlaps city, then DEFAULT.
func matchRoute(routes map[string][]Flight, key, city string, half func(string) string) ([]Flight, bool) {
	if flights, ok := routes[key]; ok {
		return flights, true
	}
	for _, k := range sortedKeys(routes) {
		if k == DefaultKey || !strings.Contains(k, "-") {
			continue
		}
		if overlaps(half(k), city) {
			return routes[k], true
		}
	}
	flights, ok := routes[DefaultKey]
	return flights, ok
}

// matchDestination tries the exact key, then any key overlapping the
// destination, then DEFAULT.
func matchDestination[T any](entries map[string]T, destination string) (T, bool) {
	dest := normalizeKey(destination)
	if v, ok := entries[dest]; ok {
		return v, true
	}
	for _, k := range sortedKeys(entries) {
		if k == DefaultKey {
			continue
		}
		if overlaps(k, dest) {
			return entries[k], true
		}
	}
	v, ok := entries[DefaultKey]
	return v, ok
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func interestKeywords(interests []string) []string {
	var keywords []string
	for _, i := range interests {
		keywords = append(keywords, strings.Fields(strings.ToLower(i))...)
	}
	return keywords
}

func nightsBetween(checkIn, checkOut string) int {
	in, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return 0
	}
	out, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

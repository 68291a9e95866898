package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lazy-tourist-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(EmbeddedSource{}, logger.NewNopLogger())
}

func flightNumbers(flights []Flight) []string {
	var out []string
	for _, f := range flights {
		out = append(out, f.FlightNumber)
	}
	return out
}

func TestEmbeddedSeedLoads(t *testing.T) {
	ds, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, ds.OutboundFlights["NYC-PARIS"], 3)
	assert.Len(t, ds.ReturnFlights["DEFAULT"], 2)
	assert.Len(t, ds.Hotels["PARIS"], 4)
	assert.NotEmpty(t, ds.Activities["TOKYO"])
	assert.Equal(t, "Euro (EUR)", ds.DestinationInfo["PARIS"].Currency)
	assert.Equal(t, "12:00+1", ds.OutboundFlights["NYC-PARIS"][0].ArrivalTime)
}

func TestSearchFlights(t *testing.T) {
	client := seededClient(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		criteria    FlightCriteria
		wantNumbers []string
		wantMessage string
	}{
		{
			name:        "exact route, price filter and pricing",
			criteria:    FlightCriteria{Origin: "nyc", Destination: "Paris", Passengers: 2, MaxPrice: 700},
			wantNumbers: []string{"AF007", "DL264"},
		},
		{
			name:        "partial destination match",
			criteria:    FlightCriteria{Origin: "Boston", Destination: "Tokyo, Japan", Passengers: 1, MaxPrice: 2000},
			wantNumbers: []string{"NH9", "JL006"},
		},
		{
			name:        "unknown route falls back to DEFAULT",
			criteria:    FlightCriteria{Origin: "LAX", Destination: "Lisbon", Passengers: 1, MaxPrice: 2000},
			wantNumbers: []string{"IA123", "GA456"},
		},
		{
			name:        "budget too small",
			criteria:    FlightCriteria{Origin: "NYC", Destination: "Paris", Passengers: 2, MaxPrice: 400},
			wantMessage: "No flights found from NYC to Paris under $400 per person.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := client.SearchFlights(ctx, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumbers, flightNumbers(res.Flights))
			assert.Equal(t, tt.wantMessage, res.Message)
			for _, f := range res.Flights {
				assert.Equal(t, f.Price, f.PricePerPerson)
				assert.Equal(t, f.Price*float64(tt.criteria.Passengers), f.TotalPrice)
			}
		})
	}
}

func TestSearchReturnFlights(t *testing.T) {
	client := seededClient(t)

	res, err := client.SearchReturnFlights(context.Background(), FlightCriteria{Origin: "NYC", Destination: "Bali", Passengers: 2, MaxPrice: 1250})
	require.NoError(t, err)
	assert.Equal(t, []string{"QR702", "KE087"}, flightNumbers(res.Flights))

	res, err = client.SearchReturnFlights(context.Background(), FlightCriteria{Origin: "NYC", Destination: "Bali", Passengers: 2, MaxPrice: 100})
	require.NoError(t, err)
	assert.Empty(t, res.Flights)
	assert.Equal(t, "No return flights found from Bali to NYC under $100 per person.", res.Message)
}

func TestSearchHotels(t *testing.T) {
	client := seededClient(t)

	res, err := client.SearchHotels(context.Background(), HotelCriteria{
		Destination:      "Paris",
		CheckIn:          "2026-04-30",
		CheckOut:         "2026-05-02",
		Guests:           2,
		MinStars:         3,
		MaxPricePerNight: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Nights)
	require.Len(t, res.Hotels, 3)
	assert.Equal(t, "Hotel Le Marais Boutique", res.Hotels[0].Name)
	assert.Equal(t, 360.0, res.Hotels[0].TotalPrice)
	for _, h := range res.Hotels {
		assert.GreaterOrEqual(t, h.Stars, 3)
		assert.LessOrEqual(t, h.PricePerNight, 300.0)
	}

	res, err = client.SearchHotels(context.Background(), HotelCriteria{Destination: "Paris", CheckIn: "2026-04-30", CheckOut: "2026-05-02", MinStars: 5, MaxPricePerNight: 300})
	require.NoError(t, err)
	assert.Empty(t, res.Hotels)
	assert.Equal(t, "No hotels found in Paris matching your criteria.", res.Message)
}

func TestSearchActivities(t *testing.T) {
	client := seededClient(t)
	ctx := context.Background()

	t.Run("interest keywords narrow the list", func(t *testing.T) {
		res, err := client.SearchActivities(ctx, ActivityCriteria{Destination: "Paris", Interests: []string{"food"}, MaxPrice: 200})
		require.NoError(t, err)
		require.NotEmpty(t, res.Activities)
		for _, a := range res.Activities {
			assert.Equal(t, "Food & Dining", a.Category)
			assert.LessOrEqual(t, a.Price, 200.0)
		}
	})

	t.Run("no keyword match keeps affordable list capped at six", func(t *testing.T) {
		res, err := client.SearchActivities(ctx, ActivityCriteria{Destination: "Paris", Interests: []string{"skiing"}, MaxPrice: 200})
		require.NoError(t, err)
		assert.Equal(t, 6, res.TotalFound)
		assert.Len(t, res.Activities, 6)
	})

	t.Run("nothing affordable", func(t *testing.T) {
		res, err := client.SearchActivities(ctx, ActivityCriteria{Destination: "Tokyo", MaxPrice: 5})
		require.NoError(t, err)
		assert.Empty(t, res.Activities)
		assert.Equal(t, "No activities found in Tokyo under $5.", res.Message)
	})
}

func TestDestinationInfo(t *testing.T) {
	client := seededClient(t)

	res, err := client.DestinationInfo(context.Background(), "Bali, Indonesia")
	require.NoError(t, err)
	assert.Equal(t, "Indonesian Rupiah (IDR)", res.Info.Currency)
	assert.Empty(t, res.Message)

	res, err = client.DestinationInfo(context.Background(), "Reykjavik")
	require.NoError(t, err)
	assert.Equal(t, GenericDestinationInfo("Reykjavik"), res.Info)
	assert.NotEmpty(t, res.Message)
}

func TestUnknownDestinationWithoutDefault(t *testing.T) {
	client := NewClient(StaticSource{Dataset: &Dataset{
		OutboundFlights: map[string][]Flight{"NYC-PARIS": {{FlightNumber: "AF007", Price: 650}}},
		Hotels:          map[string][]Hotel{"PARIS": {{Name: "Le Marais", Stars: 4, PricePerNight: 180}}},
	}}, logger.NewNopLogger())
	ctx := context.Background()

	flights, err := client.SearchFlights(ctx, FlightCriteria{Origin: "NYC", Destination: "Atlantis", Passengers: 2, MaxPrice: 1000})
	require.NoError(t, err)
	assert.Empty(t, flights.Flights)
	assert.Contains(t, flights.Message, "No catalog data")

	hotels, err := client.SearchHotels(ctx, HotelCriteria{Destination: "Atlantis", MinStars: 3, MaxPricePerNight: 500})
	require.NoError(t, err)
	assert.Empty(t, hotels.Hotels)
	assert.Contains(t, hotels.Message, "Atlantis")
}

func TestPartialMatchIsDeterministic(t *testing.T) {
	ds := &Dataset{Hotels: map[string][]Hotel{
		"SAN":           {{Name: "first", Stars: 3}},
		"SAN FRANCISCO": {{Name: "second", Stars: 3}},
		"SANTIAGO":      {{Name: "third", Stars: 3}},
	}}
	client := NewClient(StaticSource{Dataset: ds}, logger.NewNopLogger())

	for i := 0; i < 20; i++ {
		res, err := client.SearchHotels(context.Background(), HotelCriteria{Destination: "San Francisco Bay", MinStars: 1, MaxPricePerNight: 100})
		require.NoError(t, err)
		require.Len(t, res.Hotels, 1)
		assert.Equal(t, "first", res.Hotels[0].Name)
	}
}

type failingSource struct{}

func (failingSource) Load(ctx context.Context) (*Dataset, error) {
	return nil, errors.New("connection refused")
}

func TestSourceFailureIsAnError(t *testing.T) {
	client := NewClient(failingSource{}, logger.NewNopLogger())

	_, err := client.SearchFlights(context.Background(), FlightCriteria{Origin: "NYC", Destination: "Paris"})
	assert.ErrorContains(t, err, "connection refused")

	res, err := client.DestinationInfo(context.Background(), "Paris")
	assert.Error(t, err)
	assert.Equal(t, "Local currency", res.Info.Currency)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hotels:
  LISBON:
    - name: Alfama Guesthouse
      stars: 3
      price_per_night: 95
`), 0o644))

	ds, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alfama Guesthouse", ds.Hotels["LISBON"][0].Name)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}.Load(context.Background())
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/flights", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"NYC-ROME":[{"airline":"ITA","flight_number":"AZ609","price":540}]}`))
	})
	mux.HandleFunc("/hotels", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTPSource(Endpoints{OutboundFlights: srv.URL + "/flights"}, time.Second)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AZ609", ds.OutboundFlights["NYC-ROME"][0].FlightNumber)
	assert.Nil(t, ds.Hotels)

	src = NewHTTPSource(Endpoints{Hotels: srv.URL + "/hotels"}, time.Second)
	_, err = src.Load(context.Background())
	assert.ErrorContains(t, err, "status 500")
}

type countingSource struct {
	calls int
}

func (s *countingSource) Load(ctx context.Context) (*Dataset, error) {
	s.calls++
	return &Dataset{}, nil
}

func TestCachedSource(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := cached.Load(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, inner.calls)

	cached.Invalidate()
	_, err := cached.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

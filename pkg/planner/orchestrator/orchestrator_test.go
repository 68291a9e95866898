package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/events"
	"lazy-tourist-be/pkg/llm/llmtest"
	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/checkpoint"
	"lazy-tourist-be/pkg/planner/feedback"
	"lazy-tourist-be/pkg/planner/intent"
	"lazy-tourist-be/pkg/planner/persistence"
	"lazy-tourist-be/pkg/planner/preferences"
	"lazy-tourist-be/pkg/planner/presenter"
	"lazy-tourist-be/pkg/planner/refine"
	"lazy-tourist-be/pkg/planner/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC) }

const parisRequest = `{"extracted": {"origin": "NYC", "destination": "Paris", "num_adults": 2, "budget": 2000, "duration_days": 3}, "missing": []}`

func parisDataset() *catalog.Dataset {
	return &catalog.Dataset{
		OutboundFlights: map[string][]catalog.Flight{
			"NYC-PARIS": {
				{Airline: "Air France", FlightNumber: "AF007", Price: 650},
				{Airline: "Delta", FlightNumber: "DL264", Price: 380},
			},
		},
		ReturnFlights: map[string][]catalog.Flight{
			"PARIS-NYC": {{Airline: "Air France", FlightNumber: "AF008", Price: 350}},
		},
		Hotels: map[string][]catalog.Hotel{
			"PARIS": {{Name: "Hotel Le Marais", Stars: 4, PricePerNight: 180}},
		},
		Activities: map[string][]catalog.Activity{
			"PARIS": {
				{Name: "Louvre Museum", Category: "Museum", Price: 17},
				{Name: "Seine River Cruise", Category: "Sightseeing", Price: 15},
			},
		},
	}
}

type harness struct {
	t          *testing.T
	intent     *llmtest.ScriptedProvider
	classifier *llmtest.ScriptedProvider
	refiner    *llmtest.ScriptedProvider
	outputDir  string
	catalog    Catalog
	events     *recordingPublisher
	opts       []DriverOption
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:          t,
		intent:     llmtest.New(),
		classifier: llmtest.New(),
		refiner:    llmtest.New(),
		outputDir:  t.TempDir(),
		catalog:    catalog.NewClient(catalog.StaticSource{Dataset: parisDataset()}, logger.NewNopLogger()),
		events:     &recordingPublisher{},
	}
}

func (h *harness) planner() *Planner {
	log := logger.NewNopLogger()
	return NewPlanner(Dependencies{
		Resolver:   intent.NewResolver(h.intent, log, fixedNow),
		Catalog:    h.catalog,
		Renderer:   presenter.MarkdownRenderer{},
		Classifier: feedback.NewClassifier(h.classifier, log, feedback.DefaultHistoryWindow),
		Refiner:    refine.NewEngine(h.refiner, log, fixedNow),
		Saver:      persistence.FileSaver{Dir: h.outputDir},
		Logger:     log,
		Now:        fixedNow,
	})
}

func (h *harness) driver() *Driver {
	opts := append([]DriverOption{
		WithClock(fixedNow),
		WithPublisher(h.events),
		WithIDGenerator(func() string { return "session-1" }),
	}, h.opts...)
	return NewDriver(h.planner(), checkpoint.NewMemoryStore(time.Hour), logger.NewNopLogger(), opts...)
}

// startParis runs the opening turn up to the first feedback suspension.
func (h *harness) startParis(d *Driver) *state.Session {
	h.t.Helper()
	h.intent.Reply(parisRequest)
	s, err := d.Start(context.Background(), "Plan 3 days in Paris from NYC for 2 adults with $2000")
	require.NoError(h.t, err)
	require.True(h.t, s.Suspended())
	require.Equal(h.t, state.NodeGetFeedback, s.NextStep)
	return s
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.EventType())
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

func TestHappyPathParisTrip(t *testing.T) {
	h := newHarness(t)
	d := h.driver()
	ctx := context.Background()

	s := h.startParis(d)
	assert.Equal(t, state.StatusActive, s.Status)
	assert.True(t, s.ShowItinerary)
	assert.Contains(t, s.FinalItinerary, "# 3 Days in Paris")

	require.NotNil(t, s.Preferences)
	assert.Equal(t, "2026-04-30", s.Preferences.DepartureDate)
	assert.Equal(t, "2026-05-03", s.Preferences.ReturnDate)

	require.NotNil(t, s.SelectedFlight)
	assert.Equal(t, "DL264", s.SelectedFlight.FlightNumber, "AF007 is over the $400 ceiling")
	require.NotNil(t, s.SelectedHotel)
	assert.Len(t, s.DailyItinerary, 3)
	require.NotNil(t, s.Budget)
	assert.Equal(t, 1460.0, s.Budget.Flights)
	assert.Equal(t, 540.0, s.Budget.Accommodation)
	assert.Equal(t, 15.0, s.Budget.Activities, "only the sightseeing activity matches the default interest")
	assert.Equal(t, 2615.0, s.Budget.Total)
	assert.Equal(t, -615.0, s.Budget.Remaining)
	require.NotNil(t, s.DestinationInfo)
	assert.Equal(t, "Paris", s.DestinationInfo.Destination)

	h.classifier.Reply(`{"action": "save", "response": "Saving your trip!"}`)
	s, err := d.Resume(ctx, s.ID, "looks great, save it")
	require.NoError(t, err)

	assert.True(t, s.Done())
	assert.Equal(t, state.StatusCompleted, s.Status)
	assert.Equal(t, filepath.Join(h.outputDir, "itinerary_paris_20260301_090000.md"), s.SavedLocation)
	assert.Contains(t, s.AssistantResponse, s.SavedLocation)

	written, err := os.ReadFile(s.SavedLocation)
	require.NoError(t, err)
	assert.Equal(t, s.FinalItinerary, string(written))

	assert.Equal(t, []string{
		events.TypeSessionStarted,
		events.TypeItineraryCompiled,
		events.TypeSessionSuspended,
		events.TypeItinerarySaved,
		events.TypeSessionEnded,
	}, h.events.Types())

	stored, err := d.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, state.StatusCompleted, stored.Status)
}

func TestMissingInformationLoop(t *testing.T) {
	h := newHarness(t)
	d := h.driver()
	ctx := context.Background()

	h.intent.Reply(`{"extracted": {"destination": "Bali"}, "missing": ["origin", "num_adults", "budget"]}`)
	h.intent.Reply("Bali sounds lovely! Where from, for how long, how many adults and what budget?")

	s, err := d.Start(ctx, "I want to go to Bali")
	require.NoError(t, err)
	assert.True(t, s.Suspended())
	assert.Equal(t, state.NodeExtractIntent, s.NextStep)
	assert.Nil(t, s.Preferences)
	assert.Equal(t, "Bali sounds lovely! Where from, for how long, how many adults and what budget?", s.AssistantResponse)
	assert.Equal(t, "Assistant: Bali sounds lovely! Where from, for how long, how many adults and what budget?", s.ConversationHistory[len(s.ConversationHistory)-1])

	h.intent.Reply(`{"extracted": {"origin": "NYC", "num_adults": 2, "duration_days": 5, "budget": 3000}, "missing": []}`)
	s, err = d.Resume(ctx, s.ID, "From NYC, 2 adults, 5 days, $3000")
	require.NoError(t, err)

	assert.Equal(t, state.NodeGetFeedback, s.NextStep)
	require.NotNil(t, s.Preferences)
	assert.Equal(t, "Bali", s.Preferences.Destination)
	assert.Equal(t, 5, s.Preferences.DurationDays)
	assert.Len(t, s.ConversationHistory, 3)
	assert.Equal(t, 2, s.Turns)
}

func TestUnknownDestinationStillCompiles(t *testing.T) {
	h := newHarness(t)
	d := h.driver()

	h.intent.Reply(`{"extracted": {"origin": "NYC", "destination": "Atlantis", "num_adults": 2, "budget": 2000, "duration_days": 4}, "missing": []}`)
	s, err := d.Start(context.Background(), "4 days in Atlantis")
	require.NoError(t, err)

	assert.Equal(t, state.NodeGetFeedback, s.NextStep)
	assert.Empty(t, s.Flights)
	assert.Empty(t, s.ReturnFlights)
	assert.Empty(t, s.Hotels)
	assert.Nil(t, s.SelectedFlight)
	assert.Nil(t, s.SelectedHotel)
	assert.Contains(t, s.Notices, "No catalog data for flights from NYC to Atlantis.")
	assert.Contains(t, s.Notices, "No catalog data for hotels in Atlantis.")

	require.NotNil(t, s.Budget)
	assert.Zero(t, s.Budget.Flights)
	assert.Zero(t, s.Budget.Accommodation)
	assert.Len(t, s.DailyItinerary, 4)
	assert.Equal(t, catalog.GenericDestinationInfo("Atlantis"), *s.DestinationInfo)
}

func TestFeedbackRoutes(t *testing.T) {
	t.Run("cheaper hotel recompiles", func(t *testing.T) {
		h := newHarness(t)
		d := h.driver()
		s := h.startParis(d)

		h.classifier.Reply(`{"action": "refine", "response": "On it"}`)
		h.refiner.Reply(`{"changes_needed": ["pick a cheaper hotel"], "requires_new_search": false, "updated_preferences": {}}`)

		s, err := d.Resume(context.Background(), s.ID, "cheaper hotel please")
		require.NoError(t, err)

		assert.Equal(t, state.NodeGetFeedback, s.NextStep)
		assert.True(t, s.Suspended())
		assert.Equal(t, 1, s.IterationCount)
		assert.Equal(t, "On it", s.AssistantResponse)
		n := len(s.ConversationHistory)
		assert.Equal(t, []string{"User: cheaper hotel please", "Assistant: On it"}, s.ConversationHistory[n-2:])
	})

	t.Run("longer trip with a child searches again", func(t *testing.T) {
		h := newHarness(t)
		d := h.driver()
		s := h.startParis(d)

		h.classifier.Reply(`{"action": "refine"}`)
		h.refiner.Reply(`{"requires_new_search": false, "updated_preferences": {"duration_days": 5, "num_children": 1}}`)

		s, err := d.Resume(context.Background(), s.ID, "make it 5 days and add a kid")
		require.NoError(t, err)

		assert.Equal(t, feedback.DefaultRefineResponse, s.AssistantResponse)
		assert.Equal(t, 3, s.Preferences.TotalPassengers)
		assert.Equal(t, "2026-05-05", s.Preferences.ReturnDate)
		assert.Len(t, s.DailyItinerary, 5)
		assert.Equal(t, 2190.0, s.Budget.Flights)
		assert.Nil(t, s.SelectedHotel, "the hotel ceiling drops to $150 a night")
		assert.Contains(t, s.Notices, "No hotels found in Paris matching your criteria.")
		assert.Contains(t, s.FinalItinerary, "# 5 Days in Paris")
	})

	t.Run("question is answered without refining", func(t *testing.T) {
		h := newHarness(t)
		d := h.driver()
		s := h.startParis(d)
		itinerary := s.FinalItinerary

		h.classifier.Reply(`{"action": "clarify", "response": "Paris is mild in May."}`)
		s, err := d.Resume(context.Background(), s.ID, "what's the weather like?")
		require.NoError(t, err)

		assert.Equal(t, state.NodeGetFeedback, s.NextStep)
		assert.True(t, s.Suspended())
		assert.False(t, s.ShowItinerary)
		assert.Equal(t, "Paris is mild in May.", s.AssistantResponse)
		assert.Zero(t, s.IterationCount)
		assert.Equal(t, itinerary, s.FinalItinerary)
		assert.Zero(t, h.refiner.Calls())
	})

	t.Run("refinement asks a clarifying question", func(t *testing.T) {
		h := newHarness(t)
		d := h.driver()
		s := h.startParis(d)

		h.classifier.Reply(`{"action": "refine", "response": "Let me look"}`)
		h.refiner.Reply(`{"clarifying_question": "Which part should be cheaper?", "updated_preferences": {}}`)

		s, err := d.Resume(context.Background(), s.ID, "make it cheaper")
		require.NoError(t, err)

		assert.Equal(t, state.NodeGetFeedback, s.NextStep)
		assert.Equal(t, "Which part should be cheaper?", s.AssistantResponse)
		assert.False(t, s.ShowItinerary)
		assert.Zero(t, s.IterationCount)
		assert.Equal(t, "Assistant: Which part should be cheaper?", s.ConversationHistory[len(s.ConversationHistory)-1])
	})

	t.Run("blank feedback saves", func(t *testing.T) {
		h := newHarness(t)
		d := h.driver()
		s := h.startParis(d)
		historyLen := len(s.ConversationHistory)

		s, err := d.Resume(context.Background(), s.ID, "   ")
		require.NoError(t, err)

		assert.Equal(t, state.StatusCompleted, s.Status)
		assert.Len(t, s.ConversationHistory, historyLen)
		assert.Zero(t, h.classifier.Calls())
		assert.FileExists(t, s.SavedLocation)
	})

	t.Run("refinement transport failure ends the session", func(t *testing.T) {
		h := newHarness(t)
		d := h.driver()
		s := h.startParis(d)

		h.classifier.Reply(`{"action": "refine"}`)
		h.refiner.Fail(errors.New("connection refused"))

		s, err := d.Resume(context.Background(), s.ID, "swap the hotel")
		require.NoError(t, err)

		assert.True(t, s.Done())
		assert.Equal(t, state.StatusFailed, s.Status)
		assert.Contains(t, s.Error, "connection refused")
		assert.NoFileExists(t, filepath.Join(h.outputDir, "itinerary_paris_20260301_090000.md"))
	})
}

type panickingCatalog struct {
	Catalog
}

func (panickingCatalog) SearchFlights(ctx context.Context, criteria catalog.FlightCriteria) (catalog.FlightResult, error) {
	panic("flight index corrupted")
}

func TestNodePanicFailsSession(t *testing.T) {
	h := newHarness(t)
	h.catalog = panickingCatalog{Catalog: h.catalog}
	d := h.driver()
	ctx := context.Background()

	h.intent.Reply(parisRequest)
	s, err := d.Start(ctx, "Paris please")
	require.NoError(t, err)

	assert.True(t, s.Done())
	assert.Equal(t, state.StatusFailed, s.Status)
	assert.Contains(t, s.Error, "search_flights")
	assert.Contains(t, s.Error, "flight index corrupted")

	_, err = d.Resume(ctx, s.ID, "hello?")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestTurnLimit(t *testing.T) {
	h := newHarness(t)
	h.opts = append(h.opts, WithMaxTurns(2))
	d := h.driver()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		h.intent.Reply(`{"extracted": {"destination": "Paris"}, "missing": []}`)
		h.intent.Reply("Where from?")
	}

	s, err := d.Start(ctx, "Paris")
	require.NoError(t, err)
	s, err = d.Resume(ctx, s.ID, "not sure yet")
	require.NoError(t, err)
	require.True(t, s.Suspended())

	s, err = d.Resume(ctx, s.ID, "still thinking")
	assert.ErrorIs(t, err, ErrTurnLimit)
	assert.Equal(t, state.StatusFailed, s.Status)
	assert.True(t, s.Done())
	assert.Zero(t, h.intent.Pending())
}

func TestStepLimit(t *testing.T) {
	h := newHarness(t)
	h.opts = append(h.opts, WithMaxSteps(2))
	d := h.driver()

	h.intent.Reply(parisRequest)
	s, err := d.Start(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, state.StatusFailed, s.Status)
	assert.Equal(t, ErrStepLimit.Error(), s.Error)
}

func TestAbort(t *testing.T) {
	h := newHarness(t)
	d := h.driver()
	ctx := context.Background()
	s := h.startParis(d)

	s, err := d.Abort(ctx, s.ID, "input stream closed")
	require.NoError(t, err)
	assert.Equal(t, state.StatusAborted, s.Status)
	assert.True(t, s.Done())

	entries, err := os.ReadDir(h.outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	stored, err := d.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, state.StatusAborted, stored.Status)
	assert.Equal(t, events.TypeSessionEnded, h.events.Types()[len(h.events.Types())-1])

	_, err = d.Resume(ctx, s.ID, "wait")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestUnknownSession(t *testing.T) {
	d := newHarness(t).driver()

	_, err := d.Resume(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = d.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStepOnEndIsDone(t *testing.T) {
	p := newHarness(t).planner()
	s := state.New("done", fixedNow())
	s.NextStep = state.NodeEnd
	s.Status = state.StatusCompleted

	res := p.Step(context.Background(), s)
	assert.True(t, res.Done)
	assert.Equal(t, state.NodeEnd, res.Next)
	assert.Equal(t, state.StatusCompleted, s.Status)
}

func TestCeilings(t *testing.T) {
	tests := []struct {
		name     string
		budget   float64
		duration int
		flight   int
		hotel    int
	}{
		{name: "three day trip", budget: 2000, duration: 3, flight: 400, hotel: 300},
		{name: "day trip", budget: 1000, duration: 1, flight: 200, hotel: fallbackHotelCeiling},
		{name: "week", budget: 5000, duration: 7, flight: 1000, hotel: 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := preferences.Preferences{Budget: tt.budget, DurationDays: tt.duration}
			assert.Equal(t, tt.flight, flightCeiling(p))
			assert.Equal(t, tt.hotel, hotelCeiling(p))
		})
	}
}

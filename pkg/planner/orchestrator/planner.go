// Package orchestrator runs the trip planning graph one node at a time and
// drives sessions across user turns.
package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/feedback"
	"lazy-tourist-be/pkg/planner/intent"
	"lazy-tourist-be/pkg/planner/persistence"
	"lazy-tourist-be/pkg/planner/preferences"
	"lazy-tourist-be/pkg/planner/presenter"
	"lazy-tourist-be/pkg/planner/refine"
	"lazy-tourist-be/pkg/planner/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type IntentResolver interface {
	Resolve(ctx context.Context, history []string, partial preferences.Extracted) (intent.Resolution, error)
}

type Catalog interface {
	SearchFlights(ctx context.Context, criteria catalog.FlightCriteria) (catalog.FlightResult, error)
	SearchReturnFlights(ctx context.Context, criteria catalog.FlightCriteria) (catalog.FlightResult, error)
	SearchHotels(ctx context.Context, criteria catalog.HotelCriteria) (catalog.HotelResult, error)
	SearchActivities(ctx context.Context, criteria catalog.ActivityCriteria) (catalog.ActivityResult, error)
	DestinationInfo(ctx context.Context, destination string) (catalog.DestinationResult, error)
}

type FeedbackClassifier interface {
	Classify(ctx context.Context, text string, fc feedback.Context) feedback.Decision
}

type Refiner interface {
	Refine(ctx context.Context, feedback string, prefs preferences.Preferences) (refine.Outcome, error)
}

// Dependencies are the components the nodes call out to.
type Dependencies struct {
	Resolver   IntentResolver
	Catalog    Catalog
	Renderer   presenter.Renderer
	Classifier FeedbackClassifier
	Refiner    Refiner
	Saver      persistence.Saver
	Logger     logger.ILogger
	Now        func() time.Time
}

type Planner struct {
	deps   Dependencies
	tracer trace.Tracer
	nodes  map[state.Node]func(context.Context, *state.Session) error
}

func NewPlanner(deps Dependencies) *Planner {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	p := &Planner{
		deps:   deps,
		tracer: otel.Tracer("lazy-tourist-be/planner"),
	}
	p.nodes = map[state.Node]func(context.Context, *state.Session) error{
		state.NodeExtractIntent:       p.extractIntent,
		state.NodeResearchDestination: p.researchDestination,
		state.NodeSearchFlights:       p.searchFlights,
		state.NodeSearchHotels:        p.searchHotels,
		state.NodeSearchActivities:    p.searchActivities,
		state.NodeCompileItinerary:    p.compileItinerary,
		state.NodeFormatOutput:        p.formatOutput,
		state.NodeGetFeedback:         p.getFeedback,
		state.NodeRefineItinerary:     p.refineItinerary,
		state.NodeSaveAndExit:         p.saveAndExit,
	}
	return p
}

// StepResult describes one executed node.
type StepResult struct {
	Node state.Node
	Next state.Node
	// SuspendedAt is set when the session now waits for user input.
	SuspendedAt state.Node
	Done        bool
}

// Step runs exactly the node named by s.NextStep. Node failures, panics
// included, move the session to end with status failed; Step itself never
// returns an error.
func (p *Planner) Step(ctx context.Context, s *state.Session) StepResult {
	node := s.NextStep
	if node == state.NodeEnd {
		return StepResult{Node: node, Next: node, Done: true}
	}

	ctx, span := p.tracer.Start(ctx, "planner.step", trace.WithAttributes(
		attribute.String("node", string(node)),
		attribute.String("session_id", s.ID),
	))
	defer span.End()

	if err := p.runNode(ctx, node, s); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.deps.Logger.Error("ORCHESTRATOR", "Node failed, ending session", map[string]interface{}{
			"session_id": s.ID,
			"node":       node,
			"error":      err.Error(),
		})
		s.Fail(fmt.Errorf("%s: %w", node, err))
	}
	s.UpdatedAt = p.deps.Now()

	result := StepResult{Node: node, Next: s.NextStep, Done: s.Done()}
	if s.Suspended() {
		result.SuspendedAt = s.NextStep
	}
	p.deps.Logger.Debug("ORCHESTRATOR", "Step complete", map[string]interface{}{
		"session_id": s.ID,
		"node":       node,
		"next":       result.Next,
		"suspended":  result.SuspendedAt != "",
	})
	return result
}

func (p *Planner) runNode(ctx context.Context, node state.Node, s *state.Session) (err error) {
	handler, ok := p.nodes[node]
	if !ok {
		return fmt.Errorf("unknown node %q", node)
	}
	defer func() {
		if r := recover(); r != nil {
			p.deps.Logger.Error("ORCHESTRATOR", "Node panicked", map[string]interface{}{
				"node":  node,
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, s)
}

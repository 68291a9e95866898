package mapper

import (
	"testing"
	"time"

	"lazy-tourist-be/pkg/planner/compiler"
	"lazy-tourist-be/pkg/planner/state"

	"github.com/stretchr/testify/assert"
)

func TestTripMapperToResponse(t *testing.T) {
	m := NewTripMapper()
	assert.Nil(t, m.ToResponse(nil))

	s := state.New("trip-1", time.Now())
	s.NextStep = state.NodeGetFeedback
	s.NeedsUserInput = true
	s.FinalItinerary = "# 3 Days in Paris"
	s.AssistantResponse = "Paris is mild in May."
	s.Budget = &compiler.BudgetBreakdown{Total: 2615, Budget: 2000, Remaining: -615}

	res := m.ToResponse(s)
	assert.True(t, res.NeedsInput)
	assert.Empty(t, res.Itinerary, "hidden while answering a question")
	assert.Equal(t, []string{}, res.Notices)
	assert.True(t, res.Budget.OverBudget)
	assert.Equal(t, "Paris is mild in May.", res.Message)

	s.ShowItinerary = true
	assert.Equal(t, "# 3 Days in Paris", m.ToResponse(s).Itinerary)
}

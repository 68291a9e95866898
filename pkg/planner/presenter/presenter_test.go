package presenter

import (
	"context"
	"errors"
	"testing"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/llm/llmtest"
	"lazy-tourist-be/pkg/planner/catalog"
	"lazy-tourist-be/pkg/planner/compiler"
	"lazy-tourist-be/pkg/planner/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	p := preferences.Preferences{Origin: "NYC", Destination: "Paris", DepartureDate: "2026-04-30", Budget: 2000, Interests: []string{"food"}}
	p.SetDuration(3)
	p.SetTravelers(2, 0)

	hotel := &catalog.Hotel{Name: "Hotel Le Marais Boutique", Stars: 4, PricePerNight: 180, Nights: 2, TotalPrice: 360}
	res := compiler.Compile(p, compiler.Selections{Hotel: hotel}, []catalog.Activity{{Name: "Seine River Dinner Cruise", Price: 120}})
	info := catalog.GenericDestinationInfo("Paris")

	return Document{
		Preferences:     p,
		Hotel:           hotel,
		DailyItinerary:  res.DailyItinerary,
		Budget:          &res.Budget,
		DestinationInfo: &info,
		Notices:         []string{"No flights found from NYC to Paris under $400 per person."},
	}
}

func TestMarkdownRenderer(t *testing.T) {
	out, err := MarkdownRenderer{}.Render(context.Background(), sampleDocument())
	require.NoError(t, err)

	assert.Contains(t, out, "# 3 Days in Paris")
	assert.Contains(t, out, "**Outbound:** no flight selected.")
	assert.Contains(t, out, "### Hotel Le Marais Boutique (4 stars)")
	assert.Contains(t, out, "### Day 2 - 2026-05-01")
	assert.Contains(t, out, "Seine River Dinner Cruise")
	assert.Contains(t, out, "| **Total** | **$1080** |")
	assert.Contains(t, out, "**Under budget by $920.**")
	assert.Contains(t, out, "No flights found from NYC to Paris")
	assert.Contains(t, out, "Local currency")
}

func TestMarkdownRendererIsDeterministic(t *testing.T) {
	doc := sampleDocument()
	a, _ := MarkdownRenderer{}.Render(context.Background(), doc)
	b, _ := MarkdownRenderer{}.Render(context.Background(), doc)
	assert.Equal(t, a, b)
}

func TestOracleFormatter(t *testing.T) {
	t.Run("strips code fences", func(t *testing.T) {
		oracle := llmtest.New("```markdown\n# Paris Getaway\n\nEnjoy!\n```")
		out, err := NewOracleFormatter(oracle, logger.NewNopLogger()).Render(context.Background(), sampleDocument())
		require.NoError(t, err)
		assert.Equal(t, "# Paris Getaway\n\nEnjoy!", out)
	})

	t.Run("passes presentation notes", func(t *testing.T) {
		oracle := llmtest.New("# Short version")
		doc := sampleDocument()
		doc.Notes = "make it shorter"
		_, err := NewOracleFormatter(oracle, logger.NewNopLogger()).Render(context.Background(), doc)
		require.NoError(t, err)
		assert.Contains(t, oracle.Prompts()[0], "make it shorter")
	})

	t.Run("falls back on error or blank output", func(t *testing.T) {
		for _, oracle := range []*llmtest.ScriptedProvider{llmtest.New().Fail(errors.New("down")), llmtest.New("   ")} {
			out, err := NewOracleFormatter(oracle, logger.NewNopLogger()).Render(context.Background(), sampleDocument())
			require.NoError(t, err)
			assert.Contains(t, out, "# 3 Days in Paris")
		}
	})
}

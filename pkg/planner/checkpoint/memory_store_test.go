package checkpoint

import (
	"context"
	"testing"
	"time"

	"lazy-tourist-be/pkg/planner/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	s := state.New("abc", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.AddUser("Paris for two")
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"User: Paris for two"}, loaded.ConversationHistory)

	loaded.AddAssistant("How many days?")
	again, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, again.ConversationHistory, 1, "loaded copies are independent")

	s.Turns = 3
	require.NoError(t, store.Save(ctx, s))
	again, err = store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Turns, "last writer wins")

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

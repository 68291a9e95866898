package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(ctx context.Context, event Event) error {
	r.got = append(r.got, event)
	return r.err
}

func TestMultiPublisherFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{err: errors.New("nats down")}
	evt := BaseEvent{Type: TypeSessionStarted, Data: map[string]interface{}{"session_id": "s1"}, OccurredAt: time.Now()}

	err := MultiPublisher{a, nil, b}.Publish(context.Background(), evt)

	assert.ErrorContains(t, err, "nats down")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.NoError(t, MultiPublisher{a}.Publish(context.Background(), evt))
}

func TestEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	evt := BaseEvent{Type: TypeItinerarySaved, Data: map[string]interface{}{"location": "outputs/x.md"}, OccurredAt: at}

	env := ToEnvelope(evt)
	assert.Equal(t, TypeItinerarySaved, env.Type)
	assert.Equal(t, evt, env.Event())
}

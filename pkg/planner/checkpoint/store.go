// Package checkpoint keeps session snapshots between turns.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lazy-tourist-be/pkg/planner/state"
)

var ErrNotFound = errors.New("checkpoint not found")

// Store persists sessions by id. Writers win in order of arrival.
type Store interface {
	Save(ctx context.Context, session *state.Session) error
	Load(ctx context.Context, id string) (*state.Session, error)
	Delete(ctx context.Context, id string) error
}

func encode(session *state.Session) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint %s: %w", session.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*state.Session, error) {
	var s state.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &s, nil
}

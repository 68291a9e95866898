package checkpoint

import (
	"context"
	"time"

	"lazy-tourist-be/pkg/planner/state"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps encoded snapshots in process, so callers never share
// pointers with the store.
type MemoryStore struct {
	cache *cache.Cache
}

var _ Store = &MemoryStore{}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	// Purge expired sessions every 10 minutes
	return &MemoryStore{cache: cache.New(ttl, 10*time.Minute)}
}

func (s *MemoryStore) Save(ctx context.Context, session *state.Session) error {
	data, err := encode(session)
	if err != nil {
		return err
	}
	s.cache.Set(session.ID, data, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*state.Session, error) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	return decode(x.([]byte))
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

package application

import (
	"context"
	"sync"
	"time"

	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
)

const defaultRetention = 100

// Store keeps a bounded, time-ordered history of observations per key
// and broadcasts each new observation to the key's live subscribers.
type Store struct {
	mu        sync.RWMutex
	retention int
	history   map[pricefeed.Key][]pricefeed.Observation
	broker    *Broker
	now       func() time.Time
}

// NewStore constructs a store. A non-positive retention falls back to
// the default cap.
func NewStore(retention int, broker *Broker) *Store {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Store{
		retention: retention,
		history:   make(map[pricefeed.Key][]pricefeed.Observation),
		broker:    broker,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record appends a new observation for the key, evicts beyond the
// retention cap (oldest first) and broadcasts to the key's subscribers.
func (s *Store) Record(key pricefeed.Key, price float64) pricefeed.Observation {
	obs := pricefeed.Observation{Timestamp: s.now(), Price: price}

	s.mu.Lock()
	seq := append(s.history[key], obs)
	if excess := len(seq) - s.retention; excess > 0 {
		trimmed := make([]pricefeed.Observation, s.retention)
		copy(trimmed, seq[excess:])
		seq = trimmed
	}
	s.history[key] = seq
	s.mu.Unlock()

	if s.broker != nil {
		s.broker.Publish(key, obs)
	}
	return obs
}

// History returns a copy of the key's observation sequence, oldest
// first. Unknown keys yield an empty sequence.
func (s *Store) History(key pricefeed.Key) []pricefeed.Observation {
	s.mu.RLock()
	seq := s.history[key]
	out := make([]pricefeed.Observation, len(seq))
	copy(out, seq)
	s.mu.RUnlock()
	return out
}

// Latest returns the most recent observation for the key.
func (s *Store) Latest(key pricefeed.Key) (pricefeed.Observation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.history[key]
	if len(seq) == 0 {
		return pricefeed.Observation{}, false
	}
	return seq[len(seq)-1], true
}

// LatestPrice satisfies the synchronous price-source contract used by
// the letter-of-credit issuance path.
func (s *Store) LatestPrice(ctx context.Context, country, commodity string) (float64, bool, error) {
	_ = ctx
	obs, ok := s.Latest(pricefeed.NewKey(country, commodity))
	if !ok {
		return 0, false, nil
	}
	return obs.Price, true, nil
}

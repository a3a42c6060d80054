package application

import (
	"sync"

	"trade-finance-cloud/internal/observability/metrics"
	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
)

const subscriberBuffer = 16

// Broker fans out price observations to live subscribers, scoped per key.
type Broker struct {
	mu   sync.Mutex
	subs map[pricefeed.Key]map[chan pricefeed.Observation]struct{}
}

// NewBroker constructs a broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[pricefeed.Key]map[chan pricefeed.Observation]struct{})}
}

// Subscribe registers a new subscriber channel for a key.
func (b *Broker) Subscribe(key pricefeed.Key) chan pricefeed.Observation {
	if b == nil {
		return nil
	}
	ch := make(chan pricefeed.Observation, subscriberBuffer)
	b.mu.Lock()
	set := b.subs[key]
	if set == nil {
		set = make(map[chan pricefeed.Observation]struct{})
		b.subs[key] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Broker) Unsubscribe(key pricefeed.Key, ch chan pricefeed.Observation) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	set := b.subs[key]
	if set == nil {
		b.mu.Unlock()
		return
	}
	if _, ok := set[ch]; !ok {
		b.mu.Unlock()
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(b.subs, key)
	}
	b.mu.Unlock()
	close(ch)
}

// Publish delivers an observation to every subscriber of the key.
// Delivery is attempted per subscriber independently; a full subscriber
// buffer drops that subscriber's copy without blocking the others. The
// sends are non-blocking and happen under the lock, so a concurrent
// Unsubscribe cannot close a channel mid-send.
func (b *Broker) Publish(key pricefeed.Key, obs pricefeed.Observation) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[key] {
		select {
		case ch <- obs:
			metrics.ObserveBroadcast("delivered")
		default:
			metrics.ObserveBroadcast("dropped")
		}
	}
}

// SubscriberCount reports how many subscribers a key currently has.
func (b *Broker) SubscriberCount(key pricefeed.Key) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[key])
}

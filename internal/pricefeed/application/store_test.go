package application

import (
	"context"
	"testing"
	"time"

	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
)

func TestStore_RetentionCap(t *testing.T) {
	store := NewStore(5, nil)
	key := pricefeed.NewKey("IN", "wheat")

	for i := 0; i < 12; i++ {
		store.Record(key, float64(i))
	}

	history := store.History(key)
	if len(history) != 5 {
		t.Fatalf("expected 5 retained observations, got %d", len(history))
	}
	for i, obs := range history {
		want := float64(7 + i)
		if obs.Price != want {
			t.Fatalf("position %d: expected price %.0f, got %.2f", i, want, obs.Price)
		}
	}
}

func TestStore_HistoryIsACopy(t *testing.T) {
	store := NewStore(10, nil)
	key := pricefeed.NewKey("US", "gold")
	store.Record(key, 2100)

	first := store.History(key)
	first[0].Price = -1

	second := store.History(key)
	if second[0].Price != 2100 {
		t.Fatalf("history mutated through returned slice: got %.2f", second[0].Price)
	}
}

func TestStore_HistoryUnknownKeyEmpty(t *testing.T) {
	store := NewStore(10, nil)
	history := store.History(pricefeed.NewKey("FR", "cocoa"))
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestStore_KeysAreIsolated(t *testing.T) {
	store := NewStore(10, nil)
	inWheat := pricefeed.NewKey("IN", "wheat")
	usWheat := pricefeed.NewKey("US", "wheat")

	store.Record(inWheat, 7.5)
	store.Record(usWheat, 6.1)
	store.Record(inWheat, 7.6)

	if got := len(store.History(inWheat)); got != 2 {
		t.Fatalf("expected 2 observations for IN:wheat, got %d", got)
	}
	if got := len(store.History(usWheat)); got != 1 {
		t.Fatalf("expected 1 observation for US:wheat, got %d", got)
	}
}

func TestStore_Latest(t *testing.T) {
	store := NewStore(10, nil)
	key := pricefeed.NewKey("IN", "gold")

	if _, ok := store.Latest(key); ok {
		t.Fatal("expected no latest observation before any record")
	}

	store.Record(key, 2200)
	store.Record(key, 2250)

	obs, ok := store.Latest(key)
	if !ok {
		t.Fatal("expected a latest observation")
	}
	if obs.Price != 2250 {
		t.Fatalf("expected latest price 2250, got %.2f", obs.Price)
	}
}

func TestStore_LatestPrice(t *testing.T) {
	store := NewStore(10, nil)
	store.Record(pricefeed.NewKey("IN", "wheat"), 8.2)

	price, ok, err := store.LatestPrice(context.Background(), "in", "WHEAT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a price for normalized key")
	}
	if price != 8.2 {
		t.Fatalf("expected 8.2, got %.2f", price)
	}

	_, ok, err = store.LatestPrice(context.Background(), "US", "cocoa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no price for unknown key")
	}
}

func TestStore_RecordTimestampsAreOrdered(t *testing.T) {
	store := NewStore(10, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	key := pricefeed.NewKey("IN", "wheat")

	store.Record(key, 1)
	store.Record(key, 2)
	history := store.History(key)
	if !history[0].Timestamp.Before(history[1].Timestamp) {
		t.Fatalf("expected ordered timestamps, got %v then %v", history[0].Timestamp, history[1].Timestamp)
	}
}

func TestStore_RecordBroadcasts(t *testing.T) {
	broker := NewBroker()
	store := NewStore(10, broker)
	key := pricefeed.NewKey("US", "gold")

	ch := broker.Subscribe(key)
	defer broker.Unsubscribe(key, ch)

	store.Record(key, 2300)
	select {
	case obs := <-ch:
		if obs.Price != 2300 {
			t.Fatalf("expected broadcast price 2300, got %.2f", obs.Price)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast observation")
	}
}

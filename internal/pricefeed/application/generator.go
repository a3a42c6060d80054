package application

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"trade-finance-cloud/internal/observability/metrics"
	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
)

// PriceFunc produces the next price for a key.
type PriceFunc func(key pricefeed.Key) (float64, error)

// DefaultPriceFunc synthesizes demo prices per commodity band.
func DefaultPriceFunc(key pricefeed.Key) (float64, error) {
	switch key.Commodity {
	case "gold":
		return round2(2000 + rand.Float64()*500), nil
	case "wheat":
		return round2(5 + rand.Float64()*5), nil
	default:
		return round2(10 + rand.Float64()*90), nil
	}
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}

// Generator ticks on a fixed period and records a fresh observation for
// every key in the configured universe.
type Generator struct {
	store    *Store
	universe []pricefeed.Key
	period   time.Duration
	price    PriceFunc
	logger   *log.Logger
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithPriceFunc overrides price synthesis.
func WithPriceFunc(fn PriceFunc) GeneratorOption {
	return func(g *Generator) {
		if fn != nil {
			g.price = fn
		}
	}
}

// NewGenerator constructs a generator.
func NewGenerator(store *Store, universe []pricefeed.Key, period time.Duration, logger *log.Logger, opts ...GeneratorOption) *Generator {
	if period <= 0 {
		period = 10 * time.Second
	}
	g := &Generator{
		store:    store,
		universe: universe,
		period:   period,
		price:    DefaultPriceFunc,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start runs the generation loop until the context is cancelled.
func (g *Generator) Start(ctx context.Context) {
	if g == nil || g.store == nil {
		return
	}
	ticker := time.NewTicker(g.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Tick()
		}
	}
}

// Tick records one observation per universe key. A failure for one key
// never stops generation for the remaining keys.
func (g *Generator) Tick() {
	for _, key := range g.universe {
		if !key.Valid() {
			continue
		}
		if err := g.recordOne(key); err != nil {
			metrics.ObservePriceTick(metrics.ResultError)
			if g.logger != nil {
				g.logger.Printf("price tick error: key=%s err=%v", key, err)
			}
			continue
		}
		metrics.ObservePriceTick(metrics.ResultSuccess)
	}
}

func (g *Generator) recordOne(key pricefeed.Key) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("price func panic: %v", r)
		}
	}()
	price, err := g.price(key)
	if err != nil {
		return err
	}
	g.store.Record(key, price)
	return nil
}

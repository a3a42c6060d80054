package pricefeed

import (
	"strings"
	"time"
)

// Key identifies a commodity quoted in a country.
type Key struct {
	Country   string
	Commodity string
}

// NewKey normalizes country and commodity into a feed key.
func NewKey(country, commodity string) Key {
	return Key{
		Country:   strings.ToUpper(strings.TrimSpace(country)),
		Commodity: strings.ToLower(strings.TrimSpace(commodity)),
	}
}

// Valid reports whether both parts are present.
func (k Key) Valid() bool {
	return k.Country != "" && k.Commodity != ""
}

func (k Key) String() string {
	return k.Country + ":" + k.Commodity
}

// Observation is a single price sample. Immutable once created.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

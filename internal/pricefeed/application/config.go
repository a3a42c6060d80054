package application

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
)

// Config defines price feed configuration.
type Config struct {
	Pairs         []string `yaml:"pairs"`
	PeriodSeconds int      `yaml:"period_seconds"`
	Retention     int      `yaml:"retention"`
}

// LoadConfig loads price feed config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		Pairs:         splitCSV(getenvDefault("PRICEFEED_PAIRS", "IN:wheat,US:wheat,IN:gold,US:gold")),
		PeriodSeconds: getenvIntDefault("PRICEFEED_PERIOD_SECONDS", 10),
		Retention:     getenvIntDefault("PRICEFEED_RETENTION", defaultRetention),
	}

	if path := os.Getenv("PRICEFEED_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if len(cfg.Pairs) == 0 {
		return cfg, errors.New("pricefeed: at least one country:commodity pair required")
	}
	if cfg.PeriodSeconds <= 0 {
		cfg.PeriodSeconds = 10
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	return cfg, nil
}

// Universe parses the configured pairs into feed keys.
func (c Config) Universe() []pricefeed.Key {
	keys := make([]pricefeed.Key, 0, len(c.Pairs))
	for _, pair := range c.Pairs {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := pricefeed.NewKey(parts[0], parts[1])
		if key.Valid() {
			keys = append(keys, key)
		}
	}
	return keys
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

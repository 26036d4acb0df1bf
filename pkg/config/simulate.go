package config

import "time"

// SimulateConfig describes the simulated batch: item names, each with the
// latency at the same position in Durations.
type SimulateConfig struct {
	Items     []string
	Durations []time.Duration
	Fail      []string
}

func loadSimulateConfig() (SimulateConfig, error) {
	cfg := SimulateConfig{
		Items: getEnvStringSlice("SIMULATE_ITEMS", []string{"f1", "f2", "f3"}),
		Fail:  getEnvStringSlice("SIMULATE_FAIL", nil),
	}

	raw := getEnvStringSlice("SIMULATE_DURATIONS", []string{"500ms", "100ms", "300ms"})
	for _, s := range raw {
		d, err := time.ParseDuration(s)
		if err != nil {
			return SimulateConfig{}, configErrors.NewWithCause(ErrInvalid, err).
				WithDetail("key", "SIMULATE_DURATIONS").
				WithDetail("value", s)
		}
		cfg.Durations = append(cfg.Durations, d)
	}
	return cfg, nil
}

// DurationMap pairs items with their latencies.
func (c SimulateConfig) DurationMap() map[string]time.Duration {
	m := make(map[string]time.Duration, len(c.Items))
	for i, item := range c.Items {
		if i < len(c.Durations) {
			m[item] = c.Durations[i]
		}
	}
	return m
}

func (c SimulateConfig) validate() error {
	if len(c.Durations) != len(c.Items) {
		return invalid("SIMULATE_DURATIONS", len(c.Durations), "SIMULATE_DURATIONS needs one duration per SIMULATE_ITEMS entry")
	}
	for _, d := range c.Durations {
		if d < 0 {
			return invalid("SIMULATE_DURATIONS", d.String(), "SIMULATE_DURATIONS must not be negative")
		}
	}
	return nil
}

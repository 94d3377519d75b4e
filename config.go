package envelope

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseConfig reads a YAML document over DefaultConfig(sampleRate) and
// validates the result. Fields absent from data keep their defaults;
// a sample_rate key in data overrides sampleRate, and the default
// smoothing cutoff follows it unless cutoff_hz is given too.
func ParseConfig(data []byte, sampleRate float64) (*Config, error) {
	var probe struct {
		SampleRate float64 `yaml:"sample_rate"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if probe.SampleRate != 0 {
		sampleRate = probe.SampleRate
	}

	cfg := DefaultConfig(sampleRate)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// YAML encodes the configuration with the same keys ParseConfig reads.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

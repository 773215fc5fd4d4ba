package cwlpack

import (
	"fmt"
	"time"

	"github.com/cwlpack/cwlpack/service/fetcher"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON, YAML, environment variables, etc. The
// zero-value is useful – all nested fields inherit their package defaults.

type Config struct {
	Fetcher FetcherConfig `json:"fetcher" yaml:"fetcher"`
	Output  OutputConfig  `json:"output" yaml:"output"`
}

type FetcherConfig struct {
	TimeoutMs      int `json:"timeoutMs" yaml:"timeoutMs"`
	RetryAttempts  int `json:"retryAttempts" yaml:"retryAttempts"`
	RetryBackoffMs int `json:"retryBackoffMs" yaml:"retryBackoffMs"`
}

type OutputConfig struct {
	AddIDs bool `json:"addIds" yaml:"addIds"`
}

// DefaultConfig returns a Config populated with the same default values the
// constructors use. Callers may modify the returned struct before passing it
// to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			TimeoutMs:      30_000,
			RetryAttempts:  1,
			RetryBackoffMs: 500,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Fetcher.TimeoutMs < 0 {
		return fmt.Errorf("fetcher.timeoutMs must be >= 0")
	}
	if c.Fetcher.RetryAttempts < 0 {
		return fmt.Errorf("fetcher.retryAttempts must be >= 0")
	}
	if c.Fetcher.RetryBackoffMs < 0 {
		return fmt.Errorf("fetcher.retryBackoffMs must be >= 0")
	}
	return nil
}

// NewFromConfig builds a Service from a validated Config. Additional options
// are applied after the config derived ones and take precedence.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	base := []Option{
		WithTimeout(time.Duration(config.Fetcher.TimeoutMs) * time.Millisecond),
		WithRetry(fetcher.RetryConfig{
			Attempts: config.Fetcher.RetryAttempts,
			Backoff:  time.Duration(config.Fetcher.RetryBackoffMs) * time.Millisecond,
		}),
		WithAddIDs(config.Output.AddIDs),
	}
	return New(append(base, options...)...), nil
}

package query

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/irstream/errs"
)

// Config is the file form of a Query.
//
// Bounds may be given either as millisecond epochs or as timestamps; when both are present
// the epoch value wins. The termination margin is a duration string such as "1m" or "500ms".
//
//	since: 2024-03-01T10:00:00Z
//	until: 2024-03-01T11:00:00Z
//	termination_margin: 2m
//	wildcards:
//	  - pattern: "*connection reset*"
//	  - pattern: "ERROR"
//	    case_sensitive: true
//	    partial_match: true
type Config struct {
	LowerBound        *int64          `yaml:"lower_bound"`
	UpperBound        *int64          `yaml:"upper_bound"`
	Since             *time.Time      `yaml:"since"`
	Until             *time.Time      `yaml:"until"`
	TerminationMargin *time.Duration  `yaml:"termination_margin"`
	Wildcards         []WildcardQuery `yaml:"wildcards"`
}

// LoadConfig reads a YAML query description from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses a YAML query description.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse query config: %w", errs.ErrInvalidQuery, err)
	}

	return &cfg, nil
}

// Builder returns a Builder initialized from the config.
func (c *Config) Builder() *Builder {
	b := NewBuilder()

	switch {
	case c.LowerBound != nil:
		b.SetLowerBound(*c.LowerBound)
	case c.Since != nil:
		b.SetLowerBound(c.Since.UnixMilli())
	}

	switch {
	case c.UpperBound != nil:
		b.SetUpperBound(*c.UpperBound)
	case c.Until != nil:
		b.SetUpperBound(c.Until.UnixMilli())
	}

	if c.TerminationMargin != nil {
		b.SetTerminationMargin(c.TerminationMargin.Milliseconds())
	}

	return b.AddWildcards(c.Wildcards...)
}

// Build creates the Query described by the config.
func (c *Config) Build() (*Query, error) {
	return c.Builder().Build()
}

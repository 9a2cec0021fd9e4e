package collision

import (
	"errors"
	"fmt"
)

type Config struct {
	// PublishEvents mirrors every delivered hit onto the event bus.
	PublishEvents bool   `json:"publish_events" yaml:"publish_events"`
	EventTopic    string `json:"event_topic" yaml:"event_topic"`
	// Workers runs the narrow phase of that many attackers in parallel. The
	// tester must then be safe for concurrent use. Dispatch order does not
	// depend on it.
	Workers int `json:"workers" yaml:"workers"`
}

func DefaultConfig() Config {
	return Config{EventTopic: "collision", Workers: 1}
}

func (c Config) Validate() error {
	var errs []error
	if c.PublishEvents && c.EventTopic == "" {
		errs = append(errs, ErrInvalidTopic)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}

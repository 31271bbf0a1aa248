package scraper

import (
	"fmt"
	"time"
)

// Config holds the settings for one scrape run. It is decoupled from Viper so
// the engine can be constructed and tested independently of how the values
// were loaded.
type Config struct {
	BaseURL     string
	Workers     int
	RunDuration time.Duration
	QueueDepth  int
	SettleDelay time.Duration
	JoinTimeout time.Duration
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("scraper.base_url must be set")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("scraper.workers must be > 0")
	}
	if c.RunDuration <= 0 {
		return fmt.Errorf("scraper.duration must be > 0")
	}
	if c.QueueDepth <= 0 {
		return fmt.Errorf("scraper.queue_depth must be > 0")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("scraper.settle_delay must be >= 0")
	}
	return nil
}

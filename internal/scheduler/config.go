package scheduler

import "time"

// Config controls scheduler intervals and timeouts.
type Config struct {
	TickInterval time.Duration
	JobTimeout   time.Duration
	LockTTL      time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickInterval: time.Hour,
		JobTimeout:   5 * time.Minute,
		LockTTL:      10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = defaults.TickInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

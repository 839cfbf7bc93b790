package documentprovider

import "time"

// Config configures the MongoDB-backed document provider.
type Config struct {
	ConnectionString string
	DatabaseName     string

	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = 10
	}
	return c
}

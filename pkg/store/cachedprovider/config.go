package cachedprovider

import "time"

// Config configures the Redis read-through cache decorator.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	return c
}

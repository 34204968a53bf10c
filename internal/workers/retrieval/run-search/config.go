package runsearch

import "time"

type Config struct {
	// RequestDeadline bounds one full orchestration, all iterations included.
	RequestDeadline time.Duration
	// DefaultWebLimit applies when the request names no web limit.
	DefaultWebLimit   int
	DefaultImageLimit int
	DefaultNewsLimit  int
	// DefaultFetchTimeout applies per fetch job when the request names none.
	DefaultFetchTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		RequestDeadline:     2 * time.Minute,
		DefaultWebLimit:     10,
		DefaultImageLimit:   5,
		DefaultNewsLimit:    5,
		DefaultFetchTimeout: 35 * time.Second,
	}
}

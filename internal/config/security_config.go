package config

import (
	"os"
	"strconv"
	"time"
)

type SecurityConfig interface {
	GetAPISecret() string
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetStateTTL() time.Duration
	GetStateCapacity() int
	GetStateEvictFraction() float64
	GetRateLimitMax() int
	GetRateLimitWindow() time.Duration
}

// Security holds secrets and the tunables for the CSRF state store and
// rate limiter. Observed deployments disagreed on the state store size
// (1k vs 10k) so it is configuration with a 10k default.
type Security struct {
	apiSecret       string
	sessionSecret   string
	stateCapacity   int
	rateLimitMax    int
	rateLimitWindow time.Duration
}

var _ SecurityConfig = Security{}

func loadSecurity() Security {
	return Security{
		apiSecret:       os.Getenv("API_SECRET"),
		sessionSecret:   os.Getenv("SESSION_SECRET"),
		stateCapacity:   intEnv("STATE_CAPACITY", 10000),
		rateLimitMax:    intEnv("RATE_LIMIT_MAX", 60),
		rateLimitWindow: durationEnv("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func (s Security) GetAPISecret() string {
	return s.apiSecret
}

func (s Security) GetSessionSecret() string {
	return s.sessionSecret
}

func (Security) GetSessionTTL() time.Duration {
	return 1 * time.Hour
}

func (Security) GetStateTTL() time.Duration {
	return 10 * time.Minute
}

func (s Security) GetStateCapacity() int {
	return s.stateCapacity
}

func (Security) GetStateEvictFraction() float64 {
	return 0.1
}

func (s Security) GetRateLimitMax() int {
	return s.rateLimitMax
}

func (s Security) GetRateLimitWindow() time.Duration {
	return s.rateLimitWindow
}

func intEnv(envVar string, defaultValue int) int {
	v := os.Getenv(envVar)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(envVar)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

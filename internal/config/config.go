// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var ErrInvalid = errors.New("config: invalid value")

// Config is the process configuration.
type Config struct {
	RedisURL     string        // empty disables Redis
	DatabaseURL  string        // empty disables persistence
	LogLevel     log.Level
	StateTTL     time.Duration // lifetime of a stored game
	SettleDelay  time.Duration // pause before a successful chain is collected
	ConcealDelay time.Duration // extra pause before a failed chain is turned back
	BotDelay     time.Duration // pause before a bot reveals
	SimWorkers   int
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		LogLevel:     log.InfoLevel,
		StateTTL:     time.Hour,
		SettleDelay:  1500 * time.Millisecond,
		ConcealDelay: 500 * time.Millisecond,
		BotDelay:     800 * time.Millisecond,
		SimWorkers:   runtime.NumCPU(),
	}
}

// Load reads a .env file when one exists and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, falling back to Defaults for unset
// variables.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Defaults()
	c.RedisURL, _ = lookup("REDIS_URL")
	c.DatabaseURL, _ = lookup("DATABASE_URL")

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: LOG_LEVEL=%q", ErrInvalid, v)
		}
		c.LogLevel = lvl
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"STATE_TTL", &c.StateTTL},
		{"SETTLE_DELAY", &c.SettleDelay},
		{"CONCEAL_DELAY", &c.ConcealDelay},
		{"BOT_DELAY", &c.BotDelay},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 {
			return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalid, d.key, v)
		}
		*d.dst = parsed
	}

	if v, ok := lookup("SIM_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%w: SIM_WORKERS=%q", ErrInvalid, v)
		}
		c.SimWorkers = n
	}
	return c, nil
}

// ApplyLogging sets the logrus level and formatter for the process.
func (c Config) ApplyLogging() {
	log.SetLevel(c.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

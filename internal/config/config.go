package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/vocabflash/internal/flashcard"
	"github.com/vytor/vocabflash/internal/logger"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	ImportWorkerCount int
	ImportQueueSize   int

	SessionLimit  int
	SessionMaxNew int

	MinQuality          int
	MaxQuality          int
	PassThreshold       int
	DefaultEaseFactor   float64
	MinEaseFactor       float64
	RelearnIntervalDays int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	defaults := flashcard.DefaultParams()
	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:vocabflash.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		ImportWorkerCount:   envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:     envIntOr("IMPORT_QUEUE_SIZE", 32),
		SessionLimit:        envIntOr("SESSION_LIMIT", 20),
		SessionMaxNew:       envIntOr("SESSION_MAX_NEW", 10),
		MinQuality:          envIntOr("MIN_QUALITY", defaults.MinQuality),
		MaxQuality:          envIntOr("MAX_QUALITY", defaults.MaxQuality),
		PassThreshold:       envIntOr("PASS_THRESHOLD", defaults.PassThreshold),
		DefaultEaseFactor:   envFloatOr("DEFAULT_EASE_FACTOR", defaults.DefaultEaseFactor),
		MinEaseFactor:       envFloatOr("MIN_EASE_FACTOR", defaults.MinEaseFactor),
		RelearnIntervalDays: envIntOr("RELEARN_INTERVAL_DAYS", defaults.RelearnIntervalDays),
	}
}

// SchedulerParams maps the scheduling settings onto flashcard.Params. The
// first and second success intervals are fixed by the algorithm.
func (c Config) SchedulerParams() flashcard.Params {
	p := flashcard.DefaultParams()
	p.MinQuality = c.MinQuality
	p.MaxQuality = c.MaxQuality
	p.PassThreshold = c.PassThreshold
	p.DefaultEaseFactor = c.DefaultEaseFactor
	p.MinEaseFactor = c.MinEaseFactor
	p.RelearnIntervalDays = c.RelearnIntervalDays
	return p
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.ImportWorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_WORKER_COUNT must be positive, got %d", c.ImportWorkerCount))
	}
	if c.ImportQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_QUEUE_SIZE must be positive, got %d", c.ImportQueueSize))
	}
	if c.SessionLimit <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_LIMIT must be positive, got %d", c.SessionLimit))
	}
	if c.SessionMaxNew < 0 {
		errs = append(errs, fmt.Errorf("SESSION_MAX_NEW must not be negative, got %d", c.SessionMaxNew))
	}
	if err := c.SchedulerParams().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler settings (MIN_QUALITY, MAX_QUALITY, PASS_THRESHOLD, DEFAULT_EASE_FACTOR, MIN_EASE_FACTOR, RELEARN_INTERVAL_DAYS): %w", err))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %.2f", key, v, def)
	}
	return def
}

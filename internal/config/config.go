// Package config reads graphleague settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/llm"
	"github.com/Benny93/graphleague-go/internal/narrate"
	"github.com/Benny93/graphleague-go/internal/query"
	"github.com/Benny93/graphleague-go/internal/storage"
)

// DefaultEnvFile is read when present; its absence is not an error.
const DefaultEnvFile = ".env"

type Config struct {
	// Storage
	Backend    string
	DataPath   string
	BadgerPath string
	Neo4j      storage.Neo4jConfig

	// Generation
	GeminiAPIKey        string
	GeminiModel         string
	ClassifyTemperature float64
	NarrateTemperature  float64
	RetryAttempts       int
	RetryDelay          time.Duration
	RetryMaxDelay       time.Duration
	ClassifyTimeout     time.Duration

	// Query engine
	QueryTimeout    time.Duration
	ArchetypeWeight int
	MechanicWeight  int
	CounterLimit    int
	SearchLimit     int

	// Server
	HTTPAddr string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads envFile into the process environment, without overriding
// variables that are already set, and builds a Config from it. An empty
// envFile means DefaultEnvFile, which may be missing; a named file must exist.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}

	env := &envReader{}
	cfg := &Config{
		Backend:    getEnv("GRAPHLEAGUE_BACKEND", storage.BackendMemory),
		DataPath:   getEnv("GRAPHLEAGUE_DATA", "data"),
		BadgerPath: getEnv("GRAPHLEAGUE_BADGER_PATH", ".graphleague/badger"),
		Neo4j: storage.Neo4jConfig{
			URI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
			User:     getEnv("NEO4J_USER", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", ""),
			Database: getEnv("NEO4J_DATABASE", "neo4j"),
		},

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:         getEnv("GEMINI_MODEL", llm.DefaultGeminiModel),
		ClassifyTemperature: env.getFloat("GRAPHLEAGUE_CLASSIFY_TEMPERATURE", 0.3),
		NarrateTemperature:  env.getFloat("GRAPHLEAGUE_NARRATE_TEMPERATURE", 0.2),
		RetryAttempts:       env.getInt("GRAPHLEAGUE_RETRY_ATTEMPTS", 8),
		RetryDelay:          env.getDuration("GRAPHLEAGUE_RETRY_DELAY", time.Second),
		RetryMaxDelay:       env.getDuration("GRAPHLEAGUE_RETRY_MAX_DELAY", 30*time.Second),
		ClassifyTimeout:     env.getDuration("GRAPHLEAGUE_CLASSIFY_TIMEOUT", 60*time.Second),

		QueryTimeout:    env.getDuration("GRAPHLEAGUE_QUERY_TIMEOUT", 10*time.Second),
		ArchetypeWeight: env.getInt("GRAPHLEAGUE_ARCHETYPE_WEIGHT", 1),
		MechanicWeight:  env.getInt("GRAPHLEAGUE_MECHANIC_WEIGHT", 2),
		CounterLimit:    env.getInt("GRAPHLEAGUE_COUNTER_LIMIT", 5),
		SearchLimit:     env.getInt("GRAPHLEAGUE_SEARCH_LIMIT", 5),

		HTTPAddr: getEnv("GRAPHLEAGUE_HTTP_ADDR", ":8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings can be used together.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(storage.Backends(), c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q (want one of %v)", c.Backend, storage.Backends()))
	}
	if c.Backend == storage.BackendNeo4j && c.Neo4j.Password == "" {
		errs = append(errs, errors.New("NEO4J_PASSWORD is required for the neo4j backend"))
	}

	positive := []struct {
		name  string
		value int
	}{
		{"GRAPHLEAGUE_RETRY_ATTEMPTS", c.RetryAttempts},
		{"GRAPHLEAGUE_ARCHETYPE_WEIGHT", c.ArchetypeWeight},
		{"GRAPHLEAGUE_MECHANIC_WEIGHT", c.MechanicWeight},
		{"GRAPHLEAGUE_COUNTER_LIMIT", c.CounterLimit},
		{"GRAPHLEAGUE_SEARCH_LIMIT", c.SearchLimit},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.value))
		}
	}

	if c.RetryDelay < 0 || c.RetryMaxDelay < c.RetryDelay {
		errs = append(errs, fmt.Errorf("retry delays out of order: %s then up to %s", c.RetryDelay, c.RetryMaxDelay))
	}

	return errors.Join(errs...)
}

// StorageOptions selects the configured backend.
func (c *Config) StorageOptions(readOnly bool, logger *zap.Logger) storage.Options {
	return storage.Options{
		Backend:  c.Backend,
		Path:     c.BadgerPath,
		ReadOnly: readOnly,
		Neo4j:    c.Neo4j,
		Logger:   logger,
	}
}

// QueryConfig returns the engine settings.
func (c *Config) QueryConfig() query.Config {
	cfg := query.DefaultConfig()
	cfg.ArchetypeWeight = c.ArchetypeWeight
	cfg.MechanicWeight = c.MechanicWeight
	cfg.SearchLimit = c.SearchLimit
	cfg.Timeout = c.QueryTimeout
	return cfg
}

// ClassifierConfig returns the classifier settings.
func (c *Config) ClassifierConfig() intent.ClassifierConfig {
	cfg := intent.DefaultClassifierConfig()
	cfg.Retry.MaxAttempts = c.RetryAttempts
	cfg.Retry.InitialDelay = c.RetryDelay
	cfg.Retry.MaxDelay = c.RetryMaxDelay
	cfg.Timeout = c.ClassifyTimeout
	cfg.Temperature = float32(c.ClassifyTemperature)
	return cfg
}

// NarrateConfig returns the narrator settings. The narrator keeps its own
// attempt budget and shares the retry delays.
func (c *Config) NarrateConfig() narrate.Config {
	cfg := narrate.DefaultConfig()
	cfg.Retry.InitialDelay = c.RetryDelay
	cfg.Temperature = float32(c.NarrateTemperature)
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// envReader parses typed variables and collects the malformed ones.
type envReader struct {
	errs []error
}

func (r *envReader) getInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) getFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func (r *envReader) getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

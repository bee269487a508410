package vecdb

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/vecdbx/vecdb/internal/logging"
	"github.com/vecdbx/vecdb/pkg/index"
)

// Config holds the store's environment-driven settings, trimmed to the
// fields this in-memory store actually has a use for — CORS, health
// checks, and embedding-provider credentials belong to an HTTP layer
// that isn't part of this module.
type Config struct {
	PersistencePath string
	DefaultIndex    IndexType
	LSHNumHashes    int
	LSHNumBuckets   int
	LogLevel        logging.Level
}

// DefaultConfig returns the baseline settings used when nothing in the
// environment overrides them.
func DefaultConfig() Config {
	return Config{
		PersistencePath: "data/vector_db.json",
		DefaultIndex:    IndexLinear,
		LSHNumHashes:    10,
		LSHNumBuckets:   100,
		LogLevel:        logging.LevelInfo,
	}
}

// LoadConfig reads settings from the environment, optionally preloaded
// from a .env file via godotenv, falling back to DefaultConfig's values
// for anything unset or malformed. A missing .env file is not an error:
// godotenv.Load is best-effort here, since most deployments configure
// purely through the environment.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := os.Getenv("VECDB_PERSISTENCE_PATH"); v != "" {
		cfg.PersistencePath = v
	}
	if v := os.Getenv("VECDB_DEFAULT_INDEX_TYPE"); v != "" {
		if it := IndexType(v); it.valid() {
			cfg.DefaultIndex = it
		}
	}
	if v := os.Getenv("VECDB_LSH_NUM_HASHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LSHNumHashes = n
		}
	}
	if v := os.Getenv("VECDB_LSH_NUM_BUCKETS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LSHNumBuckets = n
		}
	}
	if v := os.Getenv("VECDB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLevel(v)
	}

	return cfg
}

func parseLevel(v string) logging.Level {
	switch v {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// indexParams derives the pkg/index.Params an index built under this
// config should use.
func (c Config) indexParams() index.Params {
	return index.Params{NumHashes: c.LSHNumHashes, NumBuckets: c.LSHNumBuckets}
}

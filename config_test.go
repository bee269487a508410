package vecdb

import (
	"testing"

	"github.com/vecdbx/vecdb/internal/logging"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PersistencePath != "data/vector_db.json" {
		t.Errorf("PersistencePath = %q, want data/vector_db.json", cfg.PersistencePath)
	}
	if cfg.DefaultIndex != IndexLinear {
		t.Errorf("DefaultIndex = %q, want linear", cfg.DefaultIndex)
	}
	if cfg.LSHNumHashes != 10 {
		t.Errorf("LSHNumHashes = %d, want 10", cfg.LSHNumHashes)
	}
	if cfg.LSHNumBuckets != 100 {
		t.Errorf("LSHNumBuckets = %d, want 100", cfg.LSHNumBuckets)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Errorf("LogLevel = %v, want LevelInfo", cfg.LogLevel)
	}
}

func TestLoadConfigReadsEnvOverrides(t *testing.T) {
	for k, v := range map[string]string{
		"VECDB_PERSISTENCE_PATH":  "/tmp/custom.json",
		"VECDB_DEFAULT_INDEX_TYPE": "lsh",
		"VECDB_LSH_NUM_HASHES":    "20",
		"VECDB_LSH_NUM_BUCKETS":   "200",
		"VECDB_LOG_LEVEL":         "debug",
	} {
		t.Setenv(k, v)
	}

	cfg := LoadConfig()
	if cfg.PersistencePath != "/tmp/custom.json" {
		t.Errorf("PersistencePath = %q", cfg.PersistencePath)
	}
	if cfg.DefaultIndex != IndexLSH {
		t.Errorf("DefaultIndex = %q", cfg.DefaultIndex)
	}
	if cfg.LSHNumHashes != 20 {
		t.Errorf("LSHNumHashes = %d", cfg.LSHNumHashes)
	}
	if cfg.LSHNumBuckets != 200 {
		t.Errorf("LSHNumBuckets = %d", cfg.LSHNumBuckets)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadConfigIgnoresInvalidOverrides(t *testing.T) {
	t.Setenv("VECDB_DEFAULT_INDEX_TYPE", "not-a-real-type")
	t.Setenv("VECDB_LSH_NUM_HASHES", "not-a-number")
	t.Setenv("VECDB_LSH_NUM_BUCKETS", "-5")

	cfg := LoadConfig()
	if cfg.DefaultIndex != IndexLinear {
		t.Errorf("expected an invalid index type override to be ignored, got %q", cfg.DefaultIndex)
	}
	if cfg.LSHNumHashes != 10 {
		t.Errorf("expected an unparseable override to be ignored, got %d", cfg.LSHNumHashes)
	}
	if cfg.LSHNumBuckets != 100 {
		t.Errorf("expected a non-positive override to be ignored, got %d", cfg.LSHNumBuckets)
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goldrush.ai/internal/persistence/indexdb"
)

// openRunIndex opens the dig index for a run. GR_INDEX_BACKEND=none turns it
// off without a flag.
func openRunIndex(runDir string, disableDB bool) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("GR_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}
	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(runDir, "index", "digs.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported GR_INDEX_BACKEND: %s", backend)
	}
}

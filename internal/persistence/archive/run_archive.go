package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"goldrush.ai/internal/persistence/snapshot"
)

type RunArchiveMeta struct {
	RunID     string `json:"run_id"`
	EndTick   uint64 `json:"end_tick"`
	Seed      int64  `json:"seed"`
	Reason    string `json:"reason"`
	Gold      uint64 `json:"gold"`
	Dump      string `json:"dump"`
	CreatedAt string `json:"created_at"`
}

// ArchiveRunDump copies the final dump of a run into
// `runDir/archives/tick_<NNNNNN>/` next to a meta.json describing why the run
// ended. It returns the archived dump path.
func ArchiveRunDump(runDir, dumpPath string, d snapshot.DumpV1, meta RunArchiveMeta) (string, error) {
	archiveDir := filepath.Join(runDir, "archives", fmt.Sprintf("tick_%06d", d.Header.Tick))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(archiveDir, filepath.Base(dumpPath))
	if err := copyFile(dumpPath, dst); err != nil {
		return "", err
	}

	meta.RunID = d.Header.RunID
	meta.EndTick = d.Header.Tick
	meta.Dump = filepath.Base(dst)
	meta.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return dst, err
	}
	if err := os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644); err != nil {
		return dst, err
	}
	return dst, nil
}

// ReadMeta loads the meta.json written next to an archived dump.
func ReadMeta(archivedDump string) (RunArchiveMeta, error) {
	var m RunArchiveMeta
	b, err := os.ReadFile(filepath.Join(filepath.Dir(archivedDump), "meta.json"))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("meta.json: %w", err)
	}
	return m, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

package archive

import (
	"os"
	"path/filepath"
	"testing"

	"goldrush.ai/internal/persistence/snapshot"
)

func TestArchiveRunDump_CopiesDumpAndMeta(t *testing.T) {
	runDir := filepath.Join(t.TempDir(), "runs", "r1")

	src := filepath.Join(runDir, "dumps", "12.dump.zst")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatalf("mkdir dumps: %v", err)
	}
	want := []byte("dummy")
	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	d := snapshot.DumpV1{Header: snapshot.Header{Version: snapshot.Version, RunID: "r1", Tick: 12}}
	archived, err := ArchiveRunDump(runDir, src, d, RunArchiveMeta{Seed: 42, Reason: "depleted", Gold: 900})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived != filepath.Join(runDir, "archives", "tick_000012", "12.dump.zst") {
		t.Fatalf("unexpected archive path: %s", archived)
	}

	got, err := os.ReadFile(archived)
	if err != nil {
		t.Fatalf("read archived: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("archived content mismatch: %q", got)
	}

	meta, err := ReadMeta(archived)
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if meta.RunID != "r1" || meta.EndTick != 12 || meta.Seed != 42 || meta.Reason != "depleted" || meta.Gold != 900 || meta.Dump != "12.dump.zst" {
		t.Fatalf("meta mismatch: %+v", meta)
	}
	if meta.CreatedAt == "" {
		t.Fatalf("missing created_at")
	}
}

func TestArchiveRunDump_MissingSource(t *testing.T) {
	d := snapshot.DumpV1{Header: snapshot.Header{Tick: 1}}
	if _, err := ArchiveRunDump(t.TempDir(), "/nonexistent/1.dump.zst", d, RunArchiveMeta{}); err == nil {
		t.Fatalf("expected error for missing dump")
	}
}

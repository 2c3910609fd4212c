package main

import (
	"bytes"
	"context"
	"database/sql"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"goldrush.ai/internal/persistence/archive"
	persistlog "goldrush.ai/internal/persistence/log"
	"goldrush.ai/internal/persistence/s3mirror"
	"goldrush.ai/internal/persistence/snapshot"
	"goldrush.ai/internal/sim/catalogs"
	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/table"
	"goldrush.ai/internal/sim/tuning"
)

func testCatalog(t *testing.T) *catalogs.ToolCatalog {
	t.Helper()
	cat := catalogs.New(table.SequenceIDs(100, 101))
	cat.Create(model.ToolMasterBody{Name: "WOOD_PICKAXE", Price: 10, Efficiency: 50})
	cat.Create(model.ToolMasterBody{Name: "IRON_PICKAXE", Price: 120, Efficiency: 100})
	return cat
}

func TestRunnerRunsTicksAndWritesArtifacts(t *testing.T) {
	runDir := t.TempDir()
	tune := tuning.Defaults()
	tune.TickMs = 1
	tune.World.WorkerNames = []string{"ada", "bo"}

	var buf bytes.Buffer
	r, err := newRunner(runConfig{
		RunID:       "run_test",
		RunDir:      runDir,
		Tune:        tune,
		StarterTool: "iron_pickax",
		MaxTicks:    3,
	}, testCatalog(t), log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	for _, w := range r.workers {
		tool, ok := r.store.ToolOf(w)
		if !ok || tool.MasterID != 101 {
			t.Fatalf("worker %s not equipped with IRON_PICKAXE: ok=%v tool=%+v", w.Name, ok, tool)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := r.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if r.tick != 3 {
		t.Fatalf("expected 3 ticks, got %d", r.tick)
	}
	if !strings.Contains(buf.String(), "using IRON_PICKAXE") {
		t.Fatalf("fuzzy tool resolution not logged: %q", buf.String())
	}

	files, err := persistlog.DigFiles(filepath.Join(runDir, "digs"))
	if err != nil || len(files) == 0 {
		t.Fatalf("dig log files: %v %v", files, err)
	}
	var digs int
	for _, f := range files {
		entries, err := persistlog.ReadDigs(f)
		if err != nil {
			t.Fatalf("ReadDigs: %v", err)
		}
		digs += len(entries)
	}
	if digs != 6 {
		t.Fatalf("expected 6 dig entries, got %d", digs)
	}

	d, err := snapshot.ReadDump(snapshot.Path(filepath.Join(runDir, "dumps"), 3))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if len(d.Workers) != 2 {
		t.Fatalf("dump workers: %+v", d.Workers)
	}
	for _, w := range d.Workers {
		if w.Health != 97 {
			t.Fatalf("worker %s health=%d want 97", w.Name, w.Health)
		}
	}
	if len(d.Resources) != 1 || uint64(tune.World.Deposit-d.Resources[0].DepositAmount) != r.gold {
		t.Fatalf("gold %d does not match deposit delta: %+v", r.gold, d.Resources)
	}

	meta, err := archive.ReadMeta(filepath.Join(runDir, "archives", "tick_000003", "3.dump.zst"))
	if err != nil {
		t.Fatalf("archive meta: %v", err)
	}
	if meta.Reason != "max_ticks" || meta.Gold != r.gold || meta.RunID != "run_test" {
		t.Fatalf("archive meta mismatch: %+v", meta)
	}

	db, err := sql.Open("sqlite", filepath.Join(runDir, "index", "digs.sqlite"))
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM digs`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 indexed digs, got %d", n)
	}
}

func TestRunnerStopsWhenWorkersExhausted(t *testing.T) {
	tune := tuning.Defaults()
	tune.TickMs = 1
	tune.World.WorkerHealth = 2
	tune.World.WorkerNames = []string{"ada"}

	r, err := newRunner(runConfig{RunID: "r", RunDir: t.TempDir(), Tune: tune, DisableDB: true},
		catalogs.New(table.RandomIDs(1)), log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	defer r.close()
	if r.tick != 2 || r.reason != "exhausted" {
		t.Fatalf("expected to stop after 2 ticks, got tick=%d reason=%q", r.tick, r.reason)
	}
	if r.workers[0].Health != 0 {
		t.Fatalf("worker health=%d", r.workers[0].Health)
	}
}

func TestRunnerHonorsCancel(t *testing.T) {
	tune := tuning.Defaults()
	tune.TickMs = 60000
	r, err := newRunner(runConfig{RunID: "r", RunDir: t.TempDir(), Tune: tune, DisableDB: true},
		catalogs.New(table.RandomIDs(1)), log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStartProfileRejectsUnknownMode(t *testing.T) {
	if _, err := startProfile("trace", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	stop, err := startProfile("", t.TempDir())
	if err != nil {
		t.Fatalf("empty mode: %v", err)
	}
	stop()
}

type recordingUploader struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (u *recordingUploader) PutFile(_ context.Context, key, _ string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.keys[key] = true
	return nil
}

func TestRunnerMirrorsArtifacts(t *testing.T) {
	dataDir := t.TempDir()
	runDir := filepath.Join(dataDir, "runs", "m")
	up := &recordingUploader{keys: map[string]bool{}}
	mirror := s3mirror.New(up, dataDir, s3mirror.Options{Workers: 1}, nil)

	tune := tuning.Defaults()
	tune.TickMs = 1
	r, err := newRunner(runConfig{RunID: "m", RunDir: runDir, Tune: tune, MaxTicks: 2, DisableDB: true, Mirror: mirror},
		testCatalog(t), log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := r.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	mirror.Close()

	for _, want := range []string{
		"runs/m/dumps/2.dump.zst",
		"runs/m/archives/tick_000002/2.dump.zst",
		"runs/m/archives/tick_000002/meta.json",
	} {
		if !up.keys[want] {
			t.Fatalf("missing upload %s in %v", want, up.keys)
		}
	}
	var segments int
	for k := range up.keys {
		if strings.HasPrefix(k, "runs/m/digs/digs-") {
			segments++
		}
	}
	if segments == 0 {
		t.Fatalf("no dig segment uploaded: %v", up.keys)
	}
}

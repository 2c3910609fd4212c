package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"goldrush.ai/internal/persistence/archive"
	"goldrush.ai/internal/persistence/indexdb"
	persistlog "goldrush.ai/internal/persistence/log"
	"goldrush.ai/internal/persistence/s3mirror"
	"goldrush.ai/internal/persistence/snapshot"
	"goldrush.ai/internal/sim/catalogs"
	"goldrush.ai/internal/sim/dig"
	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/store"
	"goldrush.ai/internal/sim/tuning"
)

type runConfig struct {
	RunID       string
	RunDir      string
	Tune        tuning.Tuning
	StarterTool string
	MaxTicks    int
	DisableDB   bool
	// Mirror, when set, receives every artifact the run finishes writing.
	Mirror *s3mirror.Mirror
}

// runner owns the store for one process lifetime and drives digs from a
// ticker. Nothing it writes is read back on the next start.
type runner struct {
	cfg    runConfig
	logger *log.Logger

	store  *store.Store
	engine *dig.Engine
	digLog *persistlog.DigLogger
	idx    *indexdb.SQLiteIndex

	resource model.Resource
	workers  []model.Worker

	tick   uint64
	gold   uint64
	reason string
}

func newRunner(cfg runConfig, cat *catalogs.ToolCatalog, logger *log.Logger) (*runner, error) {
	idx, err := openRunIndex(cfg.RunDir, cfg.DisableDB)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if idx != nil {
		if err := idx.UpsertCatalog(cat); err != nil {
			logger.Printf("index: upsert catalog: %v", err)
		}
	}

	r := &runner{
		cfg:    cfg,
		logger: logger,
		store:  store.New(store.Config{Catalog: cat, Seed: cfg.Tune.Seed}),
		digLog: persistlog.NewDigLogger(cfg.RunDir),
		idx:    idx,
	}
	if cfg.Mirror != nil {
		r.digLog.OnSegmentClosed(cfg.Mirror.Enqueue)
	}
	sinks := []dig.Sink{r.digLog}
	if idx != nil {
		sinks = append(sinks, idx)
	}
	r.engine = dig.New(r.store, dig.Config{
		Dig:    cfg.Tune.Dig,
		Logger: logger,
		Sinks:  sinks,
	})
	r.seed()
	return r, nil
}

func (r *runner) seed() {
	world := r.cfg.Tune.World
	r.resource = r.store.CreateResource(model.ResourceBody{DepositAmount: world.Deposit})

	var master model.ToolMaster
	haveTool := false
	if r.cfg.StarterTool != "" {
		master, haveTool = r.store.SuggestToolMaster(r.cfg.StarterTool)
		switch {
		case !haveTool:
			r.logger.Printf("starter tool %q not in catalog; workers start empty-handed", r.cfg.StarterTool)
		case master.Name != r.cfg.StarterTool:
			r.logger.Printf("starter tool %q not found; using %s", r.cfg.StarterTool, master.Name)
		}
	}

	for _, name := range world.WorkerNames {
		body := model.WorkerBody{Name: name, Health: world.WorkerHealth}
		if haveTool {
			t := r.store.CreateTool(model.ToolBody{AttritionRate: model.FullCondition, MasterID: master.ID})
			body.ToolID = t.ID
		}
		r.workers = append(r.workers, r.store.CreateWorker(body))
	}
	r.logger.Printf("seeded run=%s resource=%d deposit=%d workers=%d tool=%q",
		r.cfg.RunID, r.resource.ID, r.resource.DepositAmount, len(r.workers), master.Name)
}

// step lets every worker dig once. It reports whether the run is over.
func (r *runner) step() bool {
	r.tick++
	var tickGold uint64
	for i, w := range r.workers {
		stats := r.engine.TryDig(r.resource, w)
		r.workers[i] = stats.Worker
		tickGold += uint64(stats.Gold.Amount)
		r.resource.DepositAmount = stats.Remaining
	}
	r.gold += tickGold
	r.logger.Printf("tick=%d time=%s gold=%d total=%d remaining=%d",
		r.tick, time.Now().UTC().Format(time.RFC3339), tickGold, r.gold, r.resource.DepositAmount)

	if every := r.cfg.Tune.DumpEveryTicks; every > 0 && r.tick%uint64(every) == 0 {
		if _, _, err := r.dump(); err != nil {
			r.logger.Printf("dump: %v", err)
		}
	}
	return r.finished()
}

func (r *runner) finished() bool {
	if r.cfg.MaxTicks > 0 && r.tick >= uint64(r.cfg.MaxTicks) {
		r.reason = "max_ticks"
		return true
	}
	if r.resource.DepositAmount == 0 {
		r.logger.Printf("resource %d depleted", r.resource.ID)
		r.reason = "depleted"
		return true
	}
	for _, w := range r.workers {
		if w.Health > 0 {
			return false
		}
	}
	r.logger.Printf("all workers exhausted")
	r.reason = "exhausted"
	return true
}

func (r *runner) run(ctx context.Context) error {
	if len(r.workers) == 0 {
		return fmt.Errorf("no workers configured")
	}
	t := time.NewTicker(r.cfg.Tune.TickDuration())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.reason = "canceled"
			return ctx.Err()
		case <-t.C:
			if r.step() {
				return nil
			}
		}
	}
}

func (r *runner) dump() (string, snapshot.DumpV1, error) {
	d := r.store.Export(r.cfg.RunID, r.tick)
	path := snapshot.Path(filepath.Join(r.cfg.RunDir, "dumps"), r.tick)
	if err := snapshot.WriteDump(path, d); err != nil {
		return "", d, err
	}
	r.idx.RecordDump(path, d)
	r.cfg.Mirror.Enqueue(path)
	return path, d, nil
}

// close writes and archives the final dump and flushes every sink.
func (r *runner) close() error {
	var first error
	if path, d, err := r.dump(); err != nil {
		first = fmt.Errorf("final dump: %w", err)
	} else {
		archived, err := archive.ArchiveRunDump(r.cfg.RunDir, path, d, archive.RunArchiveMeta{
			Seed:   r.cfg.Tune.Seed,
			Reason: r.reason,
			Gold:   r.gold,
		})
		if err != nil {
			r.logger.Printf("archive dump: %v", err)
		} else {
			r.logger.Printf("dump archived: %s", archived)
			r.cfg.Mirror.Enqueue(archived)
			r.cfg.Mirror.Enqueue(filepath.Join(filepath.Dir(archived), "meta.json"))
		}
	}
	if err := r.digLog.Close(); err != nil && first == nil {
		first = err
	}
	if r.idx != nil {
		if st := r.idx.Stats(); st.DropDigTotal > 0 {
			r.logger.Printf("index dropped %d digs", st.DropDigTotal)
		}
		if err := r.idx.Close(); err != nil && first == nil {
			first = err
		}
		r.cfg.Mirror.Enqueue(filepath.Join(r.cfg.RunDir, "index", "digs.sqlite"))
	}
	return first
}

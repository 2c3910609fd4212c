package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"goldrush.ai/internal/sim/catalogs"
	"goldrush.ai/internal/sim/table"
	"goldrush.ai/internal/sim/tuning"
)

func main() {
	var (
		configDir   = flag.String("configs", "./configs", "config directory")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		catalogPath = flag.String("catalog", "", "path to tools.json (default: <configs>/tools.json)")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		runID       = flag.String("run", "run_1", "run id (artifacts go to <data>/runs/<run>)")
		starterTool = flag.String("tool", "", "catalog tool handed to every worker (overrides tuning world.starter_tool)")
		maxTicks    = flag.Int("ticks", 0, "stop after this many ticks (0 = until the deposit or the workers are exhausted)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite dig index")
		profileMode = flag.String("profile", "", "write a pprof profile into the run dir: cpu|mem (empty to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[digsim] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	cp := strings.TrimSpace(*catalogPath)
	if cp == "" {
		cp = filepath.Join(*configDir, "tools.json")
	}
	// Catalog ids come from their own source so a catalog edit does not
	// reshuffle world ids for the same seed.
	cat, err := catalogs.Load(cp, table.RandomIDs(tune.Seed^0x7461626c))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load catalog: %v", err)
		}
		logger.Printf("tool catalog not found (%s); workers start empty-handed", cp)
		cat = catalogs.New(table.RandomIDs(tune.Seed))
	}

	runDir := filepath.Join(*dataDir, "runs", *runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		logger.Fatalf("run dir: %v", err)
	}

	stopProfile, err := startProfile(*profileMode, runDir)
	if err != nil {
		logger.Fatalf("profile: %v", err)
	}
	defer stopProfile()

	mirror, err := buildMirror(*dataDir, logger)
	if err != nil {
		logger.Fatalf("mirror: %v", err)
	}
	defer mirror.Close()

	tool := strings.TrimSpace(*starterTool)
	if tool == "" {
		tool = tune.World.StarterTool
	}

	r, err := newRunner(runConfig{
		RunID:       *runID,
		RunDir:      runDir,
		Tune:        tune,
		StarterTool: tool,
		MaxTicks:    *maxTicks,
		DisableDB:   *disableDB,
		Mirror:      mirror,
	}, cat, logger)
	if err != nil {
		logger.Fatalf("init run: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runErr := r.run(ctx)
	if err := r.close(); err != nil {
		logger.Printf("close run: %v", err)
	}
	mirror.Close()
	if st := mirror.Stats(); st.Enqueued > 0 {
		logger.Printf("mirror uploaded=%d failed=%d dropped=%d", st.Uploaded, st.Failed, st.Dropped)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Printf("run stopped: %v", runErr)
		stopProfile()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"goldrush.ai/internal/persistence/archive"
	"goldrush.ai/internal/persistence/indexdb"
	persistlog "goldrush.ai/internal/persistence/log"
	"goldrush.ai/internal/persistence/snapshot"
	"goldrush.ai/internal/sim/dig"
)

func main() {
	var (
		dumpPath = flag.String("dump", "", "path to .dump.zst")
		digsDir  = flag.String("digs", "", "dir containing digs-*.jsonl.zst (optional)")
		dbPath   = flag.String("db", "", "sqlite dig index path (optional)")
		limit    = flag.Int("limit", 20, "result limit for -db")
	)
	flag.Parse()

	if *dumpPath == "" {
		fmt.Fprintln(os.Stderr, "missing -dump")
		os.Exit(2)
	}

	d, err := snapshot.ReadDump(*dumpPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read dump:", err)
		os.Exit(1)
	}
	fmt.Printf("dump v%d run=%s tick=%d resources=%d workers=%d tools=%d tool_masters=%d catalog=%s\n",
		d.Header.Version, d.Header.RunID, d.Header.Tick,
		len(d.Resources), len(d.Workers), len(d.Tools), len(d.ToolMasters), shortDigest(d.CatalogDigest))
	if m, err := archive.ReadMeta(*dumpPath); err == nil {
		fmt.Printf("archived reason=%s seed=%d gold=%d at=%s\n", m.Reason, m.Seed, m.Gold, m.CreatedAt)
	}
	for _, w := range d.Workers {
		fmt.Printf("  worker id=%d name=%s health=%d tool=%d\n", w.ID, w.Name, w.Health, w.ToolID)
	}

	if *digsDir != "" {
		files, err := persistlog.DigFiles(*digsDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list digs:", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "no dig files found in", *digsDir)
			os.Exit(1)
		}
		var entries []dig.LogEntry
		for _, path := range files {
			es, err := persistlog.ReadDigs(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, "read digs:", err)
				os.Exit(1)
			}
			entries = append(entries, es...)
		}
		sum, err := verifyDigs(entries, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "verify:", err)
			os.Exit(1)
		}
		fmt.Printf("digs ok: entries=%d gold=%d shortfalls=%d tools_created=%d\n",
			sum.Entries, sum.Gold, sum.Shortfalls, sum.ToolsCreated)
	}

	if *dbPath != "" {
		db, err := sql.Open("sqlite", *dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open:", err)
			os.Exit(1)
		}
		defer db.Close()
		totals, err := indexdb.GoldByWorker(context.Background(), db, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		for _, t := range totals {
			_ = enc.Encode(t)
		}
	}
}

func shortDigest(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	if s == "" {
		return "-"
	}
	return s
}

package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"goldrush.ai/internal/persistence/snapshot"
	"goldrush.ai/internal/sim/catalogs"
	"goldrush.ai/internal/sim/dig"
)

// SQLiteIndex is a write-behind read model of a run. Writes are queued and
// applied by one goroutine in batched transactions; when the queue is full
// entries are dropped and counted. The JSONL dig log stays the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu orders sends against Close so a late write is dropped instead of
	// hitting a closed channel.
	mu     sync.RWMutex
	closed bool

	dropDig  atomic.Uint64
	dropDump atomic.Uint64
}

type reqKind int

const (
	reqDig reqKind = iota + 1
	reqDump
)

type req struct {
	kind reqKind

	dig  dig.LogEntry
	dump dumpRow
}

type dumpRow struct {
	Tick        uint64
	Path        string
	Resources   int
	Workers     int
	Tools       int
	ToolMasters int
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropDigTotal  uint64 `json:"drop_dig_total"`
	DropDumpTotal uint64 `json:"drop_dump_total"`
}

const defaultQueue = 65536

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, defaultQueue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tool_masters (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			price INTEGER NOT NULL,
			efficiency INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS digs (
			seq INTEGER PRIMARY KEY,
			at TEXT NOT NULL,
			resource_id INTEGER NOT NULL,
			worker_id INTEGER NOT NULL,
			tool_id INTEGER NOT NULL,
			tool_created INTEGER NOT NULL,
			tool_condition INTEGER NOT NULL,
			tool_efficiency INTEGER NOT NULL,
			worker_health INTEGER NOT NULL,
			gold INTEGER NOT NULL,
			remaining INTEGER NOT NULL,
			shortfall INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_digs_worker_seq ON digs(worker_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_digs_resource_seq ON digs(resource_id, seq);`,
		`CREATE TABLE IF NOT EXISTS dumps (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			resources INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			tools INTEGER NOT NULL,
			tool_masters INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains the queue and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropDigTotal:  s.dropDig.Load(),
		DropDumpTotal: s.dropDump.Load(),
	}
}

// WriteDig satisfies dig.Sink. It never blocks the simulation and is a no-op
// once Close has started.
func (s *SQLiteIndex) WriteDig(e dig.LogEntry) error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- req{kind: reqDig, dig: e}:
	default:
		s.dropDig.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordDump(path string, d snapshot.DumpV1) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	r := dumpRow{
		Tick:        d.Header.Tick,
		Path:        path,
		Resources:   len(d.Resources),
		Workers:     len(d.Workers),
		Tools:       len(d.Tools),
		ToolMasters: len(d.ToolMasters),
	}
	select {
	case s.ch <- req{kind: reqDump, dump: r}:
	default:
		s.dropDump.Add(1)
	}
}

// UpsertCatalog writes the tool catalog synchronously; it runs once at
// startup, before digs are queued.
func (s *SQLiteIndex) UpsertCatalog(cat *catalogs.ToolCatalog) error {
	if s == nil || cat == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('catalog_digest',?)`, cat.Digest); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO tool_masters(id,name,price,efficiency,updated_at) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range cat.All() {
		if _, err := stmt.Exec(int64(m.ID), m.Name, int64(m.Price), int64(m.Efficiency), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertDig, _ := s.db.Prepare(`INSERT OR REPLACE INTO digs(seq,at,resource_id,worker_id,tool_id,tool_created,tool_condition,tool_efficiency,worker_health,gold,remaining,shortfall,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertDump, _ := s.db.Prepare(`INSERT OR REPLACE INTO dumps(tick,path,resources,workers,tools,tool_masters) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insertDig != nil {
			_ = insertDig.Close()
		}
		if insertDump != nil {
			_ = insertDump.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 1000
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqDig:
			e := r.dig
			if insertDig == nil {
				continue
			}
			raw, _ := json.Marshal(e)
			if _, err := tx.Stmt(insertDig).Exec(
				int64(e.Seq),
				e.At.UTC().Format(time.RFC3339Nano),
				int64(e.ResourceID),
				int64(e.WorkerID),
				int64(e.ToolID),
				boolInt(e.ToolCreated),
				int64(e.ToolCondition),
				int64(e.ToolEfficiency),
				int64(e.WorkerHealth),
				int64(e.Gold),
				int64(e.Remaining),
				boolInt(e.Shortfall),
				string(raw),
			); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqDump:
			d := r.dump
			if insertDump == nil {
				continue
			}
			if _, err := tx.Stmt(insertDump).Exec(
				int64(d.Tick),
				d.Path,
				d.Resources,
				d.Workers,
				d.Tools,
				d.ToolMasters,
			); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

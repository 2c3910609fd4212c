// Package store holds the mutable world tables and the tool catalog behind a
// single mutex.
//
// Every exported Store method takes the lock for exactly one table operation.
// Work spanning several tables goes through Atomically, which holds the lock
// for the whole callback.
package store

import (
	"sync"

	"goldrush.ai/internal/persistence/snapshot"
	"goldrush.ai/internal/sim/catalogs"
	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/table"
)

type Config struct {
	// Catalog is shared with the store and guarded by its lock from then on.
	// Nil starts an empty catalog.
	Catalog *catalogs.ToolCatalog
	Seed    int64
	// IDs overrides the random id source; used by tests.
	IDs table.IDSource
}

type Store struct {
	mu sync.Mutex
	tx Tx
}

func New(cfg Config) *Store {
	ids := cfg.IDs
	if ids == nil {
		ids = table.RandomIDs(cfg.Seed)
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = catalogs.New(ids)
	}
	return &Store{
		tx: Tx{
			resources: table.New[model.ResourceID, model.Resource](ids),
			workers:   table.New[model.WorkerID, model.Worker](ids),
			tools:     table.New[model.ToolID, model.Tool](ids),
			catalog:   cat,
		},
	}
}

// Atomically runs fn with the store locked. tx is only valid inside fn.
func (s *Store) Atomically(fn func(tx *Tx)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.tx)
}

func (s *Store) CreateResource(body model.ResourceBody) model.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateResource(body)
}

func (s *Store) FindResourceByID(id model.ResourceID) (model.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.FindResourceByID(id)
}

func (s *Store) UpdateResource(id model.ResourceID, r model.Resource) (model.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdateResource(id, r)
}

func (s *Store) CreateWorker(body model.WorkerBody) model.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateWorker(body)
}

func (s *Store) FindWorkerByID(id model.WorkerID) (model.Worker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.FindWorkerByID(id)
}

func (s *Store) UpdateWorker(id model.WorkerID, w model.Worker) (model.Worker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdateWorker(id, w)
}

func (s *Store) CreateTool(body model.ToolBody) model.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateTool(body)
}

func (s *Store) FindToolByID(id model.ToolID) (model.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.FindToolByID(id)
}

func (s *Store) UpdateTool(id model.ToolID, t model.Tool) (model.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdateTool(id, t)
}

func (s *Store) CreateToolMaster(body model.ToolMasterBody) model.ToolMaster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateToolMaster(body)
}

func (s *Store) FindToolMasterByID(id model.ToolMasterID) (model.ToolMaster, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.FindToolMasterByID(id)
}

// SuggestToolMaster resolves a catalog entry by exact or nearest name.
func (s *Store) SuggestToolMaster(name string) (model.ToolMaster, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.catalog.Suggest(name)
}

// ToolOf resolves the tool a worker holds, if any.
func (s *Store) ToolOf(w model.Worker) (model.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ToolOf(w)
}

// EffectiveTool returns a tool with its condition-scaled catalog values.
// Tools without a catalog entry have zero effective values.
func (s *Store) EffectiveTool(id model.ToolID) (model.Tool, model.Effective, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tx.FindToolByID(id)
	if !ok {
		return model.Tool{}, model.Effective{}, false
	}
	eff, _ := s.tx.Effective(t)
	return t, eff, true
}

type Counts struct {
	Resources   int `json:"resources"`
	Workers     int `json:"workers"`
	Tools       int `json:"tools"`
	ToolMasters int `json:"tool_masters"`
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Resources:   s.tx.resources.Len(),
		Workers:     s.tx.workers.Len(),
		Tools:       s.tx.tools.Len(),
		ToolMasters: s.tx.catalog.Len(),
	}
}

// Export copies every table for a dump.
func (s *Store) Export(runID string, tick uint64) snapshot.DumpV1 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.DumpV1{
		Header:        snapshot.Header{Version: snapshot.Version, RunID: runID, Tick: tick},
		CatalogDigest: s.tx.catalog.Digest,
		Resources:     s.tx.resources.All(),
		Workers:       s.tx.workers.All(),
		Tools:         s.tx.tools.All(),
		ToolMasters:   s.tx.catalog.All(),
	}
}

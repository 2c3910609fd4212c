// Package dig implements the extraction step: a worker digs gold out of a
// resource deposit with whatever tool it holds.
package dig

import (
	"io"
	"log"
	"math/bits"
	"time"

	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/store"
	"goldrush.ai/internal/sim/tuning"
)

// Sink receives one entry per completed dig. Sinks are called outside the
// store lock, in the order they were configured.
type Sink interface {
	WriteDig(e LogEntry) error
}

type Config struct {
	Dig    tuning.Dig
	Logger *log.Logger
	Sinks  []Sink
	// Now stamps log entries. Defaults to time.Now.
	Now func() time.Time
}

type Engine struct {
	store  *store.Store
	rules  tuning.Dig
	logger *log.Logger
	sinks  []Sink
	now    func() time.Time

	seq uint64 // guarded by the store lock
}

func New(s *store.Store, cfg Config) *Engine {
	rules := cfg.Dig
	if rules.ShareDivisor == 0 {
		rules = tuning.DefaultDig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:  s,
		rules:  rules,
		logger: logger,
		sinks:  cfg.Sinks,
		now:    now,
	}
}

// TryDig runs one extraction. The whole read-modify-write of tool, worker and
// resource happens under a single store lock, so concurrent digs against the
// same worker or resource never lose an update.
//
// The stored worker and resource win over the passed values when they exist;
// the passed values stand in for records the store does not know.
func (e *Engine) TryDig(resource model.Resource, worker model.Worker) model.WorkStats {
	var entry LogEntry
	var stats model.WorkStats
	e.store.Atomically(func(tx *store.Tx) {
		stats, entry = e.dig(tx, resource, worker)
		e.seq++
		entry.Seq = e.seq
	})
	entry.At = e.now().UTC()
	e.emit(entry)
	return stats
}

func (e *Engine) dig(tx *store.Tx, resource model.Resource, in model.Worker) (model.WorkStats, LogEntry) {
	w := in
	workerFound := false
	if cur, ok := tx.FindWorkerByID(in.ID); ok {
		w, workerFound = cur, true
	}
	resourceFound := false
	if cur, ok := tx.FindResourceByID(resource.ID); ok {
		resource, resourceFound = cur, true
	}

	// A worker without a stored tool digs bare-handed at 1x and picks up a
	// generic one. A held tool contributes its effective efficiency, which is
	// 0 when it has no catalog entry.
	toolEff := uint64(1)
	tool, held := tx.ToolOf(w)
	created := false
	if held {
		tool = model.Wear(tool, e.rules.ToolWearPerDig)
		tx.UpdateTool(tool.ID, tool)
		eff, _ := tx.Effective(tool)
		toolEff = uint64(eff.Efficiency)
	} else {
		tool = tx.CreateTool(model.ToolBody{AttritionRate: e.rules.DefaultToolCondition})
		created = true
	}

	// Health is a percentage multiplier. Dividing health by 100 up front would
	// zero every worker below full health, so the division happens once on
	// the full product and truncates toward zero.
	deposit := resource.DepositAmount
	maxExtractable := uint64(deposit / e.rules.ShareDivisor)
	want := mulSat(mulSat(maxExtractable, toolEff), uint64(w.Efficiency())) / 100

	amount := deposit
	var shortfall error
	if want <= uint64(deposit) {
		amount = uint32(want)
	} else {
		shortfall = model.ErrInsufficientResource
	}
	remaining := deposit - amount

	next := model.Wear(w, e.rules.HealthCostPerDig)
	next.ToolID = tool.ID
	updated, ok := tx.UpdateWorker(w.ID, next)
	if !ok {
		updated = in
	}

	resource.DepositAmount = remaining
	tx.UpdateResource(resource.ID, resource)

	stats := model.WorkStats{
		Worker:    updated,
		Gold:      model.Gold{Amount: amount},
		Remaining: remaining,
		Shortfall: shortfall,
	}
	entry := LogEntry{
		ResourceID:     resource.ID,
		WorkerID:       w.ID,
		ToolID:         tool.ID,
		ToolCreated:    created,
		ToolCondition:  tool.AttritionRate,
		ToolEfficiency: toolEff,
		WorkerHealth:   next.Health,
		Gold:           amount,
		Remaining:      remaining,
		Shortfall:      shortfall != nil,
		WorkerFound:    workerFound,
		ResourceFound:  resourceFound,
	}
	return stats, entry
}

func (e *Engine) emit(entry LogEntry) {
	for _, s := range e.sinks {
		if err := s.WriteDig(entry); err != nil {
			e.logger.Printf("dig sink: seq=%d: %v", entry.Seq, err)
		}
	}
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}

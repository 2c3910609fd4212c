package main

import (
	"fmt"
	"sort"

	"goldrush.ai/internal/persistence/snapshot"
	"goldrush.ai/internal/sim/dig"
	"goldrush.ai/internal/sim/model"
)

type digSummary struct {
	Entries      int
	Gold         uint64
	Shortfalls   int
	ToolsCreated int
}

// verifyDigs checks that the dig log is gap-free and that every deposit moves
// by exactly the gold taken out of it. When the dump was taken after the last
// dig, final deposits and worker health must match it too.
func verifyDigs(entries []dig.LogEntry, d snapshot.DumpV1) (digSummary, error) {
	var sum digSummary
	sorted := append([]dig.LogEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	lastRemaining := map[model.ResourceID]uint32{}
	lastHealth := map[model.WorkerID]uint32{}
	for i, e := range sorted {
		if want := uint64(i + 1); e.Seq != want {
			return sum, fmt.Errorf("seq gap: want=%d got=%d", want, e.Seq)
		}
		if prev, ok := lastRemaining[e.ResourceID]; ok && e.ResourceFound {
			if uint64(prev) != uint64(e.Remaining)+uint64(e.Gold) {
				return sum, fmt.Errorf("seq %d: resource %d went %d -> %d but gold=%d",
					e.Seq, e.ResourceID, prev, e.Remaining, e.Gold)
			}
		}
		if e.ResourceFound {
			lastRemaining[e.ResourceID] = e.Remaining
		}
		if e.WorkerFound {
			lastHealth[e.WorkerID] = e.WorkerHealth
		}
		sum.Entries++
		sum.Gold += uint64(e.Gold)
		if e.Shortfall {
			sum.Shortfalls++
		}
		if e.ToolCreated {
			sum.ToolsCreated++
		}
	}

	if d.Header.Tick == 0 {
		return sum, nil
	}
	for _, r := range d.Resources {
		if got, ok := lastRemaining[r.ID]; ok && got != r.DepositAmount {
			return sum, fmt.Errorf("resource %d: log ends at %d, dump has %d", r.ID, got, r.DepositAmount)
		}
	}
	for _, w := range d.Workers {
		if got, ok := lastHealth[w.ID]; ok && got != w.Health {
			return sum, fmt.Errorf("worker %d: log ends at health %d, dump has %d", w.ID, got, w.Health)
		}
	}
	return sum, nil
}

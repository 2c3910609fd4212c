package main

import (
	"testing"

	"goldrush.ai/internal/persistence/snapshot"
	"goldrush.ai/internal/sim/dig"
	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/store"
	"goldrush.ai/internal/sim/tuning"
)

type collect struct{ entries []dig.LogEntry }

func (c *collect) WriteDig(e dig.LogEntry) error {
	c.entries = append(c.entries, e)
	return nil
}

func TestVerifyDigsAgainstLiveRun(t *testing.T) {
	s := store.New(store.Config{Seed: 21})
	sink := &collect{}
	e := dig.New(s, dig.Config{Dig: tuning.DefaultDig(), Sinks: []dig.Sink{sink}})

	res := s.CreateResource(model.ResourceBody{DepositAmount: 50000})
	a := s.CreateWorker(model.WorkerBody{Name: "ada", Health: 100})
	b := s.CreateWorker(model.WorkerBody{Name: "bo", Health: 80})
	for i := 0; i < 5; i++ {
		a = e.TryDig(res, a).Worker
		b = e.TryDig(res, b).Worker
	}

	sum, err := verifyDigs(sink.entries, s.Export("run", 5))
	if err != nil {
		t.Fatalf("verifyDigs: %v", err)
	}
	after, _ := s.FindResourceByID(res.ID)
	if sum.Entries != 10 || sum.Gold != uint64(50000-after.DepositAmount) || sum.ToolsCreated != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestVerifyDigsDetectsGapsAndDrift(t *testing.T) {
	gap := []dig.LogEntry{{Seq: 1}, {Seq: 3}}
	if _, err := verifyDigs(gap, snapshot.DumpV1{}); err == nil {
		t.Fatalf("expected seq gap error")
	}

	drift := []dig.LogEntry{
		{Seq: 1, ResourceID: 1, ResourceFound: true, Gold: 10, Remaining: 90},
		{Seq: 2, ResourceID: 1, ResourceFound: true, Gold: 10, Remaining: 75},
	}
	if _, err := verifyDigs(drift, snapshot.DumpV1{}); err == nil {
		t.Fatalf("expected drift error")
	}

	mismatch := []dig.LogEntry{{Seq: 1, ResourceID: 1, ResourceFound: true, Gold: 10, Remaining: 90}}
	d := snapshot.DumpV1{
		Header:    snapshot.Header{Tick: 1},
		Resources: []model.Resource{{ID: 1, DepositAmount: 80}},
	}
	if _, err := verifyDigs(mismatch, d); err == nil {
		t.Fatalf("expected dump mismatch error")
	}
}

package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsMatchDigRules(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if d.Dig.ShareDivisor != 100 || d.Dig.ToolWearPerDig != 1 || d.Dig.HealthCostPerDig != 1 || d.Dig.DefaultToolCondition != 100 {
		t.Fatalf("unexpected dig defaults: %+v", d.Dig)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := []byte("tick_ms: 250\ndig:\n  tool_wear_per_dig: 2\nworld:\n  worker_names: [x]\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TickMs != 250 || got.TickDuration().Milliseconds() != 250 {
		t.Fatalf("tick override not applied: %+v", got)
	}
	if got.Dig.ToolWearPerDig != 2 || got.Dig.ShareDivisor != 100 {
		t.Fatalf("dig override mismatch: %+v", got.Dig)
	}
	if len(got.World.WorkerNames) != 1 || got.World.Deposit != 50000 {
		t.Fatalf("world override mismatch: %+v", got.World)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("dig:\n  share_divisor: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

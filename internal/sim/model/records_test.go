package model

import "testing"

func TestToolEffectiveScalesByCondition(t *testing.T) {
	m := ToolMaster{ID: 7, Name: "PICKAXE", Price: 100, Efficiency: 100}

	full := Tool{ID: 1, AttritionRate: 100, MasterID: m.ID}
	if got := full.Effective(m); got.Price != 100 || got.Efficiency != 100 {
		t.Fatalf("full condition: got %+v", got)
	}

	worn := full.Degrade(1)
	if worn.AttritionRate != 99 {
		t.Fatalf("expected attrition 99, got %d", worn.AttritionRate)
	}
	if got := worn.Effective(m); got.Price != 99 || got.Efficiency != 99 {
		t.Fatalf("worn: got %+v", got)
	}
	if a, b := worn.Effective(m), worn.Effective(m); a != b {
		t.Fatalf("effective values not stable: %+v vs %+v", a, b)
	}
}

func TestToolEffectiveMultipliesBeforeDividing(t *testing.T) {
	m := ToolMaster{Price: 50, Efficiency: 3}
	tool := Tool{AttritionRate: 50}
	got := tool.Effective(m)
	if got.Price != 25 || got.Efficiency != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestDegradeFloorsAtZero(t *testing.T) {
	tool := Tool{AttritionRate: 0}
	if got := Wear(tool, 1); got.AttritionRate != 0 {
		t.Fatalf("tool attrition went below zero: %d", got.AttritionRate)
	}
	w := Worker{Health: 1}
	w = Wear(Wear(w, 1), 1)
	if w.Health != 0 {
		t.Fatalf("worker health went below zero: %d", w.Health)
	}
	if w.Condition() != 0 {
		t.Fatalf("condition mismatch: %d", w.Condition())
	}
}

func TestSatSub(t *testing.T) {
	if got := SatSub(5, 3); got != 2 {
		t.Fatalf("SatSub(5,3)=%d", got)
	}
	if got := SatSub(3, 5); got != 0 {
		t.Fatalf("SatSub(3,5)=%d", got)
	}
	if got := SatSub(0, 0); got != 0 {
		t.Fatalf("SatSub(0,0)=%d", got)
	}
}

func TestScaleSaturates(t *testing.T) {
	if got := scale(^uint32(0), 200); got != ^uint32(0) {
		t.Fatalf("expected saturation, got %d", got)
	}
}

func TestClampCondition(t *testing.T) {
	if got := ClampCondition(250); got != FullCondition {
		t.Fatalf("ClampCondition(250)=%d", got)
	}
	if got := ClampCondition(42); got != 42 {
		t.Fatalf("ClampCondition(42)=%d", got)
	}
}

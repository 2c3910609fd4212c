package catalogs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/table"
)

func TestCreateThenFindByID(t *testing.T) {
	c := New(table.RandomIDs(7))
	m := c.Create(model.ToolMasterBody{Name: "tool_0", Price: 100, Efficiency: 1})
	got, ok := c.FindByID(m.ID)
	if !ok {
		t.Fatalf("master %d not found", m.ID)
	}
	if got != m {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, m)
	}
	if _, ok := c.FindByID(m.ID + 1); ok {
		t.Fatalf("unexpected hit for unknown id")
	}
}

func TestFindByNameAndSuggest(t *testing.T) {
	c := New(table.SequenceIDs(1, 2, 3))
	c.Create(model.ToolMasterBody{Name: "WOOD_PICKAXE", Price: 10, Efficiency: 50})
	stone := c.Create(model.ToolMasterBody{Name: "STONE_PICKAXE", Price: 40, Efficiency: 100})
	c.Create(model.ToolMasterBody{Name: "IRON_PICKAXE", Price: 120, Efficiency: 200})

	if got, ok := c.FindByName("stone_pickaxe"); !ok || got.ID != stone.ID {
		t.Fatalf("FindByName: ok=%v got=%+v", ok, got)
	}
	if got, ok := c.Suggest("STONE_PICKAX"); !ok || got.ID != stone.ID {
		t.Fatalf("Suggest near miss: ok=%v got=%+v", ok, got)
	}
	if _, ok := c.Suggest("HAMMER"); ok {
		t.Fatalf("Suggest matched an unrelated name")
	}
}

func TestParse(t *testing.T) {
	raw := []byte(`[
	  {"name":"WOOD_PICKAXE","price":10,"efficiency":50},
	  {"name":"IRON_PICKAXE","price":120,"efficiency":200}
	]`)
	c, err := Parse(raw, table.SequenceIDs(11, 12))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 tools, got %d", c.Len())
	}
	if c.Digest == "" {
		t.Fatalf("missing digest")
	}
	iron, ok := c.FindByName("IRON_PICKAXE")
	if !ok || iron.ID != 12 || iron.Price != 120 || iron.Efficiency != 200 {
		t.Fatalf("unexpected iron entry: ok=%v %+v", ok, iron)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not an array":   `{"name":"X","price":1,"efficiency":1}`,
		"missing field":  `[{"name":"X","price":1}]`,
		"negative price": `[{"name":"X","price":-1,"efficiency":1}]`,
		"empty name":     `[{"name":"","price":1,"efficiency":1}]`,
		"unknown field":  `[{"name":"X","price":1,"efficiency":1,"weight":3}]`,
		"duplicate name": `[{"name":"X","price":1,"efficiency":1},{"name":"x","price":2,"efficiency":2}]`,
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw), table.RandomIDs(1)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadWrapsFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.json")
	if err := os.WriteFile(path, []byte(`[{"name":"X"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path, table.RandomIDs(1))
	if err == nil || !strings.HasPrefix(err.Error(), "tools.json:") {
		t.Fatalf("expected tools.json error, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json"), table.RandomIDs(1)); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

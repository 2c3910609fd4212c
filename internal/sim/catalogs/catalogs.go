package catalogs

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/table"
)

// ToolCatalog is the append-only set of tool archetypes. It carries no lock
// of its own; the world store guards it together with the mutable tables.
type ToolCatalog struct {
	tools  *table.Table[model.ToolMasterID, model.ToolMaster]
	byName map[string]model.ToolMasterID

	// Digest is the sha256 of the JSON the catalog was loaded from, if any.
	Digest string
}

func New(ids table.IDSource) *ToolCatalog {
	return &ToolCatalog{
		tools:  table.New[model.ToolMasterID, model.ToolMaster](ids),
		byName: map[string]model.ToolMasterID{},
	}
}

func (c *ToolCatalog) Create(body model.ToolMasterBody) model.ToolMaster {
	m := c.tools.Create(func(id model.ToolMasterID) model.ToolMaster {
		return model.ToolMaster{
			ID:         id,
			Name:       body.Name,
			Price:      body.Price,
			Efficiency: body.Efficiency,
		}
	})
	if key := nameKey(m.Name); key != "" {
		if _, dup := c.byName[key]; !dup {
			c.byName[key] = m.ID
		}
	}
	return m
}

func (c *ToolCatalog) FindByID(id model.ToolMasterID) (model.ToolMaster, bool) {
	return c.tools.FindByID(id)
}

// FindByName matches names case-insensitively. With duplicate names the
// first created entry wins.
func (c *ToolCatalog) FindByName(name string) (model.ToolMaster, bool) {
	id, ok := c.byName[nameKey(name)]
	if !ok {
		return model.ToolMaster{}, false
	}
	return c.tools.FindByID(id)
}

// Suggest returns the entry whose name is closest to name by edit distance.
// Names further than half their own length away are not suggested.
func (c *ToolCatalog) Suggest(name string) (model.ToolMaster, bool) {
	if m, ok := c.FindByName(name); ok {
		return m, true
	}
	want := nameKey(name)
	if want == "" {
		return model.ToolMaster{}, false
	}
	var (
		best     model.ToolMaster
		bestDist = -1
	)
	for _, m := range c.tools.All() {
		key := nameKey(m.Name)
		d := levenshtein.ComputeDistance(want, key)
		if d > len(key)/2 {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, bestDist >= 0
}

func (c *ToolCatalog) Len() int { return c.tools.Len() }

func (c *ToolCatalog) All() []model.ToolMaster { return c.tools.All() }

func nameKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/table"
)

//go:embed tools.schema.json
var toolsSchemaJSON string

var toolsSchema = jsonschema.MustCompileString("tools.schema.json", toolsSchemaJSON)

// Load seeds a catalog from a tools.json file.
func Load(path string, ids table.IDSource) (*ToolCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw, ids)
	if err != nil {
		return nil, fmt.Errorf("tools.json: %w", err)
	}
	return c, nil
}

// Parse validates raw against the tool schema and seeds a catalog from it.
func Parse(raw []byte, ids table.IDSource) (*ToolCatalog, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := toolsSchema.Validate(doc); err != nil {
		return nil, err
	}

	var defs []model.ToolMasterBody
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, err
	}
	c := New(ids)
	for _, d := range defs {
		if _, dup := c.FindByName(d.Name); dup {
			return nil, fmt.Errorf("duplicate tool name %q", d.Name)
		}
		c.Create(d)
	}
	c.Digest = sha256Hex(raw)
	return c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

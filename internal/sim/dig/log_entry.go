package dig

import (
	"time"

	"goldrush.ai/internal/sim/model"
)

// LogEntry describes one dig after it was applied.
type LogEntry struct {
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`

	ResourceID model.ResourceID `json:"resource_id"`
	WorkerID   model.WorkerID   `json:"worker_id"`
	ToolID     model.ToolID     `json:"tool_id"`

	ToolCreated    bool   `json:"tool_created,omitempty"`
	ToolCondition  uint32 `json:"tool_condition"`
	ToolEfficiency uint64 `json:"tool_efficiency"`
	WorkerHealth   uint32 `json:"worker_health"`

	Gold      uint32 `json:"gold"`
	Remaining uint32 `json:"remaining"`
	Shortfall bool   `json:"shortfall,omitempty"`

	// False when the store had no record and the caller's value was used.
	WorkerFound   bool `json:"worker_found"`
	ResourceFound bool `json:"resource_found"`
}

// Depleted reports whether the dig emptied the deposit.
func (e LogEntry) Depleted() bool { return e.Remaining == 0 }

package model

type (
	ResourceID   uint32
	WorkerID     uint32
	ToolID       uint32
	ToolMasterID uint32
)

// FullCondition is the attrition rate of a tool fresh from the catalog.
const FullCondition uint32 = 100

type Resource struct {
	ID            ResourceID `json:"id"`
	DepositAmount uint32     `json:"deposit_amount"`
}

func (r Resource) Key() ResourceID { return r.ID }

type ResourceBody struct {
	DepositAmount uint32 `json:"deposit_amount"`
}

// Worker references its tool by id only. ToolID 0 means empty hands.
type Worker struct {
	ID     WorkerID `json:"id"`
	Name   string   `json:"name"`
	Health uint32   `json:"health"`
	ToolID ToolID   `json:"tool_id,omitempty"`
}

func (w Worker) Key() WorkerID { return w.ID }

func (w Worker) HasTool() bool { return w.ToolID != 0 }

func (w Worker) Condition() uint32 { return w.Health }

func (w Worker) Degrade(by uint32) Worker {
	w.Health = SatSub(w.Health, by)
	return w
}

// Efficiency is the worker's health read as a percentage (100 health = 1x).
func (w Worker) Efficiency() Percent { return Percent(w.Health) }

type WorkerBody struct {
	Name   string `json:"name"`
	Health uint32 `json:"health"`
	ToolID ToolID `json:"tool_id,omitempty"`
}

// Tool is a wearing instance of a catalog archetype. MasterID 0 is an
// unlinked generic tool.
type Tool struct {
	ID            ToolID       `json:"id"`
	AttritionRate uint32       `json:"attrition_rate"`
	MasterID      ToolMasterID `json:"master_id"`
}

func (t Tool) Key() ToolID { return t.ID }

func (t Tool) Condition() uint32 { return t.AttritionRate }

func (t Tool) Degrade(by uint32) Tool {
	t.AttritionRate = SatSub(t.AttritionRate, by)
	return t
}

// Effective scales the archetype's economics by the tool's condition.
// The result is never stored.
func (t Tool) Effective(m ToolMaster) Effective {
	return Effective{
		Price:      scale(m.Price, t.AttritionRate),
		Efficiency: scale(m.Efficiency, t.AttritionRate),
	}
}

type ToolBody struct {
	AttritionRate uint32       `json:"attrition_rate"`
	MasterID      ToolMasterID `json:"master_id"`
}

type ToolMaster struct {
	ID         ToolMasterID `json:"id"`
	Name       string       `json:"name"`
	Price      uint32       `json:"price"`
	Efficiency uint32       `json:"efficiency"`
}

func (m ToolMaster) Key() ToolMasterID { return m.ID }

type ToolMasterBody struct {
	Name       string `json:"name"`
	Price      uint32 `json:"price"`
	Efficiency uint32 `json:"efficiency"`
}

// Effective holds condition-scaled tool economics.
type Effective struct {
	Price      uint32 `json:"price"`
	Efficiency uint32 `json:"efficiency"`
}

// Degradable is implemented by records that lose condition with use.
type Degradable[T any] interface {
	Condition() uint32
	Degrade(by uint32) T
}

// Wear applies one round of attrition to v.
func Wear[T Degradable[T]](v T, by uint32) T {
	return v.Degrade(by)
}

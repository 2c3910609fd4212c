package store

import (
	"goldrush.ai/internal/sim/catalogs"
	"goldrush.ai/internal/sim/model"
	"goldrush.ai/internal/sim/table"
)

// Tx is the unlocked view of the store's tables. Callers reach it through
// Store.Atomically only.
type Tx struct {
	resources *table.Table[model.ResourceID, model.Resource]
	workers   *table.Table[model.WorkerID, model.Worker]
	tools     *table.Table[model.ToolID, model.Tool]
	catalog   *catalogs.ToolCatalog
}

func (tx *Tx) CreateResource(body model.ResourceBody) model.Resource {
	return tx.resources.Create(func(id model.ResourceID) model.Resource {
		return model.Resource{ID: id, DepositAmount: body.DepositAmount}
	})
}

func (tx *Tx) FindResourceByID(id model.ResourceID) (model.Resource, bool) {
	return tx.resources.FindByID(id)
}

func (tx *Tx) UpdateResource(id model.ResourceID, r model.Resource) (model.Resource, bool) {
	return tx.resources.UpdateByID(id, r)
}

func (tx *Tx) CreateWorker(body model.WorkerBody) model.Worker {
	return tx.workers.Create(func(id model.WorkerID) model.Worker {
		return model.Worker{ID: id, Name: body.Name, Health: body.Health, ToolID: body.ToolID}
	})
}

func (tx *Tx) FindWorkerByID(id model.WorkerID) (model.Worker, bool) {
	return tx.workers.FindByID(id)
}

func (tx *Tx) UpdateWorker(id model.WorkerID, w model.Worker) (model.Worker, bool) {
	return tx.workers.UpdateByID(id, w)
}

// CreateTool stores a tool with its attrition rate capped at FullCondition.
func (tx *Tx) CreateTool(body model.ToolBody) model.Tool {
	return tx.tools.Create(func(id model.ToolID) model.Tool {
		return model.Tool{ID: id, AttritionRate: model.ClampCondition(body.AttritionRate), MasterID: body.MasterID}
	})
}

func (tx *Tx) FindToolByID(id model.ToolID) (model.Tool, bool) {
	return tx.tools.FindByID(id)
}

// UpdateTool replaces a tool, capping its attrition rate at FullCondition.
func (tx *Tx) UpdateTool(id model.ToolID, t model.Tool) (model.Tool, bool) {
	t.AttritionRate = model.ClampCondition(t.AttritionRate)
	return tx.tools.UpdateByID(id, t)
}

func (tx *Tx) CreateToolMaster(body model.ToolMasterBody) model.ToolMaster {
	return tx.catalog.Create(body)
}

func (tx *Tx) FindToolMasterByID(id model.ToolMasterID) (model.ToolMaster, bool) {
	return tx.catalog.FindByID(id)
}

func (tx *Tx) ToolOf(w model.Worker) (model.Tool, bool) {
	if !w.HasTool() {
		return model.Tool{}, false
	}
	return tx.tools.FindByID(w.ToolID)
}

// Effective reports t's condition-scaled economics and whether t is linked to
// a catalog entry.
func (tx *Tx) Effective(t model.Tool) (model.Effective, bool) {
	m, ok := tx.catalog.FindByID(t.MasterID)
	if !ok {
		return model.Effective{}, false
	}
	return t.Effective(m), true
}

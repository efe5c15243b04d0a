// Package workflow holds the production status order of a project and the
// board projection built on it. Everything here is pure; persistence of a
// transition lives in the project service.
package workflow

import "github.com/camarpe/camarpe-backend/internal/types"

// linearFlow is the forward path used by the "next step" affordance.
// PAUSADO is a side state and has no forward pointer.
var linearFlow = []types.ProductionStatus{
	types.StatusAwaitingFiles,
	types.StatusReadyForCut,
	types.StatusAssembly,
	types.StatusEdgeBanding,
	types.StatusInstallation,
	types.StatusDelivered,
}

// NextStatus returns the status right after current in the linear flow.
// The bool is false for ENTREGUE, PAUSADO and unknown values.
func NextStatus(current types.ProductionStatus) (types.ProductionStatus, bool) {
	for i, s := range linearFlow {
		if s == current {
			if i+1 < len(linearFlow) {
				return linearFlow[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// JumpTargets lists every status a project can be moved to from current.
// Transitions are not restricted, so this is every other status in board
// order.
func JumpTargets(current types.ProductionStatus) []types.ProductionStatus {
	out := make([]types.ProductionStatus, 0, len(types.ProductionOrder))
	for _, s := range types.ProductionOrder {
		if s != current {
			out = append(out, s)
		}
	}
	return out
}

// Column is one board column.
type Column[T any] struct {
	Status types.ProductionStatus `json:"status"`
	Items  []T                    `json:"items"`
}

// Kanban groups items by status into the fixed column order. Every column is
// present even when empty; items with an unknown status are dropped.
func Kanban[T any](items []T, statusOf func(T) types.ProductionStatus) []Column[T] {
	index := make(map[types.ProductionStatus]int, len(types.ProductionOrder))
	cols := make([]Column[T], len(types.ProductionOrder))
	for i, s := range types.ProductionOrder {
		index[s] = i
		cols[i] = Column[T]{Status: s, Items: []T{}}
	}
	for _, it := range items {
		if i, ok := index[statusOf(it)]; ok {
			cols[i].Items = append(cols[i].Items, it)
		}
	}
	return cols
}

// KanbanFor is the single-column variant of Kanban.
func KanbanFor[T any](items []T, status types.ProductionStatus, statusOf func(T) types.ProductionStatus) []Column[T] {
	col := Column[T]{Status: status, Items: []T{}}
	for _, it := range items {
		if statusOf(it) == status {
			col.Items = append(col.Items, it)
		}
	}
	return []Column[T]{col}
}

// Package table binds a table's occupancy to its active order.
// Transitions are driven only by order lifecycle events, never by a
// direct status flip.
package table

import (
	"errors"

	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
)

// ErrOccupied reports a race where two terminals picked the same
// table: it already holds a different active order. Surfaced to the
// caller, never silently overwritten.
var ErrOccupied = errors.New("table is occupied by another order")

// AssignOrder occupies an available table with an order. Re-assigning
// the same order is a no-op, so replayed snapshots converge.
func AssignOrder(t *model.Table, orderID string) error {
	if t.Status == enum.TableStatusOccupied {
		if t.CurrentOrderID == orderID {
			return nil
		}
		return ErrOccupied
	}
	t.Status = enum.TableStatusOccupied
	t.CurrentOrderID = orderID
	return nil
}

// Release frees the table. Idempotent: releasing an available table
// is a no-op, not an error.
func Release(t *model.Table) {
	t.Status = enum.TableStatusAvailable
	t.CurrentOrderID = ""
}

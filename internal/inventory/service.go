// Package inventory holds the stock reconciliation core: a batch of
// scanned deltas is coalesced, validated against current quantities, and
// applied together with one audit event inside a single store transaction.
package inventory

import (
	"context"

	"github.com/stocktrack/inventory-service/internal/model"
	"github.com/stocktrack/inventory-service/internal/store"
)

// Entry is one scanned quantity change. Delta is positive to add stock,
// negative to remove it.
type Entry struct {
	ProductID uint
	Delta     int
}

// Service applies quantity changes through an explicitly passed store.
type Service struct {
	store store.Store
}

func New(st store.Store) *Service {
	return &Service{store: st}
}

// coalesce merges entries referring to the same product into one net
// delta, keeping the order of first appearance.
func coalesce(entries []Entry) []Entry {
	index := make(map[uint]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.ProductID]; ok {
			out[i].Delta += e.Delta
			continue
		}
		index[e.ProductID] = len(out)
		out = append(out, e)
	}
	return out
}

// Reconcile validates and applies a batch. Either every delta is applied
// and exactly one UpdateEvent is recorded, or nothing changes. Unknown
// products and deltas that would drive a quantity negative reject the
// whole batch with the index of the offending coalesced entry.
func (s *Service) Reconcile(ctx context.Context, entries []Entry) (model.UpdateEvent, error) {
	coalesced := coalesce(entries)
	var ev model.UpdateEvent
	err := s.store.InTx(ctx, func(tx store.Store) error {
		ids := make([]uint, len(coalesced))
		for i, e := range coalesced {
			ids[i] = e.ProductID
		}
		quantities, err := tx.Quantities(ctx, ids)
		if err != nil {
			return err
		}
		for i, e := range coalesced {
			q, ok := quantities[e.ProductID]
			if !ok {
				return &BatchError{Kind: KindInvalidProductReference, Index: i}
			}
			if q+e.Delta < 0 {
				return &BatchError{Kind: KindInsufficientStock, Index: i}
			}
		}
		for _, e := range coalesced {
			if err := tx.AddQuantity(ctx, e.ProductID, e.Delta); err != nil {
				return err
			}
		}
		links := make([]model.UpdateEntry, len(coalesced))
		for i, e := range coalesced {
			links[i] = model.UpdateEntry{ProductID: e.ProductID, Quantity: e.Delta}
		}
		ev, err = tx.CreateUpdateEvent(ctx, links)
		return err
	})
	if err != nil {
		return model.UpdateEvent{}, err
	}
	return ev, nil
}

// ClearQuantities zeroes every product quantity. Deliberately writes no
// audit event; see the project notes on the traceability gap.
func (s *Service) ClearQuantities(ctx context.Context) error {
	return s.store.ResetQuantities(ctx)
}

// DeleteEvent removes a whole update event and rolls each linked
// product's quantity back by the negated delta, atomically. A reversal
// that would drive any quantity negative rejects the deletion.
func (s *Service) DeleteEvent(ctx context.Context, id uint) error {
	return s.store.InTx(ctx, func(tx store.Store) error {
		ev, err := tx.GetUpdateEvent(ctx, id)
		if err != nil {
			return err
		}
		ids := make([]uint, len(ev.Entries))
		for i, e := range ev.Entries {
			ids[i] = e.ProductID
		}
		quantities, err := tx.Quantities(ctx, ids)
		if err != nil {
			return err
		}
		for i, e := range ev.Entries {
			if q, ok := quantities[e.ProductID]; ok && q-e.Quantity < 0 {
				return &BatchError{Kind: KindInsufficientStock, Index: i}
			}
		}
		for _, e := range ev.Entries {
			if _, ok := quantities[e.ProductID]; !ok {
				continue
			}
			if err := tx.AddQuantity(ctx, e.ProductID, -e.Quantity); err != nil {
				return err
			}
		}
		return tx.DeleteUpdateEvent(ctx, id)
	})
}

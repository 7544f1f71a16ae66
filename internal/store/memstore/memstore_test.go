package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stocktrack/inventory-service/internal/model"
	"github.com/stocktrack/inventory-service/internal/store"
)

func strptr(s string) *string { return &s }

func TestCreateAndGetProduct(t *testing.T) {
	s := New()
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "Widget", Manufacturer: strptr("Acme")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "A1" || got.Name != "Widget" || got.Quantity != 0 {
		t.Fatalf("unexpected: %+v", got)
	}
	if got.Manufacturer == nil || got.Manufacturer.Name != "Acme" {
		t.Fatalf("manufacturer not connected: %+v", got.Manufacturer)
	}
}

func TestCreateProductDuplicateCode(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "Widget"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "Other"})
	var conflict *store.ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "code" {
		t.Fatalf("expected code conflict, got %v", err)
	}
}

func TestConnectOrCreateReusesName(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "W1", Supplier: strptr("S")}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateProduct(ctx, store.ProductInput{Code: "A2", Name: "W2", Supplier: strptr("S")}); err != nil {
		t.Fatalf("create: %v", err)
	}
	suppliers, err := s.ListSuppliers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(suppliers) != 1 {
		t.Fatalf("expected one supplier, got %d", len(suppliers))
	}
	if len(suppliers[0].Products) != 2 {
		t.Fatalf("expected two products, got %d", len(suppliers[0].Products))
	}
}

func TestDeleteManufacturerDetachesProducts(t *testing.T) {
	s := New()
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "W", Manufacturer: strptr("Acme")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteManufacturer(ctx, *p.ManufacturerID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ManufacturerID != nil || got.Manufacturer != nil {
		t.Fatalf("product still attached: %+v", got)
	}
}

func TestRenameConflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "W1", Manufacturer: strptr("Acme")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateProduct(ctx, store.ProductInput{Code: "A2", Name: "W2", Manufacturer: strptr("Blorx")}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = s.RenameManufacturer(ctx, *a.ManufacturerID, "Blorx")
	var conflict *store.ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "name" {
		t.Fatalf("expected name conflict, got %v", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "W"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx store.Store) error {
		if err := tx.AddQuantity(ctx, p.ID, 5); err != nil {
			return err
		}
		if _, err := tx.CreateUpdateEvent(ctx, []model.UpdateEntry{{ProductID: p.ID, Quantity: 5}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := s.GetProduct(ctx, p.ID)
	if got.Quantity != 0 {
		t.Fatalf("quantity leaked: %d", got.Quantity)
	}
	events, _ := s.ListUpdateEvents(ctx)
	if len(events) != 0 {
		t.Fatalf("event leaked: %d", len(events))
	}
}

func TestInTxCommits(t *testing.T) {
	s := New()
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "W"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = s.InTx(ctx, func(tx store.Store) error {
		if err := tx.AddQuantity(ctx, p.ID, 5); err != nil {
			return err
		}
		_, err := tx.CreateUpdateEvent(ctx, []model.UpdateEntry{{ProductID: p.ID, Quantity: 5}})
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	got, _ := s.GetProduct(ctx, p.ID)
	if got.Quantity != 5 {
		t.Fatalf("expected 5, got %d", got.Quantity)
	}
	events, _ := s.ListUpdateEvents(ctx)
	if len(events) != 1 || len(events[0].Entries) != 1 {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestQuantitiesSkipsUnknownIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "W"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	q, err := s.Quantities(ctx, []uint{p.ID, 999})
	if err != nil {
		t.Fatalf("quantities: %v", err)
	}
	if _, ok := q[999]; ok {
		t.Fatalf("unknown id resolved")
	}
	if q[p.ID] != 0 {
		t.Fatalf("expected 0, got %d", q[p.ID])
	}
}

func TestDeleteProductRemovesAuditLinks(t *testing.T) {
	s := New()
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, store.ProductInput{Code: "A1", Name: "W"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUpdateEvent(ctx, []model.UpdateEntry{{ProductID: p.ID, Quantity: 3}}); err != nil {
		t.Fatalf("event: %v", err)
	}
	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	events, _ := s.ListUpdateEvents(ctx)
	if len(events) != 1 || len(events[0].Entries) != 0 {
		t.Fatalf("links not removed: %+v", events)
	}
}

func TestGetProductNotFound(t *testing.T) {
	s := New()
	_, err := s.GetProduct(context.Background(), 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// Package memstore is an in-memory Store used when no database is
// configured and as the storage double in tests. A transaction clones the
// whole state and swaps it back in only when the callback succeeds, so
// InTx is all-or-nothing.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stocktrack/inventory-service/internal/model"
	"github.com/stocktrack/inventory-service/internal/store"
)

type state struct {
	products      map[uint]*model.Product
	manufacturers map[uint]*model.Manufacturer
	suppliers     map[uint]*model.Supplier
	events        map[uint]*model.UpdateEvent

	lastProductID      uint
	lastManufacturerID uint
	lastSupplierID     uint
	lastEventID        uint
}

func newState() *state {
	return &state{
		products:      make(map[uint]*model.Product),
		manufacturers: make(map[uint]*model.Manufacturer),
		suppliers:     make(map[uint]*model.Supplier),
		events:        make(map[uint]*model.UpdateEvent),
	}
}

func (st *state) clone() *state {
	c := newState()
	c.lastProductID = st.lastProductID
	c.lastManufacturerID = st.lastManufacturerID
	c.lastSupplierID = st.lastSupplierID
	c.lastEventID = st.lastEventID
	for id, p := range st.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, m := range st.manufacturers {
		cm := *m
		c.manufacturers[id] = &cm
	}
	for id, s := range st.suppliers {
		cs := *s
		c.suppliers[id] = &cs
	}
	for id, ev := range st.events {
		ce := *ev
		ce.Entries = append([]model.UpdateEntry(nil), ev.Entries...)
		c.events[id] = &ce
	}
	return c
}

// Store implements store.Store over process memory.
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

var _ store.Store = (*Store)(nil)

func (s *Store) InTx(_ context.Context, fn func(store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &txView{st: s.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

func (s *Store) ListProducts(_ context.Context, code string) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listProducts(code)
}

func (s *Store) GetProduct(_ context.Context, id uint) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getProduct(id)
}

func (s *Store) CreateProduct(_ context.Context, in store.ProductInput) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createProduct(in)
}

func (s *Store) UpdateProduct(_ context.Context, id uint, in store.ProductInput) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.updateProduct(id, in)
}

func (s *Store) DeleteProduct(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteProduct(id)
}

func (s *Store) ListProductEvents(_ context.Context, productID uint) ([]store.ProductEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listProductEvents(productID)
}

func (s *Store) ListManufacturers(_ context.Context) ([]model.Manufacturer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listManufacturers()
}

func (s *Store) GetManufacturer(_ context.Context, id uint) (model.Manufacturer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getManufacturer(id)
}

func (s *Store) RenameManufacturer(_ context.Context, id uint, name string) (model.Manufacturer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.renameManufacturer(id, name)
}

func (s *Store) DeleteManufacturer(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteManufacturer(id)
}

func (s *Store) ListSuppliers(_ context.Context) ([]model.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listSuppliers()
}

func (s *Store) GetSupplier(_ context.Context, id uint) (model.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getSupplier(id)
}

func (s *Store) RenameSupplier(_ context.Context, id uint, name string) (model.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.renameSupplier(id, name)
}

func (s *Store) DeleteSupplier(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteSupplier(id)
}

func (s *Store) Quantities(_ context.Context, ids []uint) (map[uint]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.quantities(ids)
}

func (s *Store) AddQuantity(_ context.Context, id uint, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.addQuantity(id, delta)
}

func (s *Store) ResetQuantities(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.resetQuantities()
}

func (s *Store) ListUpdateEvents(_ context.Context) ([]model.UpdateEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listUpdateEvents()
}

func (s *Store) GetUpdateEvent(_ context.Context, id uint) (model.UpdateEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getUpdateEvent(id)
}

func (s *Store) CreateUpdateEvent(_ context.Context, entries []model.UpdateEntry) (model.UpdateEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createUpdateEvent(entries)
}

func (s *Store) DeleteUpdateEvent(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteUpdateEvent(id)
}

func (s *Store) AuditTrail(_ context.Context, f store.AuditFilter) ([]store.AuditRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.auditTrail(f)
}

// txView is the store handed to an InTx callback. It works on a private
// clone, and nested InTx calls just run in the same transaction.
type txView struct {
	st *state
}

var _ store.Store = (*txView)(nil)

func (t *txView) InTx(_ context.Context, fn func(store.Store) error) error { return fn(t) }

func (t *txView) ListProducts(_ context.Context, code string) ([]model.Product, error) {
	return t.st.listProducts(code)
}
func (t *txView) GetProduct(_ context.Context, id uint) (model.Product, error) {
	return t.st.getProduct(id)
}
func (t *txView) CreateProduct(_ context.Context, in store.ProductInput) (model.Product, error) {
	return t.st.createProduct(in)
}
func (t *txView) UpdateProduct(_ context.Context, id uint, in store.ProductInput) (model.Product, error) {
	return t.st.updateProduct(id, in)
}
func (t *txView) DeleteProduct(_ context.Context, id uint) error { return t.st.deleteProduct(id) }
func (t *txView) ListProductEvents(_ context.Context, productID uint) ([]store.ProductEvent, error) {
	return t.st.listProductEvents(productID)
}
func (t *txView) ListManufacturers(_ context.Context) ([]model.Manufacturer, error) {
	return t.st.listManufacturers()
}
func (t *txView) GetManufacturer(_ context.Context, id uint) (model.Manufacturer, error) {
	return t.st.getManufacturer(id)
}
func (t *txView) RenameManufacturer(_ context.Context, id uint, name string) (model.Manufacturer, error) {
	return t.st.renameManufacturer(id, name)
}
func (t *txView) DeleteManufacturer(_ context.Context, id uint) error {
	return t.st.deleteManufacturer(id)
}
func (t *txView) ListSuppliers(_ context.Context) ([]model.Supplier, error) {
	return t.st.listSuppliers()
}
func (t *txView) GetSupplier(_ context.Context, id uint) (model.Supplier, error) {
	return t.st.getSupplier(id)
}
func (t *txView) RenameSupplier(_ context.Context, id uint, name string) (model.Supplier, error) {
	return t.st.renameSupplier(id, name)
}
func (t *txView) DeleteSupplier(_ context.Context, id uint) error { return t.st.deleteSupplier(id) }
func (t *txView) Quantities(_ context.Context, ids []uint) (map[uint]int, error) {
	return t.st.quantities(ids)
}
func (t *txView) AddQuantity(_ context.Context, id uint, delta int) error {
	return t.st.addQuantity(id, delta)
}
func (t *txView) ResetQuantities(_ context.Context) error { return t.st.resetQuantities() }
func (t *txView) ListUpdateEvents(_ context.Context) ([]model.UpdateEvent, error) {
	return t.st.listUpdateEvents()
}
func (t *txView) GetUpdateEvent(_ context.Context, id uint) (model.UpdateEvent, error) {
	return t.st.getUpdateEvent(id)
}
func (t *txView) CreateUpdateEvent(_ context.Context, entries []model.UpdateEntry) (model.UpdateEvent, error) {
	return t.st.createUpdateEvent(entries)
}
func (t *txView) DeleteUpdateEvent(_ context.Context, id uint) error {
	return t.st.deleteUpdateEvent(id)
}
func (t *txView) AuditTrail(_ context.Context, f store.AuditFilter) ([]store.AuditRow, error) {
	return t.st.auditTrail(f)
}

func (st *state) productCopy(p *model.Product) model.Product {
	cp := *p
	if p.ManufacturerID != nil {
		if m, ok := st.manufacturers[*p.ManufacturerID]; ok {
			cm := *m
			cp.Manufacturer = &cm
		}
	}
	if p.SupplierID != nil {
		if sup, ok := st.suppliers[*p.SupplierID]; ok {
			cs := *sup
			cp.Supplier = &cs
		}
	}
	return cp
}

func (st *state) listProducts(code string) ([]model.Product, error) {
	out := make([]model.Product, 0, len(st.products))
	for _, p := range st.products {
		if code != "" && p.Code != code {
			continue
		}
		out = append(out, st.productCopy(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (st *state) getProduct(id uint) (model.Product, error) {
	p, ok := st.products[id]
	if !ok {
		return model.Product{}, store.ErrNotFound
	}
	return st.productCopy(p), nil
}

func (st *state) manufacturerIDFor(name *string) *uint {
	if name == nil || *name == "" {
		return nil
	}
	for _, m := range st.manufacturers {
		if m.Name == *name {
			id := m.ID
			return &id
		}
	}
	st.lastManufacturerID++
	now := time.Now().UTC()
	m := &model.Manufacturer{ID: st.lastManufacturerID, Name: *name, CreatedAt: now, UpdatedAt: now}
	st.manufacturers[m.ID] = m
	id := m.ID
	return &id
}

func (st *state) supplierIDFor(name *string) *uint {
	if name == nil || *name == "" {
		return nil
	}
	for _, s := range st.suppliers {
		if s.Name == *name {
			id := s.ID
			return &id
		}
	}
	st.lastSupplierID++
	now := time.Now().UTC()
	s := &model.Supplier{ID: st.lastSupplierID, Name: *name, CreatedAt: now, UpdatedAt: now}
	st.suppliers[s.ID] = s
	id := s.ID
	return &id
}

func (st *state) createProduct(in store.ProductInput) (model.Product, error) {
	for _, p := range st.products {
		if p.Code == in.Code {
			return model.Product{}, &store.ConflictError{Entity: "product", Field: "code"}
		}
	}
	st.lastProductID++
	now := time.Now().UTC()
	p := &model.Product{
		ID:             st.lastProductID,
		Code:           in.Code,
		Name:           in.Name,
		Price:          in.Price,
		Description:    in.Description,
		ManufacturerID: st.manufacturerIDFor(in.Manufacturer),
		SupplierID:     st.supplierIDFor(in.Supplier),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	st.products[p.ID] = p
	return st.productCopy(p), nil
}

func (st *state) updateProduct(id uint, in store.ProductInput) (model.Product, error) {
	p, ok := st.products[id]
	if !ok {
		return model.Product{}, store.ErrNotFound
	}
	for _, other := range st.products {
		if other.ID != id && other.Code == in.Code {
			return model.Product{}, &store.ConflictError{Entity: "product", Field: "code"}
		}
	}
	p.Code = in.Code
	p.Name = in.Name
	p.Price = in.Price
	p.Description = in.Description
	p.ManufacturerID = st.manufacturerIDFor(in.Manufacturer)
	p.SupplierID = st.supplierIDFor(in.Supplier)
	p.UpdatedAt = time.Now().UTC()
	return st.productCopy(p), nil
}

func (st *state) deleteProduct(id uint) error {
	if _, ok := st.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.products, id)
	for _, ev := range st.events {
		kept := ev.Entries[:0]
		for _, e := range ev.Entries {
			if e.ProductID != id {
				kept = append(kept, e)
			}
		}
		ev.Entries = kept
	}
	return nil
}

func (st *state) listProductEvents(productID uint) ([]store.ProductEvent, error) {
	if _, ok := st.products[productID]; !ok {
		return nil, store.ErrNotFound
	}
	var out []store.ProductEvent
	for _, ev := range st.events {
		for _, e := range ev.Entries {
			if e.ProductID == productID {
				out = append(out, store.ProductEvent{EventID: ev.ID, CreatedAt: ev.CreatedAt, Quantity: e.Quantity})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (st *state) productsOfManufacturer(id uint) []model.Product {
	var out []model.Product
	for _, p := range st.products {
		if p.ManufacturerID != nil && *p.ManufacturerID == id {
			out = append(out, st.productCopy(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (st *state) productsOfSupplier(id uint) []model.Product {
	var out []model.Product
	for _, p := range st.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			out = append(out, st.productCopy(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (st *state) listManufacturers() ([]model.Manufacturer, error) {
	out := make([]model.Manufacturer, 0, len(st.manufacturers))
	for _, m := range st.manufacturers {
		cm := *m
		cm.Products = st.productsOfManufacturer(m.ID)
		out = append(out, cm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (st *state) getManufacturer(id uint) (model.Manufacturer, error) {
	m, ok := st.manufacturers[id]
	if !ok {
		return model.Manufacturer{}, store.ErrNotFound
	}
	cm := *m
	cm.Products = st.productsOfManufacturer(id)
	return cm, nil
}

func (st *state) renameManufacturer(id uint, name string) (model.Manufacturer, error) {
	m, ok := st.manufacturers[id]
	if !ok {
		return model.Manufacturer{}, store.ErrNotFound
	}
	for _, other := range st.manufacturers {
		if other.ID != id && other.Name == name {
			return model.Manufacturer{}, &store.ConflictError{Entity: "manufacturer", Field: "name"}
		}
	}
	m.Name = name
	m.UpdatedAt = time.Now().UTC()
	return *m, nil
}

func (st *state) deleteManufacturer(id uint) error {
	if _, ok := st.manufacturers[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.manufacturers, id)
	for _, p := range st.products {
		if p.ManufacturerID != nil && *p.ManufacturerID == id {
			p.ManufacturerID = nil
		}
	}
	return nil
}

func (st *state) listSuppliers() ([]model.Supplier, error) {
	out := make([]model.Supplier, 0, len(st.suppliers))
	for _, s := range st.suppliers {
		cs := *s
		cs.Products = st.productsOfSupplier(s.ID)
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (st *state) getSupplier(id uint) (model.Supplier, error) {
	s, ok := st.suppliers[id]
	if !ok {
		return model.Supplier{}, store.ErrNotFound
	}
	cs := *s
	cs.Products = st.productsOfSupplier(id)
	return cs, nil
}

func (st *state) renameSupplier(id uint, name string) (model.Supplier, error) {
	s, ok := st.suppliers[id]
	if !ok {
		return model.Supplier{}, store.ErrNotFound
	}
	for _, other := range st.suppliers {
		if other.ID != id && other.Name == name {
			return model.Supplier{}, &store.ConflictError{Entity: "supplier", Field: "name"}
		}
	}
	s.Name = name
	s.UpdatedAt = time.Now().UTC()
	return *s, nil
}

func (st *state) deleteSupplier(id uint) error {
	if _, ok := st.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.suppliers, id)
	for _, p := range st.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			p.SupplierID = nil
		}
	}
	return nil
}

func (st *state) quantities(ids []uint) (map[uint]int, error) {
	out := make(map[uint]int, len(ids))
	for _, id := range ids {
		if p, ok := st.products[id]; ok {
			out[id] = p.Quantity
		}
	}
	return out, nil
}

func (st *state) addQuantity(id uint, delta int) error {
	p, ok := st.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Quantity += delta
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (st *state) resetQuantities() error {
	now := time.Now().UTC()
	for _, p := range st.products {
		p.Quantity = 0
		p.UpdatedAt = now
	}
	return nil
}

func (st *state) eventCopy(ev *model.UpdateEvent) model.UpdateEvent {
	ce := *ev
	ce.Entries = make([]model.UpdateEntry, len(ev.Entries))
	for i, e := range ev.Entries {
		ce.Entries[i] = e
		if p, ok := st.products[e.ProductID]; ok {
			cp := st.productCopy(p)
			ce.Entries[i].Product = &cp
		}
	}
	sort.Slice(ce.Entries, func(i, j int) bool {
		pi, pj := ce.Entries[i].Product, ce.Entries[j].Product
		if pi == nil || pj == nil {
			return ce.Entries[i].ProductID < ce.Entries[j].ProductID
		}
		return pi.Name < pj.Name
	})
	return ce
}

func (st *state) listUpdateEvents() ([]model.UpdateEvent, error) {
	out := make([]model.UpdateEvent, 0, len(st.events))
	for _, ev := range st.events {
		out = append(out, st.eventCopy(ev))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (st *state) getUpdateEvent(id uint) (model.UpdateEvent, error) {
	ev, ok := st.events[id]
	if !ok {
		return model.UpdateEvent{}, store.ErrNotFound
	}
	return st.eventCopy(ev), nil
}

func (st *state) createUpdateEvent(entries []model.UpdateEntry) (model.UpdateEvent, error) {
	st.lastEventID++
	ev := &model.UpdateEvent{ID: st.lastEventID, CreatedAt: time.Now().UTC()}
	ev.Entries = make([]model.UpdateEntry, len(entries))
	for i, e := range entries {
		if _, ok := st.products[e.ProductID]; !ok {
			st.lastEventID--
			return model.UpdateEvent{}, store.ErrNotFound
		}
		ev.Entries[i] = model.UpdateEntry{UpdateEventID: ev.ID, ProductID: e.ProductID, Quantity: e.Quantity}
	}
	st.events[ev.ID] = ev
	return st.eventCopy(ev), nil
}

func (st *state) deleteUpdateEvent(id uint) error {
	if _, ok := st.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.events, id)
	return nil
}

func (st *state) auditTrail(f store.AuditFilter) ([]store.AuditRow, error) {
	ids := make([]uint, 0, len(st.events))
	for id := range st.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ei, ej := st.events[ids[i]], st.events[ids[j]]
		if ei.CreatedAt.Equal(ej.CreatedAt) {
			return ei.ID < ej.ID
		}
		return ei.CreatedAt.Before(ej.CreatedAt)
	})
	var out []store.AuditRow
	for _, id := range ids {
		ev := st.events[id]
		if f.From != nil && ev.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && ev.CreatedAt.After(*f.To) {
			continue
		}
		entries := append([]model.UpdateEntry(nil), ev.Entries...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].ProductID < entries[j].ProductID })
		for _, e := range entries {
			if f.ProductID != nil && e.ProductID != *f.ProductID {
				continue
			}
			p, ok := st.products[e.ProductID]
			if !ok {
				continue
			}
			row := store.AuditRow{
				Time:   ev.CreatedAt,
				Code:   p.Code,
				Name:   p.Name,
				Price:  p.Price,
				Change: e.Quantity,
			}
			if p.ManufacturerID != nil {
				if m, ok := st.manufacturers[*p.ManufacturerID]; ok {
					row.Manufacturer = m.Name
				}
			}
			if p.SupplierID != nil {
				if sup, ok := st.suppliers[*p.SupplierID]; ok {
					row.Supplier = sup.Name
				}
			}
			out = append(out, row)
		}
	}
	return out, nil
}

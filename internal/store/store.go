// Package store defines the storage contract shared by the in-memory and
// Postgres implementations. Handlers and the inventory service depend on
// this interface only.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocktrack/inventory-service/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ConflictError reports a uniqueness violation on a single field, so the
// HTTP layer can surface a field-scoped validation error.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a %s already exists with this %s", e.Entity, e.Field)
}

// ProductInput carries the writable fields of a product. Manufacturer and
// Supplier are names; a name that does not exist yet is created on write.
// Nil pointers clear the corresponding field on update.
type ProductInput struct {
	Code         string
	Name         string
	Price        *decimal.Decimal
	Description  *string
	Manufacturer *string
	Supplier     *string
}

// ProductEvent is one audit entry of a single product's history.
type ProductEvent struct {
	EventID   uint      `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Quantity  int       `json:"quantity"`
}

// AuditFilter narrows the exported audit trail.
type AuditFilter struct {
	ProductID *uint
	From      *time.Time
	To        *time.Time
}

// AuditRow is one line of the exported audit trail, ordered oldest first.
type AuditRow struct {
	Time         time.Time
	Code         string
	Name         string
	Manufacturer string
	Supplier     string
	Price        *decimal.Decimal
	Change       int
}

// Store is the storage collaborator. All methods are safe for concurrent
// use. InTx runs fn against a transactional view: either every mutation
// made through it is kept, or none is.
type Store interface {
	ListProducts(ctx context.Context, code string) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (model.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	ListProductEvents(ctx context.Context, productID uint) ([]ProductEvent, error)

	ListManufacturers(ctx context.Context) ([]model.Manufacturer, error)
	GetManufacturer(ctx context.Context, id uint) (model.Manufacturer, error)
	RenameManufacturer(ctx context.Context, id uint, name string) (model.Manufacturer, error)
	DeleteManufacturer(ctx context.Context, id uint) error

	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	GetSupplier(ctx context.Context, id uint) (model.Supplier, error)
	RenameSupplier(ctx context.Context, id uint, name string) (model.Supplier, error)
	DeleteSupplier(ctx context.Context, id uint) error

	// Quantities resolves current quantities for the given product ids.
	// Unknown ids are absent from the result, not an error. Inside a
	// transaction the rows stay locked until it ends.
	Quantities(ctx context.Context, ids []uint) (map[uint]int, error)
	AddQuantity(ctx context.Context, id uint, delta int) error
	ResetQuantities(ctx context.Context) error

	ListUpdateEvents(ctx context.Context) ([]model.UpdateEvent, error)
	GetUpdateEvent(ctx context.Context, id uint) (model.UpdateEvent, error)
	CreateUpdateEvent(ctx context.Context, entries []model.UpdateEntry) (model.UpdateEvent, error)
	DeleteUpdateEvent(ctx context.Context, id uint) error

	AuditTrail(ctx context.Context, f AuditFilter) ([]AuditRow, error)

	InTx(ctx context.Context, fn func(Store) error) error
}

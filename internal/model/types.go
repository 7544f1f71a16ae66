// Package model defines the persistent domain records of the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a tracked inventory item. Quantity is only ever mutated by
// the reconciliation routine, update-event deletion, or a bulk reset.
type Product struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	Code           string           `json:"code" gorm:"uniqueIndex;not null"`
	Name           string           `json:"name" gorm:"not null"`
	Price          *decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Description    *string          `json:"description"`
	Quantity       int              `json:"quantity" gorm:"not null;default:0"`
	ManufacturerID *uint            `json:"manufacturerId"`
	SupplierID     *uint            `json:"supplierId"`
	Manufacturer   *Manufacturer    `json:"manufacturer,omitempty"`
	Supplier       *Supplier        `json:"supplier,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Manufacturer of zero or more products. Deleting one detaches its
// products instead of cascading.
type Manufacturer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Products  []Product `json:"products,omitempty" gorm:"foreignKey:ManufacturerID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Supplier of zero or more products.
type Supplier struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Products  []Product `json:"products,omitempty" gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateEvent groups all quantity deltas applied by one reconciliation
// call. Immutable once created; its entries are the audit trail.
type UpdateEvent struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time     `json:"createdAt"`
	Entries   []UpdateEntry `json:"products" gorm:"foreignKey:UpdateEventID;constraint:OnDelete:CASCADE"`
}

// UpdateEntry links an UpdateEvent to a product with the signed net delta
// that was applied. One row per product per event.
type UpdateEntry struct {
	UpdateEventID uint     `json:"-" gorm:"primaryKey;autoIncrement:false"`
	ProductID     uint     `json:"productId" gorm:"primaryKey;autoIncrement:false"`
	Quantity      int      `json:"quantity" gorm:"not null"`
	Product       *Product `json:"product,omitempty"`
}

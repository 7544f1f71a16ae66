// Package gormstore implements the Store interface on PostgreSQL via GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/stocktrack/inventory-service/internal/model"
	"github.com/stocktrack/inventory-service/internal/store"
)

// Store implements store.Store on a relational database.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects, tunes the pool, pings and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Manufacturer{},
		&model.Supplier{},
		&model.Product{},
		&model.UpdateEvent{},
		&model.UpdateEntry{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func translate(err error, entity, field string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &store.ConflictError{Entity: entity, Field: field}
	default:
		return err
	}
}

func (s *Store) ListProducts(ctx context.Context, code string) ([]model.Product, error) {
	q := s.db.WithContext(ctx).Preload("Manufacturer").Preload("Supplier").Order("id")
	if code != "" {
		q = q.Where("code = ?", code)
	}
	var out []model.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (model.Product, error) {
	var p model.Product
	err := s.db.WithContext(ctx).Preload("Manufacturer").Preload("Supplier").First(&p, id).Error
	return p, translate(err, "product", "code")
}

func (s *Store) refsFor(ctx context.Context, in store.ProductInput) (manufacturerID, supplierID *uint, err error) {
	if in.Manufacturer != nil && *in.Manufacturer != "" {
		var m model.Manufacturer
		if err := s.db.WithContext(ctx).Where(model.Manufacturer{Name: *in.Manufacturer}).FirstOrCreate(&m).Error; err != nil {
			return nil, nil, err
		}
		manufacturerID = &m.ID
	}
	if in.Supplier != nil && *in.Supplier != "" {
		var sup model.Supplier
		if err := s.db.WithContext(ctx).Where(model.Supplier{Name: *in.Supplier}).FirstOrCreate(&sup).Error; err != nil {
			return nil, nil, err
		}
		supplierID = &sup.ID
	}
	return manufacturerID, supplierID, nil
}

func (s *Store) CreateProduct(ctx context.Context, in store.ProductInput) (model.Product, error) {
	manufacturerID, supplierID, err := s.refsFor(ctx, in)
	if err != nil {
		return model.Product{}, err
	}
	p := model.Product{
		Code:           in.Code,
		Name:           in.Name,
		Price:          in.Price,
		Description:    in.Description,
		ManufacturerID: manufacturerID,
		SupplierID:     supplierID,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translate(err, "product", "code")
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, in store.ProductInput) (model.Product, error) {
	var p model.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err, "product", "code")
	}
	manufacturerID, supplierID, err := s.refsFor(ctx, in)
	if err != nil {
		return model.Product{}, err
	}
	err = s.db.WithContext(ctx).Model(&p).Updates(map[string]any{
		"code":            in.Code,
		"name":            in.Name,
		"price":           in.Price,
		"description":     in.Description,
		"manufacturer_id": manufacturerID,
		"supplier_id":     supplierID,
	}).Error
	if err != nil {
		return model.Product{}, translate(err, "product", "code")
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.UpdateEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListProductEvents(ctx context.Context, productID uint) ([]store.ProductEvent, error) {
	var p model.Product
	if err := s.db.WithContext(ctx).Select("id").First(&p, productID).Error; err != nil {
		return nil, translate(err, "product", "code")
	}
	var out []store.ProductEvent
	err := s.db.WithContext(ctx).Table("update_entries").
		Select("update_events.id as event_id, update_events.created_at, update_entries.quantity").
		Joins("JOIN update_events ON update_events.id = update_entries.update_event_id").
		Where("update_entries.product_id = ?", productID).
		Order("update_events.created_at asc").
		Scan(&out).Error
	return out, err
}

func sortedByName() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Order("name asc").Preload("Supplier") }
}

func (s *Store) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	var out []model.Manufacturer
	err := s.db.WithContext(ctx).Preload("Products", sortedByName()).Order("name asc").Find(&out).Error
	return out, err
}

func (s *Store) GetManufacturer(ctx context.Context, id uint) (model.Manufacturer, error) {
	var m model.Manufacturer
	err := s.db.WithContext(ctx).Preload("Products", sortedByName()).First(&m, id).Error
	return m, translate(err, "manufacturer", "name")
}

func (s *Store) RenameManufacturer(ctx context.Context, id uint, name string) (model.Manufacturer, error) {
	var m model.Manufacturer
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return model.Manufacturer{}, translate(err, "manufacturer", "name")
	}
	if err := s.db.WithContext(ctx).Model(&m).Update("name", name).Error; err != nil {
		return model.Manufacturer{}, translate(err, "manufacturer", "name")
	}
	return m, nil
}

func (s *Store) DeleteManufacturer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("manufacturer_id = ?", id).
			Update("manufacturer_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Manufacturer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	err := s.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("name asc").Preload("Manufacturer") }).
		Order("name asc").Find(&out).Error
	return out, err
}

func (s *Store) GetSupplier(ctx context.Context, id uint) (model.Supplier, error) {
	var sup model.Supplier
	err := s.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("name asc").Preload("Manufacturer") }).
		First(&sup, id).Error
	return sup, translate(err, "supplier", "name")
}

func (s *Store) RenameSupplier(ctx context.Context, id uint, name string) (model.Supplier, error) {
	var sup model.Supplier
	if err := s.db.WithContext(ctx).First(&sup, id).Error; err != nil {
		return model.Supplier{}, translate(err, "supplier", "name")
	}
	if err := s.db.WithContext(ctx).Model(&sup).Update("name", name).Error; err != nil {
		return model.Supplier{}, translate(err, "supplier", "name")
	}
	return sup, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Supplier{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// Quantities locks the selected rows for update so a concurrent
// reconciliation cannot validate against a stale quantity.
func (s *Store) Quantities(ctx context.Context, ids []uint) (map[uint]int, error) {
	var rows []struct {
		ID       uint
		Quantity int
	}
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "quantity").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Quantity
	}
	return out, nil
}

func (s *Store) AddQuantity(ctx context.Context, id uint, delta int) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ResetQuantities(ctx context.Context) error {
	return s.db.WithContext(ctx).Model(&model.Product{}).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		UpdateColumn("quantity", 0).Error
}

func sortEntriesByProductName(ev *model.UpdateEvent) {
	sort.Slice(ev.Entries, func(i, j int) bool {
		pi, pj := ev.Entries[i].Product, ev.Entries[j].Product
		if pi == nil || pj == nil {
			return ev.Entries[i].ProductID < ev.Entries[j].ProductID
		}
		return pi.Name < pj.Name
	})
}

func (s *Store) ListUpdateEvents(ctx context.Context) ([]model.UpdateEvent, error) {
	var out []model.UpdateEvent
	err := s.db.WithContext(ctx).
		Preload("Entries.Product.Manufacturer").
		Preload("Entries.Product.Supplier").
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		sortEntriesByProductName(&out[i])
	}
	return out, nil
}

func (s *Store) GetUpdateEvent(ctx context.Context, id uint) (model.UpdateEvent, error) {
	var ev model.UpdateEvent
	err := s.db.WithContext(ctx).Preload("Entries").First(&ev, id).Error
	return ev, translate(err, "update event", "")
}

func (s *Store) CreateUpdateEvent(ctx context.Context, entries []model.UpdateEntry) (model.UpdateEvent, error) {
	ev := model.UpdateEvent{}
	for _, e := range entries {
		ev.Entries = append(ev.Entries, model.UpdateEntry{ProductID: e.ProductID, Quantity: e.Quantity})
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return model.UpdateEvent{}, err
	}
	return ev, nil
}

func (s *Store) DeleteUpdateEvent(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("update_event_id = ?", id).Delete(&model.UpdateEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.UpdateEvent{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) AuditTrail(ctx context.Context, f store.AuditFilter) ([]store.AuditRow, error) {
	q := s.db.WithContext(ctx).Table("update_entries").
		Select(`update_events.created_at as time,
			products.code,
			products.name,
			coalesce(manufacturers.name, '') as manufacturer,
			coalesce(suppliers.name, '') as supplier,
			products.price,
			update_entries.quantity as change`).
		Joins("JOIN update_events ON update_events.id = update_entries.update_event_id").
		Joins("JOIN products ON products.id = update_entries.product_id").
		Joins("LEFT JOIN manufacturers ON manufacturers.id = products.manufacturer_id").
		Joins("LEFT JOIN suppliers ON suppliers.id = products.supplier_id").
		Order("update_events.created_at asc, update_entries.product_id asc")
	if f.ProductID != nil {
		q = q.Where("update_entries.product_id = ?", *f.ProductID)
	}
	if f.From != nil {
		q = q.Where("update_events.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("update_events.created_at <= ?", *f.To)
	}
	var out []store.AuditRow
	err := q.Scan(&out).Error
	return out, err
}

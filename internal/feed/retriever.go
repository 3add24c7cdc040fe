package feed

import (
	"context"
	"fmt"

	"catalogfeed/internal/models"
	"catalogfeed/internal/stores"

	"gorm.io/gorm"
)

// ProductRetriever pages through one kind of exportable product. An empty
// page ends the retrieval.
type ProductRetriever interface {
	Name() string
	PageSize() int
	Retrieve(ctx context.Context, scope stores.Scope, offset int) ([]*models.Product, error)
}

// SimpleRetriever yields enabled simple products that are not variants of a
// configurable product.
type SimpleRetriever struct {
	db       *gorm.DB
	pageSize int
}

func NewSimpleRetriever(db *gorm.DB, pageSize int) *SimpleRetriever {
	return &SimpleRetriever{db: db, pageSize: pageSize}
}

func (r *SimpleRetriever) Name() string  { return "simple" }
func (r *SimpleRetriever) PageSize() int { return r.pageSize }

func (r *SimpleRetriever) Retrieve(ctx context.Context, scope stores.Scope, offset int) ([]*models.Product, error) {
	var products []*models.Product
	err := inStore(r.db.WithContext(ctx), scope).
		Where("type = ? AND parent_id IS NULL AND enabled = ?", models.ProductTypeSimple, true).
		Order("created_at, id").
		Offset(offset).
		Limit(r.pageSize).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch simple products: %w", err)
	}
	return products, nil
}

// ConfigurableRetriever yields the enabled variants of configurable products,
// each with its parent loaded.
type ConfigurableRetriever struct {
	db       *gorm.DB
	pageSize int
}

func NewConfigurableRetriever(db *gorm.DB, pageSize int) *ConfigurableRetriever {
	return &ConfigurableRetriever{db: db, pageSize: pageSize}
}

func (r *ConfigurableRetriever) Name() string  { return "configurable" }
func (r *ConfigurableRetriever) PageSize() int { return r.pageSize }

func (r *ConfigurableRetriever) Retrieve(ctx context.Context, scope stores.Scope, offset int) ([]*models.Product, error) {
	db := r.db.WithContext(ctx)
	parents := db.Model(&models.Product{}).
		Select("id").
		Where("type = ? AND enabled = ?", models.ProductTypeConfigurable, true)

	var products []*models.Product
	err := inStore(db, scope).
		Preload("Parent").
		Where("parent_id IN (?) AND enabled = ?", parents, true).
		Order("created_at, id").
		Offset(offset).
		Limit(r.pageSize).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch configurable products: %w", err)
	}
	return products, nil
}

func inStore(db *gorm.DB, scope stores.Scope) *gorm.DB {
	if scope == stores.DefaultScope {
		return db.Where("store_id IS NULL")
	}
	return db.Where("(store_id IS NULL OR store_id = ?)", string(scope))
}

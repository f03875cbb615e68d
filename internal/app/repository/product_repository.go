package repository

import (
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/query"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindWithQuery(spec query.Spec) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(id uint) error
	BulkCreate(products []model.Product, batchSize int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

// FindWithQuery runs the listing pipeline. The total is counted over the
// same search+filter predicate before pagination, so callers can report
// "N of M" regardless of the page requested.
func (r *productRepository) FindWithQuery(spec query.Spec) ([]model.Product, int64, error) {
	logger.Debug("Finding products with query", map[string]interface{}{
		"keyword":    spec.Keyword,
		"page":       spec.Page,
		"page_size":  spec.PageSize,
		"conditions": len(spec.Conditions),
	})

	filtered := func() *gorm.DB {
		return spec.Scope(r.db.Model(&model.Product{}))
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		logger.Error("Failed to count products with query", err, map[string]interface{}{
			"keyword": spec.Keyword,
		})
		return nil, 0, err
	}

	var products []model.Product
	if err := spec.Paginate(filtered().Order("products.id ASC")).Find(&products).Error; err != nil {
		logger.Error("Failed to find products with query", err, map[string]interface{}{
			"keyword": spec.Keyword,
		})
		return nil, 0, err
	}

	logger.Debug("Products found with query", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Info("Bulk creating products in database", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products in database", err, nil)
		return err
	}
	return nil
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/query"
	"github.com/shopit-dev/shopit-backend/internal/app/repository"
	"github.com/shopit-dev/shopit-backend/internal/db"
)

func setupProductServiceTest(t *testing.T) (*gorm.DB, ProductService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(testDB)
	productService := NewProductService(productRepo)

	products := []model.Product{
		{Name: "Apple iPhone", Category: "Electronics", Price: 999, Stock: 10},
		{Name: "Apple Watch", Category: "Electronics", Price: 399, Stock: 5},
		{Name: "Green Apple", Category: "Food", Price: 2, Stock: 100},
	}
	for i := range products {
		require.NoError(t, productService.CreateProduct(&products[i]))
	}

	return testDB, productService
}

func TestProductService_ListProducts(t *testing.T) {
	testDB, productService := setupProductServiceTest(t)
	defer db.CleanupTestDB(testDB)

	products, total, err := productService.ListProducts(query.Spec{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, products, 3)

	products, total, err = productService.ListProducts(query.Spec{
		Keyword:  "apple",
		Page:     1,
		PageSize: 10,
		Conditions: []query.Condition{
			{Field: "category", Op: query.OpEq, Value: "Electronics"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)
}

func TestProductService_GetProductByID(t *testing.T) {
	testDB, productService := setupProductServiceTest(t)
	defer db.CleanupTestDB(testDB)

	product, err := productService.GetProductByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone", product.Name)

	_, err = productService.GetProductByID(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_UpdateProduct(t *testing.T) {
	testDB, productService := setupProductServiceTest(t)
	defer db.CleanupTestDB(testDB)

	updated, err := productService.UpdateProduct(1, &model.Product{
		Name:  "Apple iPhone Pro",
		Price: 1199,
		Stock: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone Pro", updated.Name)
	assert.Equal(t, 1199.0, updated.Price)
	assert.Equal(t, "Electronics", updated.Category, "unset fields keep their values")
	assert.Equal(t, 10, updated.Stock, "negative stock marks the field as absent")

	// Stock can be set to zero explicitly.
	updated, err = productService.UpdateProduct(1, &model.Product{Stock: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	testDB, productService := setupProductServiceTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := productService.UpdateProduct(9999, &model.Product{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	testDB, productService := setupProductServiceTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, productService.DeleteProduct(1))

	_, err := productService.GetProductByID(1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, productService.DeleteProduct(1), ErrProductNotFound)
}

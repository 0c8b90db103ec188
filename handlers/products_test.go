package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/billflow/models"
	"gorm.io/gorm"
)

func productRouter(db *gorm.DB, userID uint) *gin.Engine {
	handler := NewProductHandler(db)
	router := gin.New()
	router.Use(authAs(userID))
	router.GET("/products", handler.ListProducts)
	router.POST("/products", handler.CreateProduct)
	router.GET("/products/:id", handler.GetProduct)
	router.PUT("/products/:id", handler.UpdateProduct)
	router.DELETE("/products/:id", handler.DeleteProduct)
	return router
}

func TestCreateProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Valid Product", func(t *testing.T) {
		db := setupTestDB()
		router := productRouter(db, 1)

		body, _ := json.Marshal(gin.H{"name": "Widget", "price": 19.99, "stock": 25, "description": "A widget"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var product models.Product
		db.First(&product)
		assert.Equal(t, "Widget", product.Name)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("19.99")))
		assert.Equal(t, 25, product.Stock)
		assert.Equal(t, uint(1), product.UserID)
	})

	t.Run("Zero Stock Allowed", func(t *testing.T) {
		db := setupTestDB()
		router := productRouter(db, 1)

		body, _ := json.Marshal(gin.H{"name": "Backordered", "price": 5, "stock": 0})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Negative Price", func(t *testing.T) {
		db := setupTestDB()
		router := productRouter(db, 1)

		body, _ := json.Marshal(gin.H{"name": "Widget", "price": -1, "stock": 5})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Price cannot be negative")
	})

	t.Run("Negative Stock", func(t *testing.T) {
		db := setupTestDB()
		router := productRouter(db, 1)

		body, _ := json.Marshal(gin.H{"name": "Widget", "price": 1, "stock": -5})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Stock cannot be negative")
	})

	t.Run("Missing Stock", func(t *testing.T) {
		db := setupTestDB()
		router := productRouter(db, 1)

		body, _ := json.Marshal(gin.H{"name": "Widget", "price": 1})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	router := productRouter(db, 1)

	product := models.Product{Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 5, UserID: 1}
	db.Create(&product)

	t.Run("Owner Adjusts Stock Directly", func(t *testing.T) {
		body, _ := json.Marshal(gin.H{"stock": 42})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/products/%d", product.ID), bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var p models.Product
		db.First(&p, product.ID)
		assert.Equal(t, 42, p.Stock)
		assert.Equal(t, "Widget", p.Name)
	})

	t.Run("Negative Stock Rejected", func(t *testing.T) {
		body, _ := json.Marshal(gin.H{"stock": -1})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/products/%d", product.ID), bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Foreign Product Forbidden", func(t *testing.T) {
		other := models.Product{Name: "Theirs", Price: decimal.RequireFromString("1.00"), Stock: 1, UserID: 2}
		db.Create(&other)

		body, _ := json.Marshal(gin.H{"stock": 9})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/products/%d", other.ID), bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

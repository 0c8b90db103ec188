package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/billflow/models"
	"gorm.io/gorm"
)

func customerRouter(db *gorm.DB, userID uint) *gin.Engine {
	handler := NewCustomerHandler(db)
	router := gin.New()
	router.Use(authAs(userID))
	router.GET("/customers", handler.ListCustomers)
	router.POST("/customers", handler.CreateCustomer)
	router.GET("/customers/:id", handler.GetCustomer)
	router.PUT("/customers/:id", handler.UpdateCustomer)
	router.DELETE("/customers/:id", handler.DeleteCustomer)
	return router
}

func TestCustomerCRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	router := customerRouter(db, 1)

	t.Run("Create", func(t *testing.T) {
		body, _ := json.Marshal(gin.H{
			"name":    "Acme",
			"email":   "acme@example.com",
			"phone":   "555-0100",
			"address": "1 Main St",
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/customers", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var customer models.Customer
		db.First(&customer)
		assert.Equal(t, "Acme", customer.Name)
		assert.Equal(t, uint(1), customer.UserID)
	})

	t.Run("Create Missing Fields", func(t *testing.T) {
		body, _ := json.Marshal(gin.H{"name": "No Contact"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/customers", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update Keeps Blank Fields", func(t *testing.T) {
		var customer models.Customer
		db.First(&customer)

		body, _ := json.Marshal(gin.H{"phone": "555-0199"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/customers/%d", customer.ID), bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		db.First(&customer, customer.ID)
		assert.Equal(t, "555-0199", customer.Phone)
		assert.Equal(t, "Acme", customer.Name)
	})

	t.Run("List", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/customers", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Acme")
	})

	t.Run("Delete", func(t *testing.T) {
		var customer models.Customer
		db.First(&customer)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/customers/%d", customer.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", fmt.Sprintf("/customers/%d", customer.ID), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCustomerOwnership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()

	customer := models.Customer{Name: "Theirs", Email: "t@example.com", Phone: "555-0100", Address: "2 Side St", UserID: 2}
	db.Create(&customer)

	router := customerRouter(db, 1)

	t.Run("Get Foreign Customer", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/customers/%d", customer.ID), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Delete Foreign Customer", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/customers/%d", customer.ID), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("List Excludes Foreign Customers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/customers", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "Theirs")
	})
}

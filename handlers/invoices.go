package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/billflow/invoicing"
)

type InvoiceHandler struct {
	svc *invoicing.Service
}

func NewInvoiceHandler(svc *invoicing.Service) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

type InvoiceItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type CreateInvoiceRequest struct {
	CustomerID uint                 `json:"customer_id" binding:"required"`
	Items      []InvoiceItemRequest `json:"items"`
	Notes      string               `json:"notes"`
}

// UpdateInvoiceRequest uses pointers so that an absent field is left alone
// while an explicit empty notes string clears the stored notes.
type UpdateInvoiceRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]invoicing.LineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicing.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	invoice, err := h.svc.Create(c.Request.Context(), userID, invoicing.CreateInput{
		CustomerID: req.CustomerID,
		Items:      items,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	invoice, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, _ := currentUserID(c)

	invoices, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.svc.Update(c.Request.Context(), userID, id, invoicing.UpdateInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

func (h *InvoiceHandler) GetDashboardStats(c *gin.Context) {
	userID, _ := currentUserID(c)

	stats, err := h.svc.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice id"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps engine error kinds to HTTP statuses. Internal failures
// get a generic message; everything else carries the engine's own message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invoicing.ErrInvalidRequest), errors.Is(err, invoicing.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, invoicing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, invoicing.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

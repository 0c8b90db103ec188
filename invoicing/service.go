// Package invoicing implements the invoice lifecycle: creation with stock
// reservation, pricing and numbering, status/notes updates, deletion with
// stock restoration, and the dashboard rollup. It is transport-independent;
// HTTP handlers sit on top and translate its errors.
package invoicing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/billflow/models"
)

// Tax is applied at a fixed 5% of the invoice subtotal.
var (
	defaultTaxRate = decimal.NewFromInt(5)
	hundred        = decimal.NewFromInt(100)
)

const invoiceSequenceID = 1

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LineRequest asks for a quantity of one product.
type LineRequest struct {
	ProductID uint
	Quantity  int
}

type CreateInput struct {
	CustomerID uint
	Items      []LineRequest
	Notes      string
}

// UpdateInput carries optional status/notes changes. Nil means "leave as is";
// a non-nil empty notes string replaces the stored notes with "".
type UpdateInput struct {
	Status *string
	Notes  *string
}

type DashboardStats struct {
	TotalCustomers int64            `json:"totalCustomers"`
	TotalInvoices  int64            `json:"totalInvoices"`
	TotalRevenue   decimal.Decimal  `json:"totalRevenue"`
	RecentInvoices []models.Invoice `json:"recentInvoices"`
}

// Create builds a priced, numbered invoice from the requested lines. The
// whole operation runs in one transaction: stock decrements, the sequence
// increment and the invoice insert either all commit or all roll back, so a
// rejected request never leaves a partial decrement behind.
//
// Lines are processed in the order submitted; when several are short on
// stock, the first short line is the one reported.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Invoice, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: please provide customer and at least one item", ErrInvalidRequest)
	}
	for _, line := range in.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidRequest)
		}
	}

	var invoiceID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: customer not found", ErrNotFound)
			}
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if customer.UserID != userID {
			return fmt.Errorf("%w to use this customer", ErrForbidden)
		}

		subtotal := decimal.Zero
		items := make([]models.InvoiceItem, 0, len(in.Items))
		for _, line := range in.Items {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product not found: %d", ErrNotFound, line.ProductID)
				}
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			if product.UserID != userID {
				return fmt.Errorf("%w to use this product", ErrForbidden)
			}

			// Atomic check-and-decrement: the guard in the WHERE clause keeps
			// two racing creations from overdrawing stock below zero.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("%w: %v", ErrInternal, res.Error)
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
				}
			}

			lineSubtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)
			items = append(items, models.InvoiceItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       product.Price,
				Subtotal:    lineSubtotal,
			})
		}

		taxAmount := subtotal.Mul(defaultTaxRate).Div(hundred).Round(2)
		total := subtotal.Add(taxAmount)

		number, err := nextInvoiceNumber(tx)
		if err != nil {
			return err
		}

		invoice := models.Invoice{
			InvoiceNumber: number,
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			Items:         items,
			Subtotal:      subtotal,
			TaxRate:       defaultTaxRate,
			TaxAmount:     taxAmount,
			Total:         total,
			Status:        models.InvoiceStatusPending,
			Notes:         in.Notes,
			UserID:        userID,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, invoiceID)
}

// nextInvoiceNumber allocates the next number from the invoice_sequences
// counter inside the caller's transaction. The plain "value + 1" update
// serializes on the counter row, so concurrent creations each see a distinct
// value; the unique index on invoice_number is the backstop.
func nextInvoiceNumber(tx *gorm.DB) (string, error) {
	res := tx.Model(&models.InvoiceSequence{}).
		Where("id = ?", invoiceSequenceID).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		// First allocation on this store: seed the counter from the invoice
		// count, including soft-deleted rows so numbers never repeat. The
		// insert tolerates a racing creation having seeded the row first;
		// either way the row exists afterwards and the increment applies.
		var count int64
		if err := tx.Model(&models.Invoice{}).Unscoped().Count(&count).Error; err != nil {
			return "", fmt.Errorf("%w: %v", ErrInternal, err)
		}
		seed := models.InvoiceSequence{ID: invoiceSequenceID, Value: count}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return "", fmt.Errorf("%w: %v", ErrInternal, err)
		}
		res = tx.Model(&models.InvoiceSequence{}).
			Where("id = ?", invoiceSequenceID).
			UpdateColumn("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return "", fmt.Errorf("%w: %v", ErrInternal, res.Error)
		}
		if res.RowsAffected == 0 {
			return "", fmt.Errorf("%w: invoice sequence missing", ErrInternal)
		}
	}

	var seq models.InvoiceSequence
	if err := tx.First(&seq, invoiceSequenceID).Error; err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return fmt.Sprintf("INV-%06d", seq.Value), nil
}

// Get returns one invoice with its customer and line products resolved.
func (s *Service) Get(ctx context.Context, userID uint, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Preload("Items.Product").
		First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if invoice.UserID != userID {
		return nil, fmt.Errorf("%w to view this invoice", ErrForbidden)
	}
	return &invoice, nil
}

// List returns the requesting user's invoices, newest first.
func (s *Service) List(ctx context.Context, userID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return invoices, nil
}

// Update changes status and/or notes. Any status may move to any other, and
// a status change never touches stock: a cancelled invoice keeps its reserved
// stock until it is deleted.
func (s *Service) Update(ctx context.Context, userID uint, id uint, in UpdateInput) (*models.Invoice, error) {
	var invoice models.Invoice
	db := s.db.WithContext(ctx)
	if err := db.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if invoice.UserID != userID {
		return nil, fmt.Errorf("%w to update this invoice", ErrForbidden)
	}

	updates := map[string]interface{}{}
	if in.Status != nil {
		if !models.ValidInvoiceStatus(*in.Status) {
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidRequest)
		}
		updates["status"] = *in.Status
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) > 0 {
		if err := db.Model(&invoice).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	return s.Get(ctx, userID, id)
}

// Delete restores each line's quantity onto its product's stock and removes
// the invoice, as one transaction. A product that no longer exists is skipped
// silently; a failed restoration write aborts the whole deletion so the
// record is never lost while stock is wrong.
func (s *Service) Delete(ctx context.Context, userID uint, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Preload("Items").First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invoice not found", ErrNotFound)
			}
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if invoice.UserID != userID {
			return fmt.Errorf("%w to delete this invoice", ErrForbidden)
		}

		for _, item := range invoice.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("%w: %v", ErrInternal, res.Error)
			}
			// RowsAffected == 0 means the product is gone; no restoration.
		}

		if err := tx.Delete(&invoice).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		return nil
	})
}

// Dashboard computes the per-user rollup: customer and invoice counts,
// revenue over paid invoices only, and the five most recent invoices. It is
// derived from store state at call time, never cached.
func (s *Service) Dashboard(ctx context.Context, userID uint) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := DashboardStats{TotalRevenue: decimal.Zero}

	if err := db.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := db.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&stats.TotalInvoices).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	var paid []models.Invoice
	err := db.Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPaid).Find(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	for _, invoice := range paid {
		stats.TotalRevenue = stats.TotalRevenue.Add(invoice.Total)
	}

	err = db.Preload("Customer").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentInvoices).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return &stats, nil
}

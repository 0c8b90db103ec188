package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses. Any status may transition to any other; there is no
// terminal lock on paid or cancelled.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// ValidInvoiceStatus reports whether s is one of the known invoice statuses.
func ValidInvoiceStatus(s string) bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
	InvoiceNumber string          `gorm:"uniqueIndex;size:50;not null" json:"invoice_number"`
	CustomerID    uint            `gorm:"not null;index" json:"customer_id"`
	Customer      Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName  string          `gorm:"size:255;not null" json:"customer_name"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:5" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status        string          `gorm:"size:20;default:'pending'" json:"status"` // pending, paid, cancelled
	Notes         string          `gorm:"type:text" json:"notes"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
}

// InvoiceItem is a line snapshot taken at invoice time. ProductName and Price
// are denormalized copies so the invoice stays historically accurate when the
// product is later renamed, repriced or deleted.
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	ProductID   uint            `gorm:"not null" json:"product_id"`
	Product     Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

// InvoiceSequence is the durable counter behind invoice numbering. A single
// row is incremented atomically inside the creation transaction, so two
// racing creations can never allocate the same number.
type InvoiceSequence struct {
	ID    uint  `gorm:"primaryKey" json:"id"`
	Value int64 `gorm:"not null;default:0" json:"value"`
}

// TableName overrides the table name
func (Invoice) TableName() string {
	return "invoices"
}

// TableName overrides the table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// TableName overrides the table name
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}

package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultUnit is the unit label used when the caller does not supply one
const DefaultUnit = "ks"

// InvoiceItem is a line on an invoice. The derived amounts are always
// recomputed from Quantity/UnitPrice/VATRate and never trusted from input.
type InvoiceItem struct {
	ID           uuid.UUID       `json:"id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
	LineVAT      decimal.Decimal `json:"line_vat"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// NewInvoiceItem creates an item from source fields. Derived amounts are left
// zero until the owning invoice recalculates.
func NewInvoiceItem(description string, quantity, unitPrice, vatRate decimal.Decimal, unit string) (InvoiceItem, error) {
	item := InvoiceItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   unitPrice,
		VATRate:     vatRate,
	}
	if item.Unit == "" {
		item.Unit = DefaultUnit
	}
	if err := item.Validate(); err != nil {
		return InvoiceItem{}, err
	}
	return item, nil
}

// Validate checks the source fields. Negative quantity and unit price are
// permitted (reversing entries); zero quantity is not.
func (i *InvoiceItem) Validate() error {
	if i.Description == "" {
		return NewValidationError("Item description cannot be empty")
	}
	if i.Quantity.IsZero() {
		return NewValidationError("Item quantity cannot be zero")
	}
	if i.VATRate.IsNegative() || i.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return NewValidationError("Item VAT rate must be between 0 and 100")
	}
	return nil
}

// InvoiceItems is a slice of InvoiceItem that implements the GORM
// Scanner/Valuer pair for JSONB storage.
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner
func (items *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

// InvoiceCreatedEvent is raised when a new invoice draft is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	DocumentType DocumentType    `json:"document_type"`
	Direction    Direction       `json:"direction"`
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	Total        decimal.Decimal `json:"total"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		DocumentType:    inv.DocumentType,
		Direction:       inv.Direction,
		ClientID:        inv.ClientID,
		ClientName:      inv.ClientName,
		Total:           inv.Total,
	}
}

// InvoiceIssuedEvent is raised when an invoice receives its number and is issued
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Number       string          `json:"number"`
	DocumentType DocumentType    `json:"document_type"`
	ClientID     uuid.UUID       `json:"client_id"`
	Total        decimal.Decimal `json:"total"`
	DueDate      time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return "InvoiceIssued"
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceIssued", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		Number:          inv.Number,
		DocumentType:    inv.DocumentType,
		ClientID:        inv.ClientID,
		Total:           inv.Total,
		DueDate:         inv.DueDate,
	}
}

// InvoicePaidEvent is raised when an invoice is marked as paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Number       string          `json:"number"`
	DocumentType DocumentType    `json:"document_type"`
	ClientID     uuid.UUID       `json:"client_id"`
	Total        decimal.Decimal `json:"total"`
	PaidAt       time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		Number:          inv.Number,
		DocumentType:    inv.DocumentType,
		ClientID:        inv.ClientID,
		Total:           inv.Total,
		PaidAt:          paidAt,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
	Reason    string    `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		Number:          inv.Number,
		Reason:          inv.CancelReason,
	}
}

// InvoiceConvertedEvent is raised when an advance invoice is converted into a
// regular invoice carrying its reversing settlement line
type InvoiceConvertedEvent struct {
	shared.BaseDomainEvent
	AdvanceInvoiceID uuid.UUID       `json:"advance_invoice_id"`
	AdvanceNumber    string          `json:"advance_number"`
	RegularInvoiceID uuid.UUID       `json:"regular_invoice_id"`
	RegularNumber    string          `json:"regular_number"`
	SettledAmount    decimal.Decimal `json:"settled_amount"`
}

// EventType returns the event type name
func (e *InvoiceConvertedEvent) EventType() string {
	return "InvoiceConverted"
}

// NewInvoiceConvertedEvent creates a new InvoiceConvertedEvent
func NewInvoiceConvertedEvent(advance, regular *Invoice) *InvoiceConvertedEvent {
	return &InvoiceConvertedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("InvoiceConverted", "Invoice", regular.ID),
		AdvanceInvoiceID: advance.ID,
		AdvanceNumber:    advance.Number,
		RegularInvoiceID: regular.ID,
		RegularNumber:    regular.Number,
		SettledAmount:    advance.SettlementAmount(),
	}
}

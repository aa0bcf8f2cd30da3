package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/domain/shared/valueobject"
)

// DocumentType distinguishes regular invoices from advance (proforma) invoices
type DocumentType string

const (
	DocumentTypeRegular DocumentType = "REGULAR"
	DocumentTypeAdvance DocumentType = "ADVANCE"
)

// IsValid checks if the document type is a valid DocumentType
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeRegular || t == DocumentTypeAdvance
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// Direction distinguishes invoices we issue from invoices we receive
type Direction string

const (
	DirectionIssued   Direction = "ISSUED"
	DirectionReceived Direction = "RECEIVED"
)

// IsValid checks if the direction is a valid Direction
func (d Direction) IsValid() bool {
	return d == DirectionIssued || d == DirectionReceived
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// InvoiceStatus represents the stored status of an invoice.
// OVERDUE is never stored; it is derived from DueDate, see EffectiveStatus.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
)

// IsValid checks if the status is a valid stored InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further status transitions are allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanTransitionTo reports whether the transition from s to target is legal
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusIssued || target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusIssued:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	}
	return false
}

// IsEditable returns true if the invoice content may still be changed.
// Edits are rejected once the invoice is paid or cancelled.
func (s InvoiceStatus) IsEditable() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusIssued
}

// PaymentMethod represents how an invoice is expected to be settled
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodTransfer || m == PaymentMethodCash || m == PaymentMethodCard
}

// Invoice is the invoicing aggregate root. Derived amounts (line amounts and
// the aggregate Subtotal/VATAmount/Total) are always recomputed from the item
// source fields on every mutation; stored values are never trusted.
type Invoice struct {
	shared.BaseAggregateRoot
	DocumentType         DocumentType         `json:"document_type"`
	Direction            Direction            `json:"direction"`
	Number               string               `json:"number"` // Empty until assigned, then immutable
	VariableSymbol       string               `json:"variable_symbol"`
	ClientID             uuid.UUID            `json:"client_id"`
	ClientName           string               `json:"client_name"` // Snapshot at creation time
	IssueDate            time.Time            `json:"issue_date"`
	DueDate              time.Time            `json:"due_date"`
	TaxDate              time.Time            `json:"tax_date"` // Taxable supply date, defaults to the issue date
	Currency             valueobject.Currency `json:"currency"`
	PaymentMethod        PaymentMethod        `json:"payment_method"`
	PricesIncludeVAT     bool                 `json:"prices_include_vat"`
	VATApplicable        bool                 `json:"vat_applicable"` // False when the supplier or the invoiced client is not a VAT payer
	AutoConvertOnPayment bool                 `json:"auto_convert_on_payment"` // Advance only: create the settling regular invoice on payment
	Items                InvoiceItems         `json:"items"`
	Subtotal             decimal.Decimal      `json:"subtotal"`
	VATAmount            decimal.Decimal      `json:"vat_amount"`
	Total                decimal.Decimal      `json:"total"`
	Status               InvoiceStatus        `json:"status"`
	LinkedInvoiceID      *uuid.UUID           `json:"linked_invoice_id"` // Conversion counterpart, symmetric
	Note                 string               `json:"note"`
	PaidAt               *time.Time           `json:"paid_at"`
	CancelledAt          *time.Time           `json:"cancelled_at"`
	CancelReason         string               `json:"cancel_reason"`
	DeletedAt            *time.Time           `json:"deleted_at"`
}

// NewInvoice creates a draft invoice and computes its totals
func NewInvoice(
	docType DocumentType,
	direction Direction,
	clientID uuid.UUID,
	clientName string,
	issueDate time.Time,
	dueDate time.Time,
	currency valueobject.Currency,
	paymentMethod PaymentMethod,
	pricesIncludeVAT bool,
	vatApplicable bool,
	items []InvoiceItem,
	note string,
) (*Invoice, error) {
	if !docType.IsValid() {
		return nil, NewValidationError("Document type is not valid")
	}
	if !direction.IsValid() {
		return nil, NewValidationError("Direction is not valid")
	}
	if clientID == uuid.Nil {
		return nil, NewValidationError("Client ID cannot be empty")
	}
	if clientName == "" {
		return nil, NewValidationError("Client name cannot be empty")
	}
	if issueDate.IsZero() {
		return nil, NewValidationError("Issue date is required")
	}
	if dueDate.IsZero() {
		return nil, NewValidationError("Due date is required")
	}
	if dueDate.Before(issueDate) {
		return nil, NewValidationError("Due date cannot precede the issue date")
	}
	if !currency.IsValid() {
		return nil, NewValidationError("Currency is not valid")
	}
	if paymentMethod == "" {
		paymentMethod = PaymentMethodTransfer
	}
	if !paymentMethod.IsValid() {
		return nil, NewValidationError("Payment method is not valid")
	}
	if len(items) == 0 {
		return nil, NewValidationError("Invoice must contain at least one item")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocumentType:      docType,
		Direction:         direction,
		ClientID:          clientID,
		ClientName:        clientName,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		TaxDate:           issueDate,
		Currency:          currency,
		PaymentMethod:     paymentMethod,
		PricesIncludeVAT:  pricesIncludeVAT,
		VATApplicable:     vatApplicable,
		Items:             append(InvoiceItems{}, items...),
		Status:            InvoiceStatusDraft,
		Note:              note,
	}

	if err := inv.recalculate(); err != nil {
		return nil, err
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// recalculate fills the derived line amounts and the aggregate totals
func (inv *Invoice) recalculate() error {
	for i := range inv.Items {
		if err := inv.Items[i].Validate(); err != nil {
			return err
		}
		line, err := ComputeLine(inv.Items[i].Quantity, inv.Items[i].UnitPrice, inv.Items[i].VATRate, inv.PricesIncludeVAT, inv.VATApplicable)
		if err != nil {
			return err
		}
		inv.Items[i].LineSubtotal = line.Subtotal
		inv.Items[i].LineVAT = line.VAT
		inv.Items[i].LineTotal = line.Total
	}

	totals, err := ComputeTotals(inv.Items, inv.PricesIncludeVAT, inv.VATApplicable)
	if err != nil {
		return err
	}
	inv.Subtotal = totals.Subtotal
	inv.VATAmount = totals.VAT
	inv.Total = totals.Total
	return nil
}

// ReplaceItems replaces the invoice lines and recomputes totals.
// Paid and cancelled invoices may not be edited.
func (inv *Invoice) ReplaceItems(items []InvoiceItem) error {
	if !inv.Status.IsEditable() {
		return NewInvalidStateTransitionError(fmt.Sprintf("Cannot edit invoice in %s status", inv.Status))
	}
	if len(items) == 0 {
		return NewValidationError("Invoice must contain at least one item")
	}

	inv.Items = append(InvoiceItems{}, items...)
	if err := inv.recalculate(); err != nil {
		return err
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// UpdateDetails changes the editable header fields of an invoice.
// Switching the price mode or VAT applicability recomputes all amounts.
func (inv *Invoice) UpdateDetails(issueDate, dueDate time.Time, paymentMethod PaymentMethod, pricesIncludeVAT, vatApplicable bool, note string) error {
	if !inv.Status.IsEditable() {
		return NewInvalidStateTransitionError(fmt.Sprintf("Cannot edit invoice in %s status", inv.Status))
	}
	if issueDate.IsZero() || dueDate.IsZero() {
		return NewValidationError("Issue date and due date are required")
	}
	if dueDate.Before(issueDate) {
		return NewValidationError("Due date cannot precede the issue date")
	}
	if !paymentMethod.IsValid() {
		return NewValidationError("Payment method is not valid")
	}

	inv.IssueDate = issueDate
	inv.DueDate = dueDate
	inv.PaymentMethod = paymentMethod
	inv.PricesIncludeVAT = pricesIncludeVAT
	inv.VATApplicable = vatApplicable
	inv.Note = note

	if err := inv.recalculate(); err != nil {
		return err
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// SetTaxDate overrides the taxable supply date on an editable invoice
func (inv *Invoice) SetTaxDate(taxDate time.Time) error {
	if !inv.Status.IsEditable() {
		return NewInvalidStateTransitionError(fmt.Sprintf("Cannot edit invoice in %s status", inv.Status))
	}
	if taxDate.IsZero() {
		return NewValidationError("Tax date is required")
	}

	inv.TaxDate = taxDate
	inv.UpdatedAt = time.Now()
	return nil
}

// AssignNumber sets the invoice number exactly once. The variable symbol
// defaults to the numeric portion of the number when not set explicitly.
func (inv *Invoice) AssignNumber(number string) error {
	if inv.Number != "" {
		return NewValidationError("Invoice number is already assigned and cannot change")
	}
	if number == "" {
		return NewValidationError("Invoice number cannot be empty")
	}

	inv.Number = number
	if inv.VariableSymbol == "" {
		inv.VariableSymbol = VariableSymbolFromNumber(number)
	}

	inv.UpdatedAt = time.Now()
	return nil
}

// Issue transitions a numbered draft to ISSUED
func (inv *Invoice) Issue() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusIssued) {
		return NewInvalidStateTransitionError(fmt.Sprintf("Cannot issue invoice in %s status", inv.Status))
	}
	if inv.Number == "" {
		return NewValidationError("Invoice must have a number before it can be issued")
	}

	inv.Status = InvoiceStatusIssued
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))
	return nil
}

// MarkPaid transitions a draft or issued invoice to PAID. A draft may be
// paid without issuance, but it must carry a number first; the numbering
// decision stays with the caller.
func (inv *Invoice) MarkPaid(paidAt time.Time) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusPaid) {
		return NewInvalidStateTransitionError(fmt.Sprintf("Cannot mark invoice in %s status as paid", inv.Status))
	}
	if inv.Number == "" {
		return NewValidationError("Invoice must have a number before it can be marked paid")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &paidAt
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	return nil
}

// Cancel transitions a draft or issued invoice to CANCELLED
func (inv *Invoice) Cancel(reason string) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return NewInvalidStateTransitionError(fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))
	return nil
}

// EffectiveStatus derives the status shown to callers: an issued invoice past
// its due date reports OVERDUE without that ever being stored.
func (inv *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if inv.Status == InvoiceStatusIssued && inv.DueDate.Before(truncateToDay(now)) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsConverted reports whether this advance invoice has already been converted
func (inv *Invoice) IsConverted() bool {
	return inv.DocumentType == DocumentTypeAdvance && inv.LinkedInvoiceID != nil
}

// LinkInvoice records the conversion counterpart. Linking an already
// converted advance invoice fails; the link is written on both sides by the
// conversion workflow.
func (inv *Invoice) LinkInvoice(otherID uuid.UUID) error {
	if otherID == uuid.Nil {
		return NewValidationError("Linked invoice ID cannot be empty")
	}
	if inv.LinkedInvoiceID != nil {
		if inv.DocumentType == DocumentTypeAdvance {
			return ErrAlreadyConverted
		}
		return NewValidationError("Invoice is already linked to another invoice")
	}

	inv.LinkedInvoiceID = &otherID
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// SoftDelete marks the invoice as deleted, keeping the row for audit.
// The caller is responsible for checking inbound conversion links first.
func (inv *Invoice) SoftDelete() error {
	if inv.DeletedAt != nil {
		return shared.NewDomainError(shared.ErrCodeNotFound, "Invoice is already deleted")
	}

	now := time.Now()
	inv.DeletedAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// IsDeleted reports whether the invoice has been soft deleted
func (inv *Invoice) IsDeleted() bool {
	return inv.DeletedAt != nil
}

// EffectiveVATRate returns the VAT rate for a reversing line against this
// invoice: the shared rate when every line carries the same one, otherwise
// the rate implied by the aggregate amounts (vat/subtotal * 100).
func (inv *Invoice) EffectiveVATRate() decimal.Decimal {
	if len(inv.Items) == 0 {
		return decimal.Zero
	}

	rate := inv.Items[0].VATRate
	uniform := true
	for i := 1; i < len(inv.Items); i++ {
		if !inv.Items[i].VATRate.Equal(rate) {
			uniform = false
			break
		}
	}
	if uniform {
		return rate
	}

	if inv.Subtotal.IsZero() {
		return decimal.Zero
	}
	return inv.VATAmount.Div(inv.Subtotal).Mul(decimal.NewFromInt(100))
}

// SettlementAmount is the amount a reversing line must offset: the subtotal
// when prices are entered without VAT (or VAT is suppressed), the total when
// entered prices already include VAT.
func (inv *Invoice) SettlementAmount() decimal.Decimal {
	if inv.VATApplicable && inv.PricesIncludeVAT {
		return inv.Total
	}
	return inv.Subtotal
}

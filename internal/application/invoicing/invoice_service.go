package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/partner"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/domain/shared/valueobject"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/logger"
)

// DefaultDueDays is the payment term applied when a request omits the due date
const DefaultDueDays = 14

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
	clientRepo  partner.ClientRepository
	sequencer   *invoicing.NumberSequencer
	converter   *ConversionService

	supplierVATPayer bool
	autoConvert      bool
	dueDays          int
	defaultCurrency  valueobject.Currency
}

// InvoiceServiceOption is a functional option for configuring InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithSupplierVATPayer controls whether issued invoices carry VAT. When the
// supplier is not registered as a VAT payer, VAT is suppressed on every
// invoice regardless of item rates.
func WithSupplierVATPayer(vatPayer bool) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.supplierVATPayer = vatPayer
	}
}

// WithAutoConvert sets the default for the per-invoice auto-conversion flag
// seeded onto advance invoices whose create request does not specify one
func WithAutoConvert(enabled bool) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.autoConvert = enabled
	}
}

// WithDueDays sets the payment term applied when a request omits the due date
func WithDueDays(days int) InvoiceServiceOption {
	return func(s *InvoiceService) {
		if days > 0 {
			s.dueDays = days
		}
	}
}

// WithDefaultCurrency sets the currency applied when a request omits one
func WithDefaultCurrency(code string) InvoiceServiceOption {
	return func(s *InvoiceService) {
		if code != "" {
			s.defaultCurrency = valueobject.Currency(code)
		}
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo partner.ClientRepository,
	sequencer *invoicing.NumberSequencer,
	converter *ConversionService,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo:      invoiceRepo,
		clientRepo:       clientRepo,
		sequencer:        sequencer,
		converter:        converter,
		supplierVATPayer: true,
		autoConvert:      true,
		dueDays:          DefaultDueDays,
		defaultCurrency:  valueobject.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InvoiceItemRequest represents one invoice line in API requests
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// CreateInvoiceRequest represents the payload for creating an invoice
type CreateInvoiceRequest struct {
	DocumentType     string               `json:"document_type" binding:"required,oneof=REGULAR ADVANCE"`
	Direction        string               `json:"direction" binding:"omitempty,oneof=ISSUED RECEIVED"`
	ClientID         uuid.UUID            `json:"client_id" binding:"required"`
	IssueDate        *time.Time           `json:"issue_date"`
	DueDate          *time.Time           `json:"due_date"`
	TaxDate          *time.Time           `json:"tax_date"`
	Currency         string               `json:"currency"`
	PaymentMethod    string               `json:"payment_method" binding:"omitempty,oneof=TRANSFER CASH CARD"`
	PricesIncludeVAT bool                 `json:"prices_include_vat"`
	VariableSymbol   string               `json:"variable_symbol"`
	Note             string               `json:"note"`
	Items            []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Draft            bool                 `json:"draft"`                   // keep as an unnumbered draft instead of issuing
	AutoConvert      *bool                `json:"auto_convert_on_payment"` // advance only; nil falls back to the configured default
}

// UpdateInvoiceRequest represents the payload for updating a draft invoice
type UpdateInvoiceRequest struct {
	IssueDate        *time.Time           `json:"issue_date"`
	DueDate          *time.Time           `json:"due_date"`
	TaxDate          *time.Time           `json:"tax_date"`
	PaymentMethod    string               `json:"payment_method" binding:"omitempty,oneof=TRANSFER CASH CARD"`
	PricesIncludeVAT bool                 `json:"prices_include_vat"`
	Note             string               `json:"note"`
	Items            []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// MarkPaidRequest represents the payload for marking an invoice as paid
type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// CancelInvoiceRequest represents the payload for cancelling an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// InvoiceItemResponse represents one invoice line in API responses
type InvoiceItemResponse struct {
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

// InvoiceResponse represents an invoice in API responses. Status carries the
// effective status, with OVERDUE derived from the due date at read time.
type InvoiceResponse struct {
	ID               uuid.UUID             `json:"id"`
	DocumentType     string                `json:"document_type"`
	Direction        string                `json:"direction"`
	Number           string                `json:"number,omitempty"`
	VariableSymbol   string                `json:"variable_symbol,omitempty"`
	ClientID         uuid.UUID             `json:"client_id"`
	ClientName       string                `json:"client_name"`
	IssueDate        time.Time             `json:"issue_date"`
	DueDate          time.Time             `json:"due_date"`
	TaxDate          time.Time             `json:"tax_date"`
	Currency         string                `json:"currency"`
	PaymentMethod    string                `json:"payment_method"`
	PricesIncludeVAT bool                  `json:"prices_include_vat"`
	VATApplicable    bool                  `json:"vat_applicable"`
	AutoConvert      bool                  `json:"auto_convert_on_payment"`
	Items            []InvoiceItemResponse `json:"items"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	VATAmount        decimal.Decimal       `json:"vat_amount"`
	Total            decimal.Decimal       `json:"total"`
	Status           string                `json:"status"`
	LinkedInvoiceID  *uuid.UUID            `json:"linked_invoice_id,omitempty"`
	Note             string                `json:"note,omitempty"`
	PaidAt           *time.Time            `json:"paid_at,omitempty"`
	CancelledAt      *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Version          int                   `json:"version"`
}

// MarkPaidResult carries the outcome of a payment, including the invoice
// created by auto-conversion when the paid invoice was an advance. The
// payment itself commits even when the follow-up conversion fails; the
// failure is reported in ConversionWarning.
type MarkPaidResult struct {
	Invoice           *InvoiceResponse `json:"invoice"`
	ConvertedInvoice  *InvoiceResponse `json:"converted_invoice,omitempty"`
	ConversionWarning string           `json:"conversion_warning,omitempty"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search       string     `form:"search"`
	DocumentType string     `form:"document_type"`
	Direction    string     `form:"direction"`
	Status       string     `form:"status"`
	ClientID     *uuid.UUID `form:"client_id"`
	Year         *int       `form:"year"`
	IssuedFrom   *time.Time `form:"issued_from"`
	IssuedTo     *time.Time `form:"issued_to"`
	Overdue      *bool      `form:"overdue"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// CreateInvoice creates an invoice for a client. Unless the request asks for
// a draft, the invoice is numbered and issued in one step; the number is
// allocated under the partition lock so concurrent creations stay gapless.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Client not found")
	}
	if !client.IsActive() {
		return nil, invoicing.NewValidationError("Cannot invoice an archived client")
	}

	items, err := toDomainItems(req.Items)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, s.dueDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	currency := s.defaultCurrency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}

	direction := invoicing.DirectionIssued
	if req.Direction != "" {
		direction = invoicing.Direction(req.Direction)
	}

	// VAT is suppressed when either side of the trade is not a VAT payer
	vatApplicable := s.supplierVATPayer && client.IsVATPayer

	invoice, err := invoicing.NewInvoice(
		invoicing.DocumentType(req.DocumentType),
		direction,
		client.ID,
		client.Name,
		issueDate,
		dueDate,
		currency,
		invoicing.PaymentMethod(req.PaymentMethod),
		req.PricesIncludeVAT,
		vatApplicable,
		items,
		req.Note,
	)
	if err != nil {
		return nil, err
	}
	invoice.VariableSymbol = req.VariableSymbol
	if invoice.DocumentType == invoicing.DocumentTypeAdvance {
		invoice.AutoConvertOnPayment = s.autoConvert
		if req.AutoConvert != nil {
			invoice.AutoConvertOnPayment = *req.AutoConvert
		}
	}
	if req.TaxDate != nil {
		if err := invoice.SetTaxDate(*req.TaxDate); err != nil {
			return nil, err
		}
	}

	if req.Draft {
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return nil, err
		}
		return toInvoiceResponse(invoice, time.Now()), nil
	}

	err = s.sequencer.Locked(ctx, invoice.DocumentType, issueDate.Year(), func(number string) error {
		if err := invoice.AssignNumber(number); err != nil {
			return err
		}
		if err := invoice.Issue(); err != nil {
			return err
		}
		return s.invoiceRepo.Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(invoice, time.Now()), nil
}

// GetInvoice gets an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, time.Now()), nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := invoicing.InvoiceFilter{
		ClientID:   filter.ClientID,
		Year:       filter.Year,
		IssuedFrom: filter.IssuedFrom,
		IssuedTo:   filter.IssuedTo,
		Overdue:    filter.Overdue,
		Search:     filter.Search,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.DocumentType != "" {
		docType := invoicing.DocumentType(filter.DocumentType)
		domainFilter.DocumentType = &docType
	}
	if filter.Direction != "" {
		direction := invoicing.Direction(filter.Direction)
		domainFilter.Direction = &direction
	}
	if filter.Status != "" {
		status := invoicing.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i], now)
	}
	return responses, total, nil
}

// UpdateInvoice updates a draft invoice's header fields and lines
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := toDomainItems(req.Items)
	if err != nil {
		return nil, err
	}

	issueDate := invoice.IssueDate
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	dueDate := invoice.DueDate
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}
	paymentMethod := invoice.PaymentMethod
	if req.PaymentMethod != "" {
		paymentMethod = invoicing.PaymentMethod(req.PaymentMethod)
	}

	// the VAT flag was resolved against the client at creation and does not change on edit
	if err := invoice.UpdateDetails(issueDate, dueDate, paymentMethod, req.PricesIncludeVAT, invoice.VATApplicable, req.Note); err != nil {
		return nil, err
	}
	if err := invoice.ReplaceItems(items); err != nil {
		return nil, err
	}
	if req.TaxDate != nil {
		if err := invoice.SetTaxDate(*req.TaxDate); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, time.Now()), nil
}

// IssueInvoice assigns a number to a draft invoice and issues it
func (s *InvoiceService) IssueInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.sequencer.Locked(ctx, invoice.DocumentType, invoice.IssueDate.Year(), func(number string) error {
		if err := invoice.AssignNumber(number); err != nil {
			return err
		}
		if err := invoice.Issue(); err != nil {
			return err
		}
		return s.invoiceRepo.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(invoice, time.Now()), nil
}

// MarkInvoicePaid marks an invoice as paid. A draft is numbered on the spot,
// since a settled invoice must enter the accounting sequence. Paying an
// advance invoice also creates the settling regular invoice when the invoice
// carries the auto-conversion flag; a conversion failure does not roll back
// the payment.
func (s *InvoiceService) MarkInvoicePaid(ctx context.Context, id uuid.UUID, req MarkPaidRequest) (*MarkPaidResult, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	if invoice.Number == "" {
		err = s.sequencer.Locked(ctx, invoice.DocumentType, invoice.IssueDate.Year(), func(number string) error {
			if err := invoice.AssignNumber(number); err != nil {
				return err
			}
			if err := invoice.MarkPaid(paidAt); err != nil {
				return err
			}
			return s.invoiceRepo.SaveWithLock(ctx, invoice)
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := invoice.MarkPaid(paidAt); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return nil, err
		}
	}

	result := &MarkPaidResult{Invoice: toInvoiceResponse(invoice, time.Now())}

	if invoice.AutoConvertOnPayment && invoice.DocumentType == invoicing.DocumentTypeAdvance && !invoice.IsConverted() {
		converted, convErr := s.converter.Convert(ctx, invoice.ID)
		if convErr != nil {
			logger.L(ctx).Warn("advance paid but conversion failed",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("number", invoice.Number),
				zap.Error(convErr))
			result.ConversionWarning = convErr.Error()
		} else {
			result.ConvertedInvoice = converted
			result.Invoice = toInvoiceResponse(invoice, time.Now())
		}
	}

	return result, nil
}

// CancelInvoice cancels a draft or issued invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, time.Now()), nil
}

// DeleteInvoice soft deletes an invoice. An invoice another invoice links to
// through a conversion cannot be deleted.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return err
	}

	linking, err := s.invoiceRepo.CountLinkingTo(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if linking > 0 {
		return invoicing.ErrLinkedEntity
	}

	if err := invoice.SoftDelete(); err != nil {
		return err
	}
	return s.invoiceRepo.SaveWithLock(ctx, invoice)
}

func (s *InvoiceService) findInvoice(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Invoice not found")
	}
	return invoice, nil
}

func toDomainItems(reqs []InvoiceItemRequest) ([]invoicing.InvoiceItem, error) {
	items := make([]invoicing.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		item, err := invoicing.NewInvoiceItem(r.Description, r.Quantity, r.UnitPrice, r.VATRate, r.Unit)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func toItemResponses(items invoicing.InvoiceItems) []InvoiceItemResponse {
	responses := make([]InvoiceItemResponse, len(items))
	for i, item := range items {
		responses[i] = InvoiceItemResponse{
			ID:           item.ID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			UnitPrice:    item.UnitPrice,
			VATRate:      item.VATRate,
			LineSubtotal: item.LineSubtotal,
			LineVAT:      item.LineVAT,
			LineTotal:    item.LineTotal,
		}
	}
	return responses
}

func toInvoiceResponse(invoice *invoicing.Invoice, now time.Time) *InvoiceResponse {
	return &InvoiceResponse{
		ID:               invoice.ID,
		DocumentType:     invoice.DocumentType.String(),
		Direction:        invoice.Direction.String(),
		Number:           invoice.Number,
		VariableSymbol:   invoice.VariableSymbol,
		ClientID:         invoice.ClientID,
		ClientName:       invoice.ClientName,
		IssueDate:        invoice.IssueDate,
		DueDate:          invoice.DueDate,
		TaxDate:          invoice.TaxDate,
		Currency:         invoice.Currency.String(),
		PaymentMethod:    string(invoice.PaymentMethod),
		PricesIncludeVAT: invoice.PricesIncludeVAT,
		VATApplicable:    invoice.VATApplicable,
		AutoConvert:      invoice.AutoConvertOnPayment,
		Items:            toItemResponses(invoice.Items),
		Subtotal:         invoice.Subtotal,
		VATAmount:        invoice.VATAmount,
		Total:            invoice.Total,
		Status:           invoice.EffectiveStatus(now).String(),
		LinkedInvoiceID:  invoice.LinkedInvoiceID,
		Note:             invoice.Note,
		PaidAt:           invoice.PaidAt,
		CancelledAt:      invoice.CancelledAt,
		CreatedAt:        invoice.CreatedAt,
		UpdatedAt:        invoice.UpdatedAt,
		Version:          invoice.GetVersion(),
	}
}

package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/logger"
)

// ConversionService converts advance invoices into regular invoices. When
// the advance is already paid, the regular invoice repeats its lines plus a
// reversing line offsetting the settled amount, and is created paid with a
// zero balance. An unpaid advance converts into an ordinary issued invoice
// with the lines copied as they are.
type ConversionService struct {
	invoiceRepo invoicing.InvoiceRepository
	sequencer   *invoicing.NumberSequencer

	dueDays int
}

// ConversionServiceOption is a functional option for configuring ConversionService
type ConversionServiceOption func(*ConversionService)

// WithConversionDueDays sets the payment term of created regular invoices
func WithConversionDueDays(days int) ConversionServiceOption {
	return func(s *ConversionService) {
		s.dueDays = days
	}
}

// NewConversionService creates a new ConversionService
func NewConversionService(
	invoiceRepo invoicing.InvoiceRepository,
	sequencer *invoicing.NumberSequencer,
	opts ...ConversionServiceOption,
) *ConversionService {
	s := &ConversionService{
		invoiceRepo: invoiceRepo,
		sequencer:   sequencer,
		dueDays:     DefaultDueDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert creates the regular invoice from an advance invoice. Converting
// the same advance twice fails with ALREADY_CONVERTED; the symmetric link
// between the two invoices is persisted atomically.
func (s *ConversionService) Convert(ctx context.Context, advanceID uuid.UUID) (*InvoiceResponse, error) {
	advance, err := s.invoiceRepo.FindByID(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	if advance == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Invoice not found")
	}

	if advance.DocumentType != invoicing.DocumentTypeAdvance {
		return nil, invoicing.NewInvalidStateTransitionError("Only advance invoices can be converted")
	}
	if advance.IsConverted() {
		return nil, invoicing.ErrAlreadyConverted
	}

	settled := advance.Status == invoicing.InvoiceStatusPaid
	regular, err := s.buildRegularInvoice(advance, settled)
	if err != nil {
		return nil, err
	}

	issueYear := regular.IssueDate.Year()
	err = s.sequencer.Locked(ctx, invoicing.DocumentTypeRegular, issueYear, func(number string) error {
		if err := regular.AssignNumber(number); err != nil {
			return err
		}
		if err := regular.Issue(); err != nil {
			return err
		}
		if settled {
			paidAt := time.Now()
			if advance.PaidAt != nil {
				paidAt = *advance.PaidAt
			}
			if err := regular.MarkPaid(paidAt); err != nil {
				return err
			}
		}
		if err := advance.LinkInvoice(regular.ID); err != nil {
			return err
		}
		if err := regular.LinkInvoice(advance.ID); err != nil {
			return err
		}
		return s.invoiceRepo.SaveConversion(ctx, advance, regular)
	})
	if err != nil {
		return nil, err
	}

	regular.AddDomainEvent(invoicing.NewInvoiceConvertedEvent(advance, regular))

	logger.L(ctx).Info("advance invoice converted",
		zap.String("advance_number", advance.Number),
		zap.String("regular_number", regular.Number))

	return toInvoiceResponse(regular, time.Now()), nil
}

// buildRegularInvoice assembles the unnumbered regular invoice: copied lines
// plus, when the advance is settled, the reversing settlement line
func (s *ConversionService) buildRegularInvoice(advance *invoicing.Invoice, settled bool) (*invoicing.Invoice, error) {
	items := make([]invoicing.InvoiceItem, 0, len(advance.Items)+1)
	for _, src := range advance.Items {
		item, err := invoicing.NewInvoiceItem(src.Description, src.Quantity, src.UnitPrice, src.VATRate, src.Unit)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if settled {
		reversing, err := invoicing.NewInvoiceItem(
			fmt.Sprintf("Odpočet zálohy %s", advance.Number),
			decimal.NewFromInt(1),
			advance.SettlementAmount().Neg(),
			advance.EffectiveVATRate(),
			invoicing.DefaultUnit,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, reversing)
	}

	issueDate := time.Now()
	return invoicing.NewInvoice(
		invoicing.DocumentTypeRegular,
		advance.Direction,
		advance.ClientID,
		advance.ClientName,
		issueDate,
		issueDate.AddDate(0, 0, s.dueDays),
		advance.Currency,
		advance.PaymentMethod,
		advance.PricesIncludeVAT,
		advance.VATApplicable,
		items,
		advance.Note,
	)
}

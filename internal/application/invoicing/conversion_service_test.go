package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

func newConversionService(invoiceRepo *MockInvoiceRepository, opts ...ConversionServiceOption) *ConversionService {
	sequencer := invoicing.NewNumberSequencer(invoiceRepo)
	return NewConversionService(invoiceRepo, sequencer, opts...)
}

// newPaidAdvance builds a paid advance invoice in the given price mode
func newPaidAdvance(t *testing.T, pricesIncludeVAT bool) *invoicing.Invoice {
	t.Helper()

	unitPrice := decimal.NewFromInt(50000)
	if pricesIncludeVAT {
		unitPrice = decimal.NewFromInt(60500)
	}
	item, err := invoicing.NewInvoiceItem("Záloha na projekt", decimal.NewFromInt(1), unitPrice, decimal.NewFromInt(21), "ks")
	require.NoError(t, err)

	issueDate := time.Now().AddDate(0, 0, -30)
	advance, err := invoicing.NewInvoice(
		invoicing.DocumentTypeAdvance,
		invoicing.DirectionIssued,
		uuid.New(),
		"Test klient s.r.o.",
		issueDate,
		issueDate.AddDate(0, 0, 14),
		"CZK",
		invoicing.PaymentMethodTransfer,
		pricesIncludeVAT,
		true,
		[]invoicing.InvoiceItem{item},
		"",
	)
	require.NoError(t, err)
	require.NoError(t, advance.AssignNumber(invoicing.FormatNumber(invoicing.DocumentTypeAdvance, issueDate.Year(), 1)))
	require.NoError(t, advance.Issue())
	require.NoError(t, advance.MarkPaid(time.Now()))
	return advance
}

func TestConversionService_Convert(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the settling regular invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newConversionService(invoiceRepo)

		advance := newPaidAdvance(t, false)
		invoiceRepo.On("FindByID", ctx, advance.ID).Return(advance, nil)
		invoiceRepo.On("MaxSequenceInPartition", ctx, invoicing.DocumentTypeRegular, time.Now().Year()).Return(int64(41), nil)

		var savedRegular *invoicing.Invoice
		invoiceRepo.On("SaveConversion", ctx, advance, mock.AnythingOfType("*invoicing.Invoice")).
			Run(func(args mock.Arguments) {
				savedRegular = args.Get(2).(*invoicing.Invoice)
			}).
			Return(nil)

		resp, err := service.Convert(ctx, advance.ID)
		require.NoError(t, err)

		expectedNumber := invoicing.FormatNumber(invoicing.DocumentTypeRegular, time.Now().Year(), 42)
		assert.Equal(t, expectedNumber, resp.Number)
		assert.Equal(t, "PAID", resp.Status) // settled by the advance, nothing left to collect
		assert.Equal(t, "REGULAR", resp.DocumentType)

		// both sides of the link are set before the single atomic save
		require.NotNil(t, savedRegular)
		require.NotNil(t, advance.LinkedInvoiceID)
		require.NotNil(t, savedRegular.LinkedInvoiceID)
		assert.Equal(t, savedRegular.ID, *advance.LinkedInvoiceID)
		assert.Equal(t, advance.ID, *savedRegular.LinkedInvoiceID)

		// copied line plus the reversing settlement line
		require.Len(t, resp.Items, 2)
		reversing := resp.Items[1]
		assert.Equal(t, "Odpočet zálohy "+advance.Number, reversing.Description)
		assert.Equal(t, "-50000", reversing.UnitPrice.String())
		assert.True(t, resp.Subtotal.IsZero())
		assert.True(t, resp.VATAmount.IsZero())
		assert.True(t, resp.Total.IsZero())
	})

	t.Run("reversing line offsets the gross amount in tax-inclusive mode", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newConversionService(invoiceRepo)

		advance := newPaidAdvance(t, true)
		require.Equal(t, "60500", advance.Total.String())

		invoiceRepo.On("FindByID", ctx, advance.ID).Return(advance, nil)
		invoiceRepo.On("MaxSequenceInPartition", ctx, invoicing.DocumentTypeRegular, time.Now().Year()).Return(int64(0), nil)
		invoiceRepo.On("SaveConversion", ctx, advance, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := service.Convert(ctx, advance.ID)
		require.NoError(t, err)

		reversing := resp.Items[len(resp.Items)-1]
		assert.Equal(t, "-60500", reversing.UnitPrice.String())
		assert.True(t, resp.Total.IsZero())
	})

	t.Run("rejects a regular invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newConversionService(invoiceRepo)

		inv := newIssuedInvoice(t, invoicing.DocumentTypeRegular, uuid.New())
		invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

		_, err := service.Convert(ctx, inv.ID)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, invoicing.ErrCodeInvalidStateTransition, domainErr.Code)
	})

	t.Run("an unpaid advance converts without a reversing line", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newConversionService(invoiceRepo)

		advance := newIssuedInvoice(t, invoicing.DocumentTypeAdvance, uuid.New())
		invoiceRepo.On("FindByID", ctx, advance.ID).Return(advance, nil)
		invoiceRepo.On("MaxSequenceInPartition", ctx, invoicing.DocumentTypeRegular, time.Now().Year()).Return(int64(0), nil)
		invoiceRepo.On("SaveConversion", ctx, advance, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := service.Convert(ctx, advance.ID)
		require.NoError(t, err)

		// the amount is still owed, so the invoice is an ordinary issued one
		assert.Equal(t, "ISSUED", resp.Status)
		require.Len(t, resp.Items, len(advance.Items))
		assert.Equal(t, advance.Total.String(), resp.Total.String())
		require.NotNil(t, advance.LinkedInvoiceID)
	})

	t.Run("rejects an already converted advance", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newConversionService(invoiceRepo)

		advance := newPaidAdvance(t, false)
		require.NoError(t, advance.LinkInvoice(uuid.New()))
		invoiceRepo.On("FindByID", ctx, advance.ID).Return(advance, nil)

		_, err := service.Convert(ctx, advance.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, invoicing.ErrAlreadyConverted)
		invoiceRepo.AssertNotCalled(t, "SaveConversion", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed save leaves no link behind on the regular side", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newConversionService(invoiceRepo)

		advance := newPaidAdvance(t, false)
		invoiceRepo.On("FindByID", ctx, advance.ID).Return(advance, nil)
		invoiceRepo.On("MaxSequenceInPartition", ctx, invoicing.DocumentTypeRegular, time.Now().Year()).Return(int64(0), nil)
		invoiceRepo.On("SaveConversion", ctx, advance, mock.AnythingOfType("*invoicing.Invoice")).Return(assert.AnError)

		_, err := service.Convert(ctx, advance.ID)
		require.Error(t, err)
	})

	t.Run("honours the configured payment term", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		service := newConversionService(invoiceRepo, WithConversionDueDays(30))

		advance := newPaidAdvance(t, false)
		invoiceRepo.On("FindByID", ctx, advance.ID).Return(advance, nil)
		invoiceRepo.On("MaxSequenceInPartition", ctx, invoicing.DocumentTypeRegular, time.Now().Year()).Return(int64(0), nil)
		invoiceRepo.On("SaveConversion", ctx, advance, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := service.Convert(ctx, advance.ID)
		require.NoError(t, err)
		assert.Equal(t, resp.IssueDate.AddDate(0, 0, 30), resp.DueDate)
	})
}

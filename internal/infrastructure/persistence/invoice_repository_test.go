package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("returns ErrNotFound when no row matches", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormInvoiceRepository(db.DB)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), id)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_MaxSequenceInPartition(t *testing.T) {
	t.Run("returns highest sequence among matching numbers", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormInvoiceRepository(db.DB)

		mock.ExpectQuery(`SELECT "number" FROM "invoices" WHERE number LIKE \$1`).
			WithArgs("F2025-%").
			WillReturnRows(sqlmock.NewRows([]string{"number"}).
				AddRow("F2025-000001").
				AddRow("F2025-000017").
				AddRow("F2025-000009"))

		max, err := repo.MaxSequenceInPartition(context.Background(), invoicing.DocumentTypeRegular, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(17), max)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero for an empty partition", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormInvoiceRepository(db.DB)

		mock.ExpectQuery(`SELECT "number" FROM "invoices" WHERE number LIKE \$1`).
			WithArgs("ZF2026-%").
			WillReturnRows(sqlmock.NewRows([]string{"number"}))

		max, err := repo.MaxSequenceInPartition(context.Background(), invoicing.DocumentTypeAdvance, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(0), max)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_CountLinkingTo(t *testing.T) {
	t.Run("counts inbound conversion links", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormInvoiceRepository(db.DB)
		id := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE linked_invoice_id = \$1 AND deleted_at IS NULL`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		count, err := repo.CountLinkingTo(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("version mismatch maps to concurrency conflict", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormInvoiceRepository(db.DB)
		inv := newStoredInvoice(t)

		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), inv)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// newStoredInvoice builds an invoice the way it would come back from
// persistence, with an assigned number and bumped version.
func newStoredInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()

	item, err := invoicing.NewInvoiceItem("Konzultace", dec(1), dec(1000), dec(21), "hod")
	require.NoError(t, err)

	inv, err := invoicing.NewInvoice(
		invoicing.DocumentTypeRegular,
		invoicing.DirectionIssued,
		uuid.New(),
		"Test klient s.r.o.",
		mustDate(2025, 3, 10),
		mustDate(2025, 3, 24),
		"CZK",
		invoicing.PaymentMethodTransfer,
		false,
		true,
		[]invoicing.InvoiceItem{item},
		"",
	)
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("F2025-000001"))
	require.NoError(t, inv.Issue())
	return inv
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func mustDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"postgres unique violation", &pq.Error{Code: "23505"}, true},
		{"postgres other error", &pq.Error{Code: "23503"}, false},
		{"sqlite unique violation", errors.New("UNIQUE constraint failed: invoices.number"), true},
		{"duplicate key message", errors.New(`duplicate key value violates unique constraint "idx_invoices_number"`), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueViolation(tt.err))
		})
	}
}

package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries.
// Soft-deleted invoices are excluded unless IncludeDeleted is set.
type InvoiceFilter struct {
	shared.Filter
	DocumentType   *DocumentType  // Filter by document type
	Direction      *Direction     // Filter by direction
	Status         *InvoiceStatus // Filter by stored status
	ClientID       *uuid.UUID     // Filter by client
	Year           *int           // Filter by issue year
	Number         *string        // Filter by exact invoice number
	IssuedFrom     *time.Time     // Filter by issue date range start
	IssuedTo       *time.Time     // Filter by issue date range end
	DueFrom        *time.Time     // Filter by due date range start
	DueTo          *time.Time     // Filter by due date range end
	Overdue        *bool          // Filter only invoices past due and unpaid
	Search         string         // Case-insensitive match on number, client name, note
	IncludeDeleted bool           // Include soft-deleted invoices
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID, excluding soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its assigned number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindAll finds invoices matching the filter, newest first
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// MaxSequenceInPartition returns the highest sequence number already
	// issued within the (documentType, year) numbering partition, including
	// soft-deleted and cancelled invoices so their numbers are never reused.
	MaxSequenceInPartition(ctx context.Context, docType DocumentType, year int) (int64, error)

	// CountLinkingTo counts invoices whose conversion link points at the
	// given invoice, the guard for soft deletion.
	CountLinkingTo(ctx context.Context, id uuid.UUID) (int64, error)

	// Save creates or updates an invoice. A unique-number violation is
	// reported as ErrDuplicateNumber.
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking; a version mismatch is
	// reported as shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// SaveConversion persists the regular invoice created by a conversion
	// and the updated advance invoice atomically, so the symmetric link is
	// never half-written.
	SaveConversion(ctx context.Context, advance, regular *Invoice) error
}

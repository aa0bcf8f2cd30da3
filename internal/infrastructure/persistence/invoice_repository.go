package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID, excluding soft-deleted ones
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its assigned number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("number = ? AND deleted_at IS NULL", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	query = r.applyInvoiceFilter(query, filter)
	query = r.applyPagination(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	query = r.applyInvoiceFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MaxSequenceInPartition returns the highest sequence already issued within
// the (documentType, year) partition. Soft-deleted and cancelled invoices
// are included so their numbers are never handed out again. Parsing happens
// in Go so the query stays portable between postgres and sqlite.
func (r *GormInvoiceRepository) MaxSequenceInPartition(ctx context.Context, docType invoicing.DocumentType, year int) (int64, error) {
	prefix := fmt.Sprintf("%s%d-", invoicing.NumberPrefix(docType), year)

	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("number LIKE ?", prefix+"%").
		Pluck("number", &numbers).Error; err != nil {
		return 0, err
	}

	var max int64
	for _, number := range numbers {
		if seq := invoicing.ParseSequence(number, docType, year); seq > max {
			max = seq
		}
	}
	return max, nil
}

// CountLinkingTo counts invoices whose conversion link points at the given
// invoice. Used as the guard before soft deletion.
func (r *GormInvoiceRepository) CountLinkingTo(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("linked_invoice_id = ? AND deleted_at IS NULL", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return invoicing.ErrDuplicateNumber
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return invoicing.ErrDuplicateNumber
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveConversion persists the regular invoice created by a conversion and
// the updated advance invoice in a single transaction, so the symmetric
// link between them is never half-written.
func (r *GormInvoiceRepository) SaveConversion(ctx context.Context, advance, regular *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		regularModel := models.InvoiceModelFromDomain(regular)
		if err := tx.Create(regularModel).Error; err != nil {
			if isUniqueViolation(err) {
				return invoicing.ErrDuplicateNumber
			}
			return err
		}

		advanceModel := models.InvoiceModelFromDomain(advance)
		result := tx.Model(advanceModel).
			Where("id = ? AND version = ?", advance.ID, advance.Version-1).
			Select("*").
			Omit("id", "created_at").
			Updates(advanceModel)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// applyInvoiceFilter applies filter conditions without pagination
func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if filter.DocumentType != nil {
		query = query.Where("document_type = ?", *filter.DocumentType)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Year != nil {
		start := time.Date(*filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("issue_date >= ? AND issue_date < ?", start, start.AddDate(1, 0, 0))
	}
	if filter.Number != nil {
		query = query.Where("number = ?", *filter.Number)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil {
		today := time.Now().Truncate(24 * time.Hour)
		if *filter.Overdue {
			query = query.Where("status = ? AND due_date < ?", invoicing.InvoiceStatusIssued, today)
		} else {
			query = query.Where("NOT (status = ? AND due_date < ?)", invoicing.InvoiceStatusIssued, today)
		}
	}
	if filter.Search != "" {
		// LOWER + LIKE instead of ILIKE so the same query runs on sqlite
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(client_name) LIKE ? OR LOWER(note) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	return query
}

// applyPagination applies sorting and pagination
func (r *GormInvoiceRepository) applyPagination(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// isUniqueViolation reports whether err is a unique-constraint violation
// from either the postgres or the sqlite driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

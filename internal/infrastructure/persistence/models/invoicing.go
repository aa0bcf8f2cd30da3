package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/domain/shared/valueobject"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Number is nullable so drafts without an assigned number do not collide
// on the unique index.
type InvoiceModel struct {
	AggregateModel
	DocumentType     invoicing.DocumentType  `gorm:"type:varchar(20);not null;index"`
	Direction        invoicing.Direction     `gorm:"type:varchar(20);not null;index"`
	Number           *string                 `gorm:"type:varchar(30);uniqueIndex:idx_invoices_number"`
	VariableSymbol   string                  `gorm:"type:varchar(20);index"`
	ClientID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	ClientName       string                  `gorm:"type:varchar(200);not null"`
	IssueDate        time.Time               `gorm:"not null;index"`
	DueDate          time.Time               `gorm:"not null;index"`
	TaxDate          time.Time               `gorm:"not null"`
	Currency         string                  `gorm:"type:varchar(3);not null"`
	PaymentMethod    invoicing.PaymentMethod `gorm:"type:varchar(20);not null"`
	PricesIncludeVAT bool                    `gorm:"not null;default:false"`
	VATApplicable    bool                    `gorm:"not null;default:true"`
	AutoConvert      bool                    `gorm:"column:auto_convert_on_payment;not null;default:false"`
	Items            invoicing.InvoiceItems  `gorm:"type:jsonb;default:'[]'"`
	Subtotal         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	VATAmount        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Total            decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status           invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	LinkedInvoiceID  *uuid.UUID              `gorm:"type:uuid;index"`
	Note             string                  `gorm:"type:text"`
	PaidAt           *time.Time
	CancelledAt      *time.Time
	CancelReason     string     `gorm:"type:varchar(500)"`
	DeletedAt        *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	number := ""
	if m.Number != nil {
		number = *m.Number
	}
	return &invoicing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		DocumentType:         m.DocumentType,
		Direction:            m.Direction,
		Number:               number,
		VariableSymbol:       m.VariableSymbol,
		ClientID:             m.ClientID,
		ClientName:           m.ClientName,
		IssueDate:            m.IssueDate,
		DueDate:              m.DueDate,
		TaxDate:              m.TaxDate,
		Currency:             valueobject.Currency(m.Currency),
		PaymentMethod:        m.PaymentMethod,
		PricesIncludeVAT:     m.PricesIncludeVAT,
		VATApplicable:        m.VATApplicable,
		AutoConvertOnPayment: m.AutoConvert,
		Items:                m.Items,
		Subtotal:             m.Subtotal,
		VATAmount:            m.VATAmount,
		Total:                m.Total,
		Status:               m.Status,
		LinkedInvoiceID:      m.LinkedInvoiceID,
		Note:                 m.Note,
		PaidAt:               m.PaidAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
		DeletedAt:            m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.DocumentType = inv.DocumentType
	m.Direction = inv.Direction
	if inv.Number == "" {
		m.Number = nil
	} else {
		number := inv.Number
		m.Number = &number
	}
	m.VariableSymbol = inv.VariableSymbol
	m.ClientID = inv.ClientID
	m.ClientName = inv.ClientName
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.TaxDate = inv.TaxDate
	m.Currency = inv.Currency.String()
	m.PaymentMethod = inv.PaymentMethod
	m.PricesIncludeVAT = inv.PricesIncludeVAT
	m.VATApplicable = inv.VATApplicable
	m.AutoConvert = inv.AutoConvertOnPayment
	m.Items = inv.Items
	m.Subtotal = inv.Subtotal
	m.VATAmount = inv.VATAmount
	m.Total = inv.Total
	m.Status = inv.Status
	m.LinkedInvoiceID = inv.LinkedInvoiceID
	m.Note = inv.Note
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
	m.DeletedAt = inv.DeletedAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

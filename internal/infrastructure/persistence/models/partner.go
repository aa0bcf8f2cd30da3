package models

import (
	"github.com/TOPOSV/Fakturace/internal/domain/partner"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	AggregateModel
	Name        string               `gorm:"type:varchar(200);not null;index"`
	ICO         string               `gorm:"type:varchar(8);index"`
	DIC         string               `gorm:"type:varchar(12)"`
	IsVATPayer  bool                 `gorm:"not null;default:false"`
	Street      string               `gorm:"type:varchar(200)"`
	City        string               `gorm:"type:varchar(100)"`
	PostalCode  string               `gorm:"type:varchar(20)"`
	Country     string               `gorm:"type:varchar(100)"`
	ContactName string               `gorm:"type:varchar(200)"`
	Email       string               `gorm:"type:varchar(254)"`
	Phone       string               `gorm:"type:varchar(30)"`
	IBAN        string               `gorm:"type:varchar(34)"`
	BankAccount string               `gorm:"type:varchar(30)"`
	Status      partner.ClientStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	Note        string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:        m.Name,
		ICO:         m.ICO,
		DIC:         m.DIC,
		IsVATPayer:  m.IsVATPayer,
		Street:      m.Street,
		City:        m.City,
		PostalCode:  m.PostalCode,
		Country:     m.Country,
		ContactName: m.ContactName,
		Email:       m.Email,
		Phone:       m.Phone,
		IBAN:        m.IBAN,
		BankAccount: m.BankAccount,
		Status:      m.Status,
		Note:        m.Note,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.ICO = c.ICO
	m.DIC = c.DIC
	m.IsVATPayer = c.IsVATPayer
	m.Street = c.Street
	m.City = c.City
	m.PostalCode = c.PostalCode
	m.Country = c.Country
	m.ContactName = c.ContactName
	m.Email = c.Email
	m.Phone = c.Phone
	m.IBAN = c.IBAN
	m.BankAccount = c.BankAccount
	m.Status = c.Status
	m.Note = c.Note
}

// ClientModelFromDomain creates a new persistence model from a domain Client.
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

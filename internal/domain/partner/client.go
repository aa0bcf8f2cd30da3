package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusArchived ClientStatus = "archived"
)

// IsValid checks if the status is a valid ClientStatus
func (s ClientStatus) IsValid() bool {
	return s == ClientStatusActive || s == ClientStatusArchived
}

// Client represents a business partner invoices are issued to or received
// from. It is the aggregate root for client-related operations.
type Client struct {
	shared.BaseAggregateRoot
	Name        string       `json:"name"`
	ICO         string       `json:"ico"` // Czech company identifier, 8 digits
	DIC         string       `json:"dic"` // VAT identifier, e.g. CZ12345678
	IsVATPayer  bool         `json:"is_vat_payer"`
	Street      string       `json:"street"`
	City        string       `json:"city"`
	PostalCode  string       `json:"postal_code"`
	Country     string       `json:"country"`
	ContactName string       `json:"contact_name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	IBAN        string       `json:"iban"`
	BankAccount string       `json:"bank_account"` // Domestic account number format
	Status      ClientStatus `json:"status"`
	Note        string       `json:"note"`
}

// NewClient creates a new client with required fields
func NewClient(name, ico, dic string, isVATPayer bool) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	if ico != "" {
		if err := ValidateICO(ico); err != nil {
			return nil, err
		}
	}
	if dic != "" {
		if err := ValidateDIC(dic); err != nil {
			return nil, err
		}
	}

	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ICO:               ico,
		DIC:               strings.ToUpper(dic),
		IsVATPayer:        isVATPayer,
		Country:           "Česká republika",
		Status:            ClientStatusActive,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// Update updates the client's identification fields
func (c *Client) Update(name, ico, dic string, isVATPayer bool) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	if ico != "" {
		if err := ValidateICO(ico); err != nil {
			return err
		}
	}
	if dic != "" {
		if err := ValidateDIC(dic); err != nil {
			return err
		}
	}

	c.Name = name
	c.ICO = ico
	c.DIC = strings.ToUpper(dic)
	c.IsVATPayer = isVATPayer
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// SetAddress sets the client's address
func (c *Client) SetAddress(street, city, postalCode, country string) error {
	if street != "" && len(street) > 200 {
		return shared.NewDomainError("INVALID_ADDRESS", "Street cannot exceed 200 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_ADDRESS", "City cannot exceed 100 characters")
	}
	if postalCode != "" && len(postalCode) > 20 {
		return shared.NewDomainError("INVALID_ADDRESS", "Postal code cannot exceed 20 characters")
	}

	c.Street = street
	c.City = city
	c.PostalCode = postalCode
	if country != "" {
		c.Country = country
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetContact sets the client's contact information
func (c *Client) SetContact(contactName, email, phone string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}

	c.ContactName = contactName
	c.Email = email
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetBankDetails sets the client's payment coordinates
func (c *Client) SetBankDetails(iban, bankAccount string) error {
	if iban != "" {
		if err := validateIBAN(iban); err != nil {
			return err
		}
	}
	if bankAccount != "" && len(bankAccount) > 50 {
		return shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account cannot exceed 50 characters")
	}

	c.IBAN = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	c.BankAccount = bankAccount
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetNote sets a free-form note on the client
func (c *Client) SetNote(note string) {
	c.Note = note
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Archive marks the client as archived; archived clients are kept for
// existing invoices but hidden from selection
func (c *Client) Archive() error {
	if c.Status == ClientStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Client is already archived")
	}

	c.Status = ClientStatusArchived
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate re-activates an archived client
func (c *Client) Activate() error {
	if c.Status == ClientStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Client is already active")
	}

	c.Status = ClientStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// IsActive returns true if the client can be used on new invoices
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

var icoDigits = regexp.MustCompile(`^\d{8}$`)

// ValidateICO checks the Czech company identifier: exactly eight digits with
// a weighted mod-11 check digit.
func ValidateICO(ico string) error {
	if !icoDigits.MatchString(ico) {
		return shared.NewDomainError("INVALID_ICO", "ICO must be exactly 8 digits")
	}

	sum := 0
	for i := 0; i < 7; i++ {
		sum += int(ico[i]-'0') * (8 - i)
	}
	check := (11 - sum%11) % 10
	if int(ico[7]-'0') != check {
		return shared.NewDomainError("INVALID_ICO", "ICO check digit does not match")
	}
	return nil
}

var dicPattern = regexp.MustCompile(`^[A-Z]{2}\d{8,10}$`)

// ValidateDIC checks the VAT identifier format: a two-letter country code
// followed by 8 to 10 digits
func ValidateDIC(dic string) error {
	if !dicPattern.MatchString(strings.ToUpper(dic)) {
		return shared.NewDomainError("INVALID_DIC", "DIC must be a country code followed by 8-10 digits")
	}
	return nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	validEmail := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	if !validEmail.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	validPhone := regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateIBAN(iban string) error {
	normalized := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	validIBAN := regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{1,30}$`)
	if !validIBAN.MatchString(normalized) {
		return shared.NewDomainError("INVALID_IBAN", "Invalid IBAN format")
	}
	return nil
}

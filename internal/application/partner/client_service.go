package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TOPOSV/Fakturace/internal/domain/partner"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/logger"
)

// ClientService provides application-level client operations
type ClientService struct {
	clientRepo partner.ClientRepository
	registry   partner.CompanyRegistry
}

// ClientServiceOption is a functional option for configuring ClientService
type ClientServiceOption func(*ClientService)

// WithCompanyRegistry wires the public business registry used to prefill
// client data by company identifier. Without it, prefill is unavailable.
func WithCompanyRegistry(registry partner.CompanyRegistry) ClientServiceOption {
	return func(s *ClientService) {
		s.registry = registry
	}
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, opts ...ClientServiceOption) *ClientService {
	s := &ClientService{clientRepo: clientRepo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClientRequest represents the payload for creating a client
type CreateClientRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	ICO         string `json:"ico"`
	DIC         string `json:"dic"`
	IsVATPayer  bool   `json:"is_vat_payer"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	IBAN        string `json:"iban"`
	BankAccount string `json:"bank_account"`
	Note        string `json:"note"`
}

// UpdateClientRequest represents the payload for updating a client
type UpdateClientRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	ICO         string `json:"ico"`
	DIC         string `json:"dic"`
	IsVATPayer  bool   `json:"is_vat_payer"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	IBAN        string `json:"iban"`
	BankAccount string `json:"bank_account"`
	Note        string `json:"note"`
}

// ClientResponse represents client data in API responses
type ClientResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ICO         string    `json:"ico"`
	DIC         string    `json:"dic"`
	IsVATPayer  bool      `json:"is_vat_payer"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	ContactName string    `json:"contact_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	IBAN        string    `json:"iban"`
	BankAccount string    `json:"bank_account"`
	Status      string    `json:"status"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompanyPrefillResponse represents registry data used to prefill a client form
type CompanyPrefillResponse struct {
	ICO        string `json:"ico"`
	DIC        string `json:"dic"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	IsVATPayer bool   `json:"is_vat_payer"`
}

// ClientListFilter represents query parameters for listing clients
type ClientListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=active archived"`
	ICO      string `form:"ico"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, req.ICO, req.DIC, req.IsVATPayer)
	if err != nil {
		return nil, err
	}
	if err := s.applyDetails(client, req.Street, req.City, req.PostalCode, req.Country,
		req.ContactName, req.Email, req.Phone, req.IBAN, req.BankAccount, req.Note); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("name", client.Name))

	return toClientResponse(client), nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// ListClients retrieves clients matching the filter
func (s *ClientService) ListClients(ctx context.Context, filter ClientListFilter) (*shared.Paginated[ClientResponse], error) {
	domainFilter := s.toDomainFilter(filter)

	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *toClientResponse(&clients[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateClient updates an existing client
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := client.Update(req.Name, req.ICO, req.DIC, req.IsVATPayer); err != nil {
		return nil, err
	}
	if err := s.applyDetails(client, req.Street, req.City, req.PostalCode, req.Country,
		req.ContactName, req.Email, req.Phone, req.IBAN, req.BankAccount, req.Note); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// ArchiveClient archives a client so it no longer appears for new invoices
func (s *ClientService) ArchiveClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Archive(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// ActivateClient re-activates an archived client
func (s *ClientService) ActivateClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Activate(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// DeleteClient removes a client
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.L(ctx).Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

// PrefillFromRegistry looks up a company in the public registry so a new
// client form can be prefilled from its identifier.
func (s *ClientService) PrefillFromRegistry(ctx context.Context, ico string) (*CompanyPrefillResponse, error) {
	if s.registry == nil {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidState, "Company registry lookup is not configured")
	}
	if err := partner.ValidateICO(ico); err != nil {
		return nil, err
	}

	record, err := s.registry.LookupByICO(ctx, ico)
	if err != nil {
		return nil, err
	}

	return &CompanyPrefillResponse{
		ICO:        record.ICO,
		DIC:        record.DIC,
		Name:       record.Name,
		Street:     record.Street,
		City:       record.City,
		PostalCode: record.PostalCode,
		IsVATPayer: record.IsVATPayer,
	}, nil
}

// applyDetails sets the optional client detail groups in one pass
func (s *ClientService) applyDetails(client *partner.Client, street, city, postalCode, country, contactName, email, phone, iban, bankAccount, note string) error {
	if err := client.SetAddress(street, city, postalCode, country); err != nil {
		return err
	}
	if err := client.SetContact(contactName, email, phone); err != nil {
		return err
	}
	if err := client.SetBankDetails(iban, bankAccount); err != nil {
		return err
	}
	client.SetNote(note)
	return nil
}

// toDomainFilter converts the API filter to the domain filter
func (s *ClientService) toDomainFilter(filter ClientListFilter) partner.ClientFilter {
	domainFilter := partner.ClientFilter{
		Filter: shared.DefaultFilter(),
		Search: filter.Search,
	}
	if filter.Status != "" {
		status := partner.ClientStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.ICO != "" {
		domainFilter.ICO = &filter.ICO
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	return domainFilter
}

// toClientResponse converts a domain client to the API representation
func toClientResponse(client *partner.Client) *ClientResponse {
	return &ClientResponse{
		ID:          client.ID,
		Name:        client.Name,
		ICO:         client.ICO,
		DIC:         client.DIC,
		IsVATPayer:  client.IsVATPayer,
		Street:      client.Street,
		City:        client.City,
		PostalCode:  client.PostalCode,
		Country:     client.Country,
		ContactName: client.ContactName,
		Email:       client.Email,
		Phone:       client.Phone,
		IBAN:        client.IBAN,
		BankAccount: client.BankAccount,
		Status:      string(client.Status),
		Note:        client.Note,
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}

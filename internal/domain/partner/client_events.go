package partner

import (
	"github.com/google/uuid"

	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated = "ClientCreated"
	EventTypeClientUpdated = "ClientUpdated"
)

// ClientCreatedEvent is published when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID `json:"client_id"`
	Name       string    `json:"name"`
	ICO        string    `json:"ico,omitempty"`
	IsVATPayer bool      `json:"is_vat_payer"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
		ICO:             client.ICO,
		IsVATPayer:      client.IsVATPayer,
	}
}

// ClientUpdatedEvent is published when a client is updated
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID `json:"client_id"`
	Name       string    `json:"name"`
	ICO        string    `json:"ico,omitempty"`
	DIC        string    `json:"dic,omitempty"`
	IsVATPayer bool      `json:"is_vat_payer"`
}

// NewClientUpdatedEvent creates a new ClientUpdatedEvent
func NewClientUpdatedEvent(client *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
		ICO:             client.ICO,
		DIC:             client.DIC,
		IsVATPayer:      client.IsVATPayer,
	}
}

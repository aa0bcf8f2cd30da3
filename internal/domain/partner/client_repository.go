package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/TOPOSV/Fakturace/internal/domain/shared"
)

// ClientFilter defines filtering options for client queries
type ClientFilter struct {
	shared.Filter
	Status *ClientStatus // Filter by status
	ICO    *string       // Filter by exact company identifier
	Search string        // Case-insensitive match on name, ICO, email
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByICO finds a client by its company identifier
	FindByICO(ctx context.Context, ico string) (*Client, error)

	// FindAll finds all clients matching the filter
	FindAll(ctx context.Context, filter ClientFilter) ([]Client, error)

	// Count counts clients matching the filter
	Count(ctx context.Context, filter ClientFilter) (int64, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Delete removes a client
	Delete(ctx context.Context, id uuid.UUID) error
}

package memory

import (
	"context"
	"sort"
	"sync"

	clients "billing-cloud/internal/clients/domain"
)

// ClientRepository is an in-memory repository for clients.
type ClientRepository struct {
	mu   sync.RWMutex
	data map[string]clients.Client
}

// NewClientRepository constructs a repository.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{data: make(map[string]clients.Client)}
}

// Create stores a client.
func (r *ClientRepository) Create(ctx context.Context, client *clients.Client) error {
	_ = ctx
	if client == nil {
		return clients.ErrClientNotFound
	}
	r.mu.Lock()
	r.data[client.ID] = *client
	r.mu.Unlock()
	return nil
}

// GetByID loads one client, (nil, nil) when missing.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*clients.Client, error) {
	_ = ctx
	r.mu.RLock()
	client, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &client, nil
}

// List returns all clients ordered by legal name.
func (r *ClientRepository) List(ctx context.Context) ([]clients.Client, error) {
	_ = ctx
	r.mu.RLock()
	out := make([]clients.Client, 0, len(r.data))
	for _, client := range r.data {
		out = append(out, client)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].LegalName < out[j].LegalName })
	return out, nil
}

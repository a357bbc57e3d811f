package store

import (
	"context"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/repository"
	"gitlab.com/yelinaung/invoicekit/internal/validation"
)

// LoadClients returns every client.
func (s *Store) LoadClients(ctx context.Context) []models.Client {
	return read(ctx, s, s.clients)
}

// SaveClient creates or replaces a client. A missing id is assigned.
func (s *Store) SaveClient(ctx context.Context, c models.Client) (models.Client, error) {
	if err := validation.Client(c); err != nil {
		return models.Client{}, err
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	err := mutate(ctx, s, s.clients, func(clients []models.Client) ([]models.Client, error) {
		return repository.Upsert(clients, c), nil
	})
	if err != nil {
		return models.Client{}, err
	}
	return c, nil
}

// LoadItems returns the catalog.
func (s *Store) LoadItems(ctx context.Context) []models.Item {
	return read(ctx, s, s.items)
}

// AddItem appends item to the catalog with a new id.
func (s *Store) AddItem(ctx context.Context, item models.Item) (models.Item, error) {
	if err := validation.Item(item); err != nil {
		return models.Item{}, err
	}
	item.ID = s.newID()
	err := mutate(ctx, s, s.items, func(items []models.Item) ([]models.Item, error) {
		return append(items, item), nil
	})
	if err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// ItemPatch lists the catalog fields to change. Nil fields are left as they are.
type ItemPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
}

// UpdateItem applies patch to the item with id.
func (s *Store) UpdateItem(ctx context.Context, id string, patch ItemPatch) (models.Item, error) {
	var updated models.Item
	err := mutate(ctx, s, s.items, func(items []models.Item) ([]models.Item, error) {
		i := repository.Index(items, id)
		if i < 0 {
			return nil, notFound(models.KindItems, id)
		}
		item := items[i]
		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Price != nil {
			item.Price = *patch.Price
		}
		if err := validation.Item(item); err != nil {
			return nil, err
		}
		items[i] = item
		updated = item
		return items, nil
	})
	if err != nil {
		return models.Item{}, err
	}
	return updated, nil
}

// DeleteItem removes the item with id from the catalog.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return mutate(ctx, s, s.items, func(items []models.Item) ([]models.Item, error) {
		next, removed := repository.Remove(items, id)
		if !removed {
			return nil, notFound(models.KindItems, id)
		}
		return next, nil
	})
}

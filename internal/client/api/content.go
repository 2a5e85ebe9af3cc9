package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/caminho-app/caminho/internal/client/models"
)

// CreateContentItem persists a new content record with fully resolved media
// URLs and returns the stored item.
func (c *Client) CreateContentItem(ctx context.Context, fields models.ContentFields) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := c.call(ctx, http.MethodPost, "/content", fields, &item); err != nil {
		return nil, fmt.Errorf("creating content item: %w", err)
	}
	return &item, nil
}

// UpdateContentItem replaces an existing record.
func (c *Client) UpdateContentItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error) {
	var updated models.ContentItem
	if err := c.call(ctx, http.MethodPut, "/content/"+item.ID, item, &updated); err != nil {
		return nil, fmt.Errorf("updating content item %s: %w", item.ID, err)
	}
	return &updated, nil
}

// ListContentItems fetches the full catalogue.
func (c *Client) ListContentItems(ctx context.Context) ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := c.call(ctx, http.MethodGet, "/content", nil, &items); err != nil {
		return nil, fmt.Errorf("listing content items: %w", err)
	}
	return items, nil
}

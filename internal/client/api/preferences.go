package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/caminho-app/caminho/internal/client/models"
)

// SavePushSubscription stores the platform subscription reference against
// the user so the backend can address this device.
func (c *Client) SavePushSubscription(ctx context.Context, userID string, sub models.PushSubscription) error {
	if err := c.call(ctx, http.MethodPost, "/users/"+userID+"/push-subscription", sub, nil); err != nil {
		return fmt.Errorf("saving push subscription: %w", err)
	}
	return nil
}

// RemovePushSubscription deletes the stored subscription reference,
// identified by its endpoint.
func (c *Client) RemovePushSubscription(ctx context.Context, sub models.PushSubscription) error {
	in := map[string]string{"endpoint": sub.Endpoint}
	if err := c.call(ctx, http.MethodDelete, "/push-subscriptions", in, nil); err != nil {
		return fmt.Errorf("removing push subscription: %w", err)
	}
	return nil
}

// UpdatePushPreference sets the user-level "push enabled" flag.
func (c *Client) UpdatePushPreference(ctx context.Context, userID string, enabled bool) error {
	in := map[string]bool{"pushEnabled": enabled}
	if err := c.call(ctx, http.MethodPatch, "/users/"+userID+"/preferences", in, nil); err != nil {
		return fmt.Errorf("updating push preference: %w", err)
	}
	return nil
}

// GetPushPreference reads the persisted "push enabled" flag.
func (c *Client) GetPushPreference(ctx context.Context, userID string) (bool, error) {
	var out struct {
		PushEnabled bool `json:"pushEnabled"`
	}
	if err := c.call(ctx, http.MethodGet, "/users/"+userID+"/preferences", nil, &out); err != nil {
		return false, fmt.Errorf("reading push preference: %w", err)
	}
	return out.PushEnabled, nil
}

// Package push reconciles the three independent sources of push-notification
// truth: platform permission, the platform subscription, and the persisted
// user preference. The displayed state is always re-derived from fresh reads,
// never trusted from a cached flag.
package push

import (
	"context"
	"fmt"
	"sync"

	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/common"
	"github.com/caminho-app/caminho/internal/logging"
	"github.com/caminho-app/caminho/internal/metrics"
)

// Permission is the platform notification permission state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Platform abstracts the push service the browser/OS exposes. Subscriptions
// can be revoked out-of-band (settings change, expiry), so callers must treat
// every read as potentially stale the moment it returns.
type Platform interface {
	Permission(ctx context.Context) (Permission, error)
	// Subscribe creates a subscription keyed to the application. Prompting
	// the user is the platform's business; a denied prompt surfaces as an
	// error.
	Subscribe(ctx context.Context, applicationKey string) (*models.PushSubscription, error)
	// GetSubscription returns the active subscription, or nil when none.
	GetSubscription(ctx context.Context) (*models.PushSubscription, error)
	// Unsubscribe is idempotent: tearing down an already-gone subscription
	// is not an error.
	Unsubscribe(ctx context.Context, sub *models.PushSubscription) error
}

// PreferenceAPI is the backend slice storing the user's push state.
type PreferenceAPI interface {
	SavePushSubscription(ctx context.Context, userID string, sub models.PushSubscription) error
	RemovePushSubscription(ctx context.Context, sub models.PushSubscription) error
	UpdatePushPreference(ctx context.Context, userID string, enabled bool) error
	GetPushPreference(ctx context.Context, userID string) (bool, error)
}

// Controller mediates enable/disable transitions. Transitions are serialized:
// a second call blocks until the first finishes.
type Controller struct {
	platform Platform
	prefs    PreferenceAPI
	appKey   string
	log      logging.Logger
	metrics  metrics.Collector

	mu sync.Mutex
}

func NewController(platform Platform, prefs PreferenceAPI, applicationKey string, log logging.Logger, m metrics.Collector) *Controller {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Controller{platform: platform, prefs: prefs, appKey: applicationKey, log: log, metrics: m}
}

// Enable turns push on for the user: it ensures a platform subscription
// exists (reusing one rather than duplicating), stores its reference, then
// flips the preference flag. The flag is only set after the reference is
// stored, and rolled back if the flag write fails, so the two persisted
// records never disagree in the "flag on, no subscription" direction.
func (c *Controller) Enable(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	perm, err := c.platform.Permission(ctx)
	if err != nil {
		return fmt.Errorf("reading push permission: %w", err)
	}
	if perm == PermissionDenied {
		// Prompts are one-shot; never waste one on a known-denied state.
		return common.ErrPermissionBlocked
	}

	sub, err := c.platform.GetSubscription(ctx)
	if err != nil {
		return fmt.Errorf("reading push subscription: %w", err)
	}
	if sub == nil {
		sub, err = c.platform.Subscribe(ctx, c.appKey)
		if err != nil {
			return fmt.Errorf("subscribing to push: %w", err)
		}
	}

	if err := c.prefs.SavePushSubscription(ctx, userID, *sub); err != nil {
		return fmt.Errorf("storing subscription reference: %w", err)
	}

	if err := c.prefs.UpdatePushPreference(ctx, userID, true); err != nil {
		if rerr := c.prefs.RemovePushSubscription(ctx, *sub); rerr != nil {
			c.log.Error(ctx, "rollback of stored subscription failed", "error", rerr)
		}
		return fmt.Errorf("enabling push preference: %w", err)
	}

	c.metrics.RecordPushEnabled()
	c.log.Info(ctx, "push enabled", "endpoint", sub.Endpoint)
	return nil
}

// Disable tears push down: platform unsubscribe (idempotent), stored
// reference removal, then the preference flag.
func (c *Controller) Disable(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, err := c.platform.GetSubscription(ctx)
	if err != nil {
		return fmt.Errorf("reading push subscription: %w", err)
	}

	if sub != nil {
		if err := c.platform.Unsubscribe(ctx, sub); err != nil {
			return fmt.Errorf("unsubscribing from push: %w", err)
		}
		if err := c.prefs.RemovePushSubscription(ctx, *sub); err != nil {
			return fmt.Errorf("removing subscription reference: %w", err)
		}
	}

	if err := c.prefs.UpdatePushPreference(ctx, userID, false); err != nil {
		return fmt.Errorf("disabling push preference: %w", err)
	}

	c.metrics.RecordPushDisabled()
	c.log.Info(ctx, "push disabled")
	return nil
}

// Enabled derives the effective state from fresh reads of both persisted
// sources. When they disagree the platform wins: a missing subscription
// means "off" no matter what the stored flag says, and the stale flag is
// cleared lazily.
func (c *Controller) Enabled(ctx context.Context, userID string) (bool, error) {
	sub, err := c.platform.GetSubscription(ctx)
	if err != nil {
		return false, fmt.Errorf("reading push subscription: %w", err)
	}

	pref, err := c.prefs.GetPushPreference(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("reading push preference: %w", err)
	}

	if sub == nil && pref {
		c.log.Warn(ctx, "reconciling push state", "error", common.ErrSubscriptionInconsistent)
		if err := c.prefs.UpdatePushPreference(ctx, userID, false); err != nil {
			c.log.Warn(ctx, "clearing stale push preference failed", "error", err)
		}
		return false, nil
	}

	return sub != nil && pref, nil
}

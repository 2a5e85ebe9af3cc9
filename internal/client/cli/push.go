package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/caminho-app/caminho/internal/common"
)

func (a *App) pushCmd(ctx context.Context, args []string) {
	userID := a.api.UserID()
	if userID == "" {
		fmt.Println("Log in first")
		return
	}

	sub := "status"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "on":
		err := a.push.Enable(ctx, userID)
		switch {
		case errors.Is(err, common.ErrPermissionBlocked):
			fmt.Println("Notifications are blocked; allow them in your system settings first")
		case err != nil:
			fmt.Println("Enabling push failed:", err)
		default:
			fmt.Println("Push notifications enabled")
		}

	case "off":
		if err := a.push.Disable(ctx, userID); err != nil {
			fmt.Println("Disabling push failed:", err)
			return
		}
		fmt.Println("Push notifications disabled")

	case "status":
		enabled, err := a.push.Enabled(ctx, userID)
		if err != nil {
			fmt.Println("Reading push state failed:", err)
			return
		}
		if enabled {
			fmt.Println("Push notifications are on")
		} else {
			fmt.Println("Push notifications are off")
		}

	default:
		fmt.Println("Usage: push on|off|status")
	}
}

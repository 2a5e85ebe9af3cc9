package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := a.api.Login(ctx, email, password); err != nil {
		fmt.Println("Login failed:", err)
		return
	}

	a.userEmail = email
	fmt.Println("Logged in")
}

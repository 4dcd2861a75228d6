package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/bookx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and stores the token and user on this device.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	password := cmd.String("password")
	if password == "" {
		return fmt.Errorf("%w: --password or $BOOKX_PASSWORD", shared.ErrMissingArgument)
	}

	shelf, err := r.bookshelf()
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "user", username, "api", r.api.BaseURL())

	user, err := r.session.Login(ctx, shelf, username, password)
	if err != nil {
		return err
	}

	r.writePlain("✓ Signed in as %s\n", user.Username)
	if exp, ok := r.session.Expiry(); ok {
		r.writePlain("Token expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthLogout clears the stored login.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	session, err := r.authSession()
	if err != nil {
		return err
	}
	if err := session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the stored login without contacting the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.authSession()
	if err != nil {
		return err
	}

	if _, err := session.Token(); err != nil {
		r.writePlain("Authentication: ✗ Not authenticated\n")
		r.writePlain("Reason: %v\n", err)
		return nil
	}

	r.writePlain("Authentication: ✓ Authenticated\n")
	if user := session.User(); user != nil {
		r.writePlain("User: %s\n", user.Username)
		if user.Email != "" {
			r.writePlain("Email: %s\n", user.Email)
		}
		if len(user.Roles) > 0 {
			roles := make([]string, len(user.Roles))
			for i, role := range user.Roles {
				roles[i] = string(role)
			}
			r.writePlain("Roles: %s\n", strings.Join(roles, ", "))
		}
	}
	if exp, ok := session.Expiry(); ok {
		r.writePlain("Expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	r.writePlain("API: %s\n", r.api.BaseURL())
	return nil
}

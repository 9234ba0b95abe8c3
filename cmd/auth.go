package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login resolves a user by exact name and saves it as the session.
//
// A password is never asked for: the backend only supports name lookup.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: user name", shared.ErrMissingArgument)
	}

	sess, err := r.sessions()
	if err != nil {
		return err
	}

	user, err := r.client(ctx).GetUserByName(ctx, name)
	if err != nil {
		r.logger.Debug("login lookup failed", "name", name, "error", err)
		return shared.ErrLoginFailed
	}

	if err := sess.Login(user); err != nil {
		return err
	}

	return r.emit(user, func() error {
		return r.writePlain("✓ Logged in as %s\n", user.Name)
	})
}

func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.sessions()
	if err != nil {
		return err
	}

	user := sess.Current()
	if err := sess.Logout(); err != nil {
		return err
	}

	if user == nil {
		return r.writePlain("Not logged in\n")
	}
	return r.writePlain("✓ Logged out %s\n", user.Name)
}

func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		return err
	}

	return r.emit(user, func() error {
		return r.writePlain("%s (user %d, scope %s)\n", user.Name, user.UserID, r.config.Session.Scope)
	})
}

// currentUser returns the session user or an error telling the user to log in.
func (r *Runner) currentUser() (*models.User, error) {
	sess, err := r.sessions()
	if err != nil {
		return nil, err
	}

	user, err := sess.Require()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return nil, fmt.Errorf("%w: run `promo login <name>` first", err)
	}
	return user, err
}

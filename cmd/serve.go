package main

import (
	"context"

	"github.com/desertthunder/promo/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the development backend on the configured database until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if cmd.Bool("seed") {
		user, err := server.Seed(db)
		if err != nil {
			return err
		}
		r.logger.Info("seeded demo data", "user", user.Name, "id", user.UserID)
	}

	token := r.config.Server.Token
	if cmd.IsSet("token") {
		token = cmd.String("token")
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	router := server.NewRouter(r.logger, server.BearerToken(token))
	router.Handler(server.NewPromotionHandler(db, r.logger))

	return server.New(addr, router, r.logger).Run(ctx)
}

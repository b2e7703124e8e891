package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wichananm65/digital-store-backend/internal/auth"
	"github.com/wichananm65/digital-store-backend/internal/category"
	"github.com/wichananm65/digital-store-backend/internal/config"
	"github.com/wichananm65/digital-store-backend/internal/database"
	"github.com/wichananm65/digital-store-backend/internal/database/migrations"
	"github.com/wichananm65/digital-store-backend/internal/logging"
	"github.com/wichananm65/digital-store-backend/internal/product"
	"github.com/wichananm65/digital-store-backend/internal/server"
	"github.com/wichananm65/digital-store-backend/internal/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env, cfg.LogLevel)

	addrFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "addr", Usage: "listen address, overrides APP_ADDR"}
	}
	cmd := &cli.Command{
		Name:   "digital-store",
		Usage:  "Digital store HTTP API",
		Flags:  []cli.Flag{addrFlag()},
		Action: serve(cfg, logger),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Flags:  []cli.Flag{addrFlag()},
				Action: serve(cfg, logger),
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrate(cfg, logger),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatal().Err(err).Msg("exiting")
	}
}

func serve(cfg config.Config, logger zerolog.Logger) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if addr := cmd.String("addr"); addr != "" {
			cfg.Addr = addr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		db, sqlDB, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		app := server.New(server.Deps{
			Logger:      logger,
			Credentials: auth.New(cfg.JWTSecret, cfg.JWTTTL, cfg.BcryptCost),
			Categories:  category.NewPostgresRepository(db),
			Products:    product.NewPostgresRepository(db),
			Users:       user.NewPostgresRepository(db),
			CORSOrigins: cfg.CORSOrigins,
			Ping:        sqlDB.PingContext,
		})

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.Addr).Str("env", cfg.Env).Msg("listening")
			errCh <- app.Listen(cfg.Addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}

func migrate(cfg config.Config, logger zerolog.Logger) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
		db, sqlDB, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := migrations.Migrate(db); err != nil {
			return err
		}
		logger.Info().Msg("migration complete")
		return nil
	}
}

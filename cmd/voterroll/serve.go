package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voterroll/internal/auth"
	"voterroll/internal/db"
	"voterroll/internal/gate"
	"voterroll/internal/search"
	"voterroll/internal/server"
	"voterroll/internal/store"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	voterRepo := store.NewVoterRepository(pool)

	uploader, err := newUploader(ctx, config, logger, voterRepo)
	if err != nil {
		return err
	}

	verifier := auth.NewHMACVerifier(config.AuthJWTSecret, config.AuthIssuer)
	if config.AuthJWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(ctx, config.AuthJWKSURL, config.AuthIssuer)
		if err != nil {
			return err
		}
	}
	if config.AuthJWTSecret == "" && config.AuthJWKSURL == "" {
		logger.Warn("no AUTH_JWT_SECRET or AUTH_JWKS_URL set, admin endpoints will refuse every request")
	}

	systemGate := gate.NewPoller(logger, config.SystemGateURL, gateTTL(config))

	srv, err := server.New(
		config,
		logger,
		uploader,
		search.New(voterRepo),
		voterRepo,
		voterRepo,
		systemGate,
		verifier,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

// Package server initializes and runs the authorization server. It wires
// the storage backend, the credential codec, and the token signer into the
// HTTP endpoint and handles graceful shutdown.
package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/credential"
	"github.com/gatehouse-auth/gatehouse/internal/logging"
	"github.com/gatehouse-auth/gatehouse/internal/server/auth"
	"github.com/gatehouse-auth/gatehouse/internal/server/config"
	"github.com/gatehouse-auth/gatehouse/internal/server/httpapi"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/dynamo"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/repomanager"
	"github.com/gatehouse-auth/gatehouse/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	codec   *credential.Codec
	handler *httpapi.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	signer, err := loadSigner(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	codec := credential.NewCodec(credential.Config{
		Iterations: cfg.HashIterations,
		Pepper:     []byte(cfg.TokenPepper),
	})

	client, err := dynamo.NewClient(ctx, dynamo.Config{
		Table:    cfg.Table,
		Region:   cfg.Region,
		Endpoint: cfg.DynamoEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	repos := repomanager.NewDynamoRepositoryManager(client, cfg.DynamoEndpoint != "")

	grants := services.NewGrantService(repos, codec, signer, logger,
		cfg.AccessTokenValidityDuration, cfg.RenewalTokenValidityDuration)
	users := services.NewUserService(repos, codec, logger)
	clients := services.NewClientService(repos, codec, logger)

	handler := httpapi.NewHandler(grants, users, clients, signer, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		repos:   repos,
		codec:   codec,
		handler: handler,
	}, nil
}

// loadSigner reads the configured key. When the key file is absent and the
// server points at a local store, an ephemeral key is generated instead so
// a dev instance starts without ceremony. Tokens from an ephemeral key do
// not survive a restart.
func loadSigner(ctx context.Context, cfg *config.Config, logger logging.Logger) (*auth.Signer, error) {
	signer, err := auth.NewSigner(auth.Config{
		KeyPath: cfg.SigningKeyPath,
		KeyID:   cfg.SigningKeyID,
		Issuer:  cfg.Issuer,
	})
	if err == nil {
		return signer, nil
	}
	if !errors.Is(err, os.ErrNotExist) || cfg.DynamoEndpoint == "" {
		return nil, fmt.Errorf("signing key init error: %w", err)
	}

	logger.Warn(ctx, "signing key not found, generating ephemeral key", "path", cfg.SigningKeyPath)
	key, genErr := rsa.GenerateKey(rand.Reader, 2048)
	if genErr != nil {
		return nil, genErr
	}
	return auth.NewSignerFromKey(key, cfg.SigningKeyID, cfg.Issuer)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) seed(ctx context.Context) error {
	result, err := services.Seed(ctx, app.repos, app.codec, app.logger)
	if err != nil {
		return err
	}
	if result.CreatedAdmin {
		// Shown once; the hash in storage is not recoverable.
		fmt.Printf("initial admin password: %s\n", result.AdminPassword)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repos.Bootstrap(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}

	if app.config.Seed {
		if err := app.seed(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			return
		}
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}

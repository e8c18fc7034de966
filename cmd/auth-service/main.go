package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dtroode/auth-service/internal/api/grpc/health"
	grpcrouter "github.com/dtroode/auth-service/internal/api/grpc/router"
	grpcserver "github.com/dtroode/auth-service/internal/api/grpc/server"
	"github.com/dtroode/auth-service/internal/api/http/handler"
	httprouter "github.com/dtroode/auth-service/internal/api/http/router"
	httpserver "github.com/dtroode/auth-service/internal/api/http/server"
	"github.com/dtroode/auth-service/internal/config"
	"github.com/dtroode/auth-service/internal/credential"
	"github.com/dtroode/auth-service/internal/keys"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/metrics"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/repository"
	"github.com/dtroode/auth-service/internal/server"
	"github.com/dtroode/auth-service/internal/service"
	storage "github.com/dtroode/auth-service/internal/storage/minio"
	"github.com/dtroode/auth-service/internal/token"
	"github.com/dtroode/auth-service/internal/tracing"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const healthCheckInterval = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	tracer, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Fatal("failed to set up tracing", "error", err)
	}

	stores, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer stores.Close()

	keySource, err := selectKeySource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to configure signing key", "error", err)
	}
	provider, err := keys.Load(ctx, keySource, cfg.Keys.ID)
	if err != nil {
		logger.Fatal("failed to load signing key", "error", err)
	}
	logger.Info("signing key loaded", "source", keySource.Name(), "kid", provider.KeyID())

	tokenManager, err := token.NewJWT(token.Config{
		PrivateKey:    provider.PrivateKey(),
		KeyID:         provider.KeyID(),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
	})
	if err != nil {
		logger.Fatal("failed to initialize token manager", "error", err)
	}

	m := metrics.New()
	credentials := credential.NewBcrypt(credential.DefaultCost)
	tokenService := service.NewTokenService(tokenManager, stores.RefreshTokens, logger, service.WithRecorder(m))
	authService := service.NewAuth(stores.Users, credentials, tokenService, logger)
	userService := service.NewUser(stores.Users, credentials, logger)
	tenantService := service.NewTenant(stores.Tenants, logger)

	sweeper := service.NewSweeper(stores.RefreshTokens, cfg.Sweeper.Interval, m, logger)
	reporter := health.NewReporter(stores.Pinger, healthCheckInterval, logger)

	httpRouter := httprouter.New(httprouter.Services{
		Auth:    authService,
		Users:   userService,
		Tenants: tenantService,
		Tokens:  tokenService,
		Keys:    provider,
		Pinger:  stores.Pinger,
	}, handler.CookieConfig{
		Domain: cfg.HTTP.CookieDomain,
		Secure: cfg.HTTP.CookieSecure,
	}, m, m.Handler(), logger)
	httpSrv := httpserver.NewHTTPServer(httpRouter.Register(), cfg.HTTP.Address, cfg.HTTP.ReadHeaderTimeout)

	grpcRouter := grpcrouter.New(reporter, m.Registry(), logger)
	grpcSrv := grpcserver.NewGRPCServer(grpcRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	httpSL := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	opsSL := server.NewSecurityLayer(false, "", "")

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		reporter.Run(ctx)
	}()
	for _, s := range []struct {
		srv model.Server
		sl  model.SecurityLayer
	}{{httpSrv, httpSL}, {grpcSrv, opsSL}} {
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s.srv, s.sl)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	for _, s := range []model.Server{httpSrv, grpcSrv} {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()

	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}
	logger.Info("shutdown complete")
}

// selectKeySource picks the first configured key location: file, inline PEM
// or object storage.
func selectKeySource(ctx context.Context, cfg *config.Config, logger *logger.Logger) (keys.Source, error) {
	switch {
	case cfg.Keys.File != "":
		return keys.FileSource{Path: cfg.Keys.File}, nil
	case cfg.Keys.PEM != "":
		return keys.PEMSource{PEM: []byte(cfg.Keys.PEM)}, nil
	case cfg.Keys.Object != "":
		if !cfg.Storage.Enabled {
			return nil, errors.New("KEYS_OBJECT is set but object storage is disabled")
		}
		client, err := storage.Connect(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to object storage: %w", err)
		}
		return keys.ObjectSource{
			Storage:  client,
			Key:      cfg.Keys.Object,
			Generate: cfg.Keys.Generate,
			Logger:   logger,
		}, nil
	default:
		return nil, &keys.LoadError{Source: "config", Err: errors.New("no signing key configured, set KEYS_FILE, KEYS_PEM or KEYS_OBJECT")}
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

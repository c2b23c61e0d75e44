// Package main initializes and starts the medstock dashboard: a local web UI
// over the inventory API, sharing the CLI's stored session.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/client/api"
	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/config"
	"github.com/atinyakov/medstock/internal/export"
	"github.com/atinyakov/medstock/internal/logger"
	"github.com/atinyakov/medstock/internal/metrics"
	"github.com/atinyakov/medstock/internal/middleware"
	"github.com/atinyakov/medstock/internal/server/handler/http"
	"github.com/atinyakov/medstock/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	loginPerMinute = 10
	loginBurst     = 5
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	lg := logger.New()
	defer func() { _ = lg.Log.Sync() }()
	if err := lg.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	zapLogger := lg.Log

	store, err := session.Open(options.CredentialsFile)
	if err != nil {
		zapLogger.Fatal("cannot open credentials", zap.Error(err))
	}

	m := metrics.New()

	client, err := api.New(options.APIURL, store, api.Options{
		Timeout:   options.Timeout,
		RateLimit: options.RateLimit,
		RateBurst: options.RateBurst,
		CAFile:    options.CAFile,
		Observer:  m,
		Logger:    zapLogger,
	})
	if err != nil {
		zapLogger.Fatal("cannot create API client", zap.Error(err))
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(client, store)
	stockService := service.NewStockService(client, zapLogger)
	logService := service.NewLogService(client, store)
	userService := service.NewUserService(client, store)

	h, err := http.NewHandler(
		authService,
		stockService,
		logService,
		userService,
		export.NewRenderer(options.PDFFont),
		options.PageSize,
		zapLogger,
	)
	if err != nil {
		zapLogger.Fatal("cannot parse templates", zap.Error(err))
	}

	router := http.NewRouter(h, http.RouterDeps{
		Identity: store,
		Metrics:  m,
		Limiter:  middleware.NewLoginLimiter(loginPerMinute, loginBurst),
		Logger:   zapLogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if options.WatchInterval > 0 {
		service.StartExpiryWatch(ctx, stockService, options.WatchInterval, zapLogger)
	}

	server := &nethttp.Server{
		Addr:              options.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		zapLogger.Info("starting HTTPS dashboard", zap.String("addr", options.Listen), zap.String("api", options.APIURL))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting dashboard", zap.String("addr", options.Listen), zap.String("api", options.APIURL))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("dashboard stopped", zap.Error(err))
	}
	zapLogger.Info("dashboard stopped")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/client/api"
	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/client/shell"
	"github.com/atinyakov/medstock/internal/config"
	"github.com/atinyakov/medstock/internal/export"
	"github.com/atinyakov/medstock/internal/logger"
	"github.com/atinyakov/medstock/internal/service"
)

var (
	version   string
	buildDate string
)

// main parses flags and dispatches to the login, register, shell or logout commands.
func main() {
	var (
		cmd     string
		showVer bool
	)
	flag.StringVar(&cmd, "cmd", "shell", "command: login | register | shell | logout | version")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	options := config.Parse()

	if showVer || cmd == "version" {
		fmt.Printf("Medstock Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	lg := logger.New()
	defer func() { _ = lg.Log.Sync() }()
	if err := lg.Init(options.LogLevel); err != nil {
		log.Fatal(err)
	}

	store, err := session.Open(options.CredentialsFile)
	if err != nil {
		log.Fatal(err)
	}
	client, err := api.New(options.APIURL, store, api.Options{
		Timeout:   options.Timeout,
		RateLimit: options.RateLimit,
		RateBurst: options.RateBurst,
		CAFile:    options.CAFile,
		Logger:    lg.Log,
	})
	if err != nil {
		log.Fatal(err)
	}

	sh := shell.New(shell.Services{
		Auth:    service.NewAuthService(client, store),
		Stock:   service.NewStockService(client, lg.Log),
		Logs:    service.NewLogService(client, store),
		Users:   service.NewUserService(client, store),
		Reports: export.NewRenderer(options.PDFFont),
	}, os.Stdin, os.Stdout, options.PageSize, lg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "login":
		if err := sh.Login(ctx); err != nil {
			log.Fatal(err)
		}
	case "register":
		sh.Exec(ctx, "adduser")
	case "logout":
		if err := sh.Logout(); err != nil {
			log.Fatal(err)
		}
	case "shell":
		if !store.Guard() {
			fmt.Println("Not signed in.")
			if err := sh.Login(ctx); err != nil {
				log.Fatal(err)
			}
		}
		if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
			lg.Log.Error("shell stopped", zap.Error(err))
		}
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}

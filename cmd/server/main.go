package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgsight/orgsight/internal/server"
	"github.com/orgsight/orgsight/modules"
	coreservices "github.com/orgsight/orgsight/modules/core/services"
	directoryservices "github.com/orgsight/orgsight/modules/directory/services"
	"github.com/orgsight/orgsight/pkg/application"
	"github.com/orgsight/orgsight/pkg/authz"
	"github.com/orgsight/orgsight/pkg/configuration"
	"github.com/orgsight/orgsight/pkg/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	// Fail fast on a broken policy file rather than on the first request.
	authz.Use()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	directory := app.Service(directoryservices.DirectoryService{}).(*directoryservices.DirectoryService)
	if err := directory.RefreshWithRetry(runCtx); err != nil {
		// Scope resolution hard-fails until the first snapshot loads; the
		// refresh loop keeps trying.
		logger.WithError(err).Error("initial directory load failed")
	}
	go directory.Start(runCtx)

	sessions := app.Service(coreservices.SessionService{}).(*coreservices.SessionService)
	go sessions.Start(runCtx)

	options := &server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	}
	serverInstance, err := server.Default(options)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	go func() {
		<-runCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = serverInstance.Shutdown(shutdownCtx)
	}()

	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Printf("server stopped: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gracewave/gracewave/internal/server"
	"github.com/gracewave/gracewave/migrations"
	"github.com/gracewave/gracewave/modules"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/eventbus"
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

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.Migrations().RegisterSchema(migrations.FS, migrations.Dir)
	if err := modules.Load(app); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	authzService, err := authz.NewService(authz.Config{
		ModelPath:  conf.Authz.ModelPath,
		PolicyPath: conf.Authz.PolicyPath,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("failed to initialize authorization: %v", err)
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
		Authz:         authzService,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.Origin)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

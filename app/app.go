package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"auction-management-api/internal/config"
	"auction-management-api/internal/controller"
	"auction-management-api/internal/notifier"
	"auction-management-api/internal/repo"
	"auction-management-api/internal/scheduler"
	"auction-management-api/internal/service"
	"auction-management-api/pkg/http_server"
	"auction-management-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func runMigrations(sourceURL string, databaseURL string, log *logrus.Logger) {
	migrations, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := migrations.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("no change made by migration scripts")
		} else {
			log.Fatal(err)
		}
	}
}

func Run() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("Error occurred while loading config: ", err)
	}

	log.Info("Connecting database...")
	postgresDB, err := postgres.NewDB(cfg.PostgresConn)
	if err != nil {
		log.Fatal("Error occurred while connecting to db: ", err)
	}
	defer postgresDB.Close()

	log.Info("Running migrations...")
	runMigrations(cfg.MigrationURL, cfg.PostgresConn, log)

	log.Info("Connecting redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	repositories := repo.NewRepositories(postgresDB, redisClient)
	services := service.NewServices(repositories, cfg, log)
	handler := echo.New()

	log.Info("Setup routes...")
	controller.SetupRoutesHandlers(handler, services)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.New(services.Auction, cfg.SweepInterval, log).Run(ctx)
	go notifier.NewDispatcher(
		repositories.Outbox,
		notifier.NewLogNotifier(log),
		cfg.DispatchInterval,
		cfg.DispatchBatch,
		log,
	).Run(ctx)

	log.Info("Starting server...")
	httpServer := http_server.New(handler, cfg.ServerAddress)

	log.Info("Ready to process requests...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("Got signal: " + s.String())
	case err = <-httpServer.Notify():
		log.Fatal("Notify error: ", err)
	}

	log.Info("Shutting down...")
	cancel()
	err = httpServer.Shutdown()
	if err != nil {
		log.Fatal("Shutdown error: ", err)
	} else {
		log.Info("Successful shutdown")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tunnelmesh/go-tunnel-backend/customers"
	"github.com/tunnelmesh/go-tunnel-backend/idp"
	"github.com/tunnelmesh/go-tunnel-backend/internal/config"
	"github.com/tunnelmesh/go-tunnel-backend/notify"
	"github.com/tunnelmesh/go-tunnel-backend/projects"
	"github.com/tunnelmesh/go-tunnel-backend/server"
	"github.com/tunnelmesh/go-tunnel-backend/session"
	"github.com/tunnelmesh/go-tunnel-backend/sharedports"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger := newLogger(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()
	deps, err := buildDeps(ctx, c, logger)
	if err != nil {
		return fmt.Errorf("buildDeps: %w", err)
	}

	srv, err := server.New(c, deps)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildDeps wires the storage, identity-provider and notification
// collaborators. With no MongoDB URI configured everything runs in-memory
// (development mode).
func buildDeps(ctx context.Context, c config.Config, logger zerolog.Logger) (server.Deps, error) {
	provider, err := idp.NewProvider(ctx, c)
	if err != nil {
		return server.Deps{}, fmt.Errorf("idp.NewProvider: %w", err)
	}

	deps := server.Deps{
		IdP:       provider,
		Verifier:  provider.AccessTokenVerifier(),
		Publisher: notify.NewLogPublisher(logger),
		Logger:    logger,
	}

	if c.GetMongoURI() == "" {
		logger.Warn().Msg("no MONGODB_URI configured, using in-memory storage")
		deps.Store = session.NewInMemoryStore()
		deps.Repos = server.Repos{
			Customers:   customers.NewInMemoryRepo(),
			Projects:    projects.NewInMemoryRepo(),
			SharedPorts: sharedports.NewInMemoryRepo(),
		}
		return deps, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.GetMongoURI()))
	if err != nil {
		return server.Deps{}, fmt.Errorf("mongo.Connect: %w", err)
	}
	database := client.Database(c.GetMongoDatabase())

	store, err := session.NewMongoStore(ctx, database)
	if err != nil {
		return server.Deps{}, fmt.Errorf("session.NewMongoStore: %w", err)
	}
	customerRepo, err := customers.NewMongoRepo(ctx, database)
	if err != nil {
		return server.Deps{}, fmt.Errorf("customers.NewMongoRepo: %w", err)
	}

	deps.Store = store
	deps.Repos = server.Repos{
		Customers: customerRepo,
		// Projects and shared ports are plain data-access glue; in-memory
		// until their storage backend lands.
		Projects:    projects.NewInMemoryRepo(),
		SharedPorts: sharedports.NewInMemoryRepo(),
	}
	return deps, nil
}

func newLogger(c config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if c.GetEnv() == "DEV" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout}).Level(zerolog.DebugLevel)
	}
	return logger
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

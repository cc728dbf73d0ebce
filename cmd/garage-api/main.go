package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/garage-platform/internal/appointment"
	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	"github.com/vasiliy-maslov/garage-platform/internal/cache"
	"github.com/vasiliy-maslov/garage-platform/internal/config"
	"github.com/vasiliy-maslov/garage-platform/internal/db"
	"github.com/vasiliy-maslov/garage-platform/internal/events"
	httpHandler "github.com/vasiliy-maslov/garage-platform/internal/handler/http"
	"github.com/vasiliy-maslov/garage-platform/internal/inventory"
	"github.com/vasiliy-maslov/garage-platform/internal/order"
	"github.com/vasiliy-maslov/garage-platform/internal/servicepackage"
	"github.com/vasiliy-maslov/garage-platform/internal/store"
	"github.com/vasiliy-maslov/garage-platform/internal/transport"
	"github.com/vasiliy-maslov/garage-platform/internal/user"
)

type collections struct {
	users        store.Collection[user.User]
	parts        store.Collection[inventory.Part]
	orders       store.Collection[order.Order]
	appointments store.Collection[appointment.Appointment]
	packages     store.Collection[servicepackage.Package]
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg)
	log.Info().Str("store", cfg.Store.Driver).Str("events", cfg.Events.Driver).Msg("Garage API starting...")

	ctx := context.Background()

	colls, closeStore := openStore(ctx, cfg)
	defer closeStore()

	var partRepo inventory.Repository = inventory.NewRepository(colls.parts)
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		partRepo = inventory.NewCachedRepository(partRepo, redisCache)
	}

	publisher := openPublisher(cfg.Events)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}()
	emitter := events.NewEmitter(publisher, cfg.Events.ProducerName)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	orderRepo := order.NewRepository(colls.orders)

	userService := user.NewService(user.NewRepository(colls.users), tokens, cfg.Auth.AdminEmails)
	inventoryService := inventory.NewService(partRepo)
	orderService := order.NewService(orderRepo, partRepo, emitter)
	paymentService := order.NewPaymentService(orderRepo, emitter)
	appointmentService := appointment.NewService(appointment.NewRepository(colls.appointments), emitter)
	packageService := servicepackage.NewService(servicepackage.NewRepository(colls.packages))

	router := transport.NewRouter(tokens, cfg.CORS.AllowedOrigins,
		httpHandler.NewUserHandler(userService),
		httpHandler.NewInventoryHandler(inventoryService),
		httpHandler.NewOrderHandler(orderService),
		httpHandler.NewPaymentHandler(paymentService),
		httpHandler.NewAppointmentHandler(appointmentService),
		httpHandler.NewServicePackageHandler(packageService),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
		return
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}

// openStore connects the configured document store and returns its collections with a close func.
func openStore(ctx context.Context, cfg *config.Config) (collections, func()) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		if err := db.Migrate(cfg.Postgres); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		pg, err := db.New(ctx, cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		return collections{
			users:        store.NewPostgresCollection[user.User](pg.Pool, store.UsersCollection),
			parts:        store.NewPostgresCollection[inventory.Part](pg.Pool, store.PartsCollection),
			orders:       store.NewPostgresCollection[order.Order](pg.Pool, store.OrdersCollection),
			appointments: store.NewPostgresCollection[appointment.Appointment](pg.Pool, store.AppointmentsCollection),
			packages:     store.NewPostgresCollection[servicepackage.Package](pg.Pool, store.ServicePackagesCollection),
		}, pg.Close

	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return collections{
			users:        store.NewMemoryCollection[user.User]("email"),
			parts:        store.NewMemoryCollection[inventory.Part](),
			orders:       store.NewMemoryCollection[order.Order](),
			appointments: store.NewMemoryCollection[appointment.Appointment](),
			packages:     store.NewMemoryCollection[servicepackage.Package](),
		}, func() {}

	default:
		m, err := db.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		if err := m.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
		}
		return collections{
			users:        store.NewMongoCollection[user.User](m.Database.Collection(store.UsersCollection)),
			parts:        store.NewMongoCollection[inventory.Part](m.Database.Collection(store.PartsCollection)),
			orders:       store.NewMongoCollection[order.Order](m.Database.Collection(store.OrdersCollection)),
			appointments: store.NewMongoCollection[appointment.Appointment](m.Database.Collection(store.AppointmentsCollection)),
			packages:     store.NewMongoCollection[servicepackage.Package](m.Database.Collection(store.ServicePackagesCollection)),
		}, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			m.Close(closeCtx)
		}
	}
}

func openPublisher(cfg config.EventsConfig) events.Publisher {
	switch cfg.Driver {
	case config.EventsKafka:
		pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.BufferSize)
		pub.Start()
		return pub
	case config.EventsRabbitMQ:
		pub, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		return pub
	default:
		return events.Noop{}
	}
}

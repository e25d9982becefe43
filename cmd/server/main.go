package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notfawkes/FitMeat/internal/catalog"
	"github.com/notfawkes/FitMeat/internal/checkout"
	"github.com/notfawkes/FitMeat/internal/events"
	"github.com/notfawkes/FitMeat/internal/httpapi"
	"github.com/notfawkes/FitMeat/internal/identity"
	"github.com/notfawkes/FitMeat/internal/orders"
	"github.com/notfawkes/FitMeat/internal/payment"
	"github.com/notfawkes/FitMeat/internal/session"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CatalogDBPath         string
	CatalogMigrationsPath string

	MongoURI      string // empty disables basket persistence
	MongoDatabase string
	RedisAddr     string // empty disables the snapshot cache

	OrdersDB orders.Credentials

	KafkaBrokers string // comma-separated; empty disables order events

	IdentityURL    string
	IdentityAPIKey string
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("ORDERS_DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid ORDERS_DB_PORT: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./fitmeat.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "fitmeat"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),

		OrdersDB: orders.Credentials{
			Host:     getEnv("ORDERS_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("ORDERS_DB_USER", "postgres"),
			Password: getEnv("ORDERS_DB_PASSWORD", "postgres"),
			DBName:   getEnv("ORDERS_DB_NAME", "fitmeat"),

			MigrationsDirPath: getEnv("ORDERS_MIGRATIONS_PATH", "./internal/orders/migrations"),
		},

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		IdentityURL:    getEnv("IDENTITY_URL", "http://localhost:9999"),
		IdentityAPIKey: getEnv("IDENTITY_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("fitmeat server starting...")

	cfg := loadConfig()

	// Catalog (sqlite)
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Println("Catalog migrations completed")

	// Basket persistence (optional)
	var store session.SnapshotStore
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoDB, err := session.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}

		mongoStore := session.NewMongoStore(mongoDB)
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		if err := mongoStore.CreateIndexes(ctx); err != nil {
			log.Fatalf("Failed to create MongoDB indexes: %v", err)
		}
		cancel()
		store = mongoStore
		log.Println("Basket persistence enabled")
	} else {
		log.Println("MONGO_URI not set, baskets are memory-only")
	}

	var cache session.SnapshotCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = session.NewRedisCache(redisClient)
		defer redisClient.Close()
	}

	sessions := session.NewManager(store, cache)
	defer sessions.Close()

	// Orders (postgres)
	ordersRepo, err := orders.NewRepository(&cfg.OrdersDB)
	if err != nil {
		log.Fatalf("Failed to connect to orders database: %v", err)
	}
	defer ordersRepo.Close()

	if err := ordersRepo.RunMigrations(&cfg.OrdersDB); err != nil {
		log.Fatalf("Failed to run orders migrations: %v", err)
	}
	log.Println("Orders migrations completed")

	// Order events (optional)
	var publisher checkout.EventPublisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		log.Println("KAFKA_BROKERS not set, order events disabled")
	}

	// Payment gateway behind a circuit breaker
	gateway := payment.NewBreakerGateway(payment.NewSimulatedGateway(payment.RandomStatus{}))

	verifier := identity.NewHTTPVerifier(cfg.IdentityURL, cfg.IdentityAPIKey)

	checkoutService := checkout.NewService(sessions, ordersRepo, gateway, publisher)

	router := httpapi.NewRouter(
		httpapi.NewCatalogHandler(catalogRepo, cfg.RequestTimeout),
		httpapi.NewBasketHandler(sessions, catalogRepo, cfg.RequestTimeout),
		httpapi.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		httpapi.NewOrdersHandler(ordersRepo, cfg.RequestTimeout),
		verifier,
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("FitMeat API listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

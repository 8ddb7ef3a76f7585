/**
 * @description
 * This is the main entry point for the brand-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, external API clients, the message broker producer, the repository,
 * the core application service, the background scheduler, and the HTTP server.
 * It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: Optional .env loading for local development.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/genai, pkg/paygate, pkg/rabbitmq: External service clients.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/brandforge/brand-service/internal/api"
	"github.com/brandforge/brand-service/internal/app"
	"github.com/brandforge/brand-service/internal/config"
	"github.com/brandforge/brand-service/internal/store"
	"github.com/brandforge/brand-service/pkg/genai"
	"github.com/brandforge/brand-service/pkg/paygate"
	"github.com/brandforge/brand-service/pkg/rabbitmq"
)

func main() {
	// Load an optional .env file for local development. Deployed environments
	// provide real environment variables.
	if err := godotenv.Load(); err == nil {
		log.Println("level=info component=bootstrap msg=\".env file loaded\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url must be configured\" env=DATABASE_URL")
	}
	if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"auth jwks url must be configured\" env=AUTH_JWKS_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting brand-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 10
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts behind poolers.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish domain events. The service
	// degrades to a no-op publisher when the broker is unavailable.
	var eventProducer rabbitmq.Publisher
	producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
	} else {
		defer producer.Close()
		eventProducer = producer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the external API clients.
	genaiClient := genai.NewClient(cfg.GenAIAPIBaseURL, cfg.GenAIAPIKey)
	paygateClient := paygate.NewClient(cfg.PaymentAPIBaseURL, cfg.PaymentAPIKey)

	// Optional Redis connection for generation rate limiting.
	var redisClient *redis.Client
	if cfg.GenerationRateLimitPerMinute > 0 {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; generation rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; generation rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient = redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; generation rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
					redisClient = nil
				} else {
					defer redisClient.Close()
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	brandService := app.NewService(
		repository,
		genaiClient,
		paygateClient,
		eventProducer,
		cfg.SubscriptionPriceCents,
	)
	if redisClient != nil {
		brandService.SetGenerationRateLimiter(
			app.NewRedisGenerationRateLimiter(redisClient, cfg.RedisRateLimitPrefix),
			cfg.GenerationRateLimitPerMinute,
		)
	}

	// Promote the configured admin account at startup, if any.
	if cfg.AdminBootstrapEmail != "" {
		bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
		promoted, bootstrapErr := brandService.BootstrapAdmin(bootstrapCtx, cfg.AdminBootstrapEmail)
		cancelBootstrap()
		if bootstrapErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"admin bootstrap failed\" err=%v", bootstrapErr)
		} else if promoted {
			log.Println("level=info component=bootstrap msg=\"admin account promoted\"")
		}
	}

	// Start the background subscription expiry job.
	scheduler := app.NewScheduler(brandService, cfg.SubscriptionExpirySchedule)
	scheduler.Start()
	defer scheduler.Stop()

	// Set up the HTTP router.
	router := api.NewRouter(brandService, cfg.AuthJWKSURL)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}

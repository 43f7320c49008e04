/**
 * @description
 * This is the main entry point for the quote-to-policy service. It is
 * responsible for initializing all components: configuration, the PostgreSQL
 * connection pool, the Redis risk cache, the RabbitMQ producer and consumer,
 * the risk scorer client, the notification hub, the core services, and the
 * HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing (via internal/api).
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for the risk cache.
 * - internal/api, internal/app, internal/cache, internal/config, internal/hub,
 *   internal/store: Internal packages for the service.
 * - pkg/rabbitmq, pkg/riskclient: Broker and scorer clients.
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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/youlserf/pacifico-ecosystem/internal/api"
	"github.com/youlserf/pacifico-ecosystem/internal/app"
	"github.com/youlserf/pacifico-ecosystem/internal/cache"
	"github.com/youlserf/pacifico-ecosystem/internal/config"
	"github.com/youlserf/pacifico-ecosystem/internal/hub"
	"github.com/youlserf/pacifico-ecosystem/internal/store"
	"github.com/youlserf/pacifico-ecosystem/pkg/rabbitmq"
	"github.com/youlserf/pacifico-ecosystem/pkg/riskclient"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.RiskServiceURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"risk service url must be configured\" env=RISK_SERVICE_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting quote-to-policy service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Connect to Redis for the risk assessment cache.
	redisOptions, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"redis url parse failed\" err=%v", err)
	}
	redisClient := redis.NewClient(redisOptions)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatalf("level=fatal component=bootstrap msg=\"redis ping failed\" err=%v", err)
	}
	cancelPing()
	defer redisClient.Close()
	log.Println("level=info component=bootstrap msg=\"redis connected\"")

	// Initialize the RabbitMQ producer for issuance events.
	producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"rabbitmq producer init failed\" err=%v", err)
	}
	defer producer.Close()
	log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")

	// Initialize the data access layer and the external scorer client.
	repository := store.NewPostgresRepository(dbpool)
	riskCache := cache.NewRedisRiskCache(redisClient, time.Duration(cfg.RiskCacheTTLMinutes)*time.Minute)
	scorer := riskclient.NewClient(cfg.RiskServiceURL)

	// Initialize the notification hub and core services.
	notificationHub := hub.NewHub()
	quotationService := app.NewQuotationService(repository, riskCache, scorer, producer, cfg.RiskRejectionThreshold)
	issuanceConsumer := app.NewIssuanceConsumer(repository, notificationHub, cfg.PolicyNumberPrefix)

	// Wire up the consumer: bind the issuance queue to the events exchange.
	rabbitConsumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"rabbitmq consumer init failed\" err=%v", err)
	}
	defer rabbitConsumer.Close()

	issuanceBindings := map[string]func([]byte) bool{
		app.RoutingKeyPolicyIssuance: issuanceConsumer.HandleMessage,
	}
	if err := rabbitConsumer.ConsumeWithBindings(app.ExchangeInsuranceEvents, cfg.IssuanceEventQueue, issuanceBindings); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"issuance consumer start failed\" err=%v", err)
	}
	log.Println("level=info component=bootstrap msg=\"issuance consumer started\"")

	// Initialize the API handlers and router.
	handlers := api.NewQuotationHandlers(quotationService, notificationHub)
	router := api.Routes(handlers)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)
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
	notificationHub.Shutdown()

	log.Println("level=info component=http msg=\"shutdown complete\"")
}

package main

import (
	appconfig "clausecheck/config"
	"clausecheck/internal/cache"
	"clausecheck/internal/config"
	"clausecheck/internal/model"
	"clausecheck/internal/repository"
	"clausecheck/internal/service"
	"clausecheck/internal/transport/rest"
	"clausecheck/internal/transport/ws"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// @title Clausecheck Contract Verification API
// @version 1.0
// @description Reconciles evaluator verdicts about standard-clause coverage into one report per contract
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := appconfig.Load()

	// Load arbiter config and log model settings
	arbiterCfg := config.DefaultArbiterConfig()
	log.Printf("Arbiter Config:")
	log.Printf("  Model:        %s", arbiterCfg.Model)
	log.Printf("  Max attempts: %d", arbiterCfg.MaxAttempts)
	log.Printf("  Max in flight: %d", arbiterCfg.MaxInFlight)
	if arbiterCfg.IsEnabled() {
		log.Println("  API Key:      configured ✓")
	} else {
		log.Println("  API Key:      NOT SET (using rule-based arbiter)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("clausecheck")

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepo(db)
	contractRepo := repository.NewContractRepo(db)
	inputRepo := repository.NewInputRepo(db)
	pipelineRepo := repository.NewPipelineRepo(db)
	reportRepo := repository.NewReportRepo(db)

	// Load the requirement catalog once; immutable and shared by reference
	clauses, err := catalogRepo.LoadAll(ctx)
	if err != nil {
		log.Fatal("Failed to load requirement catalog:", err)
	}
	if len(clauses) == 0 {
		log.Println("Warning: requirement catalog is empty, run cmd/seed first")
	}
	catalog := model.NewCatalog(clauses)
	log.Printf("Loaded %d standard clauses", len(clauses))

	// Initialize caches
	reportCache := cache.NewReportCache(rdb)
	statusCache := cache.NewStatusCache(rdb)

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService()
	contractSvc := service.NewContractService(contractRepo, inputRepo)
	arbiter := service.NewArbiter(arbiterCfg)
	normalizer := service.NewNormalizerService(catalog)
	aggregator := service.NewAggregatorService()
	resolver := service.NewResolverService(catalog, arbiter, arbiterCfg)
	reporter := service.NewReporterService(catalog)
	pipelineSvc := service.NewPipelineService(
		contractRepo, inputRepo, pipelineRepo, reportRepo,
		reportCache, statusCache,
		normalizer, aggregator, resolver, reporter,
	)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	pipelineSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:     authSvc,
		ContractService: contractSvc,
		PipelineService: pipelineSvc,
		ReportRepo:      reportRepo,
		ReportCache:     reportCache,
		WSHub:           wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/contracts")
		log.Println("  GET  /v1/contracts/{id}")
		log.Println("  PUT  /v1/contracts/{id}/inputs")
		log.Println("  POST /v1/contracts/{id}/verify")
		log.Println("  POST /v1/contracts/{id}/cancel")
		log.Println("  GET  /v1/contracts/{id}/report")
		log.Println("  WS   /v1/ws/contracts/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

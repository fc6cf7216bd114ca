package rest

import (
	"clausecheck/internal/cache"
	"clausecheck/internal/repository"
	"clausecheck/internal/service"
	"clausecheck/internal/transport/rest/handler"
	"clausecheck/internal/transport/rest/middleware"
	"clausecheck/internal/transport/ws"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	ContractService *service.ContractService
	PipelineService *service.PipelineService
	ReportRepo      repository.ReportRepo
	ReportCache     cache.ReportCache
	WSHub           *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	contractHandler := handler.NewContractHandler(c.ContractService, c.PipelineService)
	reportHandler := handler.NewReportHandler(c.ReportRepo, c.ReportCache)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/contracts/{id}", wsHandler.ContractWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Reviewer routes (require reviewer auth)
	reviewerRoutes := v1.NewRoute().Subrouter()
	reviewerRoutes.Use(authMW.RequireReviewer)

	reviewerRoutes.HandleFunc("/contracts", contractHandler.Create).Methods("POST", "OPTIONS")
	reviewerRoutes.HandleFunc("/contracts", contractHandler.List).Methods("GET", "OPTIONS")
	reviewerRoutes.HandleFunc("/contracts/{id}", contractHandler.Get).Methods("GET", "OPTIONS")
	reviewerRoutes.HandleFunc("/contracts/{id}/inputs", contractHandler.SubmitInputs).Methods("PUT", "OPTIONS")
	reviewerRoutes.HandleFunc("/contracts/{id}/verify", contractHandler.Verify).Methods("POST", "OPTIONS")
	reviewerRoutes.HandleFunc("/contracts/{id}/cancel", contractHandler.CancelVerify).Methods("POST", "OPTIONS")
	reviewerRoutes.HandleFunc("/contracts/{id}/report", reportHandler.Get).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

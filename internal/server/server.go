// Package server provides the HTTP REST API for the agricultural marketplace.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kwame/agrimarket/internal/config"
	"github.com/kwame/agrimarket/internal/db"
	"github.com/kwame/agrimarket/internal/email"
	"github.com/kwame/agrimarket/internal/importer"
	"github.com/kwame/agrimarket/internal/llm"
	"github.com/kwame/agrimarket/internal/payments"
	"github.com/kwame/agrimarket/internal/server/middleware"
	"github.com/kwame/agrimarket/internal/server/ratelimit"
	"github.com/kwame/agrimarket/internal/types"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	llmClient   llm.Client
	mapper      importer.Mapper
	extractor   *llm.Extractor
	payments    *payments.Client
	email       *email.Sender
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler

	// Single-operator import state; one session at a time.
	importMu      sync.Mutex
	importSession *importer.Session
	lastExtracted []types.ExtractedRecord
}

// Config holds server configuration
type Config struct {
	Port              int
	DatabaseURL       string
	APIKey            string
	PaymentsBaseURL   string
	PaymentsSecretKey string
	EmailFrom         string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	// Connect to database
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Server{
		db:       database,
		payments: payments.New(cfg.PaymentsBaseURL, cfg.PaymentsSecretKey),
		email:    email.NewSender(database, cfg.EmailFrom),
	}

	// AI collaborator. A missing key degrades mapping and extraction instead
	// of blocking startup: suggestions come back empty and the operator maps
	// columns by hand.
	if cfg.APIKey != "" {
		client, err := llm.NewGeminiClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		s.llmClient = client
		s.mapper = llm.NewColumnMapper(client)
		s.extractor = llm.NewExtractor(client)
	} else {
		s.mapper = unavailableMapper{}
		s.extractor = llm.NewExtractor(unavailableClient{})
	}

	// Initialize rate limiter
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Initialize authentication services
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	accountService := NewAccountService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(accountService, s.jwtService, s.email)

	// Setup router
	mux := http.NewServeMux()
	validator := s.jwtService.AsTokenValidator()
	authed := middleware.AuthMiddleware(validator)
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(string(types.RoleAdmin))(h))
	}
	farmerOrAdmin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(string(types.RoleAdmin), string(types.RoleFarmer))(h))
	}
	buyerOrAdmin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(string(types.RoleAdmin), string(types.RoleBuyer))(h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	// Farmers
	mux.HandleFunc("GET /farmers", s.handleListFarmers)
	mux.HandleFunc("GET /farmers/{id}", s.handleGetFarmer)
	mux.HandleFunc("GET /farmers/{id}/grade", s.handleGetFarmerGrade)
	mux.HandleFunc("GET /farmers/{id}/produce", s.handleListFarmerProduce)
	mux.Handle("POST /farmers", adminOnly(s.handleCreateFarmer))
	mux.Handle("PUT /farmers/{id}", farmerOrAdmin(s.handleUpdateFarmer))
	mux.Handle("DELETE /farmers/{id}", adminOnly(s.handleDeleteFarmer))
	mux.Handle("PUT /farmers/{id}/verification", adminOnly(s.handleSetFarmerVerification))
	mux.Handle("POST /farmers/{id}/transactions", buyerOrAdmin(s.handleRecordTransaction))

	// Produce and marketplace
	mux.HandleFunc("GET /marketplace/produce", s.handleMarketplace)
	mux.HandleFunc("GET /produce/{id}", s.handleGetProduce)
	mux.Handle("POST /farmers/{id}/produce", farmerOrAdmin(s.handleCreateProduce))
	mux.Handle("PUT /produce/{id}", farmerOrAdmin(s.handleUpdateProduce))
	mux.Handle("DELETE /produce/{id}", farmerOrAdmin(s.handleDeleteProduce))

	// Buyers, contact unlocks, subscriptions
	mux.Handle("GET /buyers", adminOnly(s.handleListBuyers))
	mux.Handle("GET /buyers/{id}", buyerOrAdmin(s.handleGetBuyer))
	mux.Handle("PUT /buyers/{id}", buyerOrAdmin(s.handleUpdateBuyer))
	mux.Handle("DELETE /buyers/{id}", adminOnly(s.handleDeleteBuyer))
	mux.Handle("POST /buyers/{id}/unlock/{farmer_id}", buyerOrAdmin(s.handleUnlockContact))
	mux.Handle("POST /buyers/{id}/subscription/initialize", buyerOrAdmin(s.handleInitializeSubscription))
	mux.Handle("POST /buyers/{id}/subscription/verify", buyerOrAdmin(s.handleVerifySubscription))

	// Blog and CMS
	mux.HandleFunc("GET /blog", s.handleListBlogPosts)
	mux.HandleFunc("GET /blog/{slug}", s.handleGetBlogPost)
	mux.Handle("POST /blog", adminOnly(s.handleCreateBlogPost))
	mux.Handle("PUT /blog/{id}", adminOnly(s.handleUpdateBlogPost))
	mux.Handle("DELETE /blog/{id}", adminOnly(s.handleDeleteBlogPost))
	mux.HandleFunc("GET /cms", s.handleListCMSContent)
	mux.HandleFunc("GET /cms/{key}", s.handleGetCMSContent)
	mux.Handle("PUT /cms/{key}", adminOnly(s.handleSetCMSContent))

	// Bulk import
	mux.Handle("POST /imports", adminOnly(s.handleBeginImport))
	mux.Handle("POST /imports/{id}/map", adminOnly(s.handleSuggestMapping))
	mux.Handle("PUT /imports/{id}/map", adminOnly(s.handleConfirmMapping))
	mux.Handle("GET /imports/{id}/preview", adminOnly(s.handlePreviewImport))
	mux.Handle("POST /imports/{id}/commit", adminOnly(s.handleCommitImport))
	mux.Handle("POST /imports/{id}/reset", adminOnly(s.handleResetImport))
	mux.Handle("GET /imports/history", adminOnly(s.handleListImportHistory))

	// OCR extraction
	mux.Handle("POST /ocr/extract", adminOnly(s.handleExtractDocument))
	mux.Handle("GET /ocr/export.csv", adminOnly(s.handleExportExtractedCSV))

	// Simulated email log
	mux.Handle("GET /emails", adminOnly(s.handleListEmails))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Long timeout for AI-backed import endpoints
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.llmClient != nil {
		_ = s.llmClient.Close()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// callerOwnsProfile reports whether the authenticated caller may act on the
// given profile: admins always, farmers and buyers only on their own.
func (s *Server) callerOwnsProfile(r *http.Request, profileID uuid.UUID) bool {
	role, err := middleware.GetRole(r)
	if err != nil {
		return false
	}
	if role == string(types.RoleAdmin) {
		return true
	}
	own, err := middleware.GetProfileID(r)
	if err != nil {
		return false
	}
	return own == profileID
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		// Check rate limit
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			// Set rate limit headers
			s.setRateLimitHeaders(w, info)
			// Return 429 Too Many Requests
			s.rateLimitResponse(w, info)
			return
		}

		// Set rate limit headers for successful requests
		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// logf logs a server-side event that does not affect the response.
func (s *Server) logf(format string, args ...any) {
	log.Printf(format, args...)
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	// Log rate limit hit
	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// unavailableMapper stands in when no AI key is configured. Suggestions fail,
// which the import session degrades to an empty map.
type unavailableMapper struct{}

func (unavailableMapper) SuggestColumnMap(context.Context, []string) (types.ColumnMap, error) {
	return nil, &llm.MappingSuggestionFailure{Message: "no AI API key configured"}
}

// unavailableClient backs the extractor when no AI key is configured.
type unavailableClient struct{}

func (unavailableClient) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return "", fmt.Errorf("no AI API key configured")
}

func (unavailableClient) GenerateJSONFromDocument(context.Context, string, string, []byte, llm.ModelTier) (string, error) {
	return "", fmt.Errorf("no AI API key configured")
}

func (unavailableClient) Close() error { return nil }

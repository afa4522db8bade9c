// natalscope web server
// Serves the REST API for computing and storing sidereal natal charts
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nmurthy/natalscope/internal/auth"
	"github.com/nmurthy/natalscope/internal/db"
	"github.com/nmurthy/natalscope/internal/geo"
	"github.com/nmurthy/natalscope/pkg/ayanamsa"
	"github.com/nmurthy/natalscope/pkg/chart"
	"github.com/nmurthy/natalscope/pkg/config"
	"github.com/nmurthy/natalscope/pkg/ephemeris"
)

var configPath = flag.String("config", "configs/config.json", "Path to configuration file")

// Server holds the HTTP server and its dependencies
type Server struct {
	router    *chi.Mux
	db        *db.DB
	authSvc   *auth.Service
	userRepo  *db.UserRepository
	chartRepo *db.ChartRepository
	geocoder  *geo.Client
	charts    *chart.Service
	cfg       *config.Config
}

func main() {
	flag.Parse()
	log.SetPrefix("natal-server: ")

	log.Println("Starting natalscope server...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if m := cfg.Chart.AscendantMethod; m != "" && m != "spherical" {
		log.Fatalf("Unsupported ascendant method %q", m)
	}

	database, err := db.ReconnectWithRetry(cfg.Database, 5, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	cancel()

	provider, err := newProvider(cfg.Ephemeris)
	if err != nil {
		log.Fatalf("Failed to initialize ephemeris provider: %v", err)
	}
	if closer, ok := provider.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	authSvc := auth.NewService(auth.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: time.Duration(cfg.Auth.TokenDurationHours) * time.Hour,
	})

	srv := &Server{
		router:    chi.NewRouter(),
		db:        database,
		authSvc:   authSvc,
		userRepo:  db.NewUserRepository(database),
		chartRepo: db.NewChartRepository(database),
		geocoder:  geo.NewClient(cfg.Geocoder),
		charts:    chart.NewService(provider, ayanamsa.NewCalculator(nil)),
		cfg:       cfg,
	}

	srv.setupRoutes()

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// newProvider builds the configured planetary position source.
func newProvider(cfg config.EphemerisConfig) (ephemeris.Provider, error) {
	switch cfg.Provider {
	case "jpl":
		return ephemeris.NewJPLProvider(cfg.DEFilePath)
	case "", "table":
		log.Println("WARNING: using built-in ephemeris table, only reference dates are available")
		return ephemeris.NewTableProvider(), nil
	default:
		return nil, fmt.Errorf("unknown ephemeris provider %q", cfg.Provider)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/charts/compute", s.handleComputeChart)
		r.Get("/geocode", s.handleGeocode)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleGetCurrentUser)
			r.Get("/stats", s.handleStats)

			r.Post("/charts", s.handleSaveChart)
			r.Get("/charts", s.handleListCharts)
			r.Get("/charts/{id}", s.handleGetChart)
			r.Get("/charts/{id}/bodies", s.handleGetChartBodies)
			r.Delete("/charts/{id}", s.handleDeleteChart)
		})
	})
}

// Auth middleware
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		// Extract token (format: "Bearer <token>")
		var token string
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		} else {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := s.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "user_id", claims.UserID)
		ctx = context.WithValue(ctx, "username", claims.Username)
		ctx = context.WithValue(ctx, "role", claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy := db.HealthCheck(s.db)
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, map[string]interface{}{
		"status":   map[bool]string{true: "ok", false: "degraded"}[healthy],
		"database": healthy,
	})
}

// handleStats reports row counts for users, charts and chart bodies.
// Admin only.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	role := r.Context().Value("role").(string)
	if !auth.CanManageUsers(role) {
		http.Error(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	stats, err := s.db.GetStats(r.Context())
	if err != nil {
		log.Printf("Stats query failed: %v", err)
		http.Error(w, "Failed to collect statistics", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// chartRequest is the JSON body for compute and save endpoints.
type chartRequest struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	HouseSystem string  `json:"house_system"`
	Ayanamsa    string  `json:"ayanamsa"`
}

// resolveChart geocodes the birth place when coordinates are absent, then
// computes the chart.
func (s *Server) resolveChart(ctx context.Context, req *chartRequest) (*chart.Chart, error) {
	if req.Latitude == 0 && req.Longitude == 0 && req.City != "" {
		query := req.City
		if req.Country != "" {
			query += ", " + req.Country
		}

		loc, err := geo.RetryWithBackoff(ctx, geo.DefaultRetryConfig(), func() (*geo.Location, error) {
			return s.geocoder.Geocode(ctx, query)
		})
		if err != nil {
			return nil, fmt.Errorf("geocoding %q: %w", query, err)
		}

		req.Latitude = loc.Latitude
		req.Longitude = loc.Longitude
		if req.Timezone == "" {
			req.Timezone = loc.Timezone
		}
	}

	if req.HouseSystem == "" {
		req.HouseSystem = s.cfg.Chart.HouseSystem
	}
	if req.Ayanamsa == "" {
		req.Ayanamsa = s.cfg.Chart.Ayanamsa
	}

	houseSystem, err := chart.ParseHouseSystem(req.HouseSystem)
	if err != nil {
		return nil, err
	}
	convention, err := ayanamsa.ParseConvention(req.Ayanamsa)
	if err != nil {
		return nil, err
	}

	return s.charts.Compute(chart.Request{
		Name:        req.Name,
		Date:        req.Date,
		Time:        req.Time,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Timezone:    req.Timezone,
		HouseSystem: houseSystem,
		Ayanamsa:    convention,
	})
}

// handleComputeChart computes a chart without persisting it.
func (s *Server) handleComputeChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := s.resolveChart(r.Context(), &req)
	if err != nil {
		log.Printf("Chart computation failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// handleGeocode resolves a place query to coordinates and a timezone.
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing query parameter q", http.StatusBadRequest)
		return
	}

	loc, err := s.geocoder.Geocode(r.Context(), query)
	if err != nil {
		if errors.Is(err, geo.ErrNoResults) {
			http.Error(w, "No results found", http.StatusNotFound)
			return
		}
		log.Printf("Geocoding failed: %v", err)
		http.Error(w, "Geocoding failed", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, loc)
}

// handleRegister creates a new user account
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "Username, email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	hash, err := s.authSvc.HashPassword(req.Password)
	if err != nil {
		log.Printf("Password hashing failed: %v", err)
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	user := &db.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         auth.RoleMember,
		IsActive:     true,
	}

	if err := s.userRepo.Create(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrUserExists) {
			http.Error(w, "Username or email already taken", http.StatusConflict)
			return
		}
		log.Printf("User creation failed: %v", err)
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// handleLogin handles user login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := s.authSvc.ComparePassword(user.PasswordHash, req.Password); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !user.IsActive {
		http.Error(w, "Account is disabled", http.StatusForbidden)
		return
	}

	token, err := s.authSvc.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	_ = s.userRepo.UpdateLastLogin(r.Context(), user.ID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// handleGetCurrentUser returns the currently authenticated user
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int)

	user, err := s.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// handleSaveChart computes a chart and stores it for the caller.
func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	role := r.Context().Value("role").(string)
	if !auth.CanSaveCharts(role) {
		http.Error(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	var req chartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := s.resolveChart(r.Context(), &req)
	if err != nil {
		log.Printf("Chart computation failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := r.Context().Value("user_id").(int)
	saved, err := s.chartRepo.Create(r.Context(), userID, req.City, req.Country, c)
	if err != nil {
		log.Printf("Chart save failed: %v", err)
		http.Error(w, "Failed to save chart", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, saved)
}

// handleListCharts returns the caller's saved charts.
func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int)

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	charts, err := s.chartRepo.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("Chart listing failed: %v", err)
		http.Error(w, "Failed to list charts", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"charts": charts,
		"count":  len(charts),
	})
}

// chartFromRequest loads a chart by URL param and enforces ownership.
func (s *Server) chartFromRequest(w http.ResponseWriter, r *http.Request) (*db.SavedChart, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid chart ID", http.StatusBadRequest)
		return nil, false
	}

	saved, err := s.chartRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrChartNotFound) {
			http.Error(w, "Chart not found", http.StatusNotFound)
			return nil, false
		}
		log.Printf("Chart lookup failed: %v", err)
		http.Error(w, "Failed to get chart", http.StatusInternalServerError)
		return nil, false
	}

	userID := r.Context().Value("user_id").(int)
	role := r.Context().Value("role").(string)
	if saved.UserID != userID && !auth.CanManageUsers(role) {
		http.Error(w, "Chart not found", http.StatusNotFound)
		return nil, false
	}

	return saved, true
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	saved, ok := s.chartFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetChartBodies(w http.ResponseWriter, r *http.Request) {
	saved, ok := s.chartFromRequest(w, r)
	if !ok {
		return
	}

	bodies, err := s.chartRepo.GetBodies(r.Context(), saved.ID)
	if err != nil {
		log.Printf("Chart bodies lookup failed: %v", err)
		http.Error(w, "Failed to get chart bodies", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"chart_id": saved.ID,
		"bodies":   bodies,
	})
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid chart ID", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value("user_id").(int)
	if err := s.chartRepo.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, db.ErrChartNotFound) {
			http.Error(w, "Chart not found", http.StatusNotFound)
			return
		}
		log.Printf("Chart deletion failed: %v", err)
		http.Error(w, "Failed to delete chart", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

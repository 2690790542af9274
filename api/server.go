// Package api provides the HTTP REST API server for Quantum Kapital.
//
// It exposes endpoints for fundamentals, scenario projections, CSV export,
// provider status, market news, and WebSocket streaming.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/frhd/quantum-kapital/internal/config"
	"github.com/frhd/quantum-kapital/internal/datasource"
	"github.com/frhd/quantum-kapital/internal/export"
	"github.com/frhd/quantum-kapital/internal/projection"
	"github.com/frhd/quantum-kapital/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfgMu  sync.RWMutex
	cfg    *config.Config
	ds     *datasource.Service
	wsHub  *WSHub
}

// NewServer creates a configured API server over the global provider
// registry.
func NewServer(cfg *config.Config) *Server {
	return NewServerWithService(cfg, datasource.NewDefault())
}

// NewServerWithService creates an API server over an explicit datasource
// service. Used by tests to inject stub providers.
func NewServerWithService(cfg *config.Config, ds *datasource.Service) *Server {
	srv := &Server{
		cfg:   cfg,
		ds:    ds,
		wsHub: NewWSHub(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Fundamentals
		r.Get("/fundamentals/{symbol}", s.handleFundamentals)
		r.Get("/overview/{symbol}", s.handleOverview)
		r.Get("/estimates/{symbol}", s.handleEstimates)

		// Projections
		r.Post("/projections/{symbol}", s.handleProjections)
		r.Get("/projections/{symbol}/export.csv", s.handleProjectionsCSV)
		r.Get("/assumptions/defaults", s.handleDefaultAssumptions)

		// News
		r.Get("/news", s.handleNews)

		// Providers
		r.Get("/providers/status", s.handleProviderStatus)

		// Runtime configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ProjectionRequest is the body for POST /api/v1/projections/{symbol}.
// Assumptions default to the dashboard's stock set when omitted; Provider
// pins one named provider instead of the fallback chain.
type ProjectionRequest struct {
	Assumptions *models.ProjectionAssumptions `json:"assumptions,omitempty"`
	Provider    string                        `json:"provider,omitempty"`
}

// ProjectionResponse pairs projection results with consensus annotations.
type ProjectionResponse struct {
	Symbol      string                       `json:"symbol"`
	Assumptions models.ProjectionAssumptions `json:"assumptions"`
	Results     *models.ProjectionResults    `json:"results"`
	Consensus   projection.ScenarioConsensus `json:"consensus"`
}

// ProviderStatusResponse describes the registered providers.
type ProviderStatusResponse struct {
	Providers []ProviderStatus    `json:"providers"`
	Coverage  map[string][]string `json:"coverage"`
	Keys      []config.KeyStatus  `json:"keys"`
}

// ProviderStatus is one provider's registration info.
type ProviderStatus struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Models       []string `json:"models"`
	RequiresAuth bool     `json:"requiresAuth"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": "dev",
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var data *models.FundamentalData
	var err error
	if providerName := r.URL.Query().Get("provider"); providerName != "" {
		data, err = s.ds.FundamentalsFrom(ctx, providerName, symbol)
	} else {
		data, err = s.ds.Fundamentals(ctx, symbol)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	metrics, err := s.ds.Overview(ctx, symbol)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: metrics})
}

func (s *Server) handleEstimates(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	estimates, err := s.ds.Estimates(ctx, symbol)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: estimates})
}

func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var req ProjectionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	assumptions := models.DefaultAssumptions()
	if req.Assumptions != nil {
		assumptions = *req.Assumptions
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	resp, err := s.runProjection(ctx, symbol, req.Provider, assumptions)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	// Notify streaming clients
	s.wsHub.Broadcast(WSMessage{
		Type: "projection_complete",
		Data: map[string]interface{}{"symbol": resp.Symbol},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleProjectionsCSV(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	assumptions, err := assumptionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// One fetch serves both the projection run and the report, so the
	// exported overview always matches the provider that produced the
	// projections.
	providerName := r.URL.Query().Get("provider")
	fundamentals, err := s.fetchFundamentals(ctx, providerName, symbol)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp, err := projectionResponse(symbol, fundamentals, assumptions)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", strings.ToUpper(symbol)+"_projections.csv"))
	if err := export.WriteCSV(w, export.Report{
		Symbol:       symbol,
		Fundamentals: fundamentals,
		Results:      resp.Results,
		Consensus:    resp.Consensus.Base,
	}); err != nil {
		log.Printf("csv export for %s: %v", symbol, err)
	}
}

func (s *Server) handleDefaultAssumptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    models.DefaultAssumptions(),
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.cfgMu.RLock()
	limit := s.cfg.Datasource.NewsLimit
	s.cfgMu.RUnlock()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	items, err := s.ds.News(ctx, query, limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

func (s *Server) handleProviderStatus(w http.ResponseWriter, r *http.Request) {
	reg := s.ds.Registry()

	var provs []ProviderStatus
	for _, info := range reg.List() {
		requiresAuth := false
		for _, cred := range info.Credentials {
			if cred.Required {
				requiresAuth = true
				break
			}
		}
		models := make([]string, 0, len(info.Models))
		for _, m := range info.Models {
			models = append(models, string(m))
		}
		provs = append(provs, ProviderStatus{
			Name:         info.Name,
			Description:  info.Description,
			Models:       models,
			RequiresAuth: requiresAuth,
		})
	}

	coverage := make(map[string][]string)
	for model, names := range reg.ModelCoverage() {
		coverage[string(model)] = names
	}

	s.cfgMu.RLock()
	keys := config.CheckAPIKeys(s.cfg)
	s.cfgMu.RUnlock()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ProviderStatusResponse{
			Providers: provs,
			Coverage:  coverage,
			Keys:      keys,
		},
	})
}

// ============================================================
// Helpers
// ============================================================

// runProjection fetches fundamentals, generates scenario results, and
// annotates them against analyst consensus.
func (s *Server) runProjection(ctx context.Context, symbol, providerName string, assumptions models.ProjectionAssumptions) (*ProjectionResponse, error) {
	fundamentals, err := s.fetchFundamentals(ctx, providerName, symbol)
	if err != nil {
		return nil, err
	}
	return projectionResponse(symbol, fundamentals, assumptions)
}

// projectionResponse generates scenario results from an already-fetched
// fundamentals bundle.
func projectionResponse(symbol string, fundamentals *models.FundamentalData, assumptions models.ProjectionAssumptions) (*ProjectionResponse, error) {
	results, err := projection.GenerateResults(fundamentals, assumptions)
	if err != nil {
		return nil, err
	}

	return &ProjectionResponse{
		Symbol:      strings.ToUpper(symbol),
		Assumptions: assumptions,
		Results:     results,
		Consensus:   projection.ConsensusForResults(results, projection.DefaultConsensusThreshold),
	}, nil
}

func (s *Server) fetchFundamentals(ctx context.Context, providerName, symbol string) (*models.FundamentalData, error) {
	if providerName != "" {
		return s.ds.FundamentalsFrom(ctx, providerName, symbol)
	}
	return s.ds.Fundamentals(ctx, symbol)
}

// assumptionsFromQuery overlays query parameters onto the default
// assumption set for the GET export endpoint.
func assumptionsFromQuery(r *http.Request) (models.ProjectionAssumptions, error) {
	a := models.DefaultAssumptions()
	q := r.URL.Query()

	if raw := q.Get("years"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return a, fmt.Errorf("years must be an integer")
		}
		a.Years = n
	}

	floats := map[string]*float64{
		"bearGrowth":   &a.BearRevenueGrowth,
		"baseGrowth":   &a.BaseRevenueGrowth,
		"bullGrowth":   &a.BullRevenueGrowth,
		"bearMargin":   &a.BearMarginChange,
		"baseMargin":   &a.BaseMarginChange,
		"bullMargin":   &a.BullMarginChange,
		"peLow":        &a.PELow,
		"peHigh":       &a.PEHigh,
		"psLow":        &a.PSLow,
		"psHigh":       &a.PSHigh,
		"sharesGrowth": &a.SharesGrowth,
	}
	for key, dst := range floats {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return a, fmt.Errorf("%s must be a number", key)
		}
		*dst = v
	}
	return a, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch err.(type) {
	case *datasource.ErrNoData:
		return http.StatusNotFound
	case *projection.ErrInsufficientData:
		return http.StatusUnprocessableEntity
	case *projection.ErrInvalidAssumption:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}

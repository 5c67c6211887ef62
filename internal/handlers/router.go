package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/warekit/rackstock/internal/catalog"
	"github.com/warekit/rackstock/internal/config"
	"github.com/warekit/rackstock/internal/database"
	"github.com/warekit/rackstock/internal/gate"
	"github.com/warekit/rackstock/internal/layout"
	"github.com/warekit/rackstock/internal/ledger"
	"github.com/warekit/rackstock/internal/middleware"
	"github.com/warekit/rackstock/internal/registry"
	"github.com/warekit/rackstock/internal/websocket"
)

// Router wraps the mux router and the application services
type Router struct {
	*mux.Router
	db      *database.DB
	cfg     *config.Config
	gate    *gate.Gate
	hub     *websocket.Hub
	racks   *registry.Service
	ledger  *ledger.Service
	catalog *catalog.Service

	// Per-rack layout edit sessions. The design assumes a single editor
	// at a time; the map only keeps one session per rack.
	mu       sync.Mutex
	sessions map[string]*layout.Session
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, g *gate.Gate, hub *websocket.Hub) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		db:       db,
		cfg:      cfg,
		gate:     g,
		hub:      hub,
		racks:    registry.NewService(db.DB),
		ledger:   ledger.NewService(db.DB),
		catalog:  catalog.NewService(db.DB),
		sessions: make(map[string]*layout.Session),
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// Live stock feed
	r.HandleFunc("/ws", r.serveFeed).Methods("GET")

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))

	api.HandleFunc("/employees", r.listEmployees).Methods("GET")

	// Rack registry
	api.HandleFunc("/racks", r.listRacks).Methods("GET")
	api.HandleFunc("/racks", r.createRack).Methods("POST")
	api.HandleFunc("/racks/{id}", r.getRack).Methods("GET")
	api.HandleFunc("/racks/{id}/image", r.getRackImage).Methods("GET")
	api.HandleFunc("/racks/{id}/labels.pdf", r.getRackLabels).Methods("GET")

	// Layout edit session
	api.HandleFunc("/racks/{id}/layout", r.getLayout).Methods("GET")
	api.HandleFunc("/racks/{id}/layout/edit", r.beginLayoutEdit).Methods("POST")
	api.HandleFunc("/racks/{id}/layout/move", r.moveLayoutCell).Methods("POST")
	api.HandleFunc("/racks/{id}/layout/save", r.saveLayout).Methods("POST")
	api.HandleFunc("/racks/{id}/layout/cancel", r.cancelLayoutEdit).Methods("POST")

	// Inventory ledger
	api.HandleFunc("/transactions", r.recordTransaction).Methods("POST")
	api.HandleFunc("/racks/{id}/items", r.getRackItems).Methods("GET")
	api.HandleFunc("/racks/{id}/cells/{cell}/history", r.getCellHistory).Methods("GET")
	api.HandleFunc("/search", r.searchPart).Methods("GET")

	// Catalog
	api.HandleFunc("/catalog/import", r.importCatalog).Methods("POST")
	api.HandleFunc("/catalog/{part}", r.describePart).Methods("GET")

	// Edit secret
	api.HandleFunc("/gate/secret", r.changeEditSecret).Methods("POST")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// serveFeed upgrades to the websocket stock feed
func (r *Router) serveFeed(w http.ResponseWriter, req *http.Request) {
	websocket.ServeWS(r.hub, w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

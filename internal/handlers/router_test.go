package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warekit/rackstock/internal/config"
	"github.com/warekit/rackstock/internal/database"
	"github.com/warekit/rackstock/internal/gate"
	"github.com/warekit/rackstock/internal/layout"
	"github.com/warekit/rackstock/internal/models"
	"github.com/warekit/rackstock/internal/registry"
	"github.com/warekit/rackstock/internal/websocket"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Rack{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.MasterPart{},
		&models.Employee{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWTSecret: "test-secret-key",
		ImageDir:  t.TempDir(),
	}
	hub := websocket.NewHub()
	go hub.Run()

	return NewRouter(&database.DB{DB: db}, cfg, gate.New(filepath.Join(t.TempDir(), "edit_secret")), hub)
}

func doJSON(t *testing.T, router *Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerEmployee(t *testing.T, router *Router) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/auth/register", "", RegisterRequest{
		EmployeeID: "emp-1",
		Name:       "Test Employee",
		Pin:        "4711",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Register failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Register returned no token")
	}
	return resp.Token
}

func TestLoginFlow(t *testing.T) {
	router := newTestRouter(t)
	registerEmployee(t, router)

	rec := doJSON(t, router, "POST", "/auth/login", "", LoginRequest{EmployeeID: "emp-1", Pin: "4711"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/auth/login", "", LoginRequest{EmployeeID: "emp-1", Pin: "0000"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Wrong pin should yield 401, got %d", rec.Code)
	}
}

func TestTransactionsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/transactions", "", TransactionRequest{
		RackID: "r1", PartNumber: "A1", QuantityChange: 5,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}
}

func TestRecordTransactionEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerEmployee(t, router)

	rec := doJSON(t, router, "POST", "/api/transactions", token, TransactionRequest{
		RackID: "r1", CellIndex: 0, PartNumber: "A1", QuantityChange: 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Record failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		NewQuantity int `json:"new_quantity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.NewQuantity != 5 {
		t.Errorf("Expected new quantity 5, got %d", resp.NewQuantity)
	}

	// Zero change is rejected.
	rec = doJSON(t, router, "POST", "/api/transactions", token, TransactionRequest{
		RackID: "r1", CellIndex: 0, PartNumber: "A1", QuantityChange: 0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero change, got %d", rec.Code)
	}

	// Items endpoint shows the stock.
	rec = doJSON(t, router, "GET", "/api/racks/r1/items", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Items failed with status %d", rec.Code)
	}
	var items map[string][]struct {
		PartNumber string `json:"part_number"`
		Quantity   int    `json:"quantity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("Failed to decode items: %v", err)
	}
	if len(items["0"]) != 1 || items["0"][0].Quantity != 5 {
		t.Errorf("Unexpected items payload: %s", rec.Body.String())
	}
}

func TestLayoutEditSessionEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token := registerEmployee(t, router)

	cells, err := layout.InitializeGrid(2, 2)
	if err != nil {
		t.Fatalf("Failed to initialize grid: %v", err)
	}
	racks := registry.NewService(router.db.DB)
	if _, err := racks.CreateRack(context.Background(), "r1", "r1.jpg", cells); err != nil {
		t.Fatalf("Failed to create rack: %v", err)
	}

	// Wrong secret is rejected.
	rec := doJSON(t, router, "POST", "/api/racks/r1/layout/edit", token, BeginEditRequest{Secret: "wrong"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for wrong secret, got %d", rec.Code)
	}

	// Default secret opens the session.
	rec = doJSON(t, router, "POST", "/api/racks/r1/layout/edit", token, BeginEditRequest{Secret: gate.DefaultSecret})
	if rec.Code != http.StatusOK {
		t.Fatalf("Begin edit failed with status %d: %s", rec.Code, rec.Body.String())
	}

	// Drag cell 0 and save.
	rec = doJSON(t, router, "POST", "/api/racks/r1/layout/move", token, MoveCellRequest{CellID: 0, DX: 0.1, DY: 0.2})
	if rec.Code != http.StatusOK {
		t.Fatalf("Move failed with status %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, "POST", "/api/racks/r1/layout/save", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Save failed with status %d: %s", rec.Code, rec.Body.String())
	}

	// The persisted layout carries the move.
	rec = doJSON(t, router, "GET", "/api/racks/r1/layout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Get layout failed with status %d", rec.Code)
	}
	var resp LayoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode layout: %v", err)
	}
	if resp.State != "viewing" {
		t.Errorf("Expected viewing state, got %s", resp.State)
	}
	if resp.Cells[0].X != 0.1 || resp.Cells[0].Y != 0.2 {
		t.Errorf("Expected cell 0 at (0.1, 0.2), got (%v, %v)", resp.Cells[0].X, resp.Cells[0].Y)
	}

	// Moving again without a session fails.
	rec = doJSON(t, router, "POST", "/api/racks/r1/layout/move", token, MoveCellRequest{CellID: 0, DX: 0.1, DY: 0})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 without session, got %d", rec.Code)
	}
}

func TestCancelDiscardsEdits(t *testing.T) {
	router := newTestRouter(t)
	token := registerEmployee(t, router)

	cells, err := layout.InitializeGrid(2, 2)
	if err != nil {
		t.Fatalf("Failed to initialize grid: %v", err)
	}
	racks := registry.NewService(router.db.DB)
	if _, err := racks.CreateRack(context.Background(), "r1", "r1.jpg", cells); err != nil {
		t.Fatalf("Failed to create rack: %v", err)
	}

	doJSON(t, router, "POST", "/api/racks/r1/layout/edit", token, BeginEditRequest{Secret: gate.DefaultSecret})
	doJSON(t, router, "POST", "/api/racks/r1/layout/move", token, MoveCellRequest{CellID: 0, DX: 0.1, DY: 0.2})

	rec := doJSON(t, router, "POST", "/api/racks/r1/layout/cancel", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Cancel failed with status %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/api/racks/r1/layout", token, nil)
	var resp LayoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode layout: %v", err)
	}
	if resp.Cells[0].X != 0 || resp.Cells[0].Y != 0 {
		t.Errorf("Cancel must discard edits, cell 0 at (%v, %v)", resp.Cells[0].X, resp.Cells[0].Y)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerEmployee(t, router)

	doJSON(t, router, "POST", "/api/transactions", token, TransactionRequest{
		RackID: "r1", CellIndex: 2, PartNumber: "KL-100", QuantityChange: 3,
	})

	rec := doJSON(t, router, "GET", fmt.Sprintf("/api/search?part=%s", "kl"), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Search failed with status %d", rec.Code)
	}
	var hits []struct {
		RackID    string `json:"rack_id"`
		CellIndex int    `json:"cell_index"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hits); err != nil {
		t.Fatalf("Failed to decode hits: %v", err)
	}
	if len(hits) != 1 || hits[0].CellIndex != 2 || hits[0].Quantity != 3 {
		t.Errorf("Unexpected hits: %s", rec.Body.String())
	}
}

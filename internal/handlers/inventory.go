package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/warekit/rackstock/internal/ledger"
	"github.com/warekit/rackstock/internal/middleware"
	"github.com/warekit/rackstock/internal/websocket"
)

// TransactionRequest records one quantity change against a cell. The
// acting employee comes from the session token, not the payload.
type TransactionRequest struct {
	RackID         string `json:"rack_id"`
	CellIndex      int    `json:"cell_index"`
	PartNumber     string `json:"part_number"`
	QuantityChange int    `json:"quantity_change"`
}

// recordTransaction appends a ledger entry and returns the new
// materialized quantity
func (r *Router) recordTransaction(w http.ResponseWriter, req *http.Request) {
	var body TransactionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.RackID == "" || body.PartNumber == "" {
		respondError(w, http.StatusBadRequest, "rack_id and part_number are required")
		return
	}

	employeeID := middleware.EmployeeID(req.Context())
	if employeeID == "" {
		respondError(w, http.StatusUnauthorized, "No employee in session")
		return
	}

	result, err := r.ledger.RecordTransaction(
		req.Context(),
		body.RackID, body.CellIndex, body.PartNumber, body.QuantityChange,
		employeeID,
	)
	if errors.Is(err, ledger.ErrZeroChange) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, ledger.ErrUnknownEmployee) {
		respondError(w, http.StatusForbidden, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	r.hub.Broadcast(websocket.StockEvent{
		Type:           "transaction",
		RackID:         body.RackID,
		CellIndex:      body.CellIndex,
		PartNumber:     body.PartNumber,
		QuantityChange: body.QuantityChange,
		NewQuantity:    result.NewQuantity,
		EmployeeID:     employeeID,
		Timestamp:      result.Transaction.Timestamp,
	})

	respondJSON(w, http.StatusCreated, result)
}

// getRackItems returns the current stock of a rack grouped by cell,
// enriched with catalog descriptions
func (r *Router) getRackItems(w http.ResponseWriter, req *http.Request) {
	rackID := mux.Vars(req)["id"]

	items, err := r.ledger.ItemsForRack(req.Context(), rackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch items")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// getCellHistory returns the audit trail for one cell, newest first
func (r *Router) getCellHistory(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	cell, err := strconv.Atoi(vars["cell"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "cell must be an integer")
		return
	}

	history, err := r.ledger.CellHistory(req.Context(), vars["id"], cell)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// searchPart finds stock across all racks by part number fragment
func (r *Router) searchPart(w http.ResponseWriter, req *http.Request) {
	partial := req.URL.Query().Get("part")
	if partial == "" {
		respondError(w, http.StatusBadRequest, "part query parameter is required")
		return
	}

	hits, err := r.ledger.SearchPart(req.Context(), partial)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	respondJSON(w, http.StatusOK, hits)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/warekit/rackstock/internal/layout"
	"github.com/warekit/rackstock/internal/registry"
)

// BeginEditRequest carries the shared edit secret
type BeginEditRequest struct {
	Secret string `json:"secret"`
}

// MoveCellRequest is one drag delta in normalized units
type MoveCellRequest struct {
	CellID int     `json:"cell_id"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
}

// LayoutResponse reports the session state and the cells to render
type LayoutResponse struct {
	State string                `json:"state"`
	Cells []layout.CellGeometry `json:"cells"`
}

// getLayout returns the layout as it should currently be rendered: the
// working copy while an edit session is open, the persisted layout
// otherwise.
func (r *Router) getLayout(w http.ResponseWriter, req *http.Request) {
	rackID := mux.Vars(req)["id"]

	r.mu.Lock()
	sess := r.sessions[rackID]
	r.mu.Unlock()

	if sess != nil {
		respondJSON(w, http.StatusOK, LayoutResponse{
			State: sess.State().String(),
			Cells: sess.Cells(),
		})
		return
	}

	cells, err := r.racks.Layout(req.Context(), rackID)
	if errors.Is(err, registry.ErrRackNotFound) {
		respondError(w, http.StatusNotFound, "Rack not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load layout")
		return
	}
	respondJSON(w, http.StatusOK, LayoutResponse{State: layout.Viewing.String(), Cells: cells})
}

// beginLayoutEdit opens an edit session after checking the edit secret
func (r *Router) beginLayoutEdit(w http.ResponseWriter, req *http.Request) {
	rackID := mux.Vars(req)["id"]

	var body BeginEditRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ok, err := r.gate.CheckSecret(body.Secret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to verify edit secret")
		return
	}
	if !ok {
		respondError(w, http.StatusForbidden, "Edit secret rejected")
		return
	}

	cells, err := r.racks.Layout(req.Context(), rackID)
	if errors.Is(err, registry.ErrRackNotFound) {
		respondError(w, http.StatusNotFound, "Rack not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load layout")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.sessions[rackID]
	if sess == nil {
		sess = layout.NewSession(cells)
		r.sessions[rackID] = sess
	}
	if err := sess.BeginEdit(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, LayoutResponse{State: sess.State().String(), Cells: sess.Cells()})
}

// moveLayoutCell applies one drag delta to the working copy
func (r *Router) moveLayoutCell(w http.ResponseWriter, req *http.Request) {
	rackID := mux.Vars(req)["id"]

	var body MoveCellRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.sessions[rackID]
	if sess == nil {
		respondError(w, http.StatusConflict, "No edit session open for this rack")
		return
	}
	if err := sess.Move(body.CellID, body.DX, body.DY); err != nil {
		status := http.StatusConflict
		if errors.Is(err, layout.ErrNoSuchCell) {
			status = http.StatusNotFound
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, LayoutResponse{State: sess.State().String(), Cells: sess.Cells()})
}

// saveLayout persists the working copy wholesale and closes the session
func (r *Router) saveLayout(w http.ResponseWriter, req *http.Request) {
	rackID := mux.Vars(req)["id"]

	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.sessions[rackID]
	if sess == nil {
		respondError(w, http.StatusConflict, "No edit session open for this rack")
		return
	}

	working, err := sess.Working()
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	// Persist first; a failed store keeps the session editable.
	if err := r.racks.SaveLayout(req.Context(), rackID, working); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sess.Save(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	delete(r.sessions, rackID)

	respondJSON(w, http.StatusOK, LayoutResponse{State: layout.Viewing.String(), Cells: working})
}

// cancelLayoutEdit discards the working copy and closes the session
func (r *Router) cancelLayoutEdit(w http.ResponseWriter, req *http.Request) {
	rackID := mux.Vars(req)["id"]

	r.mu.Lock()
	defer r.mu.Unlock()

	if sess := r.sessions[rackID]; sess != nil {
		sess.Cancel()
		delete(r.sessions, rackID)
	}

	respondJSON(w, http.StatusOK, map[string]string{"state": layout.Viewing.String()})
}

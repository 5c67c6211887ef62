package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/warekit/rackstock/internal/layout"
	"github.com/warekit/rackstock/internal/printer"
	"github.com/warekit/rackstock/internal/registry"
)

// createRack imports a rack photo and lays the initial grid over it.
// Multipart form: "image" (file), "rows", "cols". The rack id derives
// from the image filename.
func (r *Router) createRack(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	rows, err := strconv.Atoi(req.FormValue("rows"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "rows must be an integer")
		return
	}
	cols, err := strconv.Atoi(req.FormValue("cols"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "cols must be an integer")
		return
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	rackID := strings.TrimSuffix(filename, filepath.Ext(filename))
	if rackID == "" || rackID == "." {
		respondError(w, http.StatusBadRequest, "image filename does not yield a rack id")
		return
	}

	// Reject the grid before anything touches disk or database.
	cells, err := layout.InitializeGrid(rows, cols)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := os.MkdirAll(r.cfg.ImageDir, 0o755); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to prepare image storage")
		return
	}
	imagePath := filepath.Join(r.cfg.ImageDir, filename)
	dst, err := os.Create(imagePath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(imagePath)
		respondError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	dst.Close()

	rack, err := r.racks.CreateRack(req.Context(), rackID, imagePath, cells)
	if errors.Is(err, registry.ErrDuplicateRack) {
		os.Remove(imagePath)
		respondError(w, http.StatusConflict, fmt.Sprintf("Rack %q already exists", rackID))
		return
	}
	if err != nil {
		os.Remove(imagePath)
		respondError(w, http.StatusInternalServerError, "Failed to create rack")
		return
	}

	respondJSON(w, http.StatusCreated, rack)
}

// listRacks returns all racks ordered by id
func (r *Router) listRacks(w http.ResponseWriter, req *http.Request) {
	racks, err := r.racks.ListRacks(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch racks")
		return
	}
	respondJSON(w, http.StatusOK, racks)
}

// getRack returns a single rack
func (r *Router) getRack(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	rack, err := r.racks.GetRack(req.Context(), vars["id"])
	if errors.Is(err, registry.ErrRackNotFound) {
		respondError(w, http.StatusNotFound, "Rack not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch rack")
		return
	}
	respondJSON(w, http.StatusOK, rack)
}

// getRackImage serves the rack photo
func (r *Router) getRackImage(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	rack, err := r.racks.GetRack(req.Context(), vars["id"])
	if errors.Is(err, registry.ErrRackNotFound) {
		respondError(w, http.StatusNotFound, "Rack not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch rack")
		return
	}

	http.ServeFile(w, req, rack.ImagePath)
}

// getRackLabels generates a printable QR label sheet for the rack cells
func (r *Router) getRackLabels(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	rackID := vars["id"]

	cells, err := r.racks.Layout(req.Context(), rackID)
	if errors.Is(err, registry.ErrRackNotFound) {
		respondError(w, http.StatusNotFound, "Rack not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load layout")
		return
	}

	cfg := printer.DefaultSheetConfig()
	if v := req.URL.Query().Get("cols"); v != "" {
		cfg.Cols, _ = strconv.Atoi(v)
	}
	if v := req.URL.Query().Get("rows"); v != "" {
		cfg.Rows, _ = strconv.Atoi(v)
	}

	pdf, err := printer.GenerateRackLabelsPDF(rackID, cells, cfg)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_labels.pdf\"", rackID))
	w.Write(pdf)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

// importCatalog bulk-loads the master parts list from an uploaded CSV
// or XLSX file (multipart field "file"; format chosen by extension)
func (r *Router) importCatalog(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	var imported int
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		imported, err = r.catalog.ImportCSV(req.Context(), file)
	case ".xlsx":
		imported, err = r.catalog.ImportXLSX(req.Context(), file)
	default:
		respondError(w, http.StatusBadRequest, "Unsupported file type (use .csv or .xlsx)")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// describePart resolves a part number to its catalog description
func (r *Router) describePart(w http.ResponseWriter, req *http.Request) {
	part := mux.Vars(req)["part"]

	description, err := r.catalog.Describe(req.Context(), part)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"part_number": part,
		"description": description,
	})
}

// ChangeSecretRequest rotates the shared layout-edit secret
type ChangeSecretRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

// changeEditSecret replaces the edit secret after verifying the current one
func (r *Router) changeEditSecret(w http.ResponseWriter, req *http.Request) {
	var body ChangeSecretRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ok, err := r.gate.CheckSecret(body.Current)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to verify edit secret")
		return
	}
	if !ok {
		respondError(w, http.StatusForbidden, "Current secret rejected")
		return
	}

	if err := r.gate.SetSecret(body.New); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

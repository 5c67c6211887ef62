package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/warekit/rackstock/internal/models"
	"github.com/warekit/rackstock/internal/utils"
)

// LoginRequest represents an employee sign-in request
type LoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Pin        string `json:"pin"`
}

// RegisterRequest represents an employee registration request
type RegisterRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Pin        string `json:"pin"`
}

// login handles employee sign-in
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// 1. Find Employee
	var employee models.Employee
	if err := r.db.Where("employee_id = ?", loginReq.EmployeeID).First(&employee).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 2. Check PIN
	if !utils.CheckPinHash(loginReq.Pin, employee.PinHash) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 3. Generate Token
	token, err := utils.GenerateToken(&employee, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":    token,
		"employee": employee,
	})
}

// register handles employee registration
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if regReq.Name == "" || regReq.Pin == "" {
		respondError(w, http.StatusBadRequest, "Name and pin are required")
		return
	}

	if regReq.EmployeeID == "" {
		regReq.EmployeeID = uuid.New().String()
	}

	pinHash, err := utils.HashPin(regReq.Pin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash pin")
		return
	}

	employee := models.Employee{
		EmployeeID: regReq.EmployeeID,
		Name:       regReq.Name,
		PinHash:    pinHash,
	}
	if err := r.db.Create(&employee).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create employee (id might exist)")
		return
	}

	token, err := utils.GenerateToken(&employee, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Employee created but failed to generate token")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token":    token,
		"employee": employee,
	})
}

// listEmployees returns all employees
func (r *Router) listEmployees(w http.ResponseWriter, req *http.Request) {
	var employees []models.Employee
	if err := r.db.Order("employee_id").Find(&employees).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch employees")
		return
	}
	respondJSON(w, http.StatusOK, employees)
}

package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/warekit/rackstock/internal/models"
)

// HashPin hashes an employee PIN using bcrypt
func HashPin(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), 10)
	return string(bytes), err
}

// CheckPinHash compares a PIN with a hash
func CheckPinHash(pin, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}

// GenerateToken issues a session token for an employee
func GenerateToken(employee *models.Employee, jwtSecret string) (string, error) {
	claims := jwt.MapClaims{
		"employee_id": employee.EmployeeID,
		"name":        employee.Name,
		"exp":         time.Now().Add(12 * time.Hour).Unix(), // one shift
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateToken validates a JWT and returns its claims
func ValidateToken(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// EmployeeIDFromClaims extracts the employee id from validated claims
func EmployeeIDFromClaims(claims jwt.MapClaims) string {
	id, _ := claims["employee_id"].(string)
	return id
}

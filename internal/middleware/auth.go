package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/warekit/rackstock/internal/utils"
)

type contextKey string

// EmployeeContextKey carries the validated JWT claims of the signed-in
// employee through the request context.
const EmployeeContextKey contextKey = "employee"

// Auth verifies Bearer JWT tokens and stores the claims in the request
// context. The jwtSecret is bound at router construction.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), EmployeeContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmployeeID extracts the signed-in employee id from a request context,
// empty when the request was not authenticated.
func EmployeeID(ctx context.Context) string {
	claims, ok := ctx.Value(EmployeeContextKey).(jwt.MapClaims)
	if !ok {
		return ""
	}
	return utils.EmployeeIDFromClaims(claims)
}

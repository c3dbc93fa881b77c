// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// Context keys for authenticated request data.
const (
	accountIDKey ContextKey = "accountID"
	roleKey      ContextKey = "role"
	profileIDKey ContextKey = "profileID"
)

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (ClaimsGetter, error)
}

// ClaimsGetter is an interface for extracting identity from token claims.
type ClaimsGetter interface {
	GetAccountID() uuid.UUID
	GetRole() string
	GetProfileID() uuid.UUID
}

// AuthMiddleware creates middleware that validates JWT tokens and adds the
// account identity and role to the request context.
func AuthMiddleware(jwtService TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Parse Bearer token
			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Validate token
			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, claims.GetAccountID())
			ctx = context.WithValue(ctx, roleKey, claims.GetRole())
			ctx = context.WithValue(ctx, profileIDKey, claims.GetProfileID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates middleware that rejects requests whose authenticated
// role is not in the allowed set. It must run after AuthMiddleware.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetRole(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// GetAccountID extracts the authenticated account ID from the request context.
func GetAccountID(r *http.Request) (uuid.UUID, error) {
	accountID, ok := r.Context().Value(accountIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("account ID not found in request context")
	}
	return accountID, nil
}

// GetRole extracts the authenticated role from the request context.
func GetRole(r *http.Request) (string, error) {
	role, ok := r.Context().Value(roleKey).(string)
	if !ok {
		return "", fmt.Errorf("role not found in request context")
	}
	return role, nil
}

// GetProfileID extracts the linked profile ID from the request context.
// Admin tokens carry uuid.Nil.
func GetProfileID(r *http.Request) (uuid.UUID, error) {
	profileID, ok := r.Context().Value(profileIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("profile ID not found in request context")
	}
	return profileID, nil
}

// AccountIDKey returns the context key for account ID (for testing purposes).
func AccountIDKey() ContextKey {
	return accountIDKey
}

// RoleKey returns the context key for role (for testing purposes).
func RoleKey() ContextKey {
	return roleKey
}

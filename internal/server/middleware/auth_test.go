package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]testClaims
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{
		validTokens: make(map[string]testClaims),
	}
}

func (v *testTokenValidator) addValidToken(token string, accountID uuid.UUID, role string) {
	v.validTokens[token] = testClaims{accountID: accountID, role: role}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (ClaimsGetter, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	claims, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &claims, nil
}

type testClaims struct {
	accountID uuid.UUID
	role      string
}

func (c *testClaims) GetAccountID() uuid.UUID { return c.accountID }
func (c *testClaims) GetRole() string         { return c.role }
func (c *testClaims) GetProfileID() uuid.UUID { return uuid.Nil }

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestTokenValidator()
	accountID := uuid.New()

	token := "valid-test-token-123"
	jwtService.addValidToken(token, accountID, "farmer")

	handlerCalled := false
	var contextAccountID uuid.UUID
	var contextRole string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		extractedID, err := GetAccountID(r)
		require.NoError(t, err)
		contextAccountID = extractedID
		role, err := GetRole(r)
		require.NoError(t, err)
		contextRole = role
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := AuthMiddleware(jwtService)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, accountID, contextAccountID)
	assert.Equal(t, "farmer", contextRole)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	jwtService := newTestTokenValidator()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})
	wrappedHandler := AuthMiddleware(jwtService)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	jwtService := newTestTokenValidator()
	jwtService.addValidToken("good-token", uuid.New(), "buyer")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})
	wrappedHandler := AuthMiddleware(jwtService)(handler)

	for _, header := range []string{
		"good-token",          // missing Bearer prefix
		"Basic good-token",    // wrong scheme
		"Bearer",              // missing token
		"Bearer one two",      // too many parts
		"Bearer   ",           // blank token
	} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		wrappedHandler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtService := newTestTokenValidator()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})
	wrappedHandler := AuthMiddleware(jwtService)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer never-issued")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	jwtService := newTestTokenValidator()
	jwtService.addValidToken("admin-token", uuid.New(), "admin")

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	wrapped := AuthMiddleware(jwtService)(RequireRole("admin")(handler))

	req := httptest.NewRequest(http.MethodDelete, "/farmers/123", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)
	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	jwtService := newTestTokenValidator()
	jwtService.addValidToken("buyer-token", uuid.New(), "buyer")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	wrapped := AuthMiddleware(jwtService)(RequireRole("admin")(handler))

	req := httptest.NewRequest(http.MethodDelete, "/farmers/123", nil)
	req.Header.Set("Authorization", "Bearer buyer-token")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_MultipleAllowed(t *testing.T) {
	jwtService := newTestTokenValidator()
	jwtService.addValidToken("farmer-token", uuid.New(), "farmer")

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	wrapped := AuthMiddleware(jwtService)(RequireRole("admin", "farmer")(handler))

	req := httptest.NewRequest(http.MethodPost, "/produce", nil)
	req.Header.Set("Authorization", "Bearer farmer-token")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)
	assert.True(t, handlerCalled)
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	// RequireRole without AuthMiddleware sees no role in context
	wrapped := RequireRole("admin")(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

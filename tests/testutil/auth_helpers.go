package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/middleware"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/services"
)

// Identity is what a test bearer token stands for
type Identity struct {
	Subject string
	Role    models.Role
	Email   string
	Name    string
	Scopes  []string
}

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, role models.Role, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  string(role),
		},
	}
}

// TokenAuth stands in for EnsureValidToken. Bearer tokens are looked up in a fixed
// table instead of being verified; unknown or missing tokens get the same 401 body.
type TokenAuth struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

// NewTokenAuth creates an empty token table
func NewTokenAuth() *TokenAuth {
	return &TokenAuth{tokens: make(map[string]Identity)}
}

// Issue registers token for id and returns it
func (a *TokenAuth) Issue(token string, id Identity) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens[token] = id
	return token
}

// Lookup returns the identity behind token
func (a *TokenAuth) Lookup(token string) (Identity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	id, ok := a.tokens[token]
	return id, ok
}

// Middleware sets the context the way EnsureValidToken does for a verified token
func (a *TokenAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		id, ok := a.Lookup(token)
		if token == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Failed to validate JWT.",
				},
			})
			return
		}

		c.Set("user_id", id.Subject)
		c.Set("validated_claims", MockValidatedClaims(id.Subject, "https://test.auth0.com/", id.Role, id.Scopes))
		c.Set("access_token", token)
		c.Next()
	}
}

// NewMockAuth0Server serves /userinfo for every token issued by auth.
// Identities without an email or name are returned without those fields.
func NewMockAuth0Server(auth *TokenAuth) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		id, ok := auth.Lookup(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(services.Auth0UserInfo{
			Sub:   id.Subject,
			Email: id.Email,
			Name:  id.Name,
		})
	}))
}

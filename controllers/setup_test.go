package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/middleware"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDatabase(db), "Failed to migrate test database")

	config.SetDB(db)
	t.Cleanup(func() {
		sqlDB.Close()
		config.SetDB(nil)
	})
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupAPIRouter mounts every route, authenticating each request as auth0ID
func setupAPIRouter(auth0ID string) *gin.Engine {
	router := setupTestRouter()
	RegisterRoutes(router.Group("/api/v1"), mockAuthMiddleware(auth0ID, "", "test-token"))
	return router
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userInfo, exists := userInfoMap[authHeader[7:]]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware sets up the context exactly as EnsureValidToken does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{Role: role},
		})
		c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: "auth0|" + name,
		Name:    name,
		Email:   name + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// performRequest sends body as JSON (nil for no body) and decodes the JSON response
func performRequest(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response body: %s", w.Body.String())
	}
	return w, response
}

func responseData(response map[string]interface{}) map[string]interface{} {
	data, _ := response["data"].(map[string]interface{})
	return data
}

func errorCode(response map[string]interface{}) string {
	errData, _ := response["error"].(map[string]interface{})
	code, _ := errData["code"].(string)
	return code
}

func orderPayload(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"description": "Full colour print",
		"order_type":  "New Design",
		"specifications": map[string]interface{}{
			"material":    "Vinyl",
			"dimensions":  map[string]interface{}{"width": 120, "height": 60, "unit": "cm"},
			"quantity":    5,
			"colors":      4,
			"finish_type": "Glossy",
		},
		"deadline": time.Now().Add(14 * 24 * time.Hour).UTC().Format(time.RFC3339),
	}
}

// createOrderAs submits an order through the API and returns its id
func createOrderAs(t *testing.T, client models.User, title string) uint {
	t.Helper()

	w, response := performRequest(t, setupAPIRouter(client.Auth0ID), http.MethodPost, "/api/v1/orders", orderPayload(title))
	require.Equal(t, http.StatusCreated, w.Code, "Response body: %s", w.Body.String())
	return uint(responseData(response)["id"].(float64))
}

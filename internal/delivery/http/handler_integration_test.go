package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foodguard/backend/config"
	"github.com/foodguard/backend/internal/domain"
	"github.com/foodguard/backend/internal/infrastructure/sqlite"
	"github.com/foodguard/backend/internal/infrastructure/upload"
	"github.com/foodguard/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	// Run tests
	exitCode := m.Run()

	// Exit with the test result code
	os.Exit(exitCode)
}

const testMobile = "9876543210"

type testServer struct {
	router    *gin.Engine
	resolver  *mockResolver
	decoder   *mockDecoder
	cache     *mockCacheRepository
	uploadDir string
}

// setupTestServer wires the real services around mocked decoder, resolver and cache
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"capacitor://*", "http://localhost:3000"},
			MaxUploadBytes: 1024,
		},
		Cache: config.CacheConfig{
			Type: "memory",
		},
	}

	users, err := sqlite.NewUserStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { users.Close() })

	uploadDir := t.TempDir()
	store, err := upload.NewTempStore(uploadDir, upload.DefaultAllowedExtensions)
	require.NoError(t, err)

	srv := &testServer{
		resolver:  newMockResolver(),
		decoder:   &mockDecoder{},
		cache:     newMockCacheRepository(),
		uploadDir: uploadDir,
	}

	userService := usecase.NewUserService(users, domain.Suggestions{
		Allergies:        []string{"Peanuts", "Soy"},
		HealthConditions: []string{"Diabetes"},
	})
	products := usecase.NewProductService(srv.cache, srv.resolver, usecase.ProductServiceConfig{CacheTTL: time.Hour})
	scans := usecase.NewScanService(store, srv.decoder, products, usecase.NewSafetyMatcher(usecase.SafetyMatcherConfig{}))

	handler := NewHandler(userService, scans, products, cfg.Server.MaxUploadBytes)
	srv.router = SetupRouter(cfg, handler, UserMiddleware(userService))
	return srv
}

func (s *testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	}
	return w, body
}

func (s *testServer) register(t *testing.T, allergies ...string) {
	t.Helper()
	payload, _ := json.Marshal(map[string]interface{}{
		"username":         "asha",
		"name":             "Asha Rao",
		"mobile":           testMobile,
		"age":              31,
		"allergies":        allergies,
		"healthConditions": []string{"Diabetes"},
	})
	req := httptest.NewRequest("POST", "/api/v1/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w, _ := s.do(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testServer) assertNoTempFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func scanRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/scans", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(userHeader, testMobile)
	return req
}

func userRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userHeader, testMobile)
	return req
}

func sampleProduct(barcode, ingredients string) *domain.ProductRecord {
	record := domain.NewProductRecord(barcode, domain.ProductFields{
		Title:           strPtr("Choco Spread"),
		Brand:           strPtr("Acme"),
		IngredientsText: strPtr(ingredients),
	})
	return &record
}

func strPtr(s string) *string { return &s }

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		srv := setupTestServer(t)

		w, body := srv.do(t, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "foodguard-backend", body["service"])
		assert.NotEmpty(t, body["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		srv := setupTestServer(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, httptest.NewRequest(method, "/health", nil))

			assert.Equal(t, http.StatusNotFound, w.Code, "method %s", method)
		}
	})
}

func TestSuggestionsEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	w, body := srv.do(t, httptest.NewRequest("GET", "/api/v1/suggestions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Peanuts", "Soy"}, body["allergies"])
	assert.Equal(t, []interface{}{"Diabetes"}, body["healthConditions"])
}

func TestUserEndpoints(t *testing.T) {
	t.Run("registers and returns the profile", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t, "Peanuts")

		w, body := srv.do(t, userRequest("GET", "/api/v1/users/me", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "asha", body["username"])
		assert.Equal(t, []interface{}{"Peanuts"}, body["allergies"])
		assert.Equal(t, []interface{}{"Diabetes"}, body["healthConditions"])
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t)

		payload := `{"username":"asha","name":"Asha","mobile":"` + testMobile + `","age":31}`
		req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w, body := srv.do(t, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, body["error"], "already exists")
	})

	t.Run("rejects registration without required fields", func(t *testing.T) {
		srv := setupTestServer(t)

		req := httptest.NewRequest("POST", "/api/v1/users", strings.NewReader(`{"username":"asha"}`))
		req.Header.Set("Content-Type", "application/json")
		w, body := srv.do(t, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, body["error"], "Invalid request body")
	})

	t.Run("requires a known user", func(t *testing.T) {
		srv := setupTestServer(t)

		w, _ := srv.do(t, httptest.NewRequest("GET", "/api/v1/users/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w, _ = srv.do(t, userRequest("GET", "/api/v1/users/me", ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("updates sensitivities", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t, "Peanuts")

		w, body := srv.do(t, userRequest("PUT", "/api/v1/users/me/sensitivities",
			`{"allergies":["Soy"],"customAllergy":"Kiwi","healthConditions":[]}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []interface{}{"Soy", "Kiwi"}, body["allergies"])
		assert.Equal(t, []interface{}{}, body["healthConditions"])
	})
}

func TestScanEndpoint(t *testing.T) {
	t.Run("completed scan reports conflicts", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t, "Soy")
		srv.decoder.symbols = []domain.DecodedSymbol{{Value: "5000112548167", Symbology: domain.SymbologyEAN13}}
		srv.resolver.products["5000112548167"] = sampleProduct("5000112548167", "Sugar, Soy lecithin")

		w, body := srv.do(t, scanRequest(t, imageField, "label.png", []byte("png-bytes")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "COMPLETED", body["state"])
		assert.Equal(t, "5000112548167", body["barcode"])
		verdict := body["verdict"].(map[string]interface{})
		assert.Equal(t, false, verdict["isSafe"])
		assert.Equal(t, []interface{}{"soy"}, verdict["conflictingAllergies"])
		assert.Equal(t, []interface{}{}, verdict["conflictingConditions"])
		srv.assertNoTempFiles(t)
	})

	t.Run("valid outcomes without a product return 200", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t)

		w, body := srv.do(t, scanRequest(t, imageField, "label.jpg", []byte("jpeg-bytes")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "NO_BARCODE_FOUND", body["state"])
		assert.Equal(t, 0, srv.resolver.callCount())

		srv.decoder.symbols = []domain.DecodedSymbol{{Value: "0000000000000", Symbology: domain.SymbologyEAN13}}
		w, body = srv.do(t, scanRequest(t, imageField, "label.jpg", []byte("jpeg-bytes")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "PRODUCT_NOT_FOUND", body["state"])
		assert.Equal(t, "0000000000000", body["barcode"])
		srv.assertNoTempFiles(t)
	})

	t.Run("maps failure states to status codes", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t)

		w, body := srv.do(t, scanRequest(t, imageField, "notes.txt", []byte("text")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UNSUPPORTED_FILE", body["state"])

		srv.decoder.err = &domain.ImageDecodeError{Err: errors.New("corrupt")}
		w, body = srv.do(t, scanRequest(t, imageField, "label.png", []byte("garbage")))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "IMAGE_UNREADABLE", body["state"])

		srv.decoder.err = nil
		srv.decoder.symbols = []domain.DecodedSymbol{{Value: "5000112548167", Symbology: domain.SymbologyEAN13}}
		srv.resolver.err = &domain.ResolverError{Barcode: "5000112548167", StatusCode: 503}
		w, body = srv.do(t, scanRequest(t, imageField, "label.png", []byte("png-bytes")))
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "LOOKUP_FAILED", body["state"])
		srv.assertNoTempFiles(t)
	})

	t.Run("rejects request without the image field", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t)

		w, body := srv.do(t, scanRequest(t, "photo", "label.png", []byte("png-bytes")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, body["error"], imageField)
	})

	t.Run("rejects oversized uploads", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t)

		w, _ := srv.do(t, scanRequest(t, imageField, "label.png", bytes.Repeat([]byte("x"), 4096)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		srv.assertNoTempFiles(t)
	})

	t.Run("requires a known user", func(t *testing.T) {
		srv := setupTestServer(t)

		w, _ := srv.do(t, scanRequest(t, imageField, "label.png", []byte("png-bytes")))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestProductEndpoints(t *testing.T) {
	t.Run("looks up and caches a product", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.resolver.products["5000112548167"] = sampleProduct("5000112548167", "Cocoa, hazelnuts")

		w, body := srv.do(t, httptest.NewRequest("GET", "/api/v1/products/5000112548167", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Choco Spread", body["title"])
		assert.Equal(t, "No description available", body["description"])

		w, _ = srv.do(t, httptest.NewRequest("GET", "/api/v1/products/5000112548167", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, srv.resolver.callCount())
	})

	t.Run("unknown product returns 404", func(t *testing.T) {
		srv := setupTestServer(t)

		w, body := srv.do(t, httptest.NewRequest("GET", "/api/v1/products/123", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, body["error"], "not found")
	})

	t.Run("resolver failure returns 502", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.resolver.err = &domain.ResolverError{Barcode: "123", Err: context.DeadlineExceeded}

		w, _ := srv.do(t, httptest.NewRequest("GET", "/api/v1/products/123", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("safety check uses the caller's profile", func(t *testing.T) {
		srv := setupTestServer(t)
		srv.register(t, "Peanuts")
		srv.resolver.products["5000112548167"] = sampleProduct("5000112548167", "Contains peanut oil")

		w, body := srv.do(t, userRequest("GET", "/api/v1/products/5000112548167/safety", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "COMPLETED", body["state"])
		verdict := body["verdict"].(map[string]interface{})
		assert.Equal(t, true, verdict["isSafe"])
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	srv := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "capacitor://localhost")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "capacitor://localhost", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), userHeader)
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	srv := setupTestServer(t)
	srv.router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/api/v1/suggestions"},
		{"GET", "/api/v1/users/me"},
		{"GET", "/api/v1/products/42"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			srv := setupTestServer(t)

			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, httptest.NewRequest(endpoint.method, endpoint.path, nil))

			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.True(t, json.Valid(w.Body.Bytes()), "body: %s", w.Body.String())
		})
	}
}

// --- Mock implementations ---

// mockCacheRepository is a mock implementation of domain.CacheRepository
type mockCacheRepository struct {
	mu   sync.Mutex
	data map[string]interface{}
}

func newMockCacheRepository() *mockCacheRepository {
	return &mockCacheRepository{data: make(map[string]interface{})}
}

func (m *mockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// mockResolver is a mock implementation of domain.ProductResolver
type mockResolver struct {
	mu       sync.Mutex
	products map[string]*domain.ProductRecord
	err      error
	calls    int
}

func newMockResolver() *mockResolver {
	return &mockResolver{products: make(map[string]*domain.ProductRecord)}
}

func (m *mockResolver) Resolve(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if product, ok := m.products[barcode]; ok {
		return product, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockDecoder is a mock implementation of domain.BarcodeDecoder
type mockDecoder struct {
	symbols []domain.DecodedSymbol
	err     error
}

func (m *mockDecoder) Decode(image []byte) ([]domain.DecodedSymbol, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.DecodedSymbol{}, m.symbols...), nil
}

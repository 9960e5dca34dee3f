package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nicawallet/wallet-api/handlers"
	"github.com/nicawallet/wallet-api/middleware"
	"github.com/nicawallet/wallet-api/routes"
	"github.com/nicawallet/wallet-api/services"
	"github.com/nicawallet/wallet-api/storage"
)

// newTestServer wires the full router against the in-memory store, mirroring
// main.go.
func newTestServer(t *testing.T) (*httptest.Server, *services.LedgerService) {
	t.Helper()
	t.Setenv("JWT_SECRET", "handler-test-secret")
	t.Setenv("DATA_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	ledger := services.NewLedgerService(store)
	currency := services.NewCurrencyFormatter("NIO", 36.65)
	wsHandler := handlers.NewWSHandler(ledger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, store, ledger)
		v1.GET("/ws/transactions", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupSessionRoutes(protected, store, ledger)
			routes.SetupTransactionRoutes(protected, ledger, currency)
			routes.SetupUserRoutes(protected, store, ledger)
		}
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, ledger
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// signup registers a fresh user and returns their access token.
func signup(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/signup", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"name":     "Ana",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup returned %d", resp.StatusCode)
	}

	var auth struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &auth)
	if auth.Token == "" {
		t.Fatal("signup returned no token")
	}
	return auth.Token
}

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/GoMedic/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:               "8080",
		ModelProvider:      config.ProviderMock,
		SessionBackend:     config.SessionBackendMemory,
		SessionIdleTimeout: 120 * time.Second,
		ReportDir:          t.TempDir(),
		MaxUploadBytes:     1 << 20,
		CORSOrigins:        []string{"*"},
	}
}

func TestBuildAppServesHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/readyz", nil)
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"db":"disabled"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestBuildAppWithSQLiteLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t)
	cfg.EnableDB = true
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "gomedic.db")

	a, err := buildApp(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/readyz", nil)
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db":"ok"`) {
		t.Fatalf("unexpected readyz: %d %s", w.Code, w.Body.String())
	}

	req, _ = http.NewRequest("POST", "/api/diagnosis", strings.NewReader(`{"name":"Jane Doe","age":30,"gender":"Female","symptoms":"headache"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBuildAppMockFlagsCriticalSymptoms(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	req, _ := http.NewRequest("POST", "/api/diagnosis", strings.NewReader(`{"name":"Ravi","age":60,"gender":"Male","symptoms":"sudden chest pain"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"critical":true`) {
		t.Fatalf("expected a critical diagnosis, got %s", w.Body.String())
	}
}

func TestBuildAppFailsOnBadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.EnableDB = true
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "missing", "dir", "gomedic.db")

	if _, err := buildApp(context.Background(), cfg); err == nil {
		t.Fatal("expected error for an unusable database path")
	}
}

func TestWriteTimeout(t *testing.T) {
	if got := writeTimeout(0); got != 2*time.Minute {
		t.Fatalf("expected 2m for an unbounded model call, got %s", got)
	}
	if got := writeTimeout(30 * time.Second); got != 45*time.Second {
		t.Fatalf("expected 45s, got %s", got)
	}
}

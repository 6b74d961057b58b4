package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vajra-io/vajra/internal/analytics"
	"github.com/vajra-io/vajra/internal/storage"
	"github.com/vajra-io/vajra/internal/sync"
)

type fakeSyncState struct {
	mode   analytics.DataSourceMode
	status sync.Status
}

func (f *fakeSyncState) Mode() analytics.DataSourceMode { return f.mode }

func (f *fakeSyncState) Status() sync.Status { return f.status }

func newTestConfig() *ServerConfig {
	return &ServerConfig{
		Port:            8080,
		Host:            "127.0.0.1",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

func loadFixture(t *testing.T, store *storage.MemoryStore) {
	t.Helper()

	ctx := context.Background()

	mustReplace := func(err error) {
		if err != nil {
			t.Fatalf("failed to load fixture: %v", err)
		}
	}

	mustReplace(store.ReplaceProducts(ctx, []storage.Product{
		{ID: 1, Name: "Alpine Jacket", Category: "Apparel", Brand: "North", Department: "Outdoor",
			SellingPrice: 50, UnitCost: 20, MarginPercent: 0.6, Active: true, StockLevel: 12},
	}))
	mustReplace(store.ReplaceOrders(ctx, []storage.Order{
		{ID: 1, CustomerID: 10, Date: "2023-01-05", Status: "Delivered", TotalAmount: 100},
		{ID: 2, CustomerID: 11, Date: "2023-01-20", Status: "Cancelled", TotalAmount: 50},
		{ID: 3, CustomerID: 12, Date: "2023-02-01", Status: "Processing", TotalAmount: 75},
	}))
	mustReplace(store.ReplaceOrderItems(ctx, []storage.OrderItem{
		{ID: 1, OrderID: 1, ProductID: 1, TotalAmount: 100},
	}))
	mustReplace(store.ReplaceReturns(ctx, []storage.Return{
		{ID: 1, OrderID: 3, ReturnDate: "2023-02-10"},
	}))
	mustReplace(store.ReplaceCustomers(ctx, []storage.Customer{
		{ID: 10, FirstName: "Ada", LastName: "Lovelace"},
		{ID: 11, FirstName: "Grace", LastName: "Hopper"},
		{ID: 12, FirstName: "Alan", LastName: "Turing"},
	}))
}

// newTestServer builds a server over a loaded preview snapshot with auth and
// rate limiting disabled.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	preview := storage.NewMemoryStore()
	loadFixture(t, preview)

	engine := analytics.NewEngine(preview, preview)
	state := &fakeSyncState{
		mode:   analytics.ModePreview,
		status: sync.Status{Mode: "preview"},
	}

	return NewServer(newTestConfig(), engine, state, nil, nil, nil)
}

func (s *Server) serve(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	return rec
}

func TestServerPing(t *testing.T) {
	server := newTestServer(t)

	rec := server.serve(http.MethodGet, "/ping")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if rec.Body.String() != "pong" {
		t.Errorf("expected body 'pong', got %q", rec.Body.String())
	}
}

func TestServerHealth(t *testing.T) {
	server := newTestServer(t)

	rec := server.serve(http.MethodGet, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var health HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if health.ServiceName != "vajra" || health.Status != "healthy" {
		t.Errorf("unexpected health payload: %+v", health)
	}

	if health.Mode != "preview" {
		t.Errorf("expected mode preview, got %q", health.Mode)
	}
}

func TestServerReadyWithoutDatabase(t *testing.T) {
	server := newTestServer(t)

	rec := server.serve(http.MethodGet, "/ready")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if rec.Body.String() != "ready" {
		t.Errorf("expected body 'ready', got %q", rec.Body.String())
	}
}

func TestServerOverview(t *testing.T) {
	server := newTestServer(t)

	rec := server.serve(http.MethodGet, "/api/v1/dashboard/overview")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result analytics.OverviewResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode overview response: %v", err)
	}

	if result.Mode != "preview" {
		t.Errorf("expected mode preview, got %q", result.Mode)
	}

	// Cancelled order 2 is excluded from revenue; orders 1 and 3 count.
	if result.TotalRevenue != 175 {
		t.Errorf("expected total revenue 175, got %v", result.TotalRevenue)
	}

	if result.TotalOrders != 3 {
		t.Errorf("expected 3 orders, got %d", result.TotalOrders)
	}
}

func TestServerOverviewServesWarmResult(t *testing.T) {
	server := newTestServer(t)

	server.RefreshOverview(context.Background())

	cached, ok := server.warmOverview.Latest()
	if !ok {
		t.Fatal("expected a warm overview after refresh")
	}

	rec := server.serve(http.MethodGet, "/api/v1/dashboard/overview")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var result analytics.OverviewResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode overview response: %v", err)
	}

	// The default-filter request is served from the warm result, so the
	// generation timestamps match exactly.
	if !result.GeneratedAt.Equal(cached.GeneratedAt) {
		t.Error("expected default-filter overview to be served from the warm result")
	}
}

func TestServerOverviewBadDateFilter(t *testing.T) {
	server := newTestServer(t)

	rec := server.serve(http.MethodGet, "/api/v1/dashboard/overview?start_date=January")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem+json content type, got %q", ct)
	}
}

func TestServerDashboardBeforeSnapshotLoad(t *testing.T) {
	empty := storage.NewMemoryStore()
	engine := analytics.NewEngine(empty, empty)
	state := &fakeSyncState{mode: analytics.ModePreview, status: sync.Status{Mode: "preview"}}

	server := NewServer(newTestConfig(), engine, state, nil, nil, nil)

	rec := server.serve(http.MethodGet, "/api/v1/dashboard/overview")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 before first snapshot load, got %d", rec.Code)
	}
}

func TestServerDashboards(t *testing.T) {
	server := newTestServer(t)

	for _, target := range []string{
		"/api/v1/dashboard/revenue",
		"/api/v1/dashboard/sales",
		"/api/v1/dashboard/returns",
		"/api/v1/dashboard/customers",
		"/api/v1/dashboard/products?status=Active",
	} {
		t.Run(target, func(t *testing.T) {
			rec := server.serve(http.MethodGet, target)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}

			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected application/json content type, got %q", ct)
			}
		})
	}
}

func TestServerSyncStatus(t *testing.T) {
	server := newTestServer(t)

	rec := server.serve(http.MethodGet, "/api/v1/sync/status")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var status sync.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode sync status: %v", err)
	}

	if status.Mode != "preview" {
		t.Errorf("expected mode preview, got %q", status.Mode)
	}
}

func TestServerUnknownRoute(t *testing.T) {
	server := newTestServer(t)

	rec := server.serve(http.MethodGet, "/api/v1/nope")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var problem ProblemDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem response: %v", err)
	}

	if problem.Status != http.StatusNotFound {
		t.Errorf("expected problem status 404, got %d", problem.Status)
	}
}

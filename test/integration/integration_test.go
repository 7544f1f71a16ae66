package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stocktrack/inventory-service/internal/config"
	httpapi "github.com/stocktrack/inventory-service/internal/http"
	"github.com/stocktrack/inventory-service/internal/model"
	"github.com/stocktrack/inventory-service/internal/obs"
	"github.com/stocktrack/inventory-service/internal/store/memstore"
)

// TestIntegration_FullFlow walks the whole lifecycle: login, create
// catalog entries, scan stock in and out, inspect the audit trail,
// export it, and clear.
func TestIntegration_FullFlow(t *testing.T) {
	t.Setenv("PASSWORD", "testpass")
	cfg := config.Load()
	obs.InitLogger()
	st := memstore.New()
	app := httpapi.NewApp(cfg, st)
	h := httpapi.NewRouter(app)

	var cookie *http.Cookie
	send := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	// Unauthenticated access is rejected.
	if w := send(http.MethodGet, "/api/products", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", w.Code)
	}

	w := send(http.MethodPost, "/api/auth/login", `{"password":"testpass"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("login: no session cookie")
	}

	w = send(http.MethodPost, "/api/products", `{"code":"SKU-1","name":"Bolt","price":"0.25","manufacturer":"Acme","supplier":"Supplies Inc"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create bolt: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var bolt model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &bolt); err != nil {
		t.Fatalf("decode bolt: %v", err)
	}

	w = send(http.MethodPost, "/api/products", `{"code":"SKU-2","name":"Nut","manufacturer":"Acme"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create nut: expected 201, got %d", w.Code)
	}
	var nut model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &nut); err != nil {
		t.Fatalf("decode nut: %v", err)
	}

	// Both products share one manufacturer created on the fly.
	w = send(http.MethodGet, "/api/manufacturers", "")
	var manufacturers []model.Manufacturer
	if err := json.Unmarshal(w.Body.Bytes(), &manufacturers); err != nil {
		t.Fatalf("decode manufacturers: %v", err)
	}
	if len(manufacturers) != 1 || len(manufacturers[0].Products) != 2 {
		t.Fatalf("unexpected manufacturers: %+v", manufacturers)
	}

	// Stock arrives, some is taken, duplicate scans coalesce.
	body := fmt.Sprintf(`[{"id":%d,"quantity":10},{"id":%d,"quantity":5},{"id":%d,"quantity":-2}]`, bolt.ID, nut.ID, bolt.ID)
	w = send(http.MethodPost, "/api/products/scan", body)
	if w.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ev model.UpdateEvent
	if err := json.Unmarshal(w.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if len(ev.Entries) != 2 {
		t.Fatalf("expected 2 coalesced entries, got %d", len(ev.Entries))
	}

	// Overdraw is rejected atomically.
	body = fmt.Sprintf(`[{"id":%d,"quantity":-1},{"id":%d,"quantity":-100}]`, bolt.ID, nut.ID)
	w = send(http.MethodPost, "/api/products/scan", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overdraw: expected 400, got %d", w.Code)
	}
	w = send(http.MethodGet, fmt.Sprintf("/api/products/%d", bolt.ID), "")
	var detail struct {
		Quantity     int               `json:"quantity"`
		UpdateEvents []json.RawMessage `json:"updateEvents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Quantity != 8 {
		t.Fatalf("expected 8 after rejected overdraw, got %d", detail.Quantity)
	}
	if len(detail.UpdateEvents) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(detail.UpdateEvents))
	}

	// The audit trail exports both lines.
	w = send(http.MethodGet, "/api/updates/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(lines))
	}

	// Filtering by product narrows the export.
	w = send(http.MethodGet, fmt.Sprintf("/api/updates/export?productId=%d", nut.ID), "")
	lines = strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(lines))
	}

	// Clear zeroes everything without touching the audit trail.
	if w = send(http.MethodPost, "/api/products/clear", ""); w.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", w.Code)
	}
	w = send(http.MethodGet, "/api/products", "")
	var products []model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	for _, p := range products {
		if p.Quantity != 0 {
			t.Fatalf("product %d not cleared: %d", p.ID, p.Quantity)
		}
	}
	w = send(http.MethodGet, "/api/updates", "")
	var events []model.UpdateEvent
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("clear must not touch audit trail: %d events", len(events))
	}
}

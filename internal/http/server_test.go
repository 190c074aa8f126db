package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"masarify/internal/analytics"
	"masarify/internal/auth"
	"masarify/internal/core"
	"masarify/internal/prefs"
	"masarify/internal/query"
	"masarify/internal/services"
	"masarify/internal/store/memory"
)

type stubAnalyzer struct {
	result *analytics.Result
}

func (a *stubAnalyzer) AnalyzeRecords(context.Context, []core.Record, string) (*analytics.Result, error) {
	if a.result != nil {
		return a.result, nil
	}
	return &analytics.Result{TopCategory: "Dining Out", TotalAnalyzed: 1}, nil
}

func newTestServer(t *testing.T, signedIn bool) (*httptest.Server, *auth.Holder) {
	t.Helper()

	holder := auth.NewHolder()
	if signedIn {
		holder.Set(&auth.Session{AccessToken: "t", User: auth.User{ID: "u1", Email: "u1@example.com"}})
	}

	backend := memory.New()
	queries := query.NewClient(backend, holder, nil, query.Options{})
	svc := services.NewRecordService(backend, queries, nil, holder)

	local, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	s := NewServer(Options{
		Addr:    ":0",
		Records: svc,
		Tracker: analytics.NewTracker(&stubAnalyzer{}),
		Prefs:   prefs.NewService(local, backend, holder, nil),
		Session: holder,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})

	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts, holder
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, false)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestRecordCRUDFlow(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/records", map[string]any{
		"title":    "Coffee",
		"amount":   3.5,
		"type":     "outgoing",
		"category": "Dining Out",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var created core.Record
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.OwnerID != "u1" {
		t.Fatalf("unexpected created record: %+v", created)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/records", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var records []core.Record
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	newTitle := "Morning coffee"
	resp, body = doJSON(t, http.MethodPatch, ts.URL+"/api/records/"+created.ID, map[string]any{
		"title": newTitle,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var updated core.Record
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Title != newTitle {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/records/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/records/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateValidation(t *testing.T) {
	ts, _ := newTestServer(t, true)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"short title", map[string]any{"title": "A", "amount": 5, "type": "outgoing"}},
		{"zero amount", map[string]any{"title": "Coffee", "amount": 0, "type": "outgoing"}},
		{"amount too large", map[string]any{"title": "Yacht", "amount": 1_500_000, "type": "outgoing"}},
		{"bad type", map[string]any{"title": "Coffee", "amount": 5, "type": "sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/records", tt.payload)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d: %s", resp.StatusCode, body)
			}
		})
	}
}

func TestRequiresAuthentication(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/records", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("list: expected 401, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/records", map[string]any{
		"title": "Coffee", "amount": 3, "type": "outgoing",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("create: expected 401, got %d", resp.StatusCode)
	}
}

func TestSessionEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/auth/session", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var got struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.User.Email != "u1@example.com" {
		t.Errorf("expected session user, got %q", got.User.Email)
	}

	ts2, _ := newTestServer(t, false)
	resp, _ = doJSON(t, http.MethodGet, ts2.URL+"/api/auth/session", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("signed out: expected 401, got %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, true)

	seed := []map[string]any{
		{"title": "Salary", "amount": 900, "type": "incoming"},
		{"title": "Rent", "amount": 600, "type": "outgoing"},
	}
	for _, payload := range seed {
		if resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/records", payload); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed: %d: %s", resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats core.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalIncoming != 900 || stats.TotalOutgoing != 600 || stats.NetAmount != 300 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestListSorting(t *testing.T) {
	ts, _ := newTestServer(t, true)

	for _, payload := range []map[string]any{
		{"title": "Cheap", "amount": 1, "type": "outgoing"},
		{"title": "Pricey", "amount": 100, "type": "outgoing"},
		{"title": "Middle", "amount": 50, "type": "outgoing"},
	} {
		if resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/records", payload); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed failed: %d", resp.StatusCode)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/records?sort=amount&order=asc", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var records []core.Record
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].Amount > records[i].Amount {
			t.Fatalf("expected ascending amounts, got %v then %v", records[i-1].Amount, records[i].Amount)
		}
	}
}

func TestCurrencySettings(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/settings/currency", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get currency: expected 200, got %d", resp.StatusCode)
	}
	var cur currencyResponse
	if err := json.Unmarshal(body, &cur); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cur.Selected.Code != core.DefaultCurrency().Code {
		t.Fatalf("expected default currency, got %s", cur.Selected.Code)
	}
	if len(cur.Supported) != len(core.Currencies) {
		t.Fatalf("expected %d supported currencies, got %d", len(core.Currencies), len(cur.Supported))
	}

	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/settings/currency", map[string]string{"code": "USD"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set currency: expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/settings/currency", map[string]string{"code": "XXX"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unknown currency: expected 422, got %d", resp.StatusCode)
	}
}

func TestAnalyticsLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, true)

	// No spending data yet: the endpoint reports idle and nothing starts.
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/analytics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analytics: expected 200, got %d", resp.StatusCode)
	}
	var snap analyticsResponse
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.AutoStarted {
		t.Fatal("expected no auto start without records")
	}

	if resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/records", map[string]any{
		"title": "Groceries", "amount": 80, "type": "outgoing",
	}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed: %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/analytics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analytics: expected 200, got %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.AutoStarted {
		t.Fatal("expected auto start once spending data exists")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/analytics", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("analytics poll: %d", resp.StatusCode)
		}
		if err := json.Unmarshal(body, &snap); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if snap.State == "ready" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("analysis never became ready, last state %q", snap.State)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Result == nil || snap.Result.TopCategory != "Dining Out" {
		t.Fatalf("unexpected result: %+v", snap.Result)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/analytics/refresh", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("refresh: expected 202, got %d: %s", resp.StatusCode, body)
	}
}

func TestAuthEndpointsUnavailableWithoutProvider(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", map[string]string{
		"email": "a@b.c", "password": "secret",
	})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without auth provider, got %d", resp.StatusCode)
	}
}

func TestMutationRateLimit(t *testing.T) {
	ts, _ := newTestServer(t, true)

	var limited bool
	for i := 0; i < 70; i++ {
		payload, _ := json.Marshal(map[string]any{
			"title": fmt.Sprintf("Item %d", i), "amount": 1, "type": "outgoing",
		})
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/records", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		// Pin the client identity; RemoteAddr ports vary per connection.
		req.Header.Set("X-Forwarded-For", "203.0.113.9")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected rate limiting to kick in on rapid mutations")
	}
}

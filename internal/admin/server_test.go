package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/slotbox/internal/testutil/testlog"
)

type stubView struct{}

func (stubView) Health() Health {
	return Health{DeviceID: "box-test", UptimeMS: 1500, ActiveProfile: 0, Objects: 3}
}

func (stubView) Objects() []ObjectInfo {
	return []ObjectInfo{
		{Chain: "0", Type: 0x10, Flags: "open-container"},
		{Chain: "0.0", Type: 0x11, Flags: "writable-value has-state", Value: "3412"},
	}
}

func (stubView) Profiles() []ProfileInfo {
	return []ProfileInfo{
		{ID: 0, InUse: true, Active: true, Used: 12, Capacity: 508},
		{ID: 1, Capacity: 508},
	}
}

func (stubView) Storage() Storage {
	return Storage{Size: 2048, Used: 28, Profiles: 1, Dirty: true}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	testlog.Start(t)
	return NewServer(Config{ListenAddr: ":0", DeviceID: "box-test"}, stubView{})
}

func getJSON(t *testing.T, srv *Server, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET %s: expected status 200, got %d body=%s", path, rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s body: %v", path, err)
	}
	return body
}

func TestHealthReportsViewSummary(t *testing.T) {
	srv := newTestServer(t)

	body := getJSON(t, srv, "/health")
	if body["status"] != "ok" {
		t.Fatalf("unexpected health status: %#v", body)
	}
	if body["device_id"] != "box-test" {
		t.Fatalf("unexpected device id: %#v", body)
	}
	if body["objects"] != float64(3) {
		t.Fatalf("unexpected object count: %#v", body)
	}
	if body["active_profile"] != float64(0) {
		t.Fatalf("unexpected active profile: %#v", body)
	}
}

func TestReadyAlwaysTrue(t *testing.T) {
	srv := newTestServer(t)

	body := getJSON(t, srv, "/ready")
	if body["ready"] != true {
		t.Fatalf("unexpected ready body: %#v", body)
	}
}

func TestObjectsListsChainAndValue(t *testing.T) {
	srv := newTestServer(t)

	body := getJSON(t, srv, "/objects")
	objects, ok := body["objects"].([]any)
	if !ok || len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %#v", body)
	}
	second, ok := objects[1].(map[string]any)
	if !ok {
		t.Fatalf("unexpected object entry: %#v", objects[1])
	}
	if second["chain"] != "0.0" || second["value"] != "3412" {
		t.Fatalf("unexpected object entry: %#v", second)
	}
	first, ok := objects[0].(map[string]any)
	if !ok {
		t.Fatalf("unexpected object entry: %#v", objects[0])
	}
	if _, present := first["value"]; present {
		t.Fatalf("container entry should omit value: %#v", first)
	}
}

func TestProfilesListsSlots(t *testing.T) {
	srv := newTestServer(t)

	body := getJSON(t, srv, "/profiles")
	profiles, ok := body["profiles"].([]any)
	if !ok || len(profiles) != 2 {
		t.Fatalf("expected 2 profile slots, got %#v", body)
	}
	active, ok := profiles[0].(map[string]any)
	if !ok || active["active"] != true || active["used_bytes"] != float64(12) {
		t.Fatalf("unexpected active slot: %#v", profiles[0])
	}
}

func TestEepromReportsStorage(t *testing.T) {
	srv := newTestServer(t)

	body := getJSON(t, srv, "/eeprom")
	if body["size_bytes"] != float64(2048) || body["used_bytes"] != float64(28) {
		t.Fatalf("unexpected storage body: %#v", body)
	}
	if body["dirty"] != true {
		t.Fatalf("expected dirty image, got %#v", body)
	}
}

func TestMetricsEndpointServesPrometheus(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition output, content-type=%q", rr.Header().Get("Content-Type"))
	}
}

func TestAuthTokenGuardsDataRoutes(t *testing.T) {
	testlog.Start(t)
	srv := NewServer(Config{ListenAddr: ":0", DeviceID: "box-test", AuthToken: "s3cret"}, stubView{})

	get := func(path, authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rr := httptest.NewRecorder()
		srv.Router().ServeHTTP(rr, req)
		return rr
	}

	for _, path := range []string{"/objects", "/profiles", "/eeprom"} {
		if rr := get(path, ""); rr.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: expected 401, got %d", path, rr.Code)
		}
		if rr := get(path, "Bearer wrong"); rr.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s with bad token: expected 401, got %d", path, rr.Code)
		}
		if rr := get(path, "Bearer s3cret"); rr.Code != http.StatusOK {
			t.Fatalf("GET %s with token: expected 200, got %d body=%s", path, rr.Code, rr.Body.String())
		}
	}

	// Probes and metrics stay open.
	for _, path := range []string{"/health", "/ready", "/metrics"} {
		if rr := get(path, ""); rr.Code != http.StatusOK {
			t.Fatalf("GET %s without token: expected 200, got %d", path, rr.Code)
		}
	}
}

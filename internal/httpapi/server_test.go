package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/treeline-io/treeline/pkg/cache"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/pipeline"
	"github.com/treeline-io/treeline/pkg/route"
)

// newTestServer builds a server over a two-node diagram with an in-memory
// route cache, so cache behavior is observable across requests.
func newTestServer(t *testing.T) (*Server, *diagram.Store, string) {
	t.Helper()

	store, err := diagram.New("test", diagram.Options{})
	if err != nil {
		t.Fatalf("diagram.New() error = %v", err)
	}
	rootID := store.AddRoot()
	store.AddChild(rootID)

	logger := log.New(io.Discard)
	srv, err := New(store, Options{
		Logger: logger,
		Runner: pipeline.NewRunner(cache.NewMemoryCache(), nil, logger),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, store, rootID
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
	if body["version"] == "" {
		t.Error("version field should not be empty")
	}
}

func TestDiagramEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/diagram")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	var d diagram.Data
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(d.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(d.Nodes))
	}
	if len(d.Edges) != 1 {
		t.Errorf("edges = %d, want 1", len(d.Edges))
	}
}

func TestNodesEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/nodes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var nodes []diagram.Node
	if err := json.Unmarshal(rec.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(nodes))
	}
}

func TestNodeEndpoint(t *testing.T) {
	srv, _, rootID := newTestServer(t)

	rec := get(t, srv, "/api/nodes/"+rootID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var n diagram.Node
	if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.ID != rootID {
		t.Errorf("id = %q, want %q", n.ID, rootID)
	}
}

func TestNodeEndpointNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/nodes/no-such-node")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.Code != string(errors.ErrCodeNodeNotFound) {
		t.Errorf("code = %q, want %q", body.Error.Code, errors.ErrCodeNodeNotFound)
	}
	if body.Error.Message == "" {
		t.Error("message should not be empty")
	}
}

func TestRoutesEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/routes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if h := rec.Header().Get("X-Cache"); h != "MISS" {
		t.Errorf("X-Cache = %q, want MISS on first request", h)
	}

	var routes []route.EdgeRoute
	if err := json.Unmarshal(rec.Body.Bytes(), &routes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(routes))
	}
	if len(routes[0].Path.Points) < 2 {
		t.Errorf("route has %d points, want at least 2", len(routes[0].Path.Points))
	}

	// Same geometry again: served from cache.
	rec = get(t, srv, "/api/routes")
	if h := rec.Header().Get("X-Cache"); h != "HIT" {
		t.Errorf("X-Cache = %q, want HIT on repeat request", h)
	}

	// refresh bypasses the cache read.
	rec = get(t, srv, "/api/routes?refresh=1")
	if h := rec.Header().Get("X-Cache"); h != "MISS" {
		t.Errorf("X-Cache = %q, want MISS with refresh", h)
	}
}

func TestRoutesFollowDiagramChanges(t *testing.T) {
	srv, store, rootID := newTestServer(t)

	rec := get(t, srv, "/api/routes")
	var before []route.EdgeRoute
	if err := json.Unmarshal(rec.Body.Bytes(), &before); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	store.AddChild(rootID)

	rec = get(t, srv, "/api/routes")
	var after []route.EdgeRoute
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Errorf("routes after AddChild = %d, want %d", len(after), len(before)+1)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidDiagram, http.StatusBadRequest},
		{errors.ErrCodeInvalidSession, http.StatusBadRequest},
		{errors.ErrCodeUnsupported, http.StatusBadRequest},
		{errors.ErrCodeNodeNotFound, http.StatusNotFound},
		{errors.ErrCodeSessionNotFound, http.StatusNotFound},
		{errors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/impred/pkg/observability"
	"github.com/matzehuels/impred/pkg/store"
)

const triangle = `{
  "graph": {
    "nodes": [
      {"id": "a", "position": [0, 0]},
      {"id": "b", "position": [120, 0]},
      {"id": "c", "position": [60, 90]}
    ],
    "edges": [
      {"from": "a", "to": "b"},
      {"from": "b", "to": "c"},
      {"from": "c", "to": "a"}
    ]
  },
  "iterations": 10
}`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
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

type createdRun struct {
	ID         string          `json:"id"`
	Iterations int             `json:"iterations"`
	NodeCount  int             `json:"node_count"`
	EdgeCount  int             `json:"edge_count"`
	CacheHit   bool            `json:"cache_hit"`
	Layout     json.RawMessage `json:"layout"`
}

func createTriangle(t *testing.T, ts *httptest.Server) createdRun {
	t.Helper()
	resp, body := do(t, http.MethodPost, ts.URL+"/v1/layouts", triangle)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var run createdRun
	if err := json.Unmarshal(body, &run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return run
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Errorf("body = %s", body)
	}
}

func TestCreateAndGetLayout(t *testing.T) {
	ts := newTestServer(t, Options{})
	run := createTriangle(t, ts)

	if !store.ValidID(run.ID) {
		t.Errorf("id %q is not a valid run id", run.ID)
	}
	if run.Iterations != 10 || run.NodeCount != 3 || run.EdgeCount != 3 {
		t.Errorf("run = %+v", run)
	}
	if run.CacheHit {
		t.Error("first run should not be a cache hit")
	}
	if !bytes.Contains(run.Layout, []byte(`"position"`)) {
		t.Errorf("layout has no positions: %s", run.Layout)
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/v1/layouts/"+run.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", resp.StatusCode, body)
	}
	var got createdRun
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("id = %q, want %q", got.ID, run.ID)
	}
	if !bytes.Equal(compact(t, got.Layout), compact(t, run.Layout)) {
		t.Error("stored layout differs from the created one")
	}
}

func compact(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		t.Fatalf("compact: %v", err)
	}
	return buf.Bytes()
}

func TestListLayouts(t *testing.T) {
	ts := newTestServer(t, Options{})
	createTriangle(t, ts)
	createTriangle(t, ts)

	resp, body := do(t, http.MethodGet, ts.URL+"/v1/layouts?limit=1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var list struct {
		Layouts []createdRun `json:"layouts"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Layouts) != 1 {
		t.Fatalf("got %d layouts, want 1", len(list.Layouts))
	}
	if list.Layouts[0].Layout != nil {
		t.Error("list entries should not carry the layout")
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/layouts?limit=zero", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestRenderLayout(t *testing.T) {
	ts := newTestServer(t, Options{})
	run := createTriangle(t, ts)

	resp, body := do(t, http.MethodGet, ts.URL+"/v1/layouts/"+run.ID+"/dot", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(string(body), "digraph") {
		t.Errorf("body is not DOT: %.40s", body)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/layouts/"+run.ID+"/gif", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown format status = %d, want 404", resp.StatusCode)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t, Options{MaxNodes: 2})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed body", http.MethodPost, "/v1/layouts", `{`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"missing graph", http.MethodPost, "/v1/layouts", `{}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"negative iterations", http.MethodPost, "/v1/layouts", `{"graph": {"nodes": []}, "iterations": -1}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown endpoint", http.MethodPost, "/v1/layouts", `{"graph": {"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "z"}]}}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"too many nodes", http.MethodPost, "/v1/layouts", triangle, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"bad config", http.MethodPost, "/v1/layouts", `{"graph": {"nodes": [{"id": "a"}]}, "config": {"iterations": 5, "cell_size": -1}}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"invalid id", http.MethodGet, "/v1/layouts/not-a-uuid", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"missing run", http.MethodGet, "/v1/layouts/" + store.NewRun().ID, "", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, body)
			}
			var e errorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if string(e.Code) != tt.code {
				t.Errorf("code = %q, want %q (error %q)", e.Code, tt.code, e.Error)
			}
			if e.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, Options{MaxBodyBytes: 16})
	resp, _ := do(t, http.MethodPost, ts.URL+"/v1/layouts", triangle)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestMetricsRecordRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.SetHTTPHooks(observability.NewPrometheus(reg))
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Options{Gatherer: reg})
	do(t, http.MethodGet, ts.URL+"/healthz", "")

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	want := `impred_http_requests_total{method="GET",route="/healthz",status="200"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics missing %q:\n%s", want, body)
	}
}

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktree/pkg/buildinfo"
	treeio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/render/styles"
	"github.com/matzehuels/stacktree/pkg/tree"
)

func fiveNodes() *tree.Node {
	return tree.Module("root",
		tree.Page("a"),
		tree.Module("b", tree.Page("c"), tree.Page("d")),
	)
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	cfg.Options = pipeline.DefaultOptions()
	cfg.Logger = log.New(io.Discard)
	s, err := New(pipeline.NewRunner(nil, nil, nil), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func treeBody(t *testing.T, root *tree.Node) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := treeio.WriteJSON(root, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	return &buf
}

func do(t *testing.T, method, url string, body io.Reader) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode error response %q: %v", data, err)
	}
	return e
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"ok"`) {
		t.Fatalf("healthz = %d %s", resp.StatusCode, data)
	}
	if !strings.Contains(string(data), `"version":"`+buildinfo.Short()+`"`) {
		t.Errorf("healthz missing build version: %s", data)
	}

	resp, data = do(t, http.MethodGet, ts.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), `stacktree_http_requests_total{method="GET",route="/healthz",status="200"} 1`) {
		t.Errorf("metrics missing healthz request:\n%s", data)
	}
}

func TestRenderBuiltin(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, http.MethodGet, ts.URL+"/v1/render", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Stacktree-Nodes") != "37" {
		t.Errorf("X-Stacktree-Nodes = %q", resp.Header.Get("X-Stacktree-Nodes"))
	}
	if !strings.Contains(string(data), `translate(90, 840)`) {
		t.Errorf("svg missing root translation:\n%s", data)
	}
}

func TestRenderPost(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name   string
		query  string
		status int
		ctype  string
		prefix string
	}{
		{"svg default", "", http.StatusOK, "image/svg+xml", "<svg"},
		{"dot", "?format=dot", http.StatusOK, "text/vnd.graphviz; charset=utf-8", "digraph G {"},
		{"png", "?format=png&scale=1", http.StatusOK, "image/png", "\x89PNG"},
		{"two formats", "?format=svg,png", http.StatusBadRequest, "application/json", "{"},
		{"bad style", "?style=neon", http.StatusBadRequest, "application/json", "{"},
		{"bad bool", "?fit=maybe", http.StatusBadRequest, "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, ts.URL+"/v1/render"+tt.query, treeBody(t, fiveNodes()))
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.ctype {
				t.Errorf("Content-Type = %q, want %q", ct, tt.ctype)
			}
			if !bytes.HasPrefix(data, []byte(tt.prefix)) {
				t.Errorf("body starts with %q, want %q", data[:min(len(data), 16)], tt.prefix)
			}
		})
	}
}

func TestRenderInvalidBody(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, http.MethodPost, ts.URL+"/v1/render", strings.NewReader("{not json"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if e := decodeError(t, data); e.Code != "INVALID_INPUT" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestStrictParentMismatch(t *testing.T) {
	ts := newTestServer(t, Config{})
	root := fiveNodes()
	root.Children[0].Parent = "nobody"

	resp, _ := do(t, http.MethodPost, ts.URL+"/v1/render", treeBody(t, root))
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Stacktree-Parent-Mismatches") != "1" {
		t.Errorf("lenient: status = %d, mismatches = %q",
			resp.StatusCode, resp.Header.Get("X-Stacktree-Parent-Mismatches"))
	}

	resp, data := do(t, http.MethodPost, ts.URL+"/v1/render?strict=true", treeBody(t, root))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("strict: status = %d: %s", resp.StatusCode, data)
	}
	if e := decodeError(t, data); e.Code != "PARENT_MISMATCH" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, http.MethodPost, ts.URL+"/v1/layout?style=dark", treeBody(t, fiveNodes()))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	doc, err := layout.ReadJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(doc.Nodes) != 5 || len(doc.Edges) != 4 || doc.Style != "dark" || doc.Width != 960 {
		t.Errorf("document = %+v", doc)
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, Config{MaxBodyBytes: 64})

	resp, data := do(t, http.MethodPost, ts.URL+"/v1/render", treeBody(t, fiveNodes()))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d: %s", resp.StatusCode, data)
	}
}

func TestDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := treeio.Export(fiveNodes(), filepath.Join(dir, "five.json")); err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, Config{DataDir: dir})

	tests := []struct {
		query  string
		status int
	}{
		{"?tree=five.json&format=json", http.StatusOK},
		{"?tree=missing.json", http.StatusNotFound},
		{"?tree=../five.json", http.StatusBadRequest},
		{"?tree=/etc/passwd.json", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, data := do(t, http.MethodGet, ts.URL+"/v1/render"+tt.query, nil)
		if resp.StatusCode != tt.status {
			t.Errorf("GET %s: status = %d, want %d: %s", tt.query, resp.StatusCode, tt.status, data)
		}
	}

	noData := newTestServer(t, Config{})
	resp, _ := do(t, http.MethodGet, noData.URL+"/v1/render?tree=five.json", nil)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("without data dir: status = %d", resp.StatusCode)
	}
}

func TestSceneLifecycle(t *testing.T) {
	ts := newTestServer(t, Config{})
	base := ts.URL + "/v1/scenes"

	decodeDiff := func(data []byte) diffResponse {
		t.Helper()
		var d diffResponse
		if err := json.Unmarshal(data, &d); err != nil {
			t.Fatalf("decode diff %q: %v", data, err)
		}
		return d
	}

	resp, data := do(t, http.MethodPost, base+"/", treeBody(t, fiveNodes()))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", resp.StatusCode, data)
	}
	created := decodeDiff(data)
	if created.Version != 1 || created.Added != 9 || created.Updated != 0 || created.Removed != 0 {
		t.Errorf("create diff = %+v", created)
	}
	scene := base + "/" + created.ID

	// Same tree again: nothing changes.
	resp, data = do(t, http.MethodPut, scene, treeBody(t, fiveNodes()))
	if d := decodeDiff(data); resp.StatusCode != http.StatusOK || d.Added+d.Updated+d.Removed != 0 || d.Version != 2 {
		t.Errorf("identical update: status = %d, diff = %+v", resp.StatusCode, d)
	}

	// Dropping page a removes its node and link; b keeps its identity.
	smaller := tree.Module("root", tree.Module("b", tree.Page("c"), tree.Page("d")))
	resp, data = do(t, http.MethodPut, scene, treeBody(t, smaller))
	if d := decodeDiff(data); resp.StatusCode != http.StatusOK || d.Added != 0 || d.Removed != 2 {
		t.Errorf("shrink: status = %d, diff = %+v", resp.StatusCode, d)
	}

	// A new page gets the next identity.
	grown := tree.Module("root", tree.Module("b", tree.Page("c"), tree.Page("d"), tree.Page("e")))
	resp, data = do(t, http.MethodPut, scene, treeBody(t, grown))
	d := decodeDiff(data)
	if resp.StatusCode != http.StatusOK || d.Added != 2 {
		t.Fatalf("grow: status = %d, diff = %+v", resp.StatusCode, d)
	}
	if strings.Join(d.AddedKeys, ",") != "node-6,link-6" {
		t.Errorf("added keys = %v", d.AddedKeys)
	}

	resp, data = do(t, http.MethodGet, scene, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `data-id="6"`) {
		t.Errorf("get svg: status = %d\n%s", resp.StatusCode, data)
	}
	if strings.Contains(string(data), `data-id="2"`) {
		t.Error("removed identity still drawn")
	}

	resp, data = do(t, http.MethodGet, scene+"?format=json", nil)
	if doc, err := layout.ReadJSON(bytes.NewReader(data)); resp.StatusCode != http.StatusOK || err != nil || len(doc.Nodes) != 5 {
		t.Errorf("get json: status = %d, err = %v", resp.StatusCode, err)
	}

	resp, data = do(t, http.MethodGet, base+"/", nil)
	var list []sceneInfo
	if err := json.Unmarshal(data, &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s, %v", data, err)
	}
	if list[0].ID != created.ID || list[0].Version != 4 || list[0].Nodes != 5 || list[0].Links != 4 || list[0].Seen != 6 {
		t.Errorf("scene info = %+v", list[0])
	}

	resp, _ = do(t, http.MethodDelete, scene, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status = %d", resp.StatusCode)
	}
	resp, data = do(t, http.MethodGet, scene, nil)
	if resp.StatusCode != http.StatusNotFound || decodeError(t, data).Code != "SCENE_NOT_FOUND" {
		t.Errorf("get after delete: status = %d %s", resp.StatusCode, data)
	}
}

func TestSceneErrors(t *testing.T) {
	ts := newTestServer(t, Config{MaxScenes: 1})
	base := ts.URL + "/v1/scenes"

	resp, data := do(t, http.MethodGet, base+"/not-a-uuid", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id: status = %d: %s", resp.StatusCode, data)
	}
	resp, _ = do(t, http.MethodDelete, base+"/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, base+"/", treeBody(t, fiveNodes()))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: status = %d", resp.StatusCode)
	}
	resp, data = do(t, http.MethodPost, base+"/", treeBody(t, fiveNodes()))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("over limit: status = %d: %s", resp.StatusCode, data)
	}

	var list []sceneInfo
	_, data = do(t, http.MethodGet, base+"/", nil)
	if err := json.Unmarshal(data, &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s, %v", data, err)
	}
	resp, _ = do(t, http.MethodGet, base+"/"+list[0].ID+"?format=dot", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("dot scene: status = %d", resp.StatusCode)
	}
}

func TestSceneConcurrentUpdates(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, data := do(t, http.MethodPost, ts.URL+"/v1/scenes/", treeBody(t, fiveNodes()))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", resp.StatusCode, data)
	}
	var created diffResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatal(err)
	}

	const updates = 16
	bodies := make([][]byte, updates)
	for i := range bodies {
		var buf bytes.Buffer
		if err := treeio.WriteJSON(fiveNodes(), &buf); err != nil {
			t.Fatal(err)
		}
		bodies[i] = buf.Bytes()
	}

	versions := make(chan int, updates)
	errs := make(chan error, updates)
	var wg sync.WaitGroup
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func(body []byte) {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPut, ts.URL+"/v1/scenes/"+created.ID, bytes.NewReader(body))
			if err != nil {
				errs <- err
				return
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			var d diffResponse
			if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
				errs <- err
				return
			}
			versions <- d.Version
		}(bodies[i])
	}
	wg.Wait()
	close(versions)
	close(errs)

	for err := range errs {
		t.Fatalf("update: %v", err)
	}
	seen := make(map[int]bool)
	for v := range versions {
		if seen[v] {
			t.Errorf("version %d reported twice", v)
		}
		seen[v] = true
	}
	for v := 2; v <= updates+1; v++ {
		if !seen[v] {
			t.Errorf("version %d never reported", v)
		}
	}
}

func TestRetainedApplyVersion(t *testing.T) {
	opts := pipeline.DefaultOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	sc := newRetained(opts, styles.Classic{})
	for want := 1; want <= 3; want++ {
		if _, _, got := sc.apply(fiveNodes()); got != want {
			t.Errorf("apply #%d version = %d", want, got)
		}
	}
	if info := sc.info(); info.Version != 3 {
		t.Errorf("info().Version = %d, want 3", info.Version)
	}
}

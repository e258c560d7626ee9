package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stacktree/pkg/buildinfo"
	"github.com/matzehuels/stacktree/pkg/errors"
	treeio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/observability"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/render/styles"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// =============================================================================
// Response types
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// sceneInfo summarizes a retained scene.
type sceneInfo struct {
	ID      string    `json:"id"`
	Version int       `json:"version"`
	Nodes   int       `json:"nodes"`
	Links   int       `json:"links"`
	Seen    int       `json:"seen"` // identities issued so far
	Style   string    `json:"style"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// diffResponse reports one reconciliation.
type diffResponse struct {
	ID         string   `json:"id"`
	Version    int      `json:"version"`
	Added      int      `json:"added"`
	Updated    int      `json:"updated"`
	Removed    int      `json:"removed"`
	AddedKeys  []string `json:"added_keys,omitempty"`
	Mismatches []string `json:"parent_mismatches,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Short()})
}

// handleRenderGet renders the built-in tree, or a tree file below the data
// directory named by ?tree=.
func (s *Server) handleRenderGet(w http.ResponseWriter, r *http.Request) {
	root, err := s.loadDataTree(r.URL.Query().Get("tree"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.render(w, r, root)
}

func (s *Server) handleRenderPost(w http.ResponseWriter, r *http.Request) {
	root, err := s.readTree(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.render(w, r, root)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, root *tree.Node) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(opts.Formats) != 1 {
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "request exactly one format"))
		return
	}

	result, err := s.runner.Execute(r.Context(), root, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("X-Stacktree-Nodes", strconv.Itoa(result.Stats.NodeCount))
	w.Header().Set("X-Stacktree-Cache", strconv.FormatBool(result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit))
	if n := len(result.Mismatches); n > 0 {
		w.Header().Set("X-Stacktree-Parent-Mismatches", strconv.Itoa(n))
	}
	writeArtifact(w, format, result.Artifacts[format])
}

// handleLayout returns the layout document of the posted tree.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	root, err := s.readTree(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Layout(r.Context(), root, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	doc := res.Export()
	doc.Width, doc.Height, doc.Style = opts.Canvas.Width, opts.Canvas.Height, opts.Style
	writeDocument(w, doc)
}

func (s *Server) handleSceneList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scenes.list())
}

// handleSceneCreate creates a retained scene and draws the posted tree
// into it.
func (s *Server) handleSceneCreate(w http.ResponseWriter, r *http.Request) {
	root, err := s.readTree(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	mismatches, err := pipeline.CheckTree(root, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	style, err := styles.Lookup(opts.Style, opts.Palette)
	if err != nil {
		writeError(w, err)
		return
	}

	sc := newRetained(opts, style)
	if err := s.scenes.add(sc); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("scene created", "id", sc.id, "nodes", tree.Count(root))
	writeJSON(w, http.StatusCreated, s.reconcile(r, sc, root, mismatches))
}

func (s *Server) handleSceneGet(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scenes.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", pipeline.FormatSVG:
		writeArtifact(w, pipeline.FormatSVG, sc.svg())
	case pipeline.FormatPNG:
		data, err := sc.png()
		if err != nil {
			writeError(w, err)
			return
		}
		writeArtifact(w, pipeline.FormatPNG, data)
	case pipeline.FormatJSON:
		writeDocument(w, sc.document())
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "scenes serve svg, png or json, not %q", format))
	}
}

// handleSceneUpdate relays out the scene with the posted tree and returns
// what changed on its surface.
func (s *Server) handleSceneUpdate(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scenes.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	root, err := s.readTree(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	mismatches, err := pipeline.CheckTree(root, sc.opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.reconcile(r, sc, root, mismatches))
}

func (s *Server) handleSceneDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.scenes.remove(id); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("scene deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// reconcile applies root to the scene and reports the diff.
func (s *Server) reconcile(r *http.Request, sc *retained, root *tree.Node, mismatches []tree.Mismatch) diffResponse {
	ctx := r.Context()
	if len(mismatches) > 0 {
		observability.Pipeline().OnParentMismatch(ctx, len(mismatches))
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, pipeline.VizTypeTree, tree.Count(root))
	res, diff, version := sc.apply(root)
	observability.Pipeline().OnLayoutComplete(ctx, pipeline.VizTypeTree, len(res.Nodes), time.Since(start), nil)
	observability.Pipeline().OnReconcile(ctx, len(diff.Added), len(diff.Updated), len(diff.Removed))

	resp := diffResponse{
		ID:      sc.id,
		Version: version,
		Added:   len(diff.Added),
		Updated: len(diff.Updated),
		Removed: len(diff.Removed),
	}
	for _, k := range diff.Added {
		resp.AddedKeys = append(resp.AddedKeys, k.String())
	}
	for _, m := range mismatches {
		resp.Mismatches = append(resp.Mismatches, m.String())
	}
	s.logger.Debug("scene reconciled", "id", sc.id, "version", version,
		"added", resp.Added, "updated", resp.Updated, "removed", resp.Removed)
	return resp
}

// =============================================================================
// Request helpers
// =============================================================================

// readTree decodes the JSON tree document in the request body.
func (s *Server) readTree(w http.ResponseWriter, r *http.Request) (*tree.Node, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer body.Close()
	root, err := treeio.ReadJSON(body)
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(root, tree.ValidateOptions{Labels: true}); err != nil {
		return nil, err
	}
	return root, nil
}

// loadDataTree returns the built-in tree for an empty name, or reads name
// relative to the data directory.
func (s *Server) loadDataTree(name string) (*tree.Node, error) {
	if name == "" {
		return treeio.Builtin(), nil
	}
	if s.cfg.DataDir == "" {
		return nil, errors.New(errors.ErrCodeUnsupported, "server has no data directory")
	}
	if err := errors.ValidatePath(name); err != nil {
		return nil, err
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return nil, errors.New(errors.ErrCodeInvalidPath, "tree path must be relative")
	}
	return treeio.Import(filepath.Join(s.cfg.DataDir, filepath.FromSlash(name)))
}

// requestOptions overlays query parameters on the base options.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Options
	opts.Logger = s.logger
	q := r.URL.Query()

	if v := q.Get("format"); v != "" {
		opts.Formats = strings.Split(strings.ToLower(v), ",")
	}
	if v := q.Get("viz"); v != "" {
		opts.VizType = v
	}
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	for name, dst := range map[string]*bool{"fit": &opts.Fit, "strict": &opts.StrictParents, "refresh": &opts.Refresh} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
		}
		*dst = b
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter scale")
		}
		opts.Scale = f
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// =============================================================================
// Response helpers
// =============================================================================

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeDocument(w http.ResponseWriter, doc layout.Document) {
	var buf bytes.Buffer
	if err := layout.WriteJSON(&buf, doc); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	writeArtifact(w, pipeline.FormatJSON, buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle,
		errors.ErrCodeInvalidVizType, errors.ErrCodeInvalidTree, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case errors.ErrCodeParentMismatch:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeSceneNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		status, code = http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput
	}
	if stderrors.Is(err, errSceneLimit) {
		status = http.StatusTooManyRequests
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

package server

import (
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/render"
	"github.com/matzehuels/stacktree/pkg/render/scene"
	"github.com/matzehuels/stacktree/pkg/render/sink"
	"github.com/matzehuels/stacktree/pkg/render/styles"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// retained is one persistent scene: a layout engine whose identities
// survive across updates and the surface it reconciles into.
//
// All access goes through mu; a surface is never touched by two requests
// at once.
type retained struct {
	id string

	mu       sync.Mutex
	engine   *layout.Engine
	renderer *render.Renderer
	opts     pipeline.Options
	last     layout.Result
	version  int
	created  time.Time
	updated  time.Time
}

func newRetained(opts pipeline.Options, style styles.Style) *retained {
	now := time.Now()
	surface := scene.NewSurface(opts.Canvas)
	surface.Title = opts.Title
	r := render.New(surface, style)
	r.Fit = opts.Fit
	return &retained{
		id:       uuid.NewString(),
		engine:   layout.NewEngine(opts.Layout),
		renderer: r,
		opts:     opts,
		created:  now,
		updated:  now,
	}
}

// apply lays root out with the scene's engine and reconciles the surface.
// It returns the version the update produced.
func (s *retained) apply(root *tree.Node) (layout.Result, render.Diff, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.engine.Layout(root)
	diff := s.renderer.Render(res)
	s.last = res
	s.version++
	s.updated = time.Now()
	return res, diff, s.version
}

// svg serializes the current surface with data-id attributes.
func (s *retained) svg() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sink.RenderSVG(s.renderer.Surface, sink.WithIDs())
}

// png rasterizes the current surface.
func (s *retained) png() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sink.RenderPNG(s.renderer.Surface, sink.WithScale(s.opts.Scale))
}

// document exports the last layout.
func (s *retained) document() layout.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.last.Export()
	doc.Width = s.renderer.Surface.Canvas.Width
	doc.Height = s.renderer.Surface.Canvas.Height
	doc.Style = s.renderer.Style.Name()
	return doc
}

// info summarizes the scene.
func (s *retained) info() sceneInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sceneInfo{
		ID:      s.id,
		Version: s.version,
		Nodes:   s.renderer.Surface.Count(scene.ClassNode),
		Links:   s.renderer.Surface.Count(scene.ClassLink),
		Seen:    s.engine.Seen(),
		Style:   s.renderer.Style.Name(),
		Created: s.created,
		Updated: s.updated,
	}
}

// errSceneLimit is returned when the scene store is full.
var errSceneLimit = stderrors.New("scene limit reached")

// sceneStore holds the retained scenes by id.
type sceneStore struct {
	mu     sync.RWMutex
	scenes map[string]*retained
	limit  int
	onSize func(int)
}

func newSceneStore(limit int, onSize func(int)) *sceneStore {
	if onSize == nil {
		onSize = func(int) {}
	}
	return &sceneStore{scenes: make(map[string]*retained), limit: limit, onSize: onSize}
}

func (st *sceneStore) add(s *retained) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.limit > 0 && len(st.scenes) >= st.limit {
		return errors.Wrap(errors.ErrCodeUnsupported, errSceneLimit, "%d scenes retained", st.limit)
	}
	st.scenes[s.id] = s
	st.onSize(len(st.scenes))
	return nil
}

func (st *sceneStore) get(id string) (*retained, error) {
	if err := errors.ValidateSceneID(id); err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.scenes[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSceneNotFound, "scene %s not found", id)
	}
	return s, nil
}

func (st *sceneStore) remove(id string) error {
	if err := errors.ValidateSceneID(id); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.scenes[id]; !ok {
		return errors.New(errors.ErrCodeSceneNotFound, "scene %s not found", id)
	}
	delete(st.scenes, id)
	st.onSize(len(st.scenes))
	return nil
}

// list returns scene summaries, oldest first.
func (st *sceneStore) list() []sceneInfo {
	st.mu.RLock()
	all := make([]*retained, 0, len(st.scenes))
	for _, s := range st.scenes {
		all = append(all, s)
	}
	st.mu.RUnlock()

	out := make([]sceneInfo, len(all))
	for i, s := range all {
		out[i] = s.info()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

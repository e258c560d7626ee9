package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/render/scene"
	"github.com/matzehuels/stacktree/pkg/tree"
)

func fiveNodes() *tree.Node {
	return tree.Module("root",
		tree.Page("a"),
		tree.Module("b", tree.Page("c"), tree.Page("d")),
	)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"dot", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"classic", false},
		{"dark", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"tree", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.VizType != VizTypeTree || opts.Style != "classic" || opts.Scale != DefaultScale {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Layout != layout.DefaultOptions() {
		t.Errorf("Layout = %+v", opts.Layout)
	}
	if opts.Canvas != scene.DefaultCanvas() {
		t.Errorf("Canvas = %+v", opts.Canvas)
	}
	if opts.Logger != nil {
		t.Error("DefaultOptions() should leave Logger for the runner")
	}
}

func TestSetLayoutDefaultsKeepsZeroStride(t *testing.T) {
	opts := Options{Layout: layout.Options{NodeWidth: 20}}
	opts.SetLayoutDefaults()

	if opts.Layout.LevelStride != 0 {
		t.Errorf("LevelStride = %g, want 0 to survive defaults", opts.Layout.LevelStride)
	}
	if opts.Layout.NodeWidth != 20 || opts.Layout.NodeHeight != layout.DefaultNodeHeight {
		t.Errorf("Layout = %+v", opts.Layout)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		want   errors.Code
	}{
		{"viz type", func(o *Options) { o.VizType = "tower" }, errors.ErrCodeInvalidVizType},
		{"style", func(o *Options) { o.Style = "neon" }, errors.ErrCodeInvalidStyle},
		{"format", func(o *Options) { o.Formats = []string{"pdf"} }, errors.ErrCodeInvalidFormat},
		{"negative stride", func(o *Options) { o.Layout.LevelStride = -1 }, errors.ErrCodeInvalidConfig},
		{"canvas", func(o *Options) { o.Canvas.Width = 0 }, errors.ErrCodeInvalidConfig},
		{"margin", func(o *Options) { o.Canvas.Margin.Left = -5 }, errors.ErrCodeInvalidConfig},
		{"scale", func(o *Options) { o.Scale = 100 }, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestStyleIsCaseInsensitive(t *testing.T) {
	opts := Options{Style: "Dark"}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender() error = %v", err)
	}
	if opts.Style != "dark" {
		t.Errorf("Style = %q, want dark", opts.Style)
	}
}

func TestDecodeOptions(t *testing.T) {
	doc := `
viz_type = "nodelink"
formats = ["svg", "dot"]
style = "dark"
fit = true

[layout]
level_stride = 180

[palette]
module = "#2a9d8f"
`
	opts, err := DecodeOptions(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeOptions() error = %v", err)
	}
	if opts.VizType != VizTypeNodelink || opts.Style != "dark" || !opts.Fit {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.Formats) != 2 || opts.Formats[1] != FormatDOT {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Layout.LevelStride != 180 || opts.Layout.NodeWidth != layout.DefaultNodeWidth {
		t.Errorf("Layout = %+v; want stride 180 and default footprint", opts.Layout)
	}
	if opts.Palette.Module != "#2a9d8f" || opts.Palette.Other != "" {
		t.Errorf("Palette = %+v", opts.Palette)
	}
	if opts.Canvas != scene.DefaultCanvas() {
		t.Errorf("Canvas = %+v; omitted table should keep defaults", opts.Canvas)
	}
}

func TestDecodeOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `style = `},
		{"unknown key", "stlye = \"dark\"\n"},
		{"wrong type", "fit = \"yes\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOptions(strings.NewReader(tt.doc))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("DecodeOptions() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadOptionsMissing(t *testing.T) {
	_, err := LoadOptions(t.TempDir() + "/nope.toml")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadOptions() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad(t *testing.T) {
	root, name, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if name != io.BuiltinName || tree.Count(root) != 37 {
		t.Errorf("Load(\"\") = %s with %d nodes", name, tree.Count(root))
	}
	if _, _, err := Load("missing.json"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestTreeHash(t *testing.T) {
	h1, _ := TreeHash(fiveNodes())
	h2, _ := TreeHash(fiveNodes())
	if h1 != h2 {
		t.Error("structurally identical trees should hash the same")
	}
	other := fiveNodes()
	other.Children[0].Name = "z"
	if h3, _ := TreeHash(other); h3 == h1 {
		t.Error("different trees should hash differently")
	}
}

func TestCheckTree(t *testing.T) {
	mm, err := CheckTree(io.Builtin(), Options{})
	if err != nil || len(mm) != 6 {
		t.Errorf("CheckTree(builtin) = %d mismatches, %v; want 6, nil", len(mm), err)
	}

	_, err = CheckTree(io.Builtin(), Options{StrictParents: true})
	if !errors.Is(err, errors.ErrCodeParentMismatch) {
		t.Errorf("CheckTree(strict) error = %v", err)
	}

	bad := tree.Module("root", tree.Page("line\nbreak"))
	if _, err := CheckTree(bad, Options{}); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("CheckTree(control char) error = %v", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := DefaultOptions()
	opts.Formats = []string{FormatSVG, FormatJSON, FormatDOT}

	res, err := r.Execute(context.Background(), fiveNodes(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.NodeCount != 5 || res.Stats.EdgeCount != 4 || res.Stats.Height != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.TreeHash == "" {
		t.Error("TreeHash is empty")
	}
	if svg := string(res.Artifacts[FormatSVG]); !strings.Contains(svg, `translate(90, 840)`) ||
		strings.Count(svg, `class="node"`) != 5 || strings.Count(svg, `class="link"`) != 4 {
		t.Errorf("unexpected SVG:\n%s", svg)
	}
	doc, err := layout.ReadJSON(bytes.NewReader(res.Artifacts[FormatJSON]))
	if err != nil || len(doc.Nodes) != 5 || doc.Style != "classic" || doc.Width != 960 {
		t.Errorf("json artifact = %+v, %v", doc, err)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %q", res.Artifacts[FormatDOT])
	}
}

func TestRunnerPNG(t *testing.T) {
	opts := DefaultOptions()
	opts.Formats = []string{FormatPNG}
	opts.Fit = true
	opts.Scale = 1

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), fiveNodes(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if png := res.Artifacts[FormatPNG]; !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("png artifact starts with %q", png[:min(8, len(png))])
	}
}

func TestRunnerCaching(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := DefaultOptions()
	opts.Formats = []string{FormatSVG, FormatJSON}

	first, err := r.Execute(ctx, fiveNodes(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}

	second, err := r.Execute(ctx, fiveNodes(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached SVG differs from the rendered one")
	}
	if got := second.Layout.Nodes[4]; got.ID != 5 || got.Name() != "d" || got.X != 300 {
		t.Errorf("cached layout node = %+v", got)
	}

	opts.Style = "dark"
	third, _ := r.Execute(ctx, fiveNodes(), opts)
	if !third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("style change CacheInfo = %+v, want layout hit, render miss", third.CacheInfo)
	}

	opts.Refresh = true
	fourth, _ := r.Execute(ctx, fiveNodes(), opts)
	if fourth.CacheInfo.LayoutHit || fourth.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v, want misses", fourth.CacheInfo)
	}
}

func TestRunnerStrictParents(t *testing.T) {
	opts := DefaultOptions()
	opts.StrictParents = true

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), io.Builtin(), opts)
	if !errors.Is(err, errors.ErrCodeParentMismatch) {
		t.Errorf("Execute() error = %v, want PARENT_MISMATCH", err)
	}

	opts.StrictParents = false
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), io.Builtin(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Mismatches) != 6 || res.Stats.NodeCount != 37 {
		t.Errorf("mismatches = %d, nodes = %d", len(res.Mismatches), res.Stats.NodeCount)
	}
}

func TestRunnerNodelinkDOT(t *testing.T) {
	opts := DefaultOptions()
	opts.VizType = VizTypeNodelink
	opts.Formats = []string{FormatDOT, FormatJSON}
	opts.Detailed = true

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), fiveNodes(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if dot := string(res.Artifacts[FormatDOT]); !strings.Contains(dot, "rankdir=LR") || !strings.Contains(dot, "module") {
		t.Errorf("dot artifact:\n%s", dot)
	}
	if len(res.Artifacts[FormatJSON]) == 0 {
		t.Error("nodelink json artifact is empty")
	}
}

func TestRenderFromDocument(t *testing.T) {
	res := ComputeLayout(fiveNodes(), DefaultOptions())
	doc := res.Export()
	doc.Style = "dark"

	out, err := RenderFromDocument(doc, Options{})
	if err != nil {
		t.Fatalf("RenderFromDocument() error = %v", err)
	}
	if svg := string(out[FormatSVG]); !strings.Contains(svg, "#121212") {
		t.Errorf("document style not applied:\n%s", svg)
	}

	if _, err := RenderFromLayout(layout.Result{}, Options{}); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("RenderFromLayout(empty) error = %v", err)
	}
}

func TestTitle(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "Router <tree>"
	out, err := RenderFromLayout(ComputeLayout(fiveNodes(), opts), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out[FormatSVG]), "<title>Router &lt;tree&gt;</title>") {
		t.Errorf("title missing:\n%s", out[FormatSVG])
	}
}

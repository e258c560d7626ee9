package sink

import (
	"bytes"

	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/render/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style string
}

// WithJSONStyle records the style name (e.g. "classic", "dark") in the output
// so a later visualize run can reproduce the look.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// RenderJSON exports a layout result as a [layout.Document] sized to canvas.
func RenderJSON(res layout.Result, canvas scene.Canvas, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	doc := res.Export()
	doc.Width = canvas.Width
	doc.Height = canvas.Height
	doc.Style = r.style

	var buf bytes.Buffer
	if err := layout.WriteJSON(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

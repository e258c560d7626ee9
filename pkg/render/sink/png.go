package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/stacktree/pkg/render/scene"
)

const (
	defaultPNGScale = 2.0
	baseFontSize    = 16.0 // px, the SVG default
	maxPNGPixels    = 64 << 20
	curveSegments   = 32
	circleSegments  = 48
)

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale       float64
	supersample int
	background  string
}

// WithScale sets the output scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithSupersample draws at n times the output size and downsamples with
// Catmull-Rom. n <= 1 disables supersampling.
func WithSupersample(n int) PNGOption {
	return func(r *pngRenderer) { r.supersample = max(1, n) }
}

// WithPNGBackground overrides the background color. The default is the
// surface background, or white when the surface has none.
func WithPNGBackground(c string) PNGOption {
	return func(r *pngRenderer) { r.background = c }
}

// RenderPNG rasterizes the surface natively, without an external converter.
// Labels use the Go Regular font; glyphs it lacks render as boxes.
func RenderPNG(s *scene.Surface, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: defaultPNGScale, supersample: 1, background: s.Background}
	for _, opt := range opts {
		opt(&r)
	}
	if r.background == "" {
		r.background = "#fff"
	}

	c := s.Canvas
	k := r.scale * float64(r.supersample)
	w, h := int(math.Ceil(c.Width*k)), int(math.Ceil(c.Height*k))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png: empty canvas %gx%g", c.Width, c.Height)
	}
	if w*h > maxPNGPixels {
		return nil, fmt.Errorf("png: %dx%d exceeds the pixel budget; lower the scale", w, h)
	}

	bg, err := parseColor(r.background)
	if err != nil {
		return nil, fmt.Errorf("png: background: %w", err)
	}
	face, err := labelFace(baseFontSize * k)
	if err != nil {
		return nil, fmt.Errorf("png: font: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	tx, ty := c.Translate()
	p := &painter{img: img, k: k, tx: tx, ty: ty, face: face}
	for _, el := range s.Elements() {
		switch e := el.(type) {
		case scene.Path:
			err = p.link(e)
		case scene.Group:
			err = p.node(e)
		}
		if err != nil {
			return nil, fmt.Errorf("png: %s: %w", el.Key(), err)
		}
	}

	out := img
	if r.supersample > 1 {
		out = image.NewRGBA(image.Rect(0, 0, w/r.supersample, h/r.supersample))
		draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	fontOnce sync.Once
	goFont   *opentype.Font
	fontErr  error
)

func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() { goFont, fontErr = opentype.Parse(goregular.TTF) })
	if fontErr != nil {
		return nil, fontErr
	}
	return opentype.NewFace(goFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

type point struct{ x, y float64 }

// painter maps surface coordinates to image pixels and fills polygons with
// an anti-aliasing rasterizer sized to each shape.
type painter struct {
	img    *image.RGBA
	k      float64
	tx, ty float64
	face   font.Face
}

func (p *painter) px(x, y float64) point {
	return point{(p.tx + x) * p.k, (p.ty + y) * p.k}
}

func (p *painter) node(g scene.Group) error {
	c := p.px(g.X, g.Y)
	r := g.Circle.R * p.k
	half := g.Circle.StrokeWidth * p.k / 2

	fill, err := parseColor(g.Circle.Fill)
	if err != nil {
		return err
	}
	stroke, err := parseColor(g.Circle.Stroke)
	if err != nil {
		return err
	}
	if fill.A > 0 {
		p.fill(fill, circle(c, r, false))
	}
	if stroke.A > 0 && half > 0 {
		p.fill(stroke, circle(c, r+half, false), circle(c, max(0, r-half), true))
	}
	return p.label(g)
}

func (p *painter) label(g scene.Group) error {
	l := g.Label
	if l.Text == "" {
		return nil
	}
	col := color.RGBA{A: 255}
	if l.Fill != "" {
		var err error
		if col, err = parseColor(l.Fill); err != nil {
			return err
		}
	}
	col = withOpacity(col, l.FillOpacity)

	at := p.px(g.X+l.X, g.Y+parseLength(l.DY))
	width := float64(font.MeasureString(p.face, l.Text)) / 64
	switch l.Anchor {
	case "middle":
		at.x -= width / 2
	case "end":
		at.x -= width
	}

	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(col),
		Face: p.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(at.x * 64), Y: fixed.Int26_6(at.y * 64)},
	}
	d.DrawString(l.Text)
	return nil
}

func (p *painter) link(path scene.Path) error {
	stroke, err := parseColor(path.Stroke)
	if err != nil {
		return err
	}
	half := parseLength(path.StrokeWidth) * p.k / 2
	if stroke.A == 0 || half <= 0 {
		return nil
	}

	a, b := p.px(path.X0, path.Y0), p.px(path.X1, path.Y1)
	mx := (a.x + b.x) / 2
	pts := cubic(a, point{mx, a.y}, point{mx, b.y}, b, curveSegments)
	if ribbon := strokePolyline(pts, half); ribbon != nil {
		p.fill(stroke, ribbon)
	}
	return nil
}

// fill rasterizes the union of the given closed polygons. Polygons wound in
// opposite directions cut holes.
func (p *painter) fill(col color.RGBA, polys ...[]point) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range polys {
		for _, q := range poly {
			minX, maxX = min(minX, q.x), max(maxX, q.x)
			minY, maxY = min(minY, q.y), max(maxY, q.y)
		}
	}
	rect := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1).Intersect(p.img.Bounds())
	if rect.Empty() {
		return
	}

	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	z := vector.NewRasterizer(rect.Dx(), rect.Dy())
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		z.MoveTo(float32(poly[0].x-ox), float32(poly[0].y-oy))
		for _, q := range poly[1:] {
			z.LineTo(float32(q.x-ox), float32(q.y-oy))
		}
		z.ClosePath()
	}
	z.Draw(p.img, rect, image.NewUniform(col), image.Point{})
}

func circle(c point, r float64, reverse bool) []point {
	pts := make([]point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		if reverse {
			a = -a
		}
		pts[i] = point{c.x + r*math.Cos(a), c.y + r*math.Sin(a)}
	}
	return pts
}

func cubic(p0, p1, p2, p3 point, n int) []point {
	pts := make([]point, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		pts[i] = point{
			a*p0.x + b*p1.x + c*p2.x + d*p3.x,
			a*p0.y + b*p1.y + c*p2.y + d*p3.y,
		}
	}
	return pts
}

// strokePolyline returns the outline of a butt-capped stroke of the given
// half width along pts, or nil for a degenerate line.
func strokePolyline(pts []point, half float64) []point {
	n := len(pts)
	if n < 2 {
		return nil
	}
	left := make([]point, 0, n)
	right := make([]point, 0, n)
	for i := range pts {
		prev, next := pts[max(0, i-1)], pts[min(n-1, i+1)]
		dx, dy := next.x-prev.x, next.y-prev.y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		left = append(left, point{pts[i].x + nx, pts[i].y + ny})
		right = append(right, point{pts[i].x - nx, pts[i].y - ny})
	}
	if len(left) < 2 {
		return nil
	}
	out := left
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	return out
}

func withOpacity(c color.RGBA, a float64) color.RGBA {
	if a >= 1 {
		return c
	}
	a = max(0, a)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

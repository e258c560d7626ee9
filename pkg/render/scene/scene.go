package scene

import (
	"fmt"
	"strconv"
)

// Element classes. The class decides draw-order placement and is half of an
// element's [Key].
const (
	ClassNode = "node"
	ClassLink = "link"
)

// Key identifies a retained element: its class and the layout identity it
// was drawn for. A node group and the link ending at that node share an ID
// but not a Key.
type Key struct {
	Class string
	ID    int
}

func (k Key) String() string { return k.Class + "-" + strconv.Itoa(k.ID) }

// Element is anything a [Surface] can hold.
//
// Implementations must be comparable value types; the renderer compares
// retained and desired elements with == to decide whether to update.
type Element interface {
	Key() Key
}

// Circle is the marker drawn at a node's position.
type Circle struct {
	R           float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Label is the text drawn with a node.
type Label struct {
	Text        string
	X           float64
	DY          string // CSS length, e.g. "-1rem"
	Anchor      string // text-anchor
	Fill        string // empty inherits
	FillOpacity float64
}

// Group is a node visual: a circle and a label translated to (X, Y).
type Group struct {
	ID     int
	Type   string
	X, Y   float64
	Circle Circle
	Label  Label
}

func (g Group) Key() Key { return Key{Class: ClassNode, ID: g.ID} }

// Transform returns the SVG transform attribute value for the group.
func (g Group) Transform() string {
	return fmt.Sprintf("translate(%s, %s)", Num(g.X), Num(g.Y))
}

// Path is a link visual between two node positions.
type Path struct {
	ID          int
	D           string
	Fill        string
	Stroke      string
	StrokeWidth string // CSS length, e.g. "2px"

	// Endpoints the curve was built from, kept for rasterizing sinks.
	X0, Y0, X1, Y1 float64
}

func (p Path) Key() Key { return Key{Class: ClassLink, ID: p.ID} }

// LinkHorizontal returns a cubic Bézier path from (x0, y0) to (x1, y1) whose
// control points sit at the horizontal midpoint, so the curve leaves and
// enters both ends horizontally.
func LinkHorizontal(x0, y0, x1, y1 float64) string {
	mx := (x0 + x1) / 2
	return "M" + Num(x0) + "," + Num(y0) +
		"C" + Num(mx) + "," + Num(y0) +
		"," + Num(mx) + "," + Num(y1) +
		"," + Num(x1) + "," + Num(y1)
}

// Num formats a coordinate the shortest way that round-trips.
func Num(v float64) string {
	if v == 0 {
		return "0" // also normalizes -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

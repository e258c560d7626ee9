package styles

import (
	"strings"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/render/scene"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Style names.
const (
	NameClassic = "classic"
	NameDark    = "dark"
)

// Style turns positioned nodes and links into scene elements.
type Style interface {
	// Name returns the registered style name.
	Name() string
	// Palette returns the effective colors.
	Palette() Palette
	// Node returns the visual for a single node.
	Node(n Node) scene.Group
	// Link returns the visual for a parent-child link.
	Link(l Link) scene.Path
}

// Node contains the data needed to draw one node.
type Node struct {
	ID   int
	Name string
	Type string
	X, Y float64
}

// Link contains the endpoints of one parent-child link. ID is the child's ID.
type Link struct {
	ID             int
	X0, Y0, X1, Y1 float64
}

// Fixed geometry shared by all styles.
const (
	NodeRadius      = 10.0
	NodeStrokeWidth = 3.0
	LinkStrokeWidth = "2px"
	LabelDY         = "-1rem"
)

// Palette holds the colors a style draws with. Empty fields fall back to the
// style's own palette when used as overrides.
type Palette struct {
	Module     string `json:"module,omitempty" toml:"module"`
	Other      string `json:"other,omitempty" toml:"other"`
	NodeFill   string `json:"node_fill,omitempty" toml:"node_fill"`
	Link       string `json:"link,omitempty" toml:"link"`
	Label      string `json:"label,omitempty" toml:"label"`
	Background string `json:"background,omitempty" toml:"background"`
}

// Merge returns p with every non-empty field of o applied on top.
func (p Palette) Merge(o Palette) Palette {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Module, o.Module)
	set(&p.Other, o.Other)
	set(&p.NodeFill, o.NodeFill)
	set(&p.Link, o.Link)
	set(&p.Label, o.Label)
	set(&p.Background, o.Background)
	return p
}

// Stroke returns the outline color for a node type: Module for "module",
// Other for everything else.
func (p Palette) Stroke(typ string) string {
	if typ == tree.TypeModule {
		return p.Module
	}
	return p.Other
}

// Names returns the registered style names.
func Names() []string { return []string{NameClassic, NameDark} }

// Lookup returns the style registered under name, with overrides applied.
func Lookup(name string, overrides Palette) (Style, error) {
	switch strings.ToLower(name) {
	case "", NameClassic:
		return Classic{Overrides: overrides}, nil
	case NameDark:
		return Dark{Overrides: overrides}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle,
		"unknown style %q (available: %s)", name, strings.Join(Names(), ", "))
}

func node(p Palette, n Node) scene.Group {
	return scene.Group{
		ID:   n.ID,
		Type: n.Type,
		X:    n.X,
		Y:    n.Y,
		Circle: scene.Circle{
			R:           NodeRadius,
			Fill:        p.NodeFill,
			Stroke:      p.Stroke(n.Type),
			StrokeWidth: NodeStrokeWidth,
		},
		Label: scene.Label{
			Text:        n.Name,
			DY:          LabelDY,
			Anchor:      "middle",
			Fill:        p.Label,
			FillOpacity: 1,
		},
	}
}

func link(p Palette, l Link) scene.Path {
	return scene.Path{
		ID:          l.ID,
		D:           scene.LinkHorizontal(l.X0, l.Y0, l.X1, l.Y1),
		Fill:        "none",
		Stroke:      p.Link,
		StrokeWidth: LinkStrokeWidth,
		X0:          l.X0,
		Y0:          l.Y0,
		X1:          l.X1,
		Y1:          l.Y1,
	}
}

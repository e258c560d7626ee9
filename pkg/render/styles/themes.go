package styles

import "github.com/matzehuels/stacktree/pkg/render/scene"

// ClassicPalette is the original look: white nodes outlined steelblue for
// modules and red for everything else, on light grey links.
var ClassicPalette = Palette{
	Module:   "steelblue",
	Other:    "red",
	NodeFill: "#fff",
	Link:     "#ccc",
}

// DarkPalette suits dark backgrounds.
var DarkPalette = Palette{
	Module:     "#5fa8d3",
	Other:      "#ff6b6b",
	NodeFill:   "#1e1e1e",
	Link:       "#555",
	Label:      "#e6e6e6",
	Background: "#121212",
}

// Classic is the default style.
type Classic struct {
	Overrides Palette
}

func (Classic) Name() string              { return NameClassic }
func (s Classic) Palette() Palette        { return ClassicPalette.Merge(s.Overrides) }
func (s Classic) Node(n Node) scene.Group { return node(s.Palette(), n) }
func (s Classic) Link(l Link) scene.Path  { return link(s.Palette(), l) }

// Dark is a light-on-dark variant of [Classic] with the same geometry.
type Dark struct {
	Overrides Palette
}

func (Dark) Name() string              { return NameDark }
func (s Dark) Palette() Palette        { return DarkPalette.Merge(s.Overrides) }
func (s Dark) Node(n Node) scene.Group { return node(s.Palette(), n) }
func (s Dark) Link(l Link) scene.Path  { return link(s.Palette(), l) }

package scene

// Default canvas geometry. The scroll offset pushes the root group down far
// enough that a tall tree centered on breadth 0 is visible from the top.
const (
	DefaultWidth        = 960.0
	DefaultHeight       = 2000.0
	DefaultMarginTop    = 40.0
	DefaultMarginRight  = 90.0
	DefaultMarginBottom = 30.0
	DefaultMarginLeft   = 90.0
	DefaultScrollOffset = 800.0
)

// Margin is the space between the canvas edge and the drawing area.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// Canvas is the outer geometry of a surface.
//
// Width and Height are the full canvas size, margins included. The root
// group is translated by (Margin.Left, Margin.Top + ScrollOffset).
type Canvas struct {
	Width        float64 `json:"width" toml:"width"`
	Height       float64 `json:"height" toml:"height"`
	Margin       Margin  `json:"margin" toml:"margin"`
	ScrollOffset float64 `json:"scroll_offset" toml:"scroll_offset"`
	OffsetX      float64 `json:"offset_x,omitempty" toml:"offset_x"`
}

// DefaultCanvas returns the 960×2000 canvas with the stock margins.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Margin: Margin{
			Top:    DefaultMarginTop,
			Right:  DefaultMarginRight,
			Bottom: DefaultMarginBottom,
			Left:   DefaultMarginLeft,
		},
		ScrollOffset: DefaultScrollOffset,
	}
}

// Translate returns the root group translation.
func (c Canvas) Translate() (x, y float64) {
	return c.Margin.Left + c.OffsetX, c.Margin.Top + c.ScrollOffset
}

// Inner returns the drawing area inside the margins.
func (c Canvas) Inner() (w, h float64) {
	return c.Width - c.Margin.Left - c.Margin.Right, c.Height - c.Margin.Top - c.Margin.Bottom
}

// Fit returns a canvas with the same margins, sized to the given content
// extent and translated so the content starts at the inner top-left corner.
func (c Canvas) Fit(minX, maxX, minY, maxY float64) Canvas {
	c.Width = (maxX - minX) + c.Margin.Left + c.Margin.Right
	c.Height = (maxY - minY) + c.Margin.Top + c.Margin.Bottom
	c.OffsetX = -minX
	c.ScrollOffset = -minY
	return c
}

package layout

// Default layout constants. They reproduce the router-tree diagram: 30×30
// nodes, 12px/10px gaps and a 150px stride between levels.
const (
	DefaultNodeWidth            = 30.0
	DefaultNodeHeight           = 30.0
	DefaultHorizontalSeparation = 12.0
	DefaultVerticalSeparation   = 10.0
	DefaultLevelStride          = 150.0
	DefaultSiblingSeparation    = 1.0
	DefaultCousinSeparation     = 2.0
)

// Options configures the node footprint and spacing used by [Engine.Layout].
//
// The footprint feeds the layout's spacing units. The screen depth coordinate
// is then overridden by LevelStride, which decouples level spacing from the
// footprint.
type Options struct {
	NodeWidth            float64 `json:"node_width" toml:"node_width"`
	NodeHeight           float64 `json:"node_height" toml:"node_height"`
	HorizontalSeparation float64 `json:"horizontal_separation" toml:"horizontal_separation"`
	VerticalSeparation   float64 `json:"vertical_separation" toml:"vertical_separation"`

	// LevelStride is the pixel distance between depth levels. Zero keeps the
	// layout's native depth unit (NodeWidth + HorizontalSeparation).
	LevelStride float64 `json:"level_stride" toml:"level_stride"`

	// SiblingSeparation and CousinSeparation are minimum gaps, in breadth
	// units, between adjacent nodes that do or do not share a parent.
	SiblingSeparation float64 `json:"sibling_separation" toml:"sibling_separation"`
	CousinSeparation  float64 `json:"cousin_separation" toml:"cousin_separation"`
}

// DefaultOptions returns the stock layout configuration.
func DefaultOptions() Options {
	return Options{
		NodeWidth:            DefaultNodeWidth,
		NodeHeight:           DefaultNodeHeight,
		HorizontalSeparation: DefaultHorizontalSeparation,
		VerticalSeparation:   DefaultVerticalSeparation,
		LevelStride:          DefaultLevelStride,
		SiblingSeparation:    DefaultSiblingSeparation,
		CousinSeparation:     DefaultCousinSeparation,
	}
}

// SetDefaults fills zero footprint and separation fields with defaults.
// LevelStride is left alone because zero is meaningful.
func (o *Options) SetDefaults() {
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.HorizontalSeparation == 0 {
		o.HorizontalSeparation = DefaultHorizontalSeparation
	}
	if o.VerticalSeparation == 0 {
		o.VerticalSeparation = DefaultVerticalSeparation
	}
	if o.SiblingSeparation == 0 {
		o.SiblingSeparation = DefaultSiblingSeparation
	}
	if o.CousinSeparation == 0 {
		o.CousinSeparation = DefaultCousinSeparation
	}
}

// BreadthUnit is one layout unit along the breadth axis.
func (o Options) BreadthUnit() float64 { return o.NodeHeight + o.VerticalSeparation }

// DepthUnit is the layout's native spacing along the depth axis.
func (o Options) DepthUnit() float64 { return o.NodeWidth + o.HorizontalSeparation }

// stride returns the effective pixel distance between levels.
func (o Options) stride() float64 {
	if o.LevelStride != 0 {
		return o.LevelStride
	}
	return o.DepthUnit()
}

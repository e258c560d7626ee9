package cache

// Keyer derives cache keys. Every option that changes the cached bytes must
// be part of the key.
type Keyer interface {
	// LayoutKey addresses a layout of the tree with the given content hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey addresses one rendered format of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the options that influence a layout.
type LayoutKeyOpts struct {
	VizType              string  `json:"viz_type"`
	NodeWidth            float64 `json:"node_width"`
	NodeHeight           float64 `json:"node_height"`
	HorizontalSeparation float64 `json:"horizontal_separation"`
	VerticalSeparation   float64 `json:"vertical_separation"`
	LevelStride          float64 `json:"level_stride"`
	SiblingSeparation    float64 `json:"sibling_separation"`
	CousinSeparation     float64 `json:"cousin_separation"`
}

// ArtifactKeyOpts lists the options that influence a rendered artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	VizType string  `json:"viz_type"`
	Style   string  `json:"style"`
	Palette string  `json:"palette,omitempty"`
	Canvas  string  `json:"canvas,omitempty"`
	Fit     bool    `json:"fit,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes the options into fixed-length keys:
//
//	layout:<sha256>
//	artifact:<sha256>
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

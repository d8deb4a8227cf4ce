package cache

// Keyer builds cache keys. Implementations must produce the same key for
// equal inputs and different keys for inputs that change the cached value.
type Keyer interface {
	// LayoutKey generates a key for a layout of the graph with graphHash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes a computed layout.
type LayoutKeyOpts struct {
	Directed      bool      `json:"directed"`
	Circle        bool      `json:"circle"`
	Grid          bool      `json:"grid"`
	AvoidOverlap  bool      `json:"avoid_overlap"`
	SpacingFactor float64   `json:"spacing_factor"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	BoundingBox   []float64 `json:"bounding_box,omitempty"`
	Roots         []string  `json:"roots,omitempty"`
	RootSelector  string    `json:"root_selector,omitempty"`
	Mode          string    `json:"mode"`
	SortBy        string    `json:"sort_by,omitempty"`
	TieBreak      string    `json:"tie_break,omitempty"`
	Flow          string    `json:"flow,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

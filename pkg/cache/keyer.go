package cache

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed from the input whose
	// canonical encoding hashes to inputHash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a layout.
type LayoutKeyOpts struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	NodeWidth   float64 `json:"node_width"`
	NodePadding float64 `json:"node_padding"`
	Iterations  int     `json:"iterations"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:" followed by the hash of inputHash and opts.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

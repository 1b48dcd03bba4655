package cache

// Keyer derives cache keys from content hashes and the options that affect
// the cached value.
type Keyer interface {
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the auto-layout inputs besides the document itself.
type LayoutKeyOpts struct {
	RankDir string  `json:"rankdir"`
	NodeSep float64 `json:"nodesep"`
	RankSep float64 `json:"ranksep"`
}

// ArtifactKeyOpts are the rendering inputs besides the scene itself.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Background string  `json:"background,omitempty"`
	Handles    bool    `json:"handles,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

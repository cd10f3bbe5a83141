package cache

import "strings"

// Keyer builds cache keys for each kind of cached entry.
type Keyer interface {
	// HTTPKey keys a raw HTTP response within a namespace ("jira:").
	HTTPKey(namespace, key string) string
	// BoardKey keys a board fetched from JIRA for a project and PI.
	BoardKey(project, pi string) string
	// LayoutKey keys a computed layout by the hash of its board file.
	LayoutKey(boardHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout options that change the computed layout.
type LayoutKeyOpts struct {
	Mode      string   `json:"mode"`
	Columns   int      `json:"columns"`
	RowHeight float64  `json:"row_height"`
	RowGap    float64  `json:"row_gap"`
	Projects  []string `json:"projects,omitempty"`
	// Today is the "2006-01-02" date of the today marker, or "".
	Today string `json:"today,omitempty"`
}

// ArtifactKeyOpts are the render options that change the output bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Width   float64 `json:"width,omitempty"`
	Markers bool    `json:"markers"`
	Legend  bool    `json:"legend"`
	// BrowseURL is the JIRA base URL task links point at, or "".
	BrowseURL string `json:"browse_url,omitempty"`
}

// DefaultKeyer is the standard [Keyer]. Keys look like "layout:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// BoardKey returns "board:<PROJECT>:<pi>".
func (DefaultKeyer) BoardKey(project, pi string) string {
	return "board:" + strings.ToUpper(project) + ":" + strings.ToLower(pi)
}

// LayoutKey hashes the board hash together with opts.
func (DefaultKeyer) LayoutKey(boardHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", boardHash, opts)
}

// ArtifactKey hashes the layout hash together with opts.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}

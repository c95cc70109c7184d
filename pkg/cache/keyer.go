package cache

import "strconv"

// Keyer derives cache keys.
type Keyer interface {
	// ASTKey is the key of the tree parsed from source text in a format.
	ASTKey(format, sourceHash string) string
	// ViewKey is the key of one generated view of a parsed tree.
	ViewKey(astHash string, opts ViewKeyOpts) string
}

// ViewKeyOpts are the inputs besides the tree that determine a view.
type ViewKeyOpts struct {
	LensHash string // hash of the lens definition
	Format   string // output format
	Detailed bool   // detailed graph labels, dot and svg only
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ASTKey returns "ast:<format>:<sourceHash>".
func (DefaultKeyer) ASTKey(format, sourceHash string) string {
	return "ast:" + format + ":" + sourceHash
}

// ViewKey returns "view:<hash>" over the tree hash and options.
func (DefaultKeyer) ViewKey(astHash string, opts ViewKeyOpts) string {
	return hashKey("view", astHash, opts.LensHash, opts.Format, strconv.FormatBool(opts.Detailed))
}

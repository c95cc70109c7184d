package ast

import "fmt"

// IDGen hands out deterministic per-kind identifiers.
type IDGen struct {
	counters map[string]int
}

// NewIDGen returns a generator with all counters at zero.
func NewIDGen() *IDGen {
	return &IDGen{counters: map[string]int{}}
}

// Next returns the next identifier for prefix, starting at "<prefix>-1".
func (g *IDGen) Next(prefix string) string {
	g.counters[prefix]++
	return fmt.Sprintf("%s-%d", prefix, g.counters[prefix])
}

// Identifier prefixes per node kind.
const (
	PrefixMessage    = "msg"
	PrefixFragment   = "frag"
	PrefixNote       = "note"
	PrefixActivation = "act"
	PrefixReference  = "ref"
	PrefixDivider    = "div"
	PrefixSpacer     = "spc"
	PrefixGroup      = "grp"
)

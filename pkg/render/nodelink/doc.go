// Package nodelink renders the interaction structure of a sequence diagram
// as a node-link graph.
//
// # Overview
//
// Each participant becomes a node and every ordered pair of participants
// that exchanges at least one message becomes an edge labeled with the
// number of messages, or with the message texts when detailed output is
// requested. Groups become Graphviz clusters. Time ordering is not shown;
// the graph answers "who talks to whom", which is useful to review what a
// lens kept.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink

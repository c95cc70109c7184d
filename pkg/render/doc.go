// Package render holds the graphical renderers for sequence diagrams.
//
// Text regeneration in Mermaid or PlantUML lives in package dialect. The
// renderers here produce other artifacts from a tree:
//
//   - [nodelink]: a participant interaction graph as Graphviz DOT and SVG
//
// [nodelink]: github.com/matzehuels/polagram/pkg/render/nodelink
package render

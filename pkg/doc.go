// Package pkg provides the core libraries of Polagram, a tool that derives
// focused views of sequence diagrams.
//
// # Overview
//
// A sequence diagram written in Mermaid or PlantUML is parsed into one shared
// tree, reshaped by a lens (an ordered list of filters), and written back in
// either dialect, as a JSON tree, or as a participant graph. The pkg
// directory is organized into four main areas:
//
//  1. Model: [ast] (the tree) and [source] (positions and scanning)
//  2. Dialects: [dialect] with its mermaid and plantuml parsers and generators
//  3. Lenses: [selector], [transform], [sanitize] and [lens]
//  4. Plumbing: [pipeline], [cache], [config], [io], [render] and [observability]
//
// # Architecture
//
// The typical data flow through Polagram:
//
//	Mermaid / PlantUML source
//	         ↓
//	    [dialect] package (parse into an ast.Root)
//	         ↓
//	    [lens] package (compiled filters from [transform])
//	         ↓
//	    [sanitize] package (drop empty blocks and unused participants)
//	         ↓
//	    Mermaid / PlantUML / JSON / DOT / SVG output
//
// # Quick Start
//
// Remove a participant and resolve a branch:
//
//	import (
//	    "github.com/matzehuels/polagram/pkg/dialect"
//	    "github.com/matzehuels/polagram/pkg/lens"
//	    "github.com/matzehuels/polagram/pkg/pipeline"
//	)
//
//	root, _ := dialect.Parse(src, dialect.Mermaid)
//
//	l := lens.Lens{Name: "public"}
//	for _, expr := range []string{"remove:participant[name=Logger]", "resolve:fragment[text=Success]"} {
//	    layer, _ := lens.ParseLayer(expr)
//	    l.Layers = append(l.Layers, layer)
//	}
//
//	view, _ := pipeline.ApplyLens(root, l)
//	out, _ := dialect.Generate(view, dialect.PlantUML)
//
// # Main Packages
//
// ## Model
//
// [ast] - The dialect independent tree: participants, groups and an ordered
// event list of messages, fragments, notes, activations, references,
// dividers and spacers. Helpers walk, count, dump and compare trees.
//
// [source] - Source positions attached to every node.
//
// ## Dialects
//
// [dialect] - Format detection and dispatch to the Mermaid and PlantUML
// parsers and generators. Constructs one dialect cannot express survive a
// round trip through the other as marked comments.
//
// ## Lenses
//
// [selector] - Match criteria for participants, messages, fragments, groups
// and notes, with exact, regex and glob text matching.
//
// [transform] - The filters: Focus, Remove, Resolve and HideParticipant.
// Each returns a new tree and never modifies its input.
//
// [sanitize] - Cleanup run after every lens: empty fragments and groups go,
// then participants nothing refers to.
//
// [lens] - Named filter chains, validated as a whole before anything runs.
//
// ## Plumbing
//
// [pipeline] - Parse → lens → generate with caching, run ids and batch
// execution. Used by the CLI for every command.
//
// [cache] - File, Redis and null caches plus key derivation.
//
// [config] - The polagram.toml project file.
//
// [io] - JSON import and export with schema validation, msgpack encoding and
// JSON patches between trees.
//
// [render] - Graphviz participant graphs (DOT and SVG).
//
// [observability] - Hooks for pipeline stages and cache events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/transform/...          # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [ast]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/ast
// [source]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/source
// [dialect]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/dialect
// [selector]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/selector
// [transform]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/transform
// [sanitize]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/sanitize
// [lens]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/lens
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/polagram/pkg/observability
package pkg

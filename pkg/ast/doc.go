// Package ast defines the dialect-independent syntax tree for sequence
// diagrams.
//
// # Overview
//
// A [Root] is produced by a dialect parser (Mermaid or PlantUML), transformed
// by lens filters and sanitizers, and consumed by a generator or the JSON
// exporter in package io. The tree is strict: a [Fragment] owns its
// [Branch] values and every branch owns its events. There are no parent
// pointers and no cycles.
//
// # Weak References
//
// Messages, notes, activations, references and groups refer to participants
// by identifier only. Identifiers are resolved by looking them up in
// [Root.Participants] when needed, so transformations can rebuild trees freely
// without repairing handles. The reference sanitizer relies on this to count
// which participants are still in use.
//
// # Events
//
// [Event] is a closed sum type. The concrete variants are [*Message],
// [*Fragment], [*Note], [*Activation], [*Reference], [*Divider] and
// [*Spacer]; dispatch with a type switch or on [Event.Kind].
//
// # Identity
//
// Parsers assign deterministic per-kind identifiers ("msg-1", "frag-2", ...)
// in source order so identical input always yields identical trees.
// [Canonical] strips identifiers and positions, producing the form used to
// decide structural equivalence between two trees.
//
// # Immutability
//
// Pipeline stages never modify a tree in place. Each stage calls [Clone] (or
// rebuilds the parts it changes) and returns a new [Root].
package ast

// Package transform implements the lens filters that derive views from a
// sequence diagram.
//
// # Overview
//
// Every filter has the shape func(*ast.Root, *selector.Matcher) *ast.Root.
// Filters are pure: the input tree is cloned and never modified. They are
// total over any tree, including degenerate intermediate states such as
// zero-branch fragments or empty groups, so they can be chained freely.
//
// # Filters
//
//   - [Focus] keeps only what is needed to tell the story of the matched
//     nodes and drops everything else.
//   - [Remove] deletes the matched nodes and the events they directly own.
//   - [Resolve] unwraps matched fragments, splicing in a single branch.
//   - [HideParticipant] is the legacy spelling of Remove for participant
//     and message selectors.
//
// # Referential Integrity
//
// Filters never leave a weak participant reference dangling. Removing a
// participant also removes the messages and activations that involve it and
// strips it from notes, references and group member lists. Filters do not
// remove participants that merely became unused; that cleanup belongs to
// package sanitize, which the pipeline always runs after the filters. In the
// same way, filters may leave empty branches, fragments and groups behind
// for the structural sanitizer to collect.
package transform

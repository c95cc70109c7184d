// Package io serializes sequence diagrams to and from a language neutral
// JSON document, plus the binary and diff forms built on top of it.
//
// # JSON Format
//
// A document carries a format version and four top-level members:
//
//	{
//	  "version": 1,
//	  "participants": [{"id": "API", "type": "participant"}],
//	  "groups": [{"label": "Backend", "participants": ["API"]}],
//	  "events": [
//	    {"kind": "message", "from": "User", "to": "API", "text": "Req", "type": "sync"},
//	    {"kind": "fragment", "operator": "alt", "branches": [
//	      {"condition": "ok", "events": []}
//	    ]}
//	  ]
//	}
//
// Events are a flat union discriminated by "kind". Fields that do not apply
// to a kind are omitted. Source positions are optional "pos" objects.
//
// # Import
//
// [ReadJSON], [ImportJSON] and [Unmarshal] validate the input against
// [Schema] before decoding, then reject unknown event kinds and duplicate
// participant ids with an INVALID_DOCUMENT error.
//
// # Export
//
// [WriteJSON], [ExportJSON] and [Marshal] produce indented JSON. Exporting a
// tree and importing the result yields a structurally identical tree.
//
// # Other forms
//
// [EncodeMsgpack] and [DecodeMsgpack] use the same field names in msgpack
// and back the parse cache. [Diff] and [DiffRoots] produce RFC 6902 patches
// between documents.
package io

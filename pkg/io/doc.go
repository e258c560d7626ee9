// Package io reads and writes tree documents.
//
// # Formats
//
// A tree document describes one root node with nested children. JSON:
//
//	{
//	  "name": "root",
//	  "type": "module",
//	  "children": [
//	    {"name": "login", "type": "page", "parent": "root"},
//	    {"name": "main", "type": "module", "children": [...]}
//	  ]
//	}
//
// TOML uses nested arrays of tables:
//
//	name = "root"
//	type = "module"
//
//	[[children]]
//	name = "login"
//	type = "page"
//
// Only "name" is required. "parent" is a redundant back-reference; it is
// preserved on round trips but containment decides the structure.
//
// # Import and Export
//
// [Import] and [Export] dispatch on the file extension (.json or .toml).
// [ReadJSON], [ReadTOML], [WriteJSON] and [WriteTOML] work on streams.
// Decode failures carry errors.ErrCodeInvalidInput and missing files
// errors.ErrCodeFileNotFound.
//
// # Builtin Tree
//
// [Builtin] returns the embedded router tree used when no input is given.
package io

// Package pkg provides the core libraries for Stacktree module/page tree
// diagrams.
//
// # Overview
//
// Stacktree lays out a hierarchy of modules and pages with a tidy-tree
// algorithm and draws it left to right: depth runs along the x axis, siblings
// spread along the y axis. The pkg directory is organized into four areas:
//
//  1. [tree] and [io] - The input hierarchy and its JSON/TOML documents
//  2. [layout] - Tidy-tree positioning with stable node identities
//  3. [render] - Keyed scene reconciliation and output sinks
//  4. [pipeline] - Orchestration (load → layout → render) with caching
//
// # Architecture
//
// The typical data flow through Stacktree:
//
//	Tree document (JSON/TOML) or the built-in router tree
//	         ↓
//	    [io] package (decode + validate)
//	         ↓
//	    [layout] package (tidy positions, identities in BFS order)
//	         ↓
//	    [render] package (reconcile a scene surface by element key)
//	         ↓
//	    SVG/PNG/JSON/DOT output
//
// # Quick Start
//
// Lay out the built-in tree and write it as SVG:
//
//	import (
//	    "github.com/matzehuels/stacktree/pkg/io"
//	    "github.com/matzehuels/stacktree/pkg/layout"
//	    "github.com/matzehuels/stacktree/pkg/render"
//	    "github.com/matzehuels/stacktree/pkg/render/scene"
//	    "github.com/matzehuels/stacktree/pkg/render/sink"
//	    "github.com/matzehuels/stacktree/pkg/render/styles"
//	)
//
//	// 1. Load a tree
//	root := io.Builtin()
//
//	// 2. Compute layout
//	res := layout.NewEngine(layout.DefaultOptions()).Layout(root)
//
//	// 3. Draw a surface
//	surface := render.Draw(res, scene.DefaultCanvas(), styles.Classic{}, false)
//
//	// 4. Serialize
//	svg := sink.RenderSVG(surface)
//
// # Main Packages
//
// ## Domain
//
// [tree] - The module/page node type with structural checks: counts, height,
// label validation and parent back-reference mismatches.
//
// [layout] - The tidy-tree engine. An [layout.Engine] keeps identities keyed
// by structural path, so relaying out an edited tree keeps the IDs of nodes
// that survived.
//
// ## Rendering
//
// [render] - Keyed reconciliation of a layout onto a scene surface. Each
// render reports which elements were added, updated and removed.
//
//   - [render/scene]: Canvas geometry, elements and the ordered surface
//   - [render/styles]: Visual styles (classic, dark)
//   - [render/sink]: Output formats (SVG, PNG, JSON)
//   - [render/nodelink]: Graphviz DOT diagrams
//
// ## Infrastructure
//
// [pipeline] - The complete pipeline (load → layout → render) used by the CLI
// and the server, so both behave the same.
//
// [cache] - Content-addressed cache for layouts and artifacts with file,
// Redis and MongoDB backends.
//
// [observability] - Hook interfaces for pipeline, cache and HTTP events.
//
// [errors] - Coded errors and input validators shared by every entry point.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/tree
// [io]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/io
// [layout]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/render
// [render/scene]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/render/scene
// [render/styles]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/render/styles
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/errors
package pkg

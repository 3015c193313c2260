// Package pkg provides the core libraries for Treeline diagram editing.
//
// # Overview
//
// Treeline edits hierarchical diagrams: org charts, tree-shaped mind maps,
// and other structures where every node has at most one parent. The pkg
// directory is organized into four main areas:
//
//  1. Domain logic (diagram store, layout engines, connector routing)
//  2. Persistence (JSON codec, editing sessions)
//  3. Infrastructure (caching, configuration, errors, observability)
//  4. Orchestration (the pipeline runner shared by CLI and server)
//
// # Architecture
//
// The typical data flow through Treeline:
//
//	Diagram file (JSON)
//	         ↓
//	    [diagram] package (store + mutation history + derived edges)
//	         ↓
//	    [layout] package (tree or graphviz node arrangement)
//	         ↓
//	    [route] package (obstacle-avoiding connector paths)
//	         ↓
//	    routes JSON / HTTP snapshot API
//
// # Quick Start
//
// Build a small org chart, arrange it, and plan its connector routes:
//
//	import (
//	    "context"
//	    "github.com/treeline-io/treeline/pkg/diagram"
//	    "github.com/treeline-io/treeline/pkg/layout"
//	    "github.com/treeline-io/treeline/pkg/route"
//	)
//
//	// 1. Build the diagram
//	store, _ := diagram.New("org chart", diagram.Options{})
//	ceo := store.AddRoot()
//	title := "CEO"
//	store.Update(ceo, diagram.Patch{Title: &title})
//	store.AddChild(ceo)
//
//	// 2. Arrange the nodes
//	moved, _ := layout.Run(context.Background(), store, layout.EngineTree, layout.Options{})
//
//	// 3. Plan connector routes
//	routes, _ := route.Plan(store.Save(), route.Options{})
//
// # Main Packages
//
// ## Domain Logic
//
// [diagram] - The editable document: nodes with parent links, edges derived
// from those links, bounded undo/redo history, and selection state. All
// mutations are atomic and defensive (unknown ids are no-ops).
//
// [layout] - Node arrangement engines. The built-in tree engine tidies each
// tree bottom-up; the dot engine delegates to Graphviz for general layered
// layouts. Both return center positions applied back to the store as one
// undoable step.
//
// [route] - Orthogonal connector routing. Each parent-child edge gets a
// five-segment path around the boxes of unrelated nodes, with channel
// sharing so sibling connectors form a clean bus.
//
// [geo] - Shared geometry primitives (points, rectangles, segment tests).
//
// ## Persistence
//
// [codec] - Versioned JSON persistence for diagram files, including schema
// validation and connectivity repair on import.
//
// [session] - Editing sessions that outlive a single process: the full
// mutation history and selection, stored under the user state directory,
// with file, memory, and Redis backends.
//
// ## Infrastructure
//
// [cache] - Result caching for layout and routing, keyed by content hashes
// of the inputs. Backends: memory (tests), file (CLI), Redis and MongoDB
// (server deployments). Failures degrade to recomputation, never errors.
//
// [config] - TOML configuration shared by CLI and server, mirroring the
// option structs of the domain packages.
//
// [errors] - Coded errors carried through every layer, mapped to exit
// codes in the CLI and HTTP statuses in the API.
//
// [observability] - Minimal hook registry for request, pipeline, and cache
// events, so embedders can attach their own metrics.
//
// ## Orchestration
//
// [pipeline] - The staged compute-with-cache runner used by the CLI and
// the HTTP server. Ensures layout and routing behave identically across
// all entry points.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/route/...    # Specific package
//	go test -run Example       # Examples only
//
// [diagram]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/diagram
// [layout]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/layout
// [route]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/route
// [geo]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/geo
// [codec]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/codec
// [session]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/session
// [cache]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/cache
// [config]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/config
// [errors]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/errors
// [observability]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/pipeline
// [buildinfo]: https://pkg.go.dev/github.com/treeline-io/treeline/pkg/buildinfo
package pkg

// Package domain defines the core business entities for loresync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: an ingested lore document keyed by its canonical URL
//   - RemoteFile: a file discovered in the remote lore folder tree
//   - KnownIndex: the lookup of already-ingested documents
//   - RunConfig / RunStats: configuration and outcome of one sync run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

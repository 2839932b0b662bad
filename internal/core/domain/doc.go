// Package domain defines the core business entities for studymate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A named, ordered sequence of page texts
//   - Chunk: An overlapping word window cut from one page
//   - IndexEntry: A stored vector with its chunk text and provenance
//   - RetrievalResult: A ranked answer to a similarity query
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

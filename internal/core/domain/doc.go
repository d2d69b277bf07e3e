// Package domain defines the core entities for quire.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ItemRef: An enumerated item (issue, Drive file, local file)
//   - Content: The fetched body of one item
//   - Bucket: A contiguous slice of items destined for one artifact
//   - PipelineConfig: Explicit run configuration
//   - RunSummary: The observable outcome of a run
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

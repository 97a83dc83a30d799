// Package domain defines the core business entities for protokoll.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entry: A question/answer exchange or procedural note
//   - PageUnit and Chunk: OCR pages and groups of pages
//   - Run: One ingestion of a protocol with its timeline
//   - KeyInsights: The synthesis over an analysed timeline
//   - CorpusItem: A finding entries are categorised against
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

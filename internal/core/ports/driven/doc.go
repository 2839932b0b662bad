// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Maps ordered text to ordered fixed-dimension vectors
//   - VectorStore: Append-only store of embedded chunks with cosine-similarity reads
//   - PageSource: Supplies a document's ordered page texts
//   - PageProcessor: Cleans page text before chunking (optional)
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Checks that an embedding provider answers
//
// The hashing embedding provider and the in-memory vector store work
// without any external service, so tests and offline use substitute them
// instead of passing nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

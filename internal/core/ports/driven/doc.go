// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RemoteStore / RemoteStoreFactory: lists and downloads remote lore files
//   - Normaliser: strips markup and derives titles
//   - EmbeddingService: generates vector embeddings
//   - DocumentStore: document persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SchedulerStore: persistence for periodic sync tasks. Only needed when
//     the scheduler runs (serve mode).
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven

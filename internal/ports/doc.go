// Package ports defines the interfaces that connect the sampling pipeline to
// infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the pipeline needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [RecordSource]: Loads labeled records from a fixture, the dataset hub or a database
//   - [DocumentWriter]: Persists a finished sample document
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement these interfaces
// with concrete implementations (file system, HTTP, Postgres, zerolog, etc.).
package ports

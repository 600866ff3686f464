// Package internal contains the core implementation packages for snippetkit.
//
// These packages follow Go's internal package convention and are not
// importable by other modules.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: Snippet, category and document records
//   - placeholder: {{TOKEN}} extraction, validation and substitution
//   - catalog: Read-only snippet queries, document loading and the reloadable store
//   - validation: Catalog linter, statistics, report export and input checks
//   - config: Configuration loading and validation with Viper
//   - errors: Structured error types with codes and context
//   - logging: Structured logging over log/slog
//   - watcher: Debounced catalog file watching
//   - server: Catalog browser with a JSON API and WebSocket live reload
//   - version: Build information
//
// # Inter-Package Communication
//
//   - The catalog store is the single source of the current catalog
//   - Watcher events trigger store reloads
//   - Server handlers read the store and relay reload events to browsers
//   - The linter reads documents before the catalog normalizes them
//
// # Concurrency
//
// A catalog never changes after construction, so any number of goroutines
// may query it. The store swaps catalogs atomically; a reader holds on to the
// catalog it got and never sees a partial update.
//
// # Testing Strategy
//
//   - Table-driven unit tests with testify
//   - Property tests with gopter behind the property build tag
//   - Fuzz tests for the placeholder grammar
//   - httptest and WebSocket round trips for the server
package internal

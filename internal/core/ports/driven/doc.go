// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Enumerator: Lists items from a connector
//   - ContentSource: Reads one item's content
//   - Renderer: Turns content into an artifact block
//   - ArtifactSink / ArtifactWriter: Persists artifacts
//
// # Supporting Interfaces
//
//   - RunStore: Run history. The pipeline may run without one; summaries
//     are then only returned.
//   - ConfigStore: Persisted settings, read through the settings service.
//   - TokenProvider: Credentials for the GitHub and Drive connectors.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or renderer package
package driven

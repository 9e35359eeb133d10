/*
Package ports defines the driven ports (interfaces) of the quest engine.

These interfaces decouple the core logic from external implementations, allowing
hosts to load content from various sources and keep sessions in various stores.

# Key Interfaces

  - GraphLoader: builds the immutable content graph (e.g., from a YAML file, a Loam directory or memory).
  - SessionStore: persists session records under a conversation key.
  - DistributedLocker: provides distributed locking for handling concurrent session access.
  - Engine: the five session operations consumed by transports (HTTP, MCP, CLI).
*/
package ports

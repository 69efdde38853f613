/*
Package ports defines the driven ports (interfaces) for the Totem engine.

These interfaces decouple the quiz logic from external implementations, allowing
the engine to keep sessions in memory, Redis or SQLite without code changes.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading per-user Sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports

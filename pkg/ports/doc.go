/*
Package ports defines the driven ports (interfaces) for the stepwise engine.

These interfaces decouple the workflow core from external implementations, allowing
wizards to run over any persistence medium and any coordination backend.

# Key Interfaces

  - Store: the flat attribute bag a wizard and its steps read and write during one request.
  - SessionStore: the medium that owns one attribute map per session between requests.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports

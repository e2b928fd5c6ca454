/*
Package ports defines the driven ports (interfaces) of letluck.

These interfaces decouple the decision core from content sources, persistence,
timers and the rendering surface, so the same session logic runs in a terminal,
behind HTTP or behind an MCP server.

# Key Interfaces

  - TreeLoader: Read-only access to the category tree (YAML files, Loam, memory).
  - RecencyBackend: Persists the per-leaf recency history.
  - StateStore: Persists NavigationState snapshots of sessions.
  - DistributedLocker: Coordinates session access across replicas.
  - Scheduler / Executor: The single execution lane that runs timers and mutations.
  - Renderer: Receives views and highlight/collapse notifications.
*/
package ports

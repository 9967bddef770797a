/*
Package domain contains the core domain models of the Trendline pipeline.

It defines the State Record threaded through every step, the partial Update a
step returns, the per-field MergePolicy used to fold updates into the state,
and the static description of a step graph (steps, edges, routes). This package
is kept pure and free of I/O, following the Hexagonal Architecture layout used
by the rest of the module.

# Key Entities

  - State: the evolving record of a single run (items, cursor, processed items, texts, control signal).
  - Update: a tagged partial update; only fields marked as Set are merged.
  - MergePolicy: replace / append / first-write rule per State field.
  - Graph: entry step, registered steps and the edge table (unconditional or routed).
  - Report: the externally visible outcome of a completed run.
*/
package domain

/*
Package pipeline wires the trending-repositories workflow on top of the step graph engine.

The graph has three steps:

  - fetch_repositories: searches recently created repositories and keeps the first N valid ones.
  - analyze_repository: analyzes one item per visit and loops on itself until every item is processed.
  - finalize_summary: summarizes the accumulated analyses into a Markdown report.

Collaborators (repository source and inference) are injected as ports; limits and
instruction templates travel in the run configuration and are decoded into Options.
*/
package pipeline

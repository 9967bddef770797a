/*
Package ports defines the driven ports (interfaces) of the Trendline pipeline.

These interfaces decouple the steps and the engine facade from concrete
collaborators, so the pipeline can run against GitHub and a real model in
production and against fakes in tests.

# Key Interfaces

  - RepositorySource: returns raw candidate records for a search request (e.g., GitHub search).
  - Inferencer: turns an instruction and an input text into generated text (e.g., an eino chat model).
  - ReportStore: persists and lists completed run reports (memory, Redis, Loam).
  - AssistantDirectory: discovers assistants exposed by a LangGraph API server.
*/
package ports

/*
Package trendline summarizes trending GitHub repositories with a language model.

A run is a small step graph executed by a deterministic engine:

	fetch_repositories -> analyze_repository (self-loop) -> finalize_summary -> END

Each step receives a copy of the run state and returns a partial update. The engine
merges updates field by field using a merge policy (replace, append or first-write),
then follows the step's outgoing edge. The analysis step loops on itself until every
selected repository has been analyzed, then routes to the summary.

# Usage

	source := github.New(github.WithToken(os.Getenv("GITHUB_TOKEN")))
	model, err := eino.NewFromConfig(ctx, eino.ModelConfig{Type: eino.ModelTypeOllama})
	if err != nil {
		log.Fatal(err)
	}

	engine, err := trendline.New(
		trendline.WithSource(source),
		trendline.WithInferencer(model),
	)
	if err != nil {
		log.Fatal(err)
	}

	report, err := engine.Summarize(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Content)

Collaborators are interfaces from pkg/ports, so tests and alternative backends can be
plugged in without touching the pipeline.
*/
package trendline

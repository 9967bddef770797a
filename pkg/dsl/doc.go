/*
Package dsl provides a fluent builder for assembling step graphs in Go code.

Steps are registered by name, wired with unconditional edges (Go) or a routed
edge driven by a decision function (Branch), and the entry step is selected
with Entry. Build returns a domain.Graph ready to be compiled by the engine.

Example usage:

	b := dsl.New()

	b.Entry("fetch")

	b.Add("fetch", fetchFn).
		Describe("Fetch trending repositories").
		Go("analyze")

	b.Add("analyze", analyzeFn).
		Branch(decide, map[domain.Route]string{
			"again":    "analyze",
			"finalize": "finalize",
		})

	b.Add("finalize", finalizeFn).
		Go(domain.End)

	graph, err := b.Build()
*/
package dsl

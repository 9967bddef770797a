// Command trendline summarizes recently created GitHub repositories with an LLM.
package main

func main() {
	Execute()
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/trendline/pkg/domain"
)

const (
	reportTitle       = "## Trending GitHub Repositories Summary"
	reportListHeading = "### Repositories:"

	noDescription = "No description available"
	noLanguage    = "Not specified"
)

// repoInfo is the descriptive payload handed to the analyzer.
type repoInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Language    string `json:"language"`
	URL         string `json:"url"`
}

// DescribeItem serializes the descriptive fields of an item for the analyzer.
func DescribeItem(item domain.Item) (string, error) {
	info := repoInfo{
		Name:        item.FullName,
		Description: item.Description,
		Stars:       item.Stars,
		Forks:       item.Forks,
		Language:    item.Language,
		URL:         item.HTMLURL,
	}
	if info.Description == "" {
		info.Description = noDescription
	}
	if info.Language == "" {
		info.Language = noLanguage
	}

	data, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to serialize item %s: %w", item.FullName, err)
	}
	return string(data), nil
}

// AnalysisInput is the user message of the analysis step.
func AnalysisInput(description string) string {
	return "Analyze this repository: " + description
}

// SummaryInput is the user message of the finalize step.
func SummaryInput(accumulated string) string {
	return "Create a comprehensive summary of these repository analyses:\n\n" + accumulated
}

// FormatReport renders the final Markdown report: the summary followed by a link per processed item.
func FormatReport(summary string, processed []domain.Item) string {
	links := make([]string, 0, len(processed))
	for _, item := range processed {
		links = append(links, fmt.Sprintf("- [%s](%s)", item.FullName, item.HTMLURL))
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", reportTitle, summary, reportListHeading, strings.Join(links, "\n"))
}

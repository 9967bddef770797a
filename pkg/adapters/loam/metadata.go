package loam

import "github.com/aretw0/trendline/pkg/domain"

// ReportMetadata is the frontmatter of an archived report.
// Loam decodes the frontmatter through its JSON tags, which match the keys written by Save.
type ReportMetadata struct {
	RunID        string        `json:"run_id"`
	Query        string        `json:"query"`
	CreatedAt    string        `json:"created_at"`
	Repositories []domain.Item `json:"repositories"`
}

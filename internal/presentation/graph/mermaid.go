package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/trendline/pkg/domain"
)

// Overlay highlights steps on the rendered graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart from the compiled step graph.
// START and END are drawn as circles; conditional transitions carry their route as label;
// self-loops are drawn like any other edge.
func GenerateMermaid(nodes []domain.StepNode, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    %s((\"START\"))\n", sanitizeMermaidID(domain.Start)))

	endReached := false
	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		if node.Entry {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(domain.Start), safeID))
		}

		if node.Description != "" {
			desc := strings.ReplaceAll(node.Description, "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s[\"%s<br/><small>%s</small>\"]\n", safeID, node.ID, desc))
		} else {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, node.ID))
		}

		for _, t := range node.Transitions {
			if t.To == domain.End {
				endReached = true
			}
			safeTo := sanitizeMermaidID(t.To)
			if t.Route != "" {
				route := strings.ReplaceAll(string(t.Route), "\"", "'")
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, route, safeTo))
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, safeTo))
		}
	}

	if endReached {
		sb.WriteString(fmt.Sprintf("    %s((\"END\"))\n", sanitizeMermaidID(domain.End)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

// sanitizeMermaidID maps step names to identifiers Mermaid accepts.
// The lowercase keyword "end" breaks flowcharts, so the markers get uppercase IDs.
func sanitizeMermaidID(id string) string {
	switch id {
	case domain.Start:
		return "START"
	case domain.End:
		return "END"
	}
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

package ports

import (
	"context"
	"errors"
	"time"
)

// ErrAssistantNotFound is returned when an assistant ID is unknown to the directory.
var ErrAssistantNotFound = errors.New("assistant not found")

// Assistant is a deployed graph exposed by an agent server.
type Assistant struct {
	AssistantID string         `json:"assistant_id"`
	GraphID     string         `json:"graph_id"`
	Name        string         `json:"name"`
	Config      map[string]any `json:"config,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Version     int            `json:"version"`
}

// AssistantDirectory lists and resolves assistants.
type AssistantDirectory interface {
	ListAssistants(ctx context.Context) ([]Assistant, error)
	// FindAssistant resolves an assistant by ID. An empty ID selects the first available assistant.
	FindAssistant(ctx context.Context, id string) (*Assistant, error)
}

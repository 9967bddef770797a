package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/trendline/pkg/domain"
)

// StreamManager fans run lifecycle events out to SSE subscribers, keyed by run ID.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // RunID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty stream manager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Subscribe registers a buffered channel for runID. The returned func unsubscribes and closes it.
func (sm *StreamManager) Subscribe(runID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[runID]; !ok {
		sm.subscribers[runID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[runID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[runID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, runID)
				}
			}
		})
	}
}

// Broadcast delivers msg to every subscriber of runID without blocking.
func (sm *StreamManager) Broadcast(runID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[runID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping message", "run_id", runID)
		}
	}
}

// streamEvent is the JSON payload of one SSE message.
type streamEvent struct {
	Type      domain.EventType `json:"type"`
	RunID     string           `json:"run_id"`
	Step      string           `json:"step,omitempty"`
	Iteration int              `json:"iteration,omitempty"`
	Route     domain.Route     `json:"route,omitempty"`
	To        string           `json:"to,omitempty"`
	Changed   []string         `json:"changed,omitempty"`
	Cursor    *int             `json:"cursor,omitempty"`
	Items     int              `json:"items,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func (sm *StreamManager) publish(e streamEvent) {
	if e.RunID == "" {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		sm.logger.Error("SSE: failed to encode event", "err", err)
		return
	}
	sm.Broadcast(e.RunID, string(data))
}

// Hooks returns lifecycle hooks that publish every event of a run to its subscribers.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	errString := func(err error) string {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			sm.publish(streamEvent{Type: e.Type, RunID: e.RunID})
		},
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			sm.publish(streamEvent{Type: e.Type, RunID: e.RunID, Step: e.Step, Iteration: e.Iteration})
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			cursor := e.State.Cursor
			sm.publish(streamEvent{
				Type: e.Type, RunID: e.RunID, Step: e.Step, Iteration: e.Iteration,
				Changed: e.Changed, Cursor: &cursor, Items: len(e.State.Items), Error: errString(e.Err),
			})
		},
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			sm.publish(streamEvent{Type: e.Type, RunID: e.RunID, Step: e.From, Route: e.Route, To: e.To})
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			sm.publish(streamEvent{Type: e.Type, RunID: e.RunID, Error: errString(e.Err)})
		},
	}
}

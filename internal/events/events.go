// Package events provides a small in-process pub/sub bus for bulk operation
// lifecycle events
package events

import (
	"context"
	"sync"

	"github.com/sitegrid/sitegrid/internal/logger"
)

// EventType represents the type of bulk operation lifecycle event
type EventType string

const (
	// EventOperationStarted is emitted when an operation transitions to processing
	EventOperationStarted EventType = "operation_started"
	// EventOperationCompleted is emitted when every selected record was mutated
	EventOperationCompleted EventType = "operation_completed"
	// EventOperationFailed is emitted when an operation stops before finishing,
	// including user cancellations
	EventOperationFailed EventType = "operation_failed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a bulk operation lifecycle event
type Event struct {
	Type        EventType // The type of event
	OperationID string    // The bulk operation ID
	EntityType  string    // The entity collection the operation mutates
	Operation   string    // The mutation kind, update or delete
	CompanyID   string    // The tenant the operation is scoped to
	Error       string    // The error message on failed operations
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed. Events are advisory; if the buffer
// is full (the processing loop stopped or fell behind) the event is dropped
// rather than blocking the publisher.
func Publish(event Event) {
	select {
	case eventChan <- event:
		logger.Debugf("Published event: %s (operation: %s)", event.Type, event.OperationID)
	default:
		logger.Warnf("Dropped event %s for operation %s: event buffer full", event.Type, event.OperationID)
	}
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			// Process event with all registered handlers
			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s for operation %s: %v", e.Type, e.OperationID, err)
					}
				}(handler, event)
			}
		}
	}
}

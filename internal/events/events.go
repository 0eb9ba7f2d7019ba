// Package events is the in-process bus for presale domain events
package events

import (
	"context"
	"sync"

	"github.com/talentpad/presale/internal/logger"
)

// EventType represents the type of presale event
type EventType string

const (
	// EventDepositRecorded is emitted after a deposit is credited
	EventDepositRecorded EventType = "deposit_recorded"
	// EventPresaleFinalized is emitted after a presale is settled
	EventPresaleFinalized EventType = "presale_finalized"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a presale event. Fields not relevant to Type are zero.
type Event struct {
	Type           EventType
	PresaleID      string
	WalletAddress  string
	Signature      string
	AmountLamports int64
	// PositionLamports is the wallet's cumulative deposit after the event
	PositionLamports int64
	// Outcome is set on EventPresaleFinalized
	Outcome string
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	handlers   = make(map[EventType][]Handler)
	handlersMu sync.RWMutex
	eventChan  = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish queues an event. It never blocks the caller: when the buffer is
// full the event is dropped with a warning.
func Publish(event Event) {
	select {
	case eventChan <- event:
		logger.Debugf("Published event: %s (presale: %s)", event.Type, event.PresaleID)
	default:
		logger.WarnWithFields("Event buffer full, dropping event", logger.Fields{
			"type":       event.Type,
			"presale_id": event.PresaleID,
		})
	}
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

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

			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s: %v", e.Type, err)
					}
				}(handler, event)
			}
		}
	}
}

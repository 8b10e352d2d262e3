package outbound

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// EventType represents the type of event being broadcasted
type EventType string

const (
	EventTypeBidPlaced        EventType = "bid.placed"
	EventTypeBidOutbid        EventType = "bid.outbid"
	EventTypeAutoBid          EventType = "proxy.autobid"
	EventTypeTimerReset       EventType = "timer.reset"
	EventTypeLotActivated     EventType = "lot.activated"
	EventTypeLotClosed        EventType = "lot.closed"
	EventTypeWinnerAssigned   EventType = "winner.assigned"
	EventTypeAuctionStarted   EventType = "auction.started"
	EventTypeAuctionEnded     EventType = "auction.ended"
	EventTypeAuctionExtended  EventType = "auction.extended"
	EventTypeAuctionCancelled EventType = "auction.cancelled"
	EventTypeError            EventType = "error"
)

// LotTopic is the broadcast topic for one lot's events
func LotTopic(lotID uuid.UUID) string {
	return fmt.Sprintf("lot:%s", lotID)
}

// AuctionTopic is the broadcast topic for auction-level events
func AuctionTopic(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction:%s", auctionID)
}

// Event represents a broadcast event
type Event struct {
	Type      EventType              `json:"type"`
	Topic     string                 `json:"topic"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Broadcaster defines the interface for broadcasting events. Delivery is
// best-effort fire-and-forget: the bid pipeline publishes after releasing
// the lot lock and never blocks on it.
type Broadcaster interface {
	// Subscribe subscribes a client to events on a topic. A client
	// subscribed to multiple topics receives all events on one channel.
	Subscribe(ctx context.Context, topic string, clientID string, eventChan chan Event) error

	// Unsubscribe unsubscribes a client from a topic
	Unsubscribe(ctx context.Context, topic string, clientID string) error

	// Publish publishes an event to all subscribers of a topic
	Publish(ctx context.Context, topic string, event Event) error

	// GetSubscribers returns the client IDs subscribed to a topic
	GetSubscribers(ctx context.Context, topic string) ([]string, error)

	// IsSubscribed checks if a client is subscribed to a topic
	IsSubscribed(ctx context.Context, topic string, clientID string) bool
}

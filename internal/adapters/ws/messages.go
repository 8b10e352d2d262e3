package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeSubscribe     MessageType = "subscribe"
	MessageTypeUnsubscribe   MessageType = "unsubscribe"
	MessageTypePlaceBid      MessageType = "place_bid"
	MessageTypePlacePreBid   MessageType = "place_pre_bid"
	MessageTypeRetractBid    MessageType = "retract_bid"
	MessageTypeGetLotState   MessageType = "get_lot_state"
	MessageTypeGetBidHistory MessageType = "get_bid_history"
	MessageTypePing          MessageType = "ping"

	// Server to Client message types
	MessageTypeBidPlaced  MessageType = "bid_placed"
	MessageTypeOutbid     MessageType = "outbid"
	MessageTypeBidError   MessageType = "bid_rejected"
	MessageTypeLotUpdate  MessageType = "lot_update"
	MessageTypeBidHistory MessageType = "bid_history"
	MessageTypeError      MessageType = "error"
	MessageTypePong       MessageType = "pong"
)

// ClientMessage is one inbound frame. Lot-scoped operations carry lot_id;
// subscribe/unsubscribe accept either lot_id or auction_id.
type ClientMessage struct {
	Type      MessageType            `json:"type"`
	LotID     *uuid.UUID             `json:"lot_id,omitempty"`
	AuctionID *uuid.UUID             `json:"auction_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	LotID     *uuid.UUID             `json:"lot_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(err string, lotID *uuid.UUID) *ServerMessage {
	return &ServerMessage{
		Type:      MessageTypeError,
		LotID:     lotID,
		Error:     &err,
		Timestamp: time.Now().Unix(),
	}
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client message: %w", err)
	}

	if msg.Type == "" {
		return nil, shared.ErrMessageTypeRequired
	}

	return &msg, nil
}

func (m *ClientMessage) validateLotID() error {
	if m.LotID == nil || *m.LotID == uuid.Nil {
		return shared.ErrLotIDRequired
	}
	return nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe:
		if (m.LotID == nil || *m.LotID == uuid.Nil) && (m.AuctionID == nil || *m.AuctionID == uuid.Nil) {
			return shared.ErrLotIDRequired
		}
	case MessageTypePlaceBid:
		if err := m.validateLotID(); err != nil {
			return err
		}
		amount, ok := m.Data["amount"].(float64)
		if !ok || amount <= 0 {
			return shared.ErrInvalidAmount
		}
		if isProxy, _ := m.Data["is_proxy"].(bool); isProxy {
			proxyMax, ok := m.Data["proxy_max"].(float64)
			if !ok || proxyMax < amount {
				return shared.ErrInvalidProxyMax
			}
		}
	case MessageTypePlacePreBid:
		if err := m.validateLotID(); err != nil {
			return err
		}
		amount, ok := m.Data["amount"].(float64)
		if !ok || amount <= 0 {
			return shared.ErrInvalidAmount
		}
	case MessageTypeRetractBid:
		if m.Data["bid_id"] == nil {
			return shared.ErrBidIDRequired
		}
	case MessageTypeGetLotState, MessageTypeGetBidHistory:
		if err := m.validateLotID(); err != nil {
			return err
		}
	case MessageTypePing:

	default:
		return shared.ErrUnknownMessageType
	}

	return nil
}

package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/ports/inbound"
	"gearlane-auction-engine/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WsHandler manages WebSocket connections and message routing
type WsHandler struct {
	clients       map[string]*WsClient // clientID -> Client
	clientsMu     sync.RWMutex
	eventChannels map[string]chan outbound.Event // clientID -> local event channel
	channelsMu    sync.RWMutex
	upgrader      websocket.Upgrader
	bidService    inbound.BidService
	broadcaster   outbound.Broadcaster
	logger        zerolog.Logger
}

type WsHandlerParams struct {
	Upgrader    websocket.Upgrader
	BidService  inbound.BidService
	Broadcaster outbound.Broadcaster
	Logger      zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:       make(map[string]*WsClient),
		eventChannels: make(map[string]chan outbound.Event),
		upgrader:      params.Upgrader,
		bidService:    params.BidService,
		broadcaster:   params.Broadcaster,
		logger:        params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket handles WebSocket connection upgrades
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userIDStr := r.URL.Query().Get("user_id")
	if userIDStr == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user_id format", http.StatusBadRequest)
		return
	}

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		UserID:  userID,
		Conn:    conn,
		Handler: handler,
		Logger:  handler.logger,
	})

	handler.registerClient(client)
	handler.createEventChannel(client.id)

	client.Start()

	go handler.listenForClientEvents(client)

	// Wait for client to disconnect
	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Msg("WebSocket client connected")
}

// createEventChannel creates a local event channel for a client
func (handler *WsHandler) createEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		return eventChan
	}

	eventChan := make(chan outbound.Event, 100)
	handler.eventChannels[clientID] = eventChan

	return eventChan
}

func (handler *WsHandler) getEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.RLock()
	defer handler.channelsMu.RUnlock()

	return handler.eventChannels[clientID]
}

func (handler *WsHandler) removeEventChannel(clientID string) {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if _, exists := handler.eventChannels[clientID]; exists {
		// The broadcaster closes the channel when the last topic
		// subscription is dropped; here it only leaves the registry.
		delete(handler.eventChannels, clientID)
	}
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
	handler.logger.Debug().Str("client_id", client.id).Int("total_clients", len(handler.clients)).Msg("Client registered")
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()

	delete(handler.clients, client.id)

	client.Stop()
	handler.removeEventChannel(client.id)

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Int("total_clients", len(handler.clients)).Msg("WebSocket client disconnected")
}

// listenForClientEvents forwards broadcast events to the WebSocket
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return
	}

	for {
		select {
		case event := <-eventChan:
			wsMessage := handler.convertEventToMessage(event)

			if err := client.Send(wsMessage); err != nil {
				handler.logger.Error().
					Err(err).Str("client_id", client.id).Msg("Failed to send event to WebSocket client")
			}

		case <-client.ctx.Done():
			handler.logger.Debug().Str("client_id", client.id).Msg("Client disconnected, stopping event listener")
			return
		}
	}
}

func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeSubscribe:
		return handler.handleSubscribe(client, msg)

	case MessageTypeUnsubscribe:
		return handler.handleUnsubscribe(client, msg)

	case MessageTypePlaceBid:
		return handler.handlePlaceBid(client, msg)

	case MessageTypePlacePreBid:
		return handler.handlePlacePreBid(client, msg)

	case MessageTypeRetractBid:
		return handler.handleRetractBid(client, msg)

	case MessageTypeGetLotState:
		return handler.handleGetLotState(client, msg)

	case MessageTypeGetBidHistory:
		return handler.handleGetBidHistory(client, msg)

	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return shared.ErrUnknownMessageType
	}
}

func (handler *WsHandler) convertEventToMessage(event outbound.Event) *ServerMessage {
	msg := NewServerMessage(MessageTypeLotUpdate)
	msg.Data = event.Data
	msg.Timestamp = event.Timestamp

	switch event.Type {
	case outbound.EventTypeBidPlaced, outbound.EventTypeAutoBid:
		msg.Type = MessageTypeBidPlaced
	case outbound.EventTypeBidOutbid:
		msg.Type = MessageTypeOutbid
	}

	if msg.Data == nil {
		msg.Data = make(map[string]interface{})
	}
	msg.Data["event_type"] = string(event.Type)
	msg.Data["topic"] = event.Topic

	return msg
}

// topic picks the broadcast topic a subscribe/unsubscribe frame refers to
func (m *ClientMessage) topic() string {
	if m.LotID != nil && *m.LotID != uuid.Nil {
		return outbound.LotTopic(*m.LotID)
	}
	return outbound.AuctionTopic(*m.AuctionID)
}

func (handler *WsHandler) handleSubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()
	topic := msg.topic()

	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return shared.ErrClientEventChannelNotFound
	}

	if err := handler.broadcaster.Subscribe(ctx, topic, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("topic", topic).Msg("Failed to subscribe")
		return err
	}

	response := NewServerMessage(MessageTypeLotUpdate)
	response.LotID = msg.LotID
	response.Data["status"] = "subscribed"
	response.Data["topic"] = topic

	handler.logger.Info().Str("client_id", client.id).Str("topic", topic).Msg("Client subscribed")
	return client.Send(response)
}

func (handler *WsHandler) handleUnsubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()
	topic := msg.topic()

	if err := handler.broadcaster.Unsubscribe(ctx, topic, client.id); err != nil {
		return err
	}

	response := NewServerMessage(MessageTypeLotUpdate)
	response.LotID = msg.LotID
	response.Data["status"] = "unsubscribed"
	response.Data["topic"] = topic

	handler.logger.Info().Str("client_id", client.id).Str("topic", topic).Msg("Client unsubscribed")
	return client.Send(response)
}

// handlePlaceBid runs the bid pipeline. Being outbid by a proxy war and
// validation refusals are expected outcomes delivered as typed frames, not
// generic errors.
func (handler *WsHandler) handlePlaceBid(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	amount, _ := msg.Data["amount"].(float64)
	isProxy, _ := msg.Data["is_proxy"].(bool)
	proxyMax, _ := msg.Data["proxy_max"].(float64)
	strategy, _ := msg.Data["strategy"].(string)

	bidRequest := inbound.PlaceBidRequest{
		LotID:    *msg.LotID,
		UserID:   client.userID,
		ClientID: client.id,
		Amount:   amount,
		IsProxy:  isProxy,
		ProxyMax: proxyMax,
		Strategy: bidding.Strategy(strategy),
	}

	bid, err := handler.bidService.PlaceBid(ctx, bidRequest)
	if err != nil {
		var outbid *bidding.OutbidError
		if errors.As(err, &outbid) {
			response := NewServerMessage(MessageTypeOutbid)
			response.LotID = msg.LotID
			response.Data["final_amount"] = outbid.FinalAmount
			response.Data["outbid_by"] = outbid.OutbidBy
			response.Data["steps"] = outbid.Steps
			return client.Send(response)
		}

		var violations *shared.ViolationError
		if errors.As(err, &violations) {
			response := NewServerMessage(MessageTypeBidError)
			response.LotID = msg.LotID
			response.Data["violations"] = violations.Violations
			response.Data["minimum_bid"] = violations.MinimumBid
			return client.Send(response)
		}

		return client.Send(NewErrorMessage(err.Error(), msg.LotID))
	}

	handler.logger.Info().
		Str("bid_id", bid.ID.String()).
		Str("lot_id", msg.LotID.String()).
		Str("user_id", client.userID.String()).
		Float64("amount", amount).
		Bool("is_proxy", isProxy).
		Msg("Bid placed successfully")

	return nil
}

func (handler *WsHandler) handlePlacePreBid(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	amount, _ := msg.Data["amount"].(float64)

	bid, err := handler.bidService.PlacePreBid(ctx, inbound.PlacePreBidRequest{
		LotID:  *msg.LotID,
		UserID: client.userID,
		Amount: amount,
	})
	if err != nil {
		var violations *shared.ViolationError
		if errors.As(err, &violations) {
			response := NewServerMessage(MessageTypeBidError)
			response.LotID = msg.LotID
			response.Data["violations"] = violations.Violations
			response.Data["minimum_bid"] = violations.MinimumBid
			return client.Send(response)
		}
		return client.Send(NewErrorMessage(err.Error(), msg.LotID))
	}

	response := NewServerMessage(MessageTypeBidPlaced)
	response.LotID = msg.LotID
	response.Data["bid_id"] = bid.ID
	response.Data["amount"] = bid.Amount
	response.Data["is_pre_bid"] = true

	return client.Send(response)
}

func (handler *WsHandler) handleRetractBid(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	bidIDStr, _ := msg.Data["bid_id"].(string)
	bidID, err := uuid.Parse(bidIDStr)
	if err != nil {
		return shared.ErrBidIDRequired
	}

	if err := handler.bidService.RetractBid(ctx, bidID, client.userID); err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.LotID))
	}

	response := NewServerMessage(MessageTypeLotUpdate)
	response.LotID = msg.LotID
	response.Data["status"] = "retracted"
	response.Data["bid_id"] = bidID

	return client.Send(response)
}

func (handler *WsHandler) handleGetLotState(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	state, err := handler.bidService.GetLotState(ctx, *msg.LotID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.LotID))
	}

	response := NewServerMessage(MessageTypeLotUpdate)
	response.LotID = msg.LotID
	response.Data["lot"] = state.Lot
	response.Data["next_minimum_bid"] = state.NextMinimumBid
	response.Data["remaining_seconds"] = state.RemainingSeconds
	if state.HighestBid != nil {
		response.Data["highest_bid"] = state.HighestBid
	}

	return client.Send(response)
}

func (handler *WsHandler) handleGetBidHistory(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	bids, err := handler.bidService.GetBidHistory(ctx, *msg.LotID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.LotID))
	}

	response := NewServerMessage(MessageTypeBidHistory)
	response.LotID = msg.LotID
	response.Data["bids"] = bids
	response.Data["count"] = len(bids)

	return client.Send(response)
}

// GetConnectedClients returns the number of connected clients
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

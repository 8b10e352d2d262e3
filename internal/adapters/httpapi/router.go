package httpapi

import (
	"net/http"

	"gearlane-auction-engine/internal/ports/inbound"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handler exposes the administrative REST API: auction lifecycle control
// and the post-sale winner workflow. Bidding itself happens over WebSocket.
type Handler struct {
	auctionService inbound.AuctionService
	bidService     inbound.BidService
	winnerService  inbound.WinnerService
	logger         zerolog.Logger
}

type HandlerParams struct {
	AuctionService inbound.AuctionService
	BidService     inbound.BidService
	WinnerService  inbound.WinnerService
	Logger         zerolog.Logger
}

// NewHandler creates a new REST API handler
func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		auctionService: params.AuctionService,
		bidService:     params.BidService,
		winnerService:  params.WinnerService,
		logger:         params.Logger.With().Str("component", "http_api").Logger(),
	}
}

// Router builds the API route table
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auctions", h.createAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions", h.listAuctions).Methods(http.MethodGet)
	api.HandleFunc("/auctions/{id}", h.getAuction).Methods(http.MethodGet)
	api.HandleFunc("/auctions/{id}/lots", h.addLot).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/schedule", h.scheduleAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/ready", h.makeReady).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/start", h.startAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/advance", h.advanceToNextLot).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/current-lot", h.setCurrentLot).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/end", h.endAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/cancel", h.cancelAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{id}/extend", h.extendAuction).Methods(http.MethodPost)

	api.HandleFunc("/lots/{id}/state", h.getLotState).Methods(http.MethodGet)
	api.HandleFunc("/lots/{id}/bids", h.getBidHistory).Methods(http.MethodGet)
	api.HandleFunc("/lots/{id}/approve", h.approveSale).Methods(http.MethodPost)
	api.HandleFunc("/lots/{id}/reject", h.rejectSale).Methods(http.MethodPost)
	api.HandleFunc("/lots/{id}/second-chance", h.offerSecondChance).Methods(http.MethodPost)
	api.HandleFunc("/lots/{id}/payment", h.recordPayment).Methods(http.MethodPost)

	return r
}

package httpapi

import (
	"net/http"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

func (h *Handler) createAuction(w http.ResponseWriter, r *http.Request) {
	var req inbound.CreateAuctionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	a, err := h.auctionService.CreateAuction(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) listAuctions(w http.ResponseWriter, r *http.Request) {
	req := inbound.ListAuctionsRequest{Page: 1, PageSize: 20}

	if s := r.URL.Query().Get("status"); s != "" {
		status := auction.Status(s)
		req.Status = &status
	}

	auctions, err := h.auctionService.ListAuctions(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"auctions": auctions,
		"count":    len(auctions),
	})
}

func (h *Handler) getAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	a, err := h.auctionService.GetAuction(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) addLot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	var req inbound.AddLotRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.AuctionID = id

	l, err := h.auctionService.AddLot(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) scheduleAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	var req inbound.ScheduleAuctionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.AuctionID = id

	if err := h.auctionService.ScheduleAuction(r.Context(), req); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "scheduled"})
}

func (h *Handler) makeReady(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	if err := h.auctionService.MakeReady(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

func (h *Handler) startAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	if err := h.auctionService.StartAuction(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "running"})
}

func (h *Handler) advanceToNextLot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	result, err := h.auctionService.AdvanceToNextLot(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) setCurrentLot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	var req struct {
		LotNumber int `json:"lot_number"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.auctionService.SetCurrentLot(r.Context(), id, req.LotNumber); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"current_lot_number": req.LotNumber})
}

func (h *Handler) endAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	if err := h.auctionService.EndAuction(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ended"})
}

func (h *Handler) cancelAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.auctionService.CancelAuction(r.Context(), id, req.Reason); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "cancelled"})
}

func (h *Handler) extendAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid auction id"})
		return
	}

	var req struct {
		Minutes int    `json:"minutes"`
		Reason  string `json:"reason"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.auctionService.ExtendAuction(r.Context(), id, req.Minutes, req.Reason); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"extended_minutes": req.Minutes})
}

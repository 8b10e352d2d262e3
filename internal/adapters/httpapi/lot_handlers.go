package httpapi

import (
	"net/http"

	"gearlane-auction-engine/internal/domain/winner"
)

func (h *Handler) getLotState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid lot id"})
		return
	}

	state, err := h.bidService.GetLotState(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state)
}

func (h *Handler) getBidHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid lot id"})
		return
	}

	bids, err := h.bidService.GetBidHistory(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"bids":  bids,
		"count": len(bids),
	})
}

func (h *Handler) approveSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid lot id"})
		return
	}

	win, err := h.winnerService.ApproveSale(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, win)
}

func (h *Handler) rejectSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid lot id"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.winnerService.RejectSale(r.Context(), id, req.Reason); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "rejected"})
}

func (h *Handler) offerSecondChance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid lot id"})
		return
	}

	win, err := h.winnerService.OfferSecondChance(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, win)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid lot id"})
		return
	}

	var req struct {
		Status winner.PaymentStatus `json:"status"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.winnerService.RecordPayment(r.Context(), id, req.Status); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"payment_status": req.Status})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/shared"
)

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

// writeError maps domain errors onto HTTP statuses. Validation refusals and
// state conflicts are client errors with structured bodies; a broken
// invariant is a 500 because it means the engine, not the caller, is wrong.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var violations *shared.ViolationError
	if errors.As(err, &violations) {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":       "bid rejected",
			"violations":  violations.Violations,
			"minimum_bid": violations.MinimumBid,
		})
		return
	}

	var outbid *bidding.OutbidError
	if errors.As(err, &outbid) {
		h.writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":        "outbid",
			"final_amount": outbid.FinalAmount,
			"outbid_by":    outbid.OutbidBy,
			"steps":        outbid.Steps,
		})
		return
	}

	var conflict *shared.StateConflictError
	if errors.As(err, &conflict) {
		h.writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   conflict.Error(),
			"current": conflict.Current,
		})
		return
	}

	var invariant *shared.InvariantError
	if errors.As(err, &invariant) {
		h.logger.Error().Err(err).Msg("Invariant violation surfaced to API")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "internal error",
		})
		return
	}

	switch {
	case errors.Is(err, shared.ErrAuctionNotFound),
		errors.Is(err, shared.ErrLotNotFound),
		errors.Is(err, shared.ErrBidNotFound),
		errors.Is(err, shared.ErrWinnerNotFound),
		errors.Is(err, shared.ErrUserNotFound),
		errors.Is(err, shared.ErrVehicleNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})

	case errors.Is(err, shared.ErrVersionConflict):
		h.writeJSON(w, http.StatusConflict, map[string]interface{}{"error": err.Error()})

	case errors.Is(err, shared.ErrInvalidRequest),
		errors.Is(err, shared.ErrInvalidTimeFormat),
		errors.Is(err, shared.ErrInvalidStartTime),
		errors.Is(err, shared.ErrInvalidEndTime),
		errors.Is(err, shared.ErrEmptyReason),
		errors.Is(err, shared.ErrDuplicateLotNum),
		errors.Is(err, shared.ErrNoLots):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})

	case errors.Is(err, shared.ErrNoSecondChance),
		errors.Is(err, shared.ErrBidNotRetractable):
		h.writeJSON(w, http.StatusConflict, map[string]interface{}{"error": err.Error()})

	default:
		h.logger.Error().Err(err).Msg("Unhandled API error")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
		return false
	}
	return true
}

package gamehandlers

import (
	"encoding/json"
	"errors"
	"net/http"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
)

var errBadBody = errors.New("malformed request body")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without detail.
func (h *GameHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *gamedomain.ValidationError
	switch {
	case errors.As(err, &verr):
		body := errorBody{Error: "bet rejected", Reason: string(verr.Reason), Message: verr.Message}
		status := http.StatusUnprocessableEntity
		if verr.Reason == gamedomain.ReasonAlreadyBet {
			status = http.StatusConflict
			if verr.Existing != nil {
				existing := toBetJSON(*verr.Existing)
				body.Bet = &existing
			}
		}
		writeJSON(w, status, body)
	case errors.Is(err, gamedb.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, gameservice.ErrInvalidDate),
		errors.Is(err, gameservice.ErrInvalidWindow),
		errors.Is(err, gameservice.ErrInvalidTier),
		errors.Is(err, errBadBody):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "Request failed",
			attr.String("path", r.URL.Path),
			attr.ExtractCorrelationID(r.Context()),
			attr.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadBody
	}
	return nil
}

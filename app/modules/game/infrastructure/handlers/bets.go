package gamehandlers

import (
	"net/http"
	"time"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	"github.com/go-chi/chi/v5"
)

// HandleBetsFor lists the bets of ?instance=<RFC 3339>, or of the most recent
// instance when the parameter is absent.
func (h *GameHandlers) HandleBetsFor(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("instance")
	if raw == "" {
		h.HandleDailyBets(w, r)
		return
	}
	instance, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "instance must be an RFC 3339 timestamp"})
		return
	}

	bets, err := h.service.BetsFor(r.Context(), instance)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bets": toBetsJSON(bets)})
}

func (h *GameHandlers) HandleDailyBets(w http.ResponseWriter, r *http.Request) {
	daily, err := h.service.DailyBets(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDailyBetsJSON(daily))
}

func (h *GameHandlers) HandleValidatePlacement(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	check, err := h.service.ValidatePlacement(r.Context(), req.ParticipantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placementJSON{
		Phase:    check.Phase.String(),
		Instance: check.Instance.UTC().Format(time.RFC3339),
		Kind:     string(check.Kind),
	})
}

func (h *GameHandlers) HandlePlaceRegular(w http.ResponseWriter, r *http.Request) {
	var req gameservice.Participant
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	bet, err := h.service.PlaceRegular(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBetJSON(*bet))
}

func (h *GameHandlers) HandlePlaceEarlyBird(w http.ResponseWriter, r *http.Request) {
	var req gameservice.EarlyBirdRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	bet, err := h.service.PlaceEarlyBird(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBetJSON(*bet))
}

func (h *GameHandlers) HandleBetOf(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.BetOf(r.Context(), chi.URLParam(r, "participantID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, betViewJSON{
		Bet:          toBetJSON(view.Bet),
		Phase:        view.Phase.String(),
		WinOffsetMs:  view.WinOffsetMs,
		DifferenceMs: view.DifferenceMs,
	})
}

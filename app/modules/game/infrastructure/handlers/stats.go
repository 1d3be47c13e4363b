package gamehandlers

import (
	"net/http"
	"strconv"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/go-chi/chi/v5"
)

func (h *GameHandlers) HandleWinnerFor(w http.ResponseWriter, r *http.Request) {
	winner, err := h.service.WinnerFor(r.Context(), h.resolveDate(chi.URLParam(r, "date")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWinnerJSON(winner))
}

func (h *GameHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	days, ok := h.windowDays(w, r)
	if !ok {
		return
	}

	view, err := h.service.StatsFor(r.Context(), chi.URLParam(r, "scopeID"), chi.URLParam(r, "participantID"), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsJSON(view))
}

func (h *GameHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	days, limit, ok := h.leaderboardParams(w, r)
	if !ok {
		return
	}

	counts, err := h.service.Leaderboard(r.Context(), chi.URLParam(r, "scopeID"), days, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	entries := make([]leaderboardEntryJSON, len(counts))
	for i, c := range counts {
		entries[i] = leaderboardEntryJSON{
			Rank:          i + 1,
			ParticipantID: c.ParticipantID,
			DisplayName:   c.DisplayName,
			Wins:          c.Wins,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"window_days": days, "entries": entries})
}

func (h *GameHandlers) HandleLeaderboardChart(w http.ResponseWriter, r *http.Request) {
	days, limit, ok := h.leaderboardParams(w, r)
	if !ok {
		return
	}

	png, err := h.service.LeaderboardChart(r.Context(), chi.URLParam(r, "scopeID"), days, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *GameHandlers) HandleRoleHolders(w http.ResponseWriter, r *http.Request) {
	holders, err := h.service.RoleHolders(r.Context(), chi.URLParam(r, "scopeID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make(map[string]string, len(gamedomain.RoleTiers))
	for _, tier := range gamedomain.RoleTiers {
		out[tier.String()] = holders[tier]
	}
	writeJSON(w, http.StatusOK, map[string]any{"holders": out})
}

func (h *GameHandlers) HandleSetRoleHolder(w http.ResponseWriter, r *http.Request) {
	tier, err := gamedomain.ParseTier(chi.URLParam(r, "tier"))
	if err != nil || tier == gamedomain.TierNone {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "tier must be sergeant, commander or general"})
		return
	}
	var req setRoleRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	deltas, err := h.service.SetRoleHolder(r.Context(), chi.URLParam(r, "scopeID"), tier, req.ParticipantID, req.AssignedBy)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": toRoleDeltasJSON(deltas)})
}

func (h *GameHandlers) windowDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	days, err := intParam(r, "window_days", h.cfg.DefaultWindowDays)
	if err != nil || days < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "window_days must be a non-negative integer"})
		return 0, false
	}
	return days, true
}

func (h *GameHandlers) leaderboardParams(w http.ResponseWriter, r *http.Request) (days, limit int, ok bool) {
	if days, ok = h.windowDays(w, r); !ok {
		return 0, 0, false
	}
	limit, err := intParam(r, "limit", defaultLeaderboardLimit)
	if err != nil || limit < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
		return 0, 0, false
	}
	return days, limit, true
}

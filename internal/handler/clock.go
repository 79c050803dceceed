package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pitchside/league/internal/clock"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/infra"
	"github.com/pitchside/league/internal/service"
)

// ClockHandler exposes the virtual clock and live match controls.
type ClockHandler struct {
	coord   *clock.Coordinator
	hub     *infra.WSHub
	seasons *service.SeasonService
}

// NewClockHandler creates a new ClockHandler.
func NewClockHandler(coord *clock.Coordinator, hub *infra.WSHub, seasons *service.SeasonService) *ClockHandler {
	return &ClockHandler{coord: coord, hub: hub, seasons: seasons}
}

// GetClock handles GET /clock.
func (h *ClockHandler) GetClock(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"current_date": h.coord.CurrentDate(),
	})
}

type startClockRequest struct {
	SeasonID uuid.UUID `json:"season_id"`
}

// StartClock handles POST /clock/start.
func (h *ClockHandler) StartClock(w http.ResponseWriter, r *http.Request) {
	var req startClockRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := h.coord.StartSeason(r.Context(), req.SeasonID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"current_date": h.coord.CurrentDate(),
	})
}

type advanceRequest struct {
	ByHours     int  `json:"by_hours,omitempty"`
	ByDays      int  `json:"by_days,omitempty"`
	ToNextMatch bool `json:"to_next_match,omitempty"`
}

// Advance handles POST /clock/advance.
func (h *ClockHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	opts := clock.AdvanceOptions{ToNextMatch: req.ToNextMatch}
	if !req.ToNextMatch {
		opts.By = time.Duration(req.ByDays)*24*time.Hour + time.Duration(req.ByHours)*time.Hour
	}

	result, err := h.coord.Advance(r.Context(), opts)
	if err != nil {
		RespondError(w, err)
		return
	}
	if len(result.SimulatedMatches) > 0 {
		if seasonID := h.coord.ActiveSeasonID(); seasonID != uuid.Nil {
			h.seasons.InvalidateStandings(r.Context(), seasonID)
		}
	}
	RespondJSON(w, http.StatusOK, result)
}

// BeginLive handles POST /matches/{matchID}/live.
func (h *ClockHandler) BeginLive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}
	state, err := h.coord.BeginLive(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	h.hub.PublishToMatch(id.String(), "match.live", state)
	RespondJSON(w, http.StatusOK, state)
}

// Tick handles POST /matches/{matchID}/tick.
func (h *ClockHandler) Tick(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}
	state, err := h.coord.Tick(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	h.hub.PublishToMatch(id.String(), "match.tick", state)
	RespondJSON(w, http.StatusOK, state)
}

// FinalizeLive handles POST /matches/{matchID}/finalize.
func (h *ClockHandler) FinalizeLive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}
	m, err := h.coord.FinalizeLive(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	h.seasons.InvalidateStandings(r.Context(), m.SeasonID)
	h.hub.PublishToMatch(id.String(), "match.finished", m)
	RespondJSON(w, http.StatusOK, m)
}

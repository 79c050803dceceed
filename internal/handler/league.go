package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pitchside/league/internal/domain"
	"github.com/pitchside/league/internal/repository"
	"github.com/pitchside/league/internal/service"
)

// LeagueHandler handles team, season, fixture and standings endpoints.
type LeagueHandler struct {
	seasons *service.SeasonService
	teams   repository.TeamRepository
	matches repository.MatchRepository
}

// NewLeagueHandler creates a new LeagueHandler.
func NewLeagueHandler(seasons *service.SeasonService, teams repository.TeamRepository, matches repository.MatchRepository) *LeagueHandler {
	return &LeagueHandler{seasons: seasons, teams: teams, matches: matches}
}

// CreateTeam handles POST /teams.
func (h *LeagueHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var team domain.Team
	if err := DecodeJSON(r, &team); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	if err := domain.ValidateTeam(&team); err != nil {
		RespondError(w, err)
		return
	}
	if err := h.teams.Create(r.Context(), &team); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, team)
}

// ListTeams handles GET /teams.
func (h *LeagueHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, teams)
}

// CreateSeason handles POST /seasons.
func (h *LeagueHandler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSeasonInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	season, fixtures, err := h.seasons.CreateSeason(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"season":   season,
		"fixtures": fixtures,
	})
}

// GetSeason handles GET /seasons/{seasonID}.
func (h *LeagueHandler) GetSeason(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "seasonID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid season id"))
		return
	}
	season, err := h.seasons.GetSeason(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, season)
}

// ListFixtures handles GET /seasons/{seasonID}/fixtures.
func (h *LeagueHandler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "seasonID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid season id"))
		return
	}
	fixtures, err := h.seasons.ListFixtures(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, fixtures)
}

// GetStandings handles GET /seasons/{seasonID}/standings.
func (h *LeagueHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "seasonID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid season id"))
		return
	}
	table, err := h.seasons.Standings(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, table)
}

// GetSnitchLeaders handles GET /seasons/{seasonID}/snitch-leaders.
func (h *LeagueHandler) GetSnitchLeaders(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "seasonID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid season id"))
		return
	}
	leaders, err := h.seasons.SnitchLeaders(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, leaders)
}

// GetMatch handles GET /matches/{matchID}.
func (h *LeagueHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}
	m, err := h.matches.FindByID(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if m == nil {
		RespondError(w, domain.ErrNotFound("match", id.String()))
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

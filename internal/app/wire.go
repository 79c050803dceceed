package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/league/internal/clock"
	"github.com/pitchside/league/internal/guard"
	"github.com/pitchside/league/internal/handler"
	"github.com/pitchside/league/internal/infra"
	"github.com/pitchside/league/internal/ledger"
	"github.com/pitchside/league/internal/policy"
	"github.com/pitchside/league/internal/projection"
	"github.com/pitchside/league/internal/repository"
	"github.com/pitchside/league/internal/service"
	"github.com/pitchside/league/internal/settlement"
	"github.com/pitchside/league/internal/simulate"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Store     repository.Store
	Pool      *pgxpool.Pool // nil when running on the in-memory store
	SimParams simulate.Params
	SimSeed   int64
	CORS      string
	Logger    *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	store := deps.Store
	logger := deps.Logger

	// Core engines
	ledgerEngine := ledger.NewEngine(store.Accounts(), store.Entries(), store.Outbox())
	settlementEngine := settlement.NewEngine(store.Matches(), store.Wagers(),
		store.Predictions(), ledgerEngine, store.Outbox(), logger)
	coordinator := clock.New(store.Teams(), store.Seasons(), store.Matches(),
		settlementEngine, store.Outbox(), deps.SimParams, deps.SimSeed, logger)

	hub := infra.NewWSHub(logger)
	cache := projection.NewInMemoryStore()

	// Services
	seasonSvc := service.NewSeasonService(store.Teams(), store.Seasons(), store.Matches(), store.Outbox(), cache, logger)
	wagerSvc := service.NewWagerService(store.Accounts(), store.Matches(), store.Wagers(),
		store.Predictions(), store.Entries(), ledgerEngine, store.Outbox(), policy.DefaultStakePolicy(), logger)

	// Request guards on the wager placement path
	wagerLimiter := guard.NewRateLimiter(30, time.Minute)
	wagerIdempotency := guard.NewIdempotencyGuard()

	// Handlers
	leagueHandler := handler.NewLeagueHandler(seasonSvc, store.Teams(), store.Matches())
	clockHandler := handler.NewClockHandler(coordinator, hub, seasonSvc)
	wagerHandler := handler.NewWagerHandler(wagerSvc, store.Accounts(), store.Entries(),
		ledgerEngine, wagerLimiter, wagerIdempotency)
	wsHandler := handler.NewWSHandler(hub, logger)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	cors := deps.CORS
	if cors == "" {
		cors = "*"
	}
	r.Use(handler.CORSWithOrigins(cors))
	r.Use(handler.JSONContentType)

	r.Get("/health", handler.HealthHandler(deps.Pool))

	r.Route("/teams", func(r chi.Router) {
		r.Post("/", leagueHandler.CreateTeam)
		r.Get("/", leagueHandler.ListTeams)
	})

	r.Route("/seasons", func(r chi.Router) {
		r.Post("/", leagueHandler.CreateSeason)
		r.Get("/{seasonID}", leagueHandler.GetSeason)
		r.Get("/{seasonID}/fixtures", leagueHandler.ListFixtures)
		r.Get("/{seasonID}/standings", leagueHandler.GetStandings)
		r.Get("/{seasonID}/snitch-leaders", leagueHandler.GetSnitchLeaders)
	})

	r.Route("/clock", func(r chi.Router) {
		r.Get("/", clockHandler.GetClock)
		r.Post("/start", clockHandler.StartClock)
		r.Post("/advance", clockHandler.Advance)
	})

	r.Get("/ws/matches/{matchID}", wsHandler.MatchFeed)

	r.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", leagueHandler.GetMatch)
		r.Post("/{matchID}/live", clockHandler.BeginLive)
		r.Post("/{matchID}/tick", clockHandler.Tick)
		r.Post("/{matchID}/finalize", clockHandler.FinalizeLive)
	})

	r.Route("/wagers", func(r chi.Router) {
		r.Post("/", wagerHandler.PlaceWager)
		r.Get("/{wagerID}", wagerHandler.GetWager)
	})

	r.Post("/predictions", wagerHandler.PlacePrediction)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", wagerHandler.CreateAccount)
		r.Get("/{accountID}", wagerHandler.GetAccount)
		r.Get("/{accountID}/entries", wagerHandler.ListEntries)
		r.Get("/{accountID}/audit", wagerHandler.AuditAccount)
	})

	return r
}

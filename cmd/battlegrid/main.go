package main

import (
	"os"
	"time"

	"github.com/ravoni/battlegrid/internal/api"
	"github.com/ravoni/battlegrid/internal/broadcast"
	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/dice"
	"github.com/ravoni/battlegrid/internal/logging"
	"github.com/ravoni/battlegrid/internal/narration"

	"github.com/gin-gonic/gin"
)

func main() {
	checkEnvVars([]string{constants.EnvSessionSecret, constants.EnvGoogleClientID, constants.EnvGoogleClientSecret})
	if !narration.Enabled() {
		logging.Info("OPENAI_API_KEY not set, narration disabled", nil)
	}

	// Path may be provided via BATTLEGRID_CONFIG or defaults to
	// ./battlegrid_config.json in the current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./battlegrid_config.json"
	}
	cfg := loadConfigOrExit(configPath)
	applyNarrationTemplate(cfg)

	bestiary := loadBestiaryOrExit(cfg.BestiaryPath)

	// Allow the DB path to be configured via BATTLEGRID_DB. Default to
	// a `data/` directory inside the backend module for local development.
	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/battlegrid.db"
	}
	repo := createRepositoryOrExit(dbPath)

	hub := broadcast.NewHub()
	roller := dice.NewRoller(time.Now().UnixNano())

	handler := api.NewEncounterHandler(repo, hub, bestiary, roller)
	authHandler := api.NewAuthHandler(repo)

	startStaleScanner(repo, hub, cfg.StaleAfter)

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteVersion, api.Version)

		// Authenticated endpoints
		protected := apiRoutes.Group("")
		protected.Use(api.AuthRequired())

		protected.GET(constants.RouteCharacters, handler.ListCharacters)
		protected.POST(constants.RouteEncounters, handler.CreateEncounter)
		protected.GET(constants.RouteEncounterByID, handler.GetEncounter)
		protected.POST(constants.RouteEncounterParty, handler.AddParty)
		protected.POST(constants.RouteEncounterMonsters, handler.AddMonsters)
		protected.POST(constants.RouteEncounterStart, handler.StartCombat)
		protected.POST(constants.RouteEncounterAction, handler.SubmitAction)
		protected.POST(constants.RouteEncounterEndTurn, handler.EndTurn)
		protected.POST(constants.RouteEncounterEnd, handler.EndCombat)
		protected.GET(constants.RouteEncounterSummary, handler.GetSummary)
		protected.DELETE(constants.RouteCombatantByID, handler.RemoveCombatant)
		protected.POST(constants.RouteAuthLogout, api.Logout)

		// Live encounter feed. The websocket handshake carries the
		// session cookie, so the auth middleware applies as usual.
		protected.GET(constants.RouteEncounterWatch, handler.Watch)
	}

	router.POST(constants.RouteAPIPrefix+constants.RouteAuthGoogleCallBack, authHandler.GoogleOAuthCallback)

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func checkEnvVars(vars []string) {
	for _, v := range vars {
		if os.Getenv(v) == "" {
			logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": v})
		}
	}
}

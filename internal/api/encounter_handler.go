package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravoni/battlegrid/internal/broadcast"
	"github.com/ravoni/battlegrid/internal/config"
	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/dice"
	"github.com/ravoni/battlegrid/internal/service"
	"github.com/ravoni/battlegrid/internal/storage"
)

// EncounterHandler groups all encounter-related HTTP handlers.
type EncounterHandler struct {
	repo     storage.Repository
	hub      *broadcast.Hub
	bestiary map[string]config.Statblock
	roller   dice.Roller
}

// NewEncounterHandler creates an EncounterHandler with its collaborators.
func NewEncounterHandler(repo storage.Repository, hub *broadcast.Hub, bestiary map[string]config.Statblock, roller dice.Roller) *EncounterHandler {
	return &EncounterHandler{repo: repo, hub: hub, bestiary: bestiary, roller: roller}
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch err {
	case service.ErrEncounterNotFound:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrEncounterNotFound})
	case service.ErrCharacterNotFound:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrCharacterNotFound})
	case service.ErrMonsterNotFound:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMonsterNotFound})
	case service.ErrEncounterNotPreparing:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrEncounterNotPreparing})
	case service.ErrEncounterNotActive:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrEncounterNotActive})
	case service.ErrEncounterAlreadyEnded:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrEncounterAlreadyEnded})
	case service.ErrCombatantNotFound:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrCombatantNotFound})
	case service.ErrNotCombatantsTurn:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNotCombatantsTurn})
	case service.ErrActorIncapacitated, service.ErrNotDying, service.ErrNoTarget, service.ErrUnknownAction:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
	case service.ErrNoSpellSlot:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNoSpellSlotsRemaining})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateEncounter})
	}
}

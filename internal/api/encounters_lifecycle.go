package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/service"
)

type CreateEncounterRequest struct {
	SessionID uint `json:"session_id"`
}

// CreateEncounter opens a new encounter for a campaign.
func (h *EncounterHandler) CreateEncounter(c *gin.Context) {
	campaignID, err := strconv.ParseUint(c.Param("campaignID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidCampaignID})
		return
	}
	var req CreateEncounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	e, err := service.CreateEncounter(h.repo, uint(campaignID), req.SessionID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateEncounter})
		return
	}
	c.JSON(http.StatusCreated, e)
}

type AddPartyRequest struct {
	CharacterIDs []uint `json:"character_ids" binding:"required"`
}

// AddParty rolls initiative for characters and adds them to the encounter.
func (h *EncounterHandler) AddParty(c *gin.Context) {
	var req AddPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	e, rolls, err := service.AddParty(h.repo, h.roller, c.Param("encounterID"), req.CharacterIDs, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"encounter": e, "initiative_rolls": rolls})
}

type AddMonstersRequest struct {
	Names []string `json:"names" binding:"required"`
}

// AddMonsters instantiates bestiary monsters into the encounter.
func (h *EncounterHandler) AddMonsters(c *gin.Context) {
	var req AddMonstersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	e, rolls, err := service.AddMonsters(h.repo, h.roller, h.bestiary, c.Param("encounterID"), req.Names, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"encounter": e, "initiative_rolls": rolls})
}

// StartCombat locks the roster into initiative order and begins round 1.
func (h *EncounterHandler) StartCombat(c *gin.Context) {
	e, err := service.StartCombat(h.repo, h.hub, c.Param("encounterID"), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type EndCombatRequest struct {
	Reason string `json:"reason"`
}

// EndCombat closes the encounter and reports the summary.
func (h *EncounterHandler) EndCombat(c *gin.Context) {
	var req EndCombatRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "Combat ended."
	}
	e, summary, err := service.EndCombat(h.repo, h.hub, c.Param("encounterID"), req.Reason, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"encounter": e, "summary": summary})
}

// RemoveCombatant takes a combatant out of the fight (fled or dismissed).
func (h *EncounterHandler) RemoveCombatant(c *gin.Context) {
	e, err := service.RemoveCombatant(h.repo, h.hub, c.Param("encounterID"), c.Param("combatantID"), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

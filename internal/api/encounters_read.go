package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/service"
)

// GetEncounter returns the current encounter snapshot.
func (h *EncounterHandler) GetEncounter(c *gin.Context) {
	e, err := service.GetEncounter(h.repo, c.Param("encounterID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// GetSummary returns the end-of-combat summary.
func (h *EncounterHandler) GetSummary(c *gin.Context) {
	summary, err := service.GetSummary(h.repo, c.Param("encounterID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListCharacters returns the campaign's character sheets.
func (h *EncounterHandler) ListCharacters(c *gin.Context) {
	campaignID, err := strconv.ParseUint(c.Param("campaignID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidCampaignID})
		return
	}
	chars, err := h.repo.GetCharactersByCampaign(uint(campaignID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCharacters})
		return
	}
	c.JSON(http.StatusOK, chars)
}

// Watch upgrades to a websocket and streams action and snapshot events
// for the encounter.
func (h *EncounterHandler) Watch(c *gin.Context) {
	encounterID := c.Param("encounterID")
	if _, err := service.GetEncounter(h.repo, encounterID); err != nil {
		respondServiceError(c, err)
		return
	}
	h.hub.ServeWatch(c.Writer, c.Request, encounterID)
}

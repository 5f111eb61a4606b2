package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/service"
)

// SubmitAction resolves one declared action for the current turn holder.
func (h *EncounterHandler) SubmitAction(c *gin.Context) {
	var req service.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	e, res, err := service.SubmitAction(h.repo, h.hub, h.roller, c.Param("encounterID"), req, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"encounter":   e,
		"description": res.Description,
		"log":         res.Log,
		"ends_turn":   res.EndsTurn,
	})
}

// EndTurn advances the initiative order without resolving an action.
func (h *EncounterHandler) EndTurn(c *gin.Context) {
	e, err := service.EndTurn(h.repo, h.hub, c.Param("encounterID"), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

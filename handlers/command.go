// File: handlers/command.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transitops/models"
	"transitops/services/command"
)

// SubmitCommandHandler accepts a typed natural-language command.
func SubmitCommandHandler(svc command.CommandService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Text  string              `json:"text" binding:"required"`
			Hints models.ContextHints `json:"hints"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		cmd := &models.Command{
			OperatorID: c.GetString("operatorID"),
			RawText:    input.Text,
			Origin:     models.OriginTyped,
			Hints:      input.Hints,
		}
		resp, err := svc.Submit(c.Request.Context(), cmd)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process command", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ConfirmCommandHandler settles a pending confirmation session.
func ConfirmCommandHandler(svc command.CommandService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			SessionID string `json:"sessionId" binding:"required"`
			Confirmed *bool  `json:"confirmed" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		resp, err := svc.Confirm(c.Request.Context(), c.GetString("operatorID"), input.SessionID, *input.Confirmed)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process confirmation", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PendingCommandHandler returns the caller's pending confirmation, if any.
func PendingCommandHandler(svc command.CommandService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svc.Pending(c.Request.Context(), c.GetString("operatorID"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch pending session", "details": err.Error()})
			return
		}
		if session == nil {
			c.JSON(http.StatusOK, gin.H{"pending": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"pending":     true,
			"sessionId":   session.SessionID,
			"expiresAt":   session.ExpiresAt,
			"target":      session.Pending.Target,
			"consequence": session.Pending.Consequence,
		})
	}
}

// File: handlers/operator.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transitops/services/operator"
)

// RegisterOperatorHandler creates a dispatcher account and returns a token.
func RegisterOperatorHandler(svc operator.OperatorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		op, token, err := svc.Register(c.Request.Context(), input.Name, input.Email, input.Password)
		if errors.Is(err, operator.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"operator": op, "token": token})
	}
}

// LoginOperatorHandler authenticates a dispatcher and issues a fresh token.
func LoginOperatorHandler(svc operator.OperatorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		op, token, err := svc.Login(c.Request.Context(), input.Email, input.Password)
		if errors.Is(err, operator.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"operator": op, "token": token})
	}
}

// File: handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct the router
// consumes.
type HandlerBundle struct {
	// Operator endpoints
	RegisterOperatorHandler gin.HandlerFunc
	LoginOperatorHandler    gin.HandlerFunc

	// Command endpoints
	SubmitCommandHandler  gin.HandlerFunc
	ImageCommandHandler   gin.HandlerFunc
	ConfirmCommandHandler gin.HandlerFunc
	PendingCommandHandler gin.HandlerFunc

	// Audit trail
	AuditTrailHandler gin.HandlerFunc
}

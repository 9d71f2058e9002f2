// File: handlers/audit.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditRepo "transitops/database/repository/audit"
)

const defaultAuditLimit = 50

// AuditTrailHandler lists audit records, newest first. With kind and id query
// parameters it narrows to one entity's history.
func AuditTrailHandler(repo auditRepo.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := c.Query("kind")
		rawID := c.Query("id")

		if kind != "" || rawID != "" {
			id, err := strconv.ParseInt(rawID, 10, 64)
			if kind == "" || err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": "kind and a numeric id must be given together"})
				return
			}
			records, err := repo.ListByEntity(c.Request.Context(), kind, id)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch audit trail", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"records": records})
			return
		}

		limit := int64(defaultAuditLimit)
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		records, err := repo.ListRecent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch audit trail", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	}
}

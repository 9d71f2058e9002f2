// File: middleware/auth.go
package middleware

import (
	"net/http"
	"strings"
	"time"

	operatorRepo "transitops/database/repository/operator"
	"transitops/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const authCachePrefix = "auth:op:"

// JWTAuthOperatorMiddleware authenticates the bearer token against the
// operator's current token hash. A fresh login rotates the hash and revokes
// every earlier token.
func JWTAuthOperatorMiddleware(repo operatorRepo.OperatorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}

		operatorID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || operatorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		ctx := c.Request.Context()
		cacheKey := authCachePrefix + operatorID

		authCache := utils.GetCacheClient()
		cachedHash, err := authCache.Get(ctx, cacheKey).Result()
		if err == nil {
			if cachedHash != computedHash {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token mismatch"})
				return
			}
			_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
			c.Set("operatorID", operatorID)
			c.Next()
			return
		}
		if err != redis.Nil {
			utils.GetLogger().Warn("auth cache unavailable, falling back to database")
		}

		op, err := repo.GetByID(ctx, operatorID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication error"})
			return
		}
		if op.TokenHash == "" || op.TokenHash != computedHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token mismatch"})
			return
		}

		_ = authCache.Set(ctx, cacheKey, computedHash, time.Hour).Err()
		c.Set("operatorID", operatorID)
		c.Next()
	}
}

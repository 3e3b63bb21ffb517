package middlewares

import (
	"net/http"
	"strings"

	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Authenticate requires a valid bearer access token. The token's jti is
// checked against the blacklist so rotated-away tokens die before their
// expiry does.
func Authenticate(redisRepo *repositories.RedisRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or missing access token"})
			return
		}

		blacklisted, err := redisRepo.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil || blacklisted {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
			return
		}

		c.Set("userId", claims.UserID)
		c.Next()
	}
}

// MaybeAuthenticate sets the user id when a valid bearer token is
// present and lets the request through anonymously otherwise. Used on
// routes a share link can open without an account.
func MaybeAuthenticate(redisRepo *repositories.RedisRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c); ok {
			blacklisted, err := redisRepo.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && !blacklisted {
				c.Set("userId", claims.UserID)
			}
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	// Expected format: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := utils.VerifyJWT(parts[1], utils.AccessTokenSecret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

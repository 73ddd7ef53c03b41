package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // User identifiers
	"github.com/sirupsen/logrus" // Structured logging

	"crypto_wallet/internal/utils" // JWT utility functions
)

// Context keys set by JWTAuthMiddleware
const (
	CtxUserID = "userID" // uuid.UUID of the caller
	CtxEmail  = "email"  // Email carried by the token
)

// JWTAuthMiddleware validates session tokens and extracts user information
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")                 // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret, utils.PurposeSession) // Verification tokens are refused here
		if err != nil {
			logrus.WithError(err).WithField("request_id", c.GetString(CtxRequestID)).Debug("bearer token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID, err := claims.ID() // Parse the user id claim
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(CtxUserID, userID)      // Store userID in context
		c.Set(CtxEmail, claims.Email) // Store email in context
		c.Next()                      // Proceed to the next handler
	}
}

// UserID returns the authenticated caller set by JWTAuthMiddleware
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

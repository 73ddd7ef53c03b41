package api

import (
	"errors"   // Error matching
	"fmt"      // Inline HTML formatting
	"net/http" // HTTP status codes
	"net/url"  // Query escaping

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging

	"crypto_wallet/internal/auth"       // Registration, login, verification
	"crypto_wallet/internal/middleware" // Caller identity
	"crypto_wallet/internal/utils"      // Cache helpers
)

// RegisterRequest is the registration body
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`        // Display name
	Email    string `json:"email" binding:"required,email,max=320"` // Login email
	Password string `json:"password" binding:"required,max=72"`     // bcrypt only uses 72 bytes
	Role     string `json:"role"`                                   // Optional: user or admin
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// RegisterHandler creates a user with empty BTC/ETH wallets and sends the verification email
func RegisterHandler(svc *auth.Service, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": validationDetails(err)})
			return
		}
		user, err := svc.Register(c.Request.Context(), auth.RegisterInput{
			Name:     req.Name,     // Display name
			Email:    req.Email,    // Normalized by the service
			Password: req.Password, // Hashed by the service
			Role:     req.Role,     // Falls back to user
		})
		if user != nil {
			_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, adminUsersCachePrefix) // New user invalidates admin listings
		}
		if errors.Is(err, auth.ErrEmailDelivery) {
			// The account exists but the link never left; same outcome as any server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during registration"})
			return
		}
		if err != nil {
			respondError(c, err, "Server error during registration")
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration successful. Please verify your email.",
			"user": gin.H{
				"id":    user.ID,    // User ID
				"email": user.Email, // Normalized email
				"name":  user.Name,  // Display name
				"role":  user.Role,  // Assigned role
			},
		})
	}
}

// LoginHandler authenticates a user and returns a session token
func LoginHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": validationDetails(err)})
			return
		}
		token, user, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err, "Server error during login")
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user":    gin.H{"id": user.ID, "name": user.Name, "email": user.Email},
		})
	}
}

// VerifyEmailHandler consumes a verification token. With a frontend configured the
// client is redirected to its status page, otherwise a minimal page is rendered inline.
func VerifyEmailHandler(svc *auth.Service, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := svc.Verify(c.Request.Context(), c.Param("token")) // success, invalid or failed
		if frontendURL != "" {
			c.Redirect(http.StatusFound, frontendURL+"/verify-status?status="+url.QueryEscape(status))
			return
		}
		code := http.StatusOK
		title, body := "Email verified", "Your email has been verified. You can now log in."
		switch status {
		case auth.VerifyInvalid:
			code = http.StatusNotFound
			title, body = "Account not found", "This verification link does not match any account."
		case auth.VerifyFailed:
			code = http.StatusBadRequest
			title, body = "Verification failed", "This verification link is invalid or has expired."
		}
		page := fmt.Sprintf(`<!doctype html><html><head><meta charset="utf-8"><title>%s</title></head>`+
			`<body style="font-family:sans-serif;text-align:center;padding:40px"><h1>%s</h1><p>%s</p></body></html>`, title, title, body)
		c.Data(code, "text/html; charset=utf-8", []byte(page))
	}
}

// ProfileHandler returns the caller's profile and wallets
func ProfileHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, wallets, err := svc.Profile(c.Request.Context(), userID)
		if err != nil {
			logrus.WithField("user_id", userID).Debug("profile lookup failed")
			respondError(c, err, "Error fetching profile")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": gin.H{
			"id":             user.ID,                  // User ID
			"name":           user.Name,                // Display name
			"email":          user.Email,               // Normalized email
			"email_verified": user.EmailVerified,       // Verification state
			"role":           user.Role,                // Role
			"created_at":     user.CreatedAt,           // Registration time
			"wallets":        walletResponses(wallets), // Associated wallets
		}})
	}
}

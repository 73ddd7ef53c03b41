package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // User identifiers
)

// Token purposes
const (
	PurposeSession = "session" // Bearer token for API calls
	PurposeVerify  = "verify"  // Email verification link token
)

// ErrTokenPurpose is returned when a valid token is presented for the wrong use
var ErrTokenPurpose = errors.New("token purpose mismatch")

// JWT Claims
type Claims struct {
	UserID               string `json:"id"`      // Custom claim for user ID
	Email                string `json:"email"`   // Custom claim for user email
	Purpose              string `json:"purpose"` // session or verify
	jwt.RegisteredClaims        // Standard JWT claims
}

// ID returns the user id carried by the claims
func (c *Claims) ID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GenerateJWT creates a signed token for a user that expires after ttl
func GenerateJWT(userID uuid.UUID, email, purpose, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	// Set token claims
	claims := Claims{
		UserID:  userID.String(), // Custom claim for user ID
		Email:   email,           // Custom claim for email
		Purpose: purpose,         // What the token may be used for
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a token string issued for purpose
func ParseJWT(tokenStr, secret, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid // Reject non-HMAC algorithms
		}
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid // Return error if token is invalid
	}
	if claims.Purpose != purpose {
		return nil, ErrTokenPurpose
	}
	return claims, nil // Return claims if valid
}

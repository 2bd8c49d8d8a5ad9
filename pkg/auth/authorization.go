package auth

import (
	"context"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const (
	tokenKey = "token"
	uidKey   = "uid"
	emailKey = "email"
)

// TokenVerifier verifies Firebase ID tokens. *firebaseauth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// Identity is the authenticated caller as seen by the services.
type Identity struct {
	UID   string
	Email string
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}
		idToken, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(idToken) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			c.Abort()
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ID token"})
			c.Abort()
			return
		}

		// Attach token to the context
		c.Set(tokenKey, token)
		c.Set(uidKey, token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			c.Set(emailKey, email)
		}

		c.Next()
	}
}

// UserID returns the uid set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(uidKey)
}

// CurrentIdentity returns the caller set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) Identity {
	return Identity{UID: c.GetString(uidKey), Email: c.GetString(emailKey)}
}

// OnboardingChecker reports whether a user finished onboarding.
type OnboardingChecker interface {
	IsOnboarded(ctx context.Context, uid string) (bool, error)
}

// RequireOnboarding rejects callers that have not completed their profile.
// It must run after AuthMiddleware.
func RequireOnboarding(checker OnboardingChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		done, err := checker.IsOnboarded(c.Request.Context(), UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			c.Abort()
			return
		}
		if !done {
			c.JSON(http.StatusForbidden, gin.H{"error": "onboarding not completed"})
			c.Abort()
			return
		}
		c.Next()
	}
}

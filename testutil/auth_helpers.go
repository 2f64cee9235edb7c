package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/ecotrade/ecotrade-api/middleware"
	"github.com/gin-gonic/gin"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// MockStaffAuth returns a middleware that authenticates every request as a
// staff member holding scopes.
func MockStaffAuth(subject string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", subject)
		c.Set("access_token", "mock-token")
		c.Set("validated_claims", MockValidatedClaims(subject, "https://test.auth0.com/", scopes))
		c.Next()
	}
}

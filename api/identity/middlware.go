package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextOperatorClaims is the key used to store token claims in the Gin context.
	ContextOperatorClaims = "operatorClaims"

	// ContextOperatorID is the key used to store the operator uuid.UUID in the Gin context.
	ContextOperatorID = "operatorID"
)

// Authoriz rejects requests without a valid bearer token and stores the operator id for handlers.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve the access token from the Authorization header.
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized) // No token found in the header.
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatus(http.StatusUnauthorized) // Malformed Authorization header.
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		raw, _ := claims["operatorID"].(string)
		operatorID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Attach operator claims to the request context for further use.
		c.Set(ContextOperatorClaims, claims)
		c.Set(ContextOperatorID, operatorID)
		c.Next()
	}
}

// OperatorID returns the operator set by Authoriz.
func OperatorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextOperatorID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

package identity

import (
	"net/http"
	"strings"

	"auction-service/internal/models"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

const contextKey = "identity"

// Authenticate rejects requests without a valid bearer token and stores the
// caller identity on the gin context.
func Authenticate(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, ErrMissingToken, "unauthorized")
			c.Abort()
			return
		}

		id, err := v.Verify(token)
		if err != nil {
			utils.Warn("token rejected", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			utils.JSONError(c, http.StatusUnauthorized, ErrInvalidToken, "unauthorized")
			c.Abort()
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// SetIdentity attaches an already-verified caller to the request
func SetIdentity(c *gin.Context, id models.Identity) {
	c.Set(contextKey, id)
}

// FromContext returns the identity stored by Authenticate
func FromContext(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}

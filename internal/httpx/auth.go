package httpx

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/auth"
	"github.com/MikeMC777/tiendas-ecom/internal/logging"
)

const principalKey = "principal"

type Verifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Authenticate requires a valid bearer token and stores its principal on the
// gin context.
func Authenticate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing bearer token"})
			return
		}
		p, err := v.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid token"})
			return
		}
		c.Set(principalKey, p)
		c.Request = c.Request.WithContext(logging.WithTag(c.Request.Context(), string(p.Role), p.ID))
		c.Next()
	}
}

func Principal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "not authenticated"})
			return
		}
		if !p.Is(roles...) {
			Abort(c, apperr.Forbidden("role "+string(p.Role)+" may not call this endpoint"))
			return
		}
		c.Next()
	}
}

// RequireSelf rejects requests whose path param differs from the caller's id.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok || p.ID != c.Param(param) {
			Abort(c, apperr.Forbidden("callers may only access their own records"))
			return
		}
		c.Next()
	}
}

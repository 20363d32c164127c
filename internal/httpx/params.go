package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
)

// ParseID returns s in canonical UUID form, or false when s is not a UUID.
func ParseID(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// IDParam reads path param name as a UUID. Anything else aborts with
// 400 invalid_id before a query can reject it.
func IDParam(c *gin.Context, name string) (string, bool) {
	id, ok := ParseID(c.Param(name))
	if !ok {
		Abort(c, apperr.Validation("invalid_id", name+" must be a UUID"))
	}
	return id, ok
}

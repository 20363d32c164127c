package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/logging"
)

// Abort renders err as {"error": reason, "message": msg}. Internal errors get a
// generic message; their detail only goes to the log.
func Abort(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	reason := apperr.ReasonOf(err)

	msg := "internal error"
	if ae, ok := apperr.From(err); ok && kind != apperr.KindInternal {
		msg = ae.Msg
	}
	if status >= http.StatusInternalServerError {
		logging.Printf(c.Request.Context(), "http", "%s %s: %+v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": reason, "message": msg})
}

// BadRequest is for malformed payloads caught before any service call.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": msg})
}

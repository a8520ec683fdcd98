package resp

import (
	"log"
	"net/http"

	"tableside/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": data})
}
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": msg})
}
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": msg})
}
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": msg})
}
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, gin.H{"ok": false, "error": msg})
}
func Unprocessable(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": msg})
}
func ServerError(c *gin.Context, err error) {
	log.Println("internal error:", err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
}

// Error maps a service error onto the envelope using the apperr taxonomy.
// Unknown errors are logged and hidden behind a generic 500.
func Error(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		BadRequest(c, err.Error())
	case apperr.KindConflict:
		Conflict(c, err.Error())
	case apperr.KindPrecondition:
		Unprocessable(c, err.Error())
	case apperr.KindNotFound:
		NotFound(c, err.Error())
	default:
		ServerError(c, err)
	}
}

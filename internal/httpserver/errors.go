package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jobmate/board-service/internal/board"
)

// writeError maps domain errors to HTTP statuses. Anything unrecognised is a
// 500 with a generic message; the cause is logged, never returned.
func writeError(c *gin.Context, err error) {
	var ve board.ValidationErrors
	var pe *board.PersistenceError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": ve})
	case errors.Is(err, board.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, board.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, board.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, board.ErrHasApplicants), errors.Is(err, board.ErrPostingClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &pe):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, field, msg string) {
	writeError(c, board.ValidationErrors{{Field: field, Message: msg}})
}

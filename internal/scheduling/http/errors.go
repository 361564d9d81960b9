package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/response"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
)

// Error maps scheduling failures to statuses and defers everything else to response.Error.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidWindow):
		response.BadRequest(c, "invalid time window", err)
	case errors.Is(err, scheduling.ErrOrganizerNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "organizer not found"})
	case errors.Is(err, scheduling.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "user not found"})
	case errors.Is(err, scheduling.ErrDataUnavailable):
		zap.L().Error("scheduling data unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{Error: "scheduling data temporarily unavailable"})
	default:
		response.Error(c, err)
	}
}

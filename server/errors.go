package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/pixelforge/editor"
	"github.com/chaos-io/pixelforge/rembg"
	"github.com/chaos-io/pixelforge/util"
)

var (
	errBadRequest = errors.New("bad request")
	errTooLarge   = errors.New("payload too large")
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, editor.ErrLayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, errTooLarge), errors.Is(err, util.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, editor.ErrUnknownTool),
		errors.Is(err, editor.ErrInvalidBrush),
		errors.Is(err, editor.ErrInvalidFilters),
		errors.Is(err, editor.ErrNoActiveObject):
		return http.StatusBadRequest
	case errors.Is(err, rembg.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, rembg.ErrInvalidSegmentationResult):
		return http.StatusBadGateway
	case errors.Is(err, editor.ErrRemovalUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "err", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

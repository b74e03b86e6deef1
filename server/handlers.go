package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/pixelforge/canvas"
	"github.com/chaos-io/pixelforge/editor"
)

const sessionKey = "session"

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = s.cfg.Server.MaxUploadBytes

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	api.POST("/sessions", s.createSession)

	sess := api.Group("/sessions/:id", s.loadSession)
	sess.GET("", s.snapshot)
	sess.DELETE("", s.deleteSession)

	sess.PUT("/tool", s.setTool)
	sess.PUT("/brush", s.setBrush)
	sess.PUT("/filters", s.setFilters)
	sess.DELETE("/filters", s.resetFilters)
	sess.POST("/keys", s.handleKey)
	sess.POST("/pointer", s.pointer)

	sess.POST("/images", s.uploadImage)
	sess.POST("/rotate", s.rotate)
	sess.POST("/text", s.command((*editor.Editor).AddText))
	sess.POST("/crop", s.command((*editor.Editor).StartCrop))
	sess.POST("/crop/apply", s.command((*editor.Editor).ApplyCrop))
	sess.POST("/crop/cancel", s.command((*editor.Editor).CancelCrop))
	sess.POST("/clear", s.command((*editor.Editor).Clear))
	sess.GET("/export", s.export)
	sess.GET("/preview", s.preview)
	sess.POST("/remove-background", s.removeBackground)

	sess.POST("/layers/:layerId/select", s.selectLayer)
	sess.POST("/layers/:layerId/visibility", s.toggleVisibility)
	sess.POST("/layers/:layerId/lock", s.toggleLock)
	sess.DELETE("/layers/:layerId", s.deleteLayer)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"sessions":    s.store.Len(),
		"modelLoaded": s.engine.Loaded(),
	})
}

func (s *Server) loadSession(c *gin.Context) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func editorOf(c *gin.Context) *editor.Editor {
	return c.MustGet(sessionKey).(*Session).Editor
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func (s *Server) createSession(c *gin.Context) {
	sess, err := s.store.Create()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID, "state": sess.Editor.Snapshot()})
}

func (s *Server) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, editorOf(c).Snapshot())
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type toolRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) setTool(c *gin.Context) {
	var req toolRequest
	if !bind(c, &req) {
		return
	}
	ed := editorOf(c)
	if err := ed.SetActiveTool(req.Name); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

type brushRequest struct {
	Color *string `json:"color"`
	Size  *int    `json:"size"`
}

func (s *Server) setBrush(c *gin.Context) {
	var req brushRequest
	if !bind(c, &req) {
		return
	}
	ed := editorOf(c)
	if req.Color != nil {
		if err := ed.SetBrushColor(*req.Color); err != nil {
			abortWithError(c, err)
			return
		}
	}
	if req.Size != nil {
		if err := ed.SetBrushSize(*req.Size); err != nil {
			abortWithError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

func (s *Server) setFilters(c *gin.Context) {
	req := canvas.DefaultFilters()
	if !bind(c, &req) {
		return
	}
	ed := editorOf(c)
	if err := ed.SetFilters(req); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

func (s *Server) resetFilters(c *gin.Context) {
	ed := editorOf(c)
	ed.ResetFilters()
	c.JSON(http.StatusOK, ed.Snapshot())
}

type keyRequest struct {
	Key              string `json:"key" binding:"required"`
	TextInputFocused bool   `json:"textInputFocused"`
}

func (s *Server) handleKey(c *gin.Context) {
	var req keyRequest
	if !bind(c, &req) {
		return
	}
	ed := editorOf(c)
	handled, err := ed.HandleKey(req.Key, req.TextInputFocused)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"handled": handled, "state": ed.Snapshot()})
}

type pointerRequest struct {
	Type string  `json:"type" binding:"required,oneof=down move up"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (s *Server) pointer(c *gin.Context) {
	var req pointerRequest
	if !bind(c, &req) {
		return
	}
	ed := editorOf(c)
	switch req.Type {
	case "down":
		ed.PointerDown(req.X, req.Y)
	case "move":
		ed.PointerMove(req.X, req.Y)
	case "up":
		ed.PointerUp(req.X, req.Y)
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

// uploadImage bounds the whole request body by Server.MaxUploadBytes and
// the decoded image by util.MaxImagePixels.
func (s *Server) uploadImage(c *gin.Context) {
	limit := s.cfg.Server.MaxUploadBytes
	if c.Request.ContentLength > limit {
		abortWithError(c, fmt.Errorf("%w: body of %d bytes exceeds %d", errTooLarge, c.Request.ContentLength, limit))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			abortWithError(c, fmt.Errorf("%w: body exceeds %d bytes", errTooLarge, mbe.Limit))
			return
		}
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if ct := fh.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		abortWithError(c, fmt.Errorf("%w: %s is not an image (%q)", errBadRequest, fh.Filename, ct))
		return
	}

	f, err := fh.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer func() {
		_ = f.Close()
	}()

	ed := editorOf(c)
	if err := ed.LoadImage(f, fh.Filename); err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

type rotateRequest struct {
	Degrees *float64 `json:"degrees"`
}

func (s *Server) rotate(c *gin.Context) {
	var req rotateRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	deg := editor.RotateStep
	if req.Degrees != nil {
		deg = *req.Degrees
	}
	ed := editorOf(c)
	ed.Rotate(deg)
	c.JSON(http.StatusOK, ed.Snapshot())
}

// command adapts an editor command without arguments to a handler.
func (s *Server) command(fn func(*editor.Editor)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ed := editorOf(c)
		fn(ed)
		c.JSON(http.StatusOK, ed.Snapshot())
	}
}

func (s *Server) export(c *gin.Context) {
	data, err := editorOf(c).ExportImage()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", editor.ExportFileName))
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) preview(c *gin.Context) {
	data, err := editorOf(c).Preview()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) removeBackground(c *gin.Context) {
	ed := editorOf(c)
	if err := ed.RemoveBackground(c.Request.Context(), nil); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

func (s *Server) selectLayer(c *gin.Context) {
	ed := editorOf(c)
	if err := ed.SelectLayer(c.Param("layerId")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

func (s *Server) toggleVisibility(c *gin.Context) {
	ed := editorOf(c)
	l, err := ed.ToggleLayerVisibility(c.Param("layerId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) toggleLock(c *gin.Context) {
	ed := editorOf(c)
	l, err := ed.ToggleLayerLock(c.Param("layerId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) deleteLayer(c *gin.Context) {
	ed := editorOf(c)
	if err := ed.DeleteLayer(c.Param("layerId")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ed.Snapshot())
}

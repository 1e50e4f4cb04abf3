package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskforge/deskos/internal/domain/registry"
	"github.com/deskforge/deskos/internal/domain/runtime"
	"github.com/deskforge/deskos/internal/domain/session"
	"github.com/deskforge/deskos/internal/domain/window"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	wm       *window.Manager
	runtime  *runtime.Runtime
	registry *registry.Registry
	sessions *session.Manager
}

// NewHandlers creates a new handler set.
func NewHandlers(wm *window.Manager, rt *runtime.Runtime, reg *registry.Registry, sessions *session.Manager) *Handlers {
	return &Handlers{wm: wm, runtime: rt, registry: reg, sessions: sessions}
}

// Root handles the health check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "deskos-core",
	})
}

// Health reports component statistics.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"windows": h.wm.Stats(),
		"runtime": h.runtime.Stats(),
	})
}

// ListApps lists registered application descriptors and live
// instances.
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"descriptors": h.runtime.Descriptors(),
		"instances":   h.runtime.Instances(),
	})
}

// LaunchApp activates an application.
func (h *Handlers) LaunchApp(c *gin.Context) {
	var body struct {
		Params map[string]interface{} `json:"params"`
	}
	_ = c.ShouldBindJSON(&body)

	info, err := h.runtime.Launch(c.Param("id"), body.Params)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	var content interface{}
	if inst, ok := h.runtime.Instance(info.WindowID); ok {
		content = inst.Content()
	}
	c.JSON(http.StatusOK, gin.H{"instance": info, "content": content})
}

// ListWindows returns every open window.
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"windows": h.wm.List()})
}

// Taskbar returns the ordered enumeration surface.
func (h *Handlers) Taskbar(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"windows": h.registry.All()})
}

// WindowOp applies a lifecycle operation to a window.
func (h *Handlers) WindowOp(op func(*window.Manager, string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		c.JSON(http.StatusOK, gin.H{"success": op(h.wm, id), "window_id": id})
	}
}

// SaveSession captures the current workspace.
func (h *Handlers) SaveSession(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.Name == "" {
		body.Name = "default"
	}

	saved, err := h.sessions.Save(body.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": saved})
}

// RestoreSession relaunches a saved workspace.
func (h *Handlers) RestoreSession(c *gin.Context) {
	restored, err := h.sessions.Restore(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": restored})
}

// ListSessions lists saved workspace ids.
func (h *Handlers) ListSessions(c *gin.Context) {
	ids, err := h.sessions.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": ids})
}

// DeleteSession removes a saved workspace.
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

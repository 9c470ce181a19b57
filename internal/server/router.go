package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hadithexport/internal/auth"
	"hadithexport/internal/events"
)

// NewRouter wires the output browser, the progress feed and the
// token-protected run trigger.
func NewRouter(h *Handler, hub *events.Hub, tokens auth.TokenService) *gin.Engine {
	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "output": h.OutputDir})
	})
	router.GET("/ws", events.WSHandler(hub))
	router.GET("/debug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"output": h.OutputDir,
			"events": hub.Stats(),
			"export": h.Status(),
		})
	})

	h.RegisterRoutes(router.Group(""))

	protected := router.Group("")
	protected.Use(auth.RequireScope(tokens, auth.ScopeExport))
	h.RegisterRunRoutes(protected)

	return router
}

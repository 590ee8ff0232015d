package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID())
	r.Use(Recovery(log))
	r.Use(AccessLog(log))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, codeRouteNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		fail(c, http.StatusMethodNotAllowed, codeMethodNotFound, "method not allowed")
	})

	// views
	r.GET("/", h.Home)
	r.GET("/chat/:roomId", h.OpenRoom)
	r.POST("/chat/:roomId/messages", h.SendMessage)

	// data
	api := r.Group("/api")
	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/:roomId/messages", h.ListMessages)
	api.GET("/rooms/:roomId/search", h.Search)
	api.GET("/rooms/:roomId/history", h.History)

	r.GET("/debug/stats", h.Stats)
	return r
}

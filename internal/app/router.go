// internal/app/router.go
package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authHandler "realm-gateway/internal/handlers/auth"
	clientHandler "realm-gateway/internal/handlers/client"
	"realm-gateway/internal/middleware"
)

type Handlers struct {
	Auth           *authHandler.AuthHandler
	Client         *clientHandler.ClientHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// ==================== Index ====================
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "realm-gateway", "status": "ok"})
	})

	// ==================== OAuth login flow ====================
	r.GET("/login", h.Auth.Login)
	r.GET("/auth/discord/callback", h.Auth.Callback)

	// ==================== Protected routes ====================
	r.GET("/me", h.AuthMiddleware.Auth(), h.Client.Me)

	client := r.Group("/client")
	client.Use(h.AuthMiddleware.Auth())
	{
		client.GET("/realmlist", h.Client.RealmList)
		client.GET("/characterslist", h.Client.CharacterList)
	}
}

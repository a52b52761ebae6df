// internal/handlers/auth/auth_handler.go
package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realm-gateway/internal/middleware"
	"realm-gateway/internal/pkg/response"
	"realm-gateway/internal/service/discord"
	"realm-gateway/internal/service/identity"
	sessionsvc "realm-gateway/internal/service/session"
)

// cookieMaxAge matches the token lifetime.
const cookieMaxAge = 3600

type AuthHandler struct {
	discord           *discord.Client
	identities        *identity.Service
	sessions          *sessionsvc.Service
	clientCallbackURL string
	logger            *zap.Logger
}

func NewAuthHandler(
	discordClient *discord.Client,
	identities *identity.Service,
	sessions *sessionsvc.Service,
	clientCallbackURL string,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		discord:           discordClient,
		identities:        identities,
		sessions:          sessions,
		clientCallbackURL: clientCallbackURL,
		logger:            logger,
	}
}

// Login redirects the browser to Discord's authorization page.
func (h *AuthHandler) Login(c *gin.Context) {
	state := h.discord.GenerateState()
	c.Redirect(http.StatusFound, h.discord.AuthCodeURL(state))
}

// Callback handles the provider redirect: exchanges the code, fetches the
// profile, upserts the local user, begins a session and hands the signed
// token to the game client's loopback listener.
//
// TODO: validate the state query parameter against the value issued in
// Login; requires persisting state per login attempt.
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, "missing code")
		return
	}

	accessToken, err := h.discord.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("oauth exchange failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	profile, err := h.discord.FetchProfile(ctx, accessToken)
	if err != nil {
		h.logger.Error("profile fetch failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	result, err := h.identities.Upsert(ctx, profile)
	if err != nil {
		h.logger.Error("identity upsert failed",
			zap.String("discord_id", profile.ID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	signed, _, err := h.sessions.Begin(ctx, result.User.ID, sessionsvc.MethodDiscord)
	if err != nil {
		h.logger.Error("session begin failed",
			zap.Int64("user_id", result.User.ID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "jwt error: "+err.Error())
		return
	}

	h.logger.Info("user logged in",
		zap.Int64("user_id", result.User.ID),
		zap.String("discord_id", profile.ID),
		zap.Bool("created", result.Outcome == identity.OutcomeCreated),
	)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, signed, cookieMaxAge, "/", "", false, true)

	// Redirect to the game client's local listener with the token.
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s?jwt=%s&code=%s", h.clientCallbackURL, signed, code))
}

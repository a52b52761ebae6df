// internal/handlers/client/client_handler.go
package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realm-gateway/internal/domain/account"
	"realm-gateway/internal/middleware"
	xerrors "realm-gateway/internal/pkg/errors"
	"realm-gateway/internal/pkg/response"
	sessionsvc "realm-gateway/internal/service/session"
)

type ClientHandler struct {
	sessions   *sessionsvc.Service
	users      account.UserRepository
	identities account.IdentityRepository
	logger     *zap.Logger
}

func NewClientHandler(
	sessions *sessionsvc.Service,
	users account.UserRepository,
	identities account.IdentityRepository,
	logger *zap.Logger,
) *ClientHandler {
	return &ClientHandler{
		sessions:   sessions,
		users:      users,
		identities: identities,
		logger:     logger,
	}
}

// ---------- /me ----------

type linkedMethod struct {
	Method        string `json:"method"`
	DiscordID     string `json:"discord_id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Email         string `json:"email"`
	AvatarHash    string `json:"avatar_url_hash"`
	AvatarPNG     string `json:"avatar_url_png"`
}

type meResponse struct {
	ID            int64          `json:"id"`
	Displayname   string         `json:"displayname"`
	CreatedAt     time.Time      `json:"created_at"`
	LinkedMethods []linkedMethod `json:"linked_methods"`
}

// Me returns the authenticated user's profile with its linked
// authentication methods.
func (h *ClientHandler) Me(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthenticated")
		return
	}

	session, err := h.sessions.Resolve(c.Request.Context(), sessionID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "user not found")
			return
		}
		response.FromError(c, err)
		return
	}

	linked := []linkedMethod{}
	if ident, err := h.identities.FindByUserID(c.Request.Context(), user.ID); err == nil {
		linked = append(linked, linkedMethod{
			Method:        "discord",
			DiscordID:     ident.DiscordID,
			Username:      ident.Username,
			Discriminator: ident.Discriminator,
			Email:         ident.Email,
			AvatarHash:    ident.AvatarHash,
			AvatarPNG:     fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", ident.DiscordID, ident.AvatarHash),
		})
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		h.logger.Warn("failed to load linked methods",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	response.JSON(c, http.StatusOK, meResponse{
		ID:            user.ID,
		Displayname:   user.Displayname,
		CreatedAt:     user.CreatedAt,
		LinkedMethods: linked,
	})
}

// ---------- realm & character lists ----------

// RealmDescriptor is one entry of the realm list the game client renders
// at the server-select screen.
type RealmDescriptor struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	LocationFlag string `json:"location-flag"`
	Type         string `json:"type"`
	Population   string `json:"population"`
	Address      string `json:"address"`
}

// CharacterDescriptor is one entry of the character list.
type CharacterDescriptor struct {
	Name      string `json:"name"`
	Level     int    `json:"level"`
	Class     string `json:"class"`
	Race      string `json:"race"`
	Realm     string `json:"realm"`
	LastLogin string `json:"last_login"`
}

var defaultRealms = []RealmDescriptor{
	{
		Name:         "Example Realm 1",
		Location:     "North America / Los Angeles",
		LocationFlag: "US",
		Type:         "PvP",
		Population:   "High",
		Address:      "127.0.0.1:4242",
	},
	{
		Name:         "Example Realm 2",
		Location:     "United Kingdom / London",
		LocationFlag: "UK",
		Type:         "PvE",
		Population:   "Medium",
		Address:      "1.1.1.1:4242",
	},
}

var defaultCharacters = []CharacterDescriptor{
	{
		Name:      "HeroOne",
		Level:     60,
		Class:     "Warrior",
		Race:      "Human",
		Realm:     "Example Realm 1",
		LastLogin: "2024-01-01T12:00:00Z",
	},
	{
		Name:      "MageTwo",
		Level:     58,
		Class:     "Mage",
		Race:      "Elf",
		Realm:     "Example Realm 2",
		LastLogin: "2024-01-02T15:30:00Z",
	},
}

// RealmList returns the configured realm list.
func (h *ClientHandler) RealmList(c *gin.Context) {
	response.JSON(c, http.StatusOK, defaultRealms)
}

// CharacterList returns the character list for the session's account.
func (h *ClientHandler) CharacterList(c *gin.Context) {
	response.JSON(c, http.StatusOK, defaultCharacters)
}

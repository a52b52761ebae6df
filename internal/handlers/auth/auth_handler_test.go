package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"realm-gateway/internal/handlers/client"
	"realm-gateway/internal/middleware"
	"realm-gateway/internal/pkg/token"
	"realm-gateway/internal/repository/memory"
	"realm-gateway/internal/service/discord"
	"realm-gateway/internal/service/identity"
	sessionsvc "realm-gateway/internal/service/session"
)

const testCallbackURL = "http://localhost:54320"

// fakeDiscord stands in for Discord's token and API endpoints.
func fakeDiscord(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "test-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/api/users/@me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"111","username":"alice","discriminator":"0420","email":"alice@example.com","avatar":"abcd1234","verified":true}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// newGateway wires the full login surface against the fake provider and
// an in-memory store.
func newGateway(t *testing.T, provider *httptest.Server) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store := memory.NewStore()
	tokens := token.NewService([]byte("handler-test-secret"))

	discordClient := discord.NewClient(discord.Config{
		ClientID:     "client-id-123",
		ClientSecret: "client-secret",
		RedirectURL:  "http://gateway.test/auth/discord/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   provider.URL + "/oauth2/authorize",
			TokenURL:  provider.URL + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		APIBaseURL: provider.URL + "/api",
		HTTPClient: provider.Client(),
	}, logger)

	identities := identity.NewService(store.Users(), store.Identities(), logger)
	sessions := sessionsvc.NewService(store.Sessions(), tokens, sessionsvc.NewCache(nil, logger), logger)

	authHandler := NewAuthHandler(discordClient, identities, sessions, testCallbackURL, logger)
	clientHandler := client.NewClientHandler(sessions, store.Users(), store.Identities(), logger)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	r := gin.New()
	r.GET("/login", authHandler.Login)
	r.GET("/auth/discord/callback", authHandler.Callback)
	r.GET("/me", authMiddleware.Auth(), clientHandler.Me)
	return r
}

func TestLoginRedirectsToProvider(t *testing.T) {
	provider := fakeDiscord(t)
	r := newGateway(t, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(loc.String(), provider.URL+"/oauth2/authorize"))

	q := loc.Query()
	require.Equal(t, "client-id-123", q.Get("client_id"))
	require.Equal(t, "http://gateway.test/auth/discord/callback", q.Get("redirect_uri"))
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), q.Get("state"))
}

func TestCallbackFullFlow(t *testing.T) {
	provider := fakeDiscord(t)
	r := newGateway(t, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=test-code&state=whatever", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)

	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, testCallbackURL+"?jwt="), "unexpected redirect: %s", loc)
	require.Contains(t, loc, "code=test-code")

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "session cookie not set")
	require.True(t, sessionCookie.HttpOnly)
	require.Equal(t, 3600, sessionCookie.MaxAge)

	// The issued cookie authenticates /me.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		ID            int64  `json:"id"`
		Displayname   string `json:"displayname"`
		LinkedMethods []struct {
			Method    string `json:"method"`
			DiscordID string `json:"discord_id"`
			AvatarPNG string `json:"avatar_url_png"`
		} `json:"linked_methods"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Equal(t, "alice", me.Displayname)
	require.Len(t, me.LinkedMethods, 1)
	require.Equal(t, "discord", me.LinkedMethods[0].Method)
	require.Equal(t, "111", me.LinkedMethods[0].DiscordID)
	require.Equal(t, "https://cdn.discordapp.com/avatars/111/abcd1234.png", me.LinkedMethods[0].AvatarPNG)
}

func TestCallbackRepeatLoginReusesUser(t *testing.T) {
	provider := fakeDiscord(t)
	r := newGateway(t, provider)

	firstUser := loginAndFetchMe(t, r)
	secondUser := loginAndFetchMe(t, r)

	require.Equal(t, firstUser, secondUser)
}

func loginAndFetchMe(t *testing.T, r *gin.Engine) int64 {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=test-code", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	return me.ID
}

func TestCallbackMissingCode(t *testing.T) {
	provider := fakeDiscord(t)
	r := newGateway(t, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "missing code", w.Body.String())
}

func TestCallbackExchangeFailure(t *testing.T) {
	provider := fakeDiscord(t)
	r := newGateway(t, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=wrong-code", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "token exchange failed")
}

func TestMeWithoutSession(t *testing.T) {
	provider := fakeDiscord(t)
	r := newGateway(t, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "unauthenticated", w.Body.String())
}

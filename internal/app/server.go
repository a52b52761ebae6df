// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"realm-gateway/internal/config"
	"realm-gateway/internal/db"
	authHandler "realm-gateway/internal/handlers/auth"
	clientHandler "realm-gateway/internal/handlers/client"
	"realm-gateway/internal/middleware"
	"realm-gateway/internal/pkg/token"
	"realm-gateway/internal/repository/postgres"
	discordClient "realm-gateway/internal/service/discord"
	identityUsecase "realm-gateway/internal/service/identity"
	sessionUsecase "realm-gateway/internal/service/session"
)

type Server struct {
	cfg    config.Config
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer(cfg config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		engine: gin.New(),
		logger: logger,
	}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.Connect(ctx, s.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis (optional session cache) -----
	var cacheClient *redis.Client
	if s.cfg.CacheDSN != "" {
		cacheClient, err = db.NewRedisClient(s.cfg.CacheDSN)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("[REDIS] connected")
	}

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	identityRepo := postgres.NewIdentityRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	// ----- Services -----
	tokenService := token.NewService([]byte(s.cfg.JWTSecret))
	oauthClient := discordClient.NewClient(discordClient.Config{
		ClientID:     s.cfg.DiscordClientID,
		ClientSecret: s.cfg.DiscordClientSecret,
		RedirectURL:  s.cfg.DiscordRedirectURL,
	}, s.logger)
	identityService := identityUsecase.NewService(userRepo, identityRepo, s.logger)
	sessionCache := sessionUsecase.NewCache(cacheClient, s.logger)
	sessionService := sessionUsecase.NewService(sessionRepo, tokenService, sessionCache, s.logger)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(
		oauthClient,
		identityService,
		sessionService,
		s.cfg.ClientCallbackURL,
		s.logger,
	)
	clientHandlerInst := clientHandler.NewClientHandler(
		sessionService,
		userRepo,
		identityRepo,
		s.logger,
	)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	s.engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		Auth:           authHandlerInst,
		Client:         clientHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("listening on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

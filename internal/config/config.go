package config

import (
	"errors"
	"os"
)

// Config is built once at startup and passed by injection into every
// component. It is never mutated after Load returns.
type Config struct {
	// Server
	HTTPAddr string

	// Discord OAuth2
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURL  string

	// Token signing
	JWTSecret string

	// Datastores
	DatabaseDSN string
	CacheDSN    string

	// Where the game client's loopback listener receives the final
	// redirect after a successful login.
	ClientCallbackURL string
}

// Load reads environment variables into a Config. Missing required values
// are an error; main treats that as fatal and exits.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURL:  os.Getenv("DISCORD_REDIRECT_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		CacheDSN:    os.Getenv("CACHE_DSN"),

		ClientCallbackURL: getEnv("CLIENT_CALLBACK_URL", "http://localhost:54320"),
	}

	if cfg.DiscordClientID == "" || cfg.DiscordClientSecret == "" ||
		cfg.DiscordRedirectURL == "" || cfg.JWTSecret == "" {
		return Config{}, errors.New("DISCORD_CLIENT_ID, DISCORD_CLIENT_SECRET, DISCORD_REDIRECT_URL, and JWT_SECRET must be set")
	}

	return cfg, nil
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

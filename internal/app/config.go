package app

import (
	"github.com/yungbote/journey-backend/internal/platform/envutil"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	JWTSecretKey string

	AIHelpBaseURL string
	AIHelpAPIKey  string

	// RedisAddr switches the SSE emitter to the shared Redis bus when set.
	RedisAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:          envutil.String("PORT", "8080"),
		Environment:   envutil.String("APP_ENV", "development"),
		Version:       envutil.String("APP_VERSION", "dev"),
		JWTSecretKey:  envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AIHelpBaseURL: envutil.String("AI_HELP_BASE_URL", ""),
		AIHelpAPIKey:  envutil.String("AI_HELP_API_KEY", ""),
		RedisAddr:     envutil.String("REDIS_ADDR", ""),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set; using insecure default")
	}
	return cfg
}

package container

import (
	"cleem-api/internal/config"
	"cleem-api/internal/observability"
	"cleem-api/internal/repository"
	"cleem-api/internal/service"
	"cleem-api/internal/service/auth"
	"cleem-api/internal/service/googleauth"
	"cleem-api/internal/service/session"
	"cleem-api/pkg/database"
	"cleem-api/pkg/logger"
	"cleem-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	Metrics     *observability.Metrics
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Users       repository.UserRepository
	Sessions    *session.Issuer
	Verifier    *googleauth.Verifier
	OAuthFlow   *googleauth.OAuthFlow
	AuthService service.AuthService
	UserCache   service.UserCache
}

// New wires the application graph. Redis is optional: without a REDIS_URL
// the middleware reads straight from the store.
func New(cfg *config.Config, log *logger.Logger, db *database.PostgresDB) (*Container, error) {
	var redisClient *redis.Client
	var userCache service.UserCache
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			userCache = service.NewCacheService(client, log)
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	metrics := observability.NewMetrics()
	users := repository.NewUserRepository(db.Pool)
	sessions := session.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	verifier := googleauth.NewVerifier(cfg.GoogleClientID, log)
	oauthFlow := googleauth.NewOAuthFlow(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	authService := auth.NewService(verifier, users, sessions, userCache, metrics, log)

	return &Container{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics,
		DB:          db,
		RedisClient: redisClient,
		Users:       users,
		Sessions:    sessions,
		Verifier:    verifier,
		OAuthFlow:   oauthFlow,
		AuthService: authService,
		UserCache:   userCache,
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetMetrics returns the metrics handle
func (c *Container) GetMetrics() *observability.Metrics {
	return c.Metrics
}

// GetDB returns the database handle
func (c *Container) GetDB() *database.PostgresDB {
	return c.DB
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// GetUsers returns the user repository
func (c *Container) GetUsers() repository.UserRepository {
	return c.Users
}

// GetSessions returns the session issuer
func (c *Container) GetSessions() *session.Issuer {
	return c.Sessions
}

// GetOAuthFlow returns the browser OAuth flow
func (c *Container) GetOAuthFlow() *googleauth.OAuthFlow {
	return c.OAuthFlow
}

// GetAuthService returns the sign-in orchestrator
func (c *Container) GetAuthService() service.AuthService {
	return c.AuthService
}

// GetUserCache returns the user cache (may be nil if Redis is unavailable)
func (c *Container) GetUserCache() service.UserCache {
	return c.UserCache
}

package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/fieldcrew/marketplace-api/internal/application/auth"
	"github.com/fieldcrew/marketplace-api/internal/config"
	"github.com/fieldcrew/marketplace-api/internal/infrastructure/db/postgres"
	"github.com/fieldcrew/marketplace-api/internal/infrastructure/memory"
	rabbitmq_pub "github.com/fieldcrew/marketplace-api/internal/infrastructure/messaging/rabbitmq"
	"github.com/fieldcrew/marketplace-api/internal/infrastructure/redis"
	"github.com/fieldcrew/marketplace-api/internal/infrastructure/security"
	"github.com/fieldcrew/marketplace-api/internal/logger"
	http_handlers "github.com/fieldcrew/marketplace-api/internal/transport/http/handlers"
	"github.com/fieldcrew/marketplace-api/internal/transport/http/middleware"
	"github.com/fieldcrew/marketplace-api/internal/transport/http/response"
	"github.com/fieldcrew/marketplace-api/internal/transport/http/router"
)

// jwtIssuer is stamped into every session token this service signs.
const jwtIssuer = "marketplace-api"

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string) (*sql.DB, error)

	// NewRedis is only consulted when REDIS_ADDR is set.
	NewRedis func(addr string) *redis.Client

	// NewPublisher is only consulted when RABBIT_URL is set.
	NewPublisher func(rabbitURL string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

// Publisher is what the auth service needs from an event sink, plus
// whatever lifecycle the concrete implementation carries.
type Publisher interface {
	auth.EventPublisher
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	// dev convenience; deployed environments run migrations out of band
	if cfg.Env == "dev" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := postgres.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	accountRepo := postgres.NewAccountRepo(db)

	// 2) redis (best-effort; rate limiting fails open without it)
	var limiter *redis.FixedWindowLimiter
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; rate limiting disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			limiter = redis.NewFixedWindowLimiter(c)
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) publisher
	var pub auth.EventPublisher = memory.NewNoopPublisher()
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			} else {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		} else {
			pub = p
			if c, ok := p.(interface{ Close() error }); ok {
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
		}
	}

	// 4) security
	logger.Logger.Info().Str("issuer", jwtIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, jwtIssuer)

	// 5) service
	authSvc := auth.NewService(
		accountRepo,
		hasher,
		signer,
		pub,
		auth.Config{
			TokenTTL:      cfg.SessionTokenTTL,
			LockThreshold: cfg.LockThreshold,
			LockDuration:  cfg.LockDuration,
		},
	)

	authSvc = authSvc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	// 6) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc)
	healthH := http_handlers.NewHealthHandler(db)

	sessionMW := middleware.SessionGuard(signer, middleware.DefaultExtractors(), response.WriteError)

	rl := func(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
		if limiter == nil {
			return nil
		}
		return middleware.RateLimit(
			limiter,
			middleware.RouteLimit{Name: name, Limit: limit, Window: window},
			response.WriteError,
		)
	}

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    healthH,
		Auth:      authH,
		SessionMW: sessionMW,

		RegisterLimitMW: rl("users.register", 3, time.Minute),
		LoginLimitMW:    rl("users.login", 5, time.Minute),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(dsn string) (*sql.DB, error) {
			return config.NewDB(dsn)
		},
		NewRedis: func(addr string) *redis.Client {
			return redis.New(addr, "", 0)
		},
		NewPublisher: func(url string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

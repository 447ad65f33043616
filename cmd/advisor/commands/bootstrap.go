package commands

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/engine"
	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
	"github.com/wonny/aegis-advisor/backend/internal/service"
	"github.com/wonny/aegis-advisor/backend/pkg/config"
	"github.com/wonny/aegis-advisor/backend/pkg/database"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
	"github.com/wonny/aegis-advisor/backend/pkg/redis"
)

// app holds the wired dependencies shared by commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // nil in memory mode
	redis   *redis.Client
	engine  *engine.Engine
	store   contracts.SignalLogStore
	signals *s5_signallog.Service
	svc     *service.RecommendationService
}

// bootstrap loads config and wires engine, stores and caches.
// Without DATABASE_URL the signal log lives in memory for the process lifetime.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if scoringConfig != "" {
		cfg.Scoring.ConfigPath = scoringConfig
	}

	log := logger.New(cfg)

	scoreCfg, err := scoreconfig.LoadOrDefault(cfg.Scoring.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	eng, err := engine.New(scoreCfg, log.WithComponent("engine"))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, engine: eng}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := s5_signallog.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure signal log schema: %w", err)
		}
		a.db = db
		a.store = s5_signallog.NewPostgresStore(db.Pool)
		log.WithField("database", maskPassword(cfg.Database.URL)).Info("Connected to database")
	} else {
		a.store = s5_signallog.NewMemoryStore()
		log.Warn("DATABASE_URL not set, signal log kept in memory")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc

	a.signals = s5_signallog.NewService(a.store, log.WithComponent("signallog"), cfg.SignalLog.DedupWindowDays)
	a.svc = service.NewRecommendationService(eng, redis.NewCache(rc, "advisor"), a.signals, log.WithComponent("recommendation"), service.Options{
		CacheTTL:         cfg.Redis.RecommendationTTL,
		BatchConcurrency: cfg.Scoring.BatchConcurrency,
	})

	log.WithFields(map[string]interface{}{
		"config_hash": eng.ConfigHash()[:12],
		"redis":       rc.Enabled(),
		"database":    a.db != nil,
	}).Debug("Advisor initialized")

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

// scopeFlags binds --portfolio / --user on a command
type scopeFlags struct {
	portfolio string
	user      string
}

func (f *scopeFlags) scope() (contracts.Scope, error) {
	s := contracts.Scope{PortfolioID: f.portfolio, UserID: f.user}
	if s.IsZero() {
		return s, fmt.Errorf("--portfolio or --user is required")
	}
	return s, nil
}

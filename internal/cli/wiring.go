package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"learnhub/internal/app"
	"learnhub/internal/config"
	"learnhub/internal/infra/memory"
	pgstore "learnhub/internal/infra/postgres"
	redisstore "learnhub/internal/infra/redis"
)

const (
	defaultCacheTTL       = 10 * time.Minute
	defaultTokenTTL       = 24 * time.Hour
	defaultPersistTimeout = 5 * time.Second
)

// services is everything the commands need, built for the configured storage driver.
type services struct {
	learning *app.LearningService
	auth     *app.AuthService
	users    app.UserStore
	closers  []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildServices(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*services, error) {
	svc := &services{}
	ok := false
	defer func() {
		if !ok {
			svc.Close()
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, func() { _ = redisClient.Close() })
	}

	var (
		content app.ContentRepository
		gateway app.PersistenceGateway
	)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db := pgstore.OpenBun(cfg.Postgres.URL)
		svc.closers = append(svc.closers, func() { _ = db.Close() })
		applied, err := pgstore.Migrate(ctx, db)
		if err != nil {
			return nil, err
		}
		if len(applied) > 0 {
			log.WithField("migrations", applied).Info("migrations applied")
		}

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		svc.closers = append(svc.closers, pool.Close)

		content = pgstore.NewContentStore(pool)
		gateway = pgstore.NewProgressGateway(db)
		svc.users = pgstore.NewUserStore(db)
	default:
		demoUsers, err := memory.DemoUsers(bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		content = memory.NewContentStore(memory.DemoLessons(), memory.DemoQuizzes())
		svc.users = memory.NewUserStore(demoUsers...)
		if cfg.Storage.Driver == config.DriverRedis {
			gateway = redisstore.NewProgressGateway(redisClient)
		} else {
			gateway = memory.NewProgressGateway()
		}
	}

	cacheTTL := config.TTLDuration(cfg.Content.CacheTTL, defaultCacheTTL)
	if redisClient != nil {
		content = redisstore.NewCachedContent(redisClient, content, cacheTTL)
	} else {
		content = memory.NewCachedContent(content, cacheTTL)
	}

	svc.learning = app.NewLearningService(content, gateway, log)
	svc.auth = app.NewAuthService(svc.users, cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, defaultTokenTTL), log)
	log.WithFields(logrus.Fields{
		"driver":    cfg.Storage.Driver,
		"cache":     cacheKind(redisClient),
		"cache_ttl": cacheTTL.String(),
	}).Info("storage ready")
	ok = true
	return svc, nil
}

func cacheKind(client *redis.Client) string {
	if client != nil {
		return "redis"
	}
	return "memory"
}

// seedDemo loads the demo accounts and content into Postgres, skipping rows that already exist.
func seedDemo(ctx context.Context, db *bun.DB, pool *pgxpool.Pool, log logrus.FieldLogger) error {
	users, err := memory.DemoUsers(bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := pgstore.NewUserStore(db).SeedUsers(ctx, users); err != nil {
		return err
	}

	content := pgstore.NewContentStore(pool)
	seeded := 0
	for _, l := range memory.DemoLessons() {
		if _, err := content.GetLesson(ctx, l.ID); err == nil {
			continue
		}
		if _, err := content.CreateLesson(ctx, l); err != nil {
			return fmt.Errorf("seed lesson %s: %w", l.ID, err)
		}
		seeded++
	}
	for _, q := range memory.DemoQuizzes() {
		if _, err := content.GetQuiz(ctx, q.ID); err == nil {
			continue
		}
		if _, err := content.CreateQuiz(ctx, q); err != nil {
			return fmt.Errorf("seed quiz %s: %w", q.ID, err)
		}
		seeded++
	}
	log.WithFields(logrus.Fields{"users": len(users), "content": seeded}).Info("demo data seeded")
	return nil
}

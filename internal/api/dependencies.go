package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
	"helping-hands/shiftdesk/internal/services"
)

// userCacheTTL bounds how stale a cached role or credit balance may be.
const userCacheTTL = 30 * time.Second

type Repositories struct {
	Users       *repositories.UserRepositoryGORM
	Shifts      *repositories.ShiftRepository
	Commitments *repositories.CommitmentRepository
	Reports     *repositories.ReportRepository
}

type Services struct {
	Cache       common.CacheInterface
	RedisQueue  *common.RedisQueueService // nil when Redis is disabled
	Users       *services.UserDirectory
	Shifts      *services.ShiftService
	Commitments *services.CommitmentService
	Coverage    *services.CoverageService
	Dispatcher  *services.NotificationDispatcher
	Tokens      *auth.TokenSigner
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
	Redis    *redis.Client
	Config   *config.Config
}

// InitDependencies wires repositories and services. redisClient may be nil,
// in which case the in-memory cache and the log notifier are used.
func InitDependencies(
	cfg *config.Config,
	orm *gorm.DB,
	sqlxDB *sqlx.DB,
	redisClient *redis.Client,
	metricsReg *metrics.MetricsRegistry,
) (*Dependencies, error) {

	repos := &Repositories{
		Users:       repositories.NewUserRepositoryGORM(orm),
		Shifts:      repositories.NewShiftRepository(orm),
		Commitments: repositories.NewCommitmentRepository(orm),
		Reports:     repositories.NewReportRepository(sqlxDB),
	}

	var (
		cache      common.CacheInterface
		redisQueue *common.RedisQueueService
		notifier   services.Notifier
	)
	if redisClient != nil {
		cache = common.NewRedisCacheService(redisClient)
		redisQueue = common.NewRedisQueueService(redisClient)
		notifier = services.NewRedisStreamNotifier(redisQueue)
		logging.Info("Using Redis for user cache and shift notifications")
	} else {
		cache = common.NewCacheService(userCacheTTL, 2*userCacheTTL)
		notifier = services.LogNotifier{}
		logging.Info("Redis disabled, using in-memory cache and log notifier")
	}

	users := services.NewUserDirectory(repos.Users, cache, userCacheTTL, metricsReg)
	dispatcher := services.NewNotificationDispatcher(
		notifier,
		users,
		cfg.Notifications.FrontendURL,
		cfg.Notifications.DispatchTimeout,
		metricsReg,
	)
	detector := services.NewOverlapDetector(orm, repos.Shifts, metricsReg)

	svcs := &Services{
		Cache:      cache,
		RedisQueue: redisQueue,
		Users:      users,
		Shifts: services.NewShiftService(
			orm, repos.Shifts, repos.Commitments, users, dispatcher, metricsReg, cfg.Shifts.StrictValidation,
		),
		Commitments: services.NewCommitmentService(
			orm, repos.Shifts, repos.Commitments, repos.Users, users, users, detector, metricsReg, cfg.Shifts.CancellationWindow,
		),
		Coverage:   services.NewCoverageService(repos.Shifts, repos.Commitments),
		Dispatcher: dispatcher,
		Tokens:     auth.NewTokenSigner([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
		Redis:    redisClient,
		Config:   cfg,
	}, nil
}

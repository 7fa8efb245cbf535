package di

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/vest-service/vest_service/internal/domain/services/investment"
	"github.com/vest-service/vest_service/internal/domain/services/plans"
	"github.com/vest-service/vest_service/internal/infrastructure/adapters"
	"github.com/vest-service/vest_service/internal/infrastructure/cache"
	"github.com/vest-service/vest_service/internal/infrastructure/config"
	"github.com/vest-service/vest_service/internal/infrastructure/repositories"
	"github.com/vest-service/vest_service/pkg/logger"
)

// Container wires repositories, adapters and domain services
type Container struct {
	Config *config.Config
	DB     *sql.DB
	Logger *logger.Logger
	ZapLog *zap.Logger

	// Repositories
	PlanRepo       *repositories.PlanRepository
	UserRepo       *repositories.UserRepository
	InvestmentRepo *repositories.InvestmentRepository

	// External services
	EmailService *adapters.EmailService
	RedisClient  cache.RedisClient

	// Domain services
	PlanService       *plans.Service
	InvestmentService *investment.Service
}

// NewContainer creates a fully wired dependency container
func NewContainer(cfg *config.Config, db *sql.DB, log *logger.Logger) (*Container, error) {
	zapLog := log.Zap()

	// Wrap sql.DB with sqlx for the transaction repository
	sqlxDB := sqlx.NewDb(db, "postgres")

	// Initialize repositories
	planRepo := repositories.NewPlanRepository(db, zapLog)
	userRepo := repositories.NewUserRepository(db, zapLog)
	investmentRepo := repositories.NewInvestmentRepository(sqlxDB, zapLog)

	// Initialize email service
	emailService, err := adapters.NewEmailService(zapLog, adapters.EmailServiceConfig{
		Provider:     cfg.Email.Provider,
		APIKey:       cfg.Email.APIKey,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
		Environment:  cfg.Environment,
		ReplyTo:      cfg.Email.ReplyTo,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		SMTPUseTLS:   cfg.Email.SMTPUseTLS,
	})
	if err != nil {
		return nil, err
	}

	// Redis is optional. A failed connection degrades to uncached
	// reads instead of failing startup.
	var redisClient cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cfg.Redis, zapLog)
		if err != nil {
			log.Warn("redis unavailable, plan cache disabled", "error", err)
			redisClient = nil
		}
	}

	// Initialize domain services
	planService := plans.NewService(
		planRepo,
		redisClient,
		time.Duration(cfg.Cache.PlanTTL)*time.Second,
		log,
	)
	investmentService := investment.NewService(
		investmentRepo,
		userRepo,
		planService,
		emailService,
		cfg.Admin.AlertEmail,
		log,
	)

	return &Container{
		Config:            cfg,
		DB:                db,
		Logger:            log,
		ZapLog:            zapLog,
		PlanRepo:          planRepo,
		UserRepo:          userRepo,
		InvestmentRepo:    investmentRepo,
		EmailService:      emailService,
		RedisClient:       redisClient,
		PlanService:       planService,
		InvestmentService: investmentService,
	}, nil
}

// GetPlanService returns the plan management service
func (c *Container) GetPlanService() *plans.Service {
	return c.PlanService
}

// GetInvestmentService returns the investment lifecycle service
func (c *Container) GetInvestmentService() *investment.Service {
	return c.InvestmentService
}

// Close releases container-held connections other than the database,
// which the shutdown manager owns
func (c *Container) Close() error {
	if c.RedisClient != nil {
		return c.RedisClient.Close()
	}
	return nil
}

// Shutdown implements the graceful shutdown contract
func (c *Container) Shutdown(time.Duration) error {
	return c.Close()
}

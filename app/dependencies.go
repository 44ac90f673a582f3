package app

import (
	"context"
	"fmt"

	"github.com/polite-web/polite-backend/config"
	"github.com/polite-web/polite-backend/handlers"
	"github.com/polite-web/polite-backend/internal/observability"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/repositories/postgres"
	"github.com/polite-web/polite-backend/services/classifier"
	"github.com/polite-web/polite-backend/services/moderation"
	"github.com/polite-web/polite-backend/services/post"
	"github.com/polite-web/polite-backend/services/reaction"
	"github.com/polite-web/polite-backend/services/reward"
	"github.com/polite-web/polite-backend/services/rewriter"
	"github.com/polite-web/polite-backend/services/rewriter/openai"
	"github.com/polite-web/polite-backend/services/user"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Model gateways
	Classifier *classifier.Service
	Rewriter   *rewriter.Service

	// Services
	Moderation *moderation.Service
	Posts      *post.Service
	Users      *user.Service
	Rewards    *reward.Service
	Reactions  *reaction.Service
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize model gateways
	if err := deps.initGateways(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize model gateways: %w", err)
	}

	// Initialize domain services
	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	d.Repos = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()
	d.Logger.Info("repositories initialized")
}

// initGateways builds the admission-gated model gateways. Each model handle
// is constructed once here and shared for the life of the process.
func (d *Dependencies) initGateways(cfg *config.Config) error {
	classifierModel := classifier.NewHTTPModel(cfg.Inference.ClassifierURL, cfg.Inference.Timeout)
	d.Classifier = classifier.NewService(classifierModel,
		cfg.Inference.ClassifierConcurrency, cfg.Inference.Blocklist, d.Logger)

	rewriterModel, err := openai.NewAdapter(openai.Config{
		APIKey:  cfg.Inference.OpenAI.APIKey,
		BaseURL: cfg.Inference.OpenAI.BaseURL,
		Model:   cfg.Inference.OpenAI.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create rewriter adapter: %w", err)
	}
	d.Rewriter = rewriter.NewService(rewriterModel, cfg.Inference.RewriterConcurrency, d.Logger)

	d.Logger.Info("model gateways initialized",
		zap.Int64("classifier_concurrency", cfg.Inference.ClassifierConcurrency),
		zap.Int64("rewriter_concurrency", cfg.Inference.RewriterConcurrency))
	return nil
}

// initServices initializes the domain services
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Moderation = moderation.NewService(
		d.Repos.Posts, d.Repos.Comments, d.Repos.Interventions, d.TxManager,
		d.Classifier, d.Rewriter, d.Metrics, d.Logger)
	d.Posts = post.NewService(d.Repos.Posts, d.Logger)
	d.Users = user.NewService(d.Repos.Users, d.Logger)
	d.Rewards = reward.NewService(d.Repos.Comments, d.Repos.Rewards, d.Repos.Users, d.Repos.Posts,
		reward.RedeemInfo{
			OpenchatURL:      cfg.Reward.OpenchatURL,
			OpenchatPassword: cfg.Reward.OpenchatPassword,
		}, d.Logger)
	d.Reactions = reaction.NewService(d.Repos.Reactions, d.Repos.Comments, d.Logger)

	d.Logger.Info("services initialized")
}

// Handlers builds the HTTP handler set over the wired services.
func (d *Dependencies) Handlers() *HandlerSet {
	return &HandlerSet{
		Health:        handlers.NewHealthHandler(d.DB.DB, d.Logger),
		Comments:      handlers.NewCommentHandler(d.Moderation, d.Logger),
		Interventions: handlers.NewInterventionHandler(d.Moderation, d.Logger),
		Posts:         handlers.NewPostHandler(d.Posts, d.Logger),
		Users:         handlers.NewUserHandler(d.Users, d.Logger),
		Rewards:       handlers.NewRewardHandler(d.Rewards, d.Logger),
		Reactions:     handlers.NewReactionHandler(d.Reactions, d.Logger),
		Models:        handlers.NewModelHandler(d.Classifier, d.Rewriter, d.Metrics, d.Logger),
	}
}

// HandlerSet groups the HTTP handlers for route wiring.
type HandlerSet struct {
	Health        *handlers.HealthHandler
	Comments      *handlers.CommentHandler
	Interventions *handlers.InterventionHandler
	Posts         *handlers.PostHandler
	Users         *handlers.UserHandler
	Rewards       *handlers.RewardHandler
	Reactions     *handlers.ReactionHandler
	Models        *handlers.ModelHandler
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

package app

import (
	"context"
	"testing"
	"time"

	"github.com/polite-web/polite-backend/config"
	"github.com/polite-web/polite-backend/repositories/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewDependencies(t *testing.T) {
	t.Run("successful initialization with all components", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig()
		logger := zaptest.NewLogger(t)

		// Skip if database not available
		if !isDatabaseAvailable(cfg) {
			t.Skip("database not available")
		}

		deps, err := NewDependencies(ctx, cfg, logger)
		require.NoError(t, err)
		require.NotNil(t, deps)

		// Verify infrastructure
		assert.NotNil(t, deps.Config)
		assert.NotNil(t, deps.DB)
		assert.NotNil(t, deps.Logger)
		assert.NotNil(t, deps.Metrics)

		// Verify repositories
		assert.NotNil(t, deps.Repos)
		assert.NotNil(t, deps.TxManager)

		// Verify gateways and services
		assert.NotNil(t, deps.Classifier)
		assert.NotNil(t, deps.Rewriter)
		assert.NotNil(t, deps.Moderation)
		assert.NotNil(t, deps.Posts)
		assert.NotNil(t, deps.Users)
		assert.NotNil(t, deps.Rewards)
		assert.NotNil(t, deps.Reactions)

		// Handlers build against the wired services
		h := deps.Handlers()
		assert.NotNil(t, h.Health)
		assert.NotNil(t, h.Comments)
		assert.NotNil(t, h.Models)

		// Cleanup
		err = deps.Close(ctx)
		assert.NoError(t, err)
	})

	t.Run("database connection failure", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig()
		cfg.Database.Host = "invalid-host-that-does-not-exist"
		logger := zaptest.NewLogger(t)

		deps, err := NewDependencies(ctx, cfg, logger)
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

func TestDependenciesClose(t *testing.T) {
	t.Run("graceful shutdown", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig()
		logger := zaptest.NewLogger(t)

		// Skip if database not available
		if !isDatabaseAvailable(cfg) {
			t.Skip("database not available")
		}

		deps, err := NewDependencies(ctx, cfg, logger)
		require.NoError(t, err)
		require.NotNil(t, deps)

		// Close should succeed
		err = deps.Close(ctx)
		assert.NoError(t, err)

		// Second close should not panic
		_ = deps.Close(ctx)
	})
}

// Test helpers

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "polite",
			Password:        "polite",
			Database:        "polite_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Inference: config.InferenceConfig{
			ClassifierURL:         "http://localhost:9000",
			ClassifierConcurrency: 1,
			RewriterConcurrency:   2,
			Timeout:               5 * time.Second,
			OpenAI: config.OpenAIConfig{
				APIKey: "test-key",
				Model:  "gpt-4o-mini",
			},
		},
		Observability: config.ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}

func isDatabaseAvailable(cfg *config.Config) bool {
	factory, err := postgres.NewRepositoryFactory(cfg, zap.NewNop())
	if err != nil {
		return false
	}
	defer factory.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return factory.GetDB().PingContext(ctx) == nil
}

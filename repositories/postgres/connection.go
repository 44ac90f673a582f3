package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/polite-web/polite-backend/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		DO $$ BEGIN
			CREATE TYPE policy_mode AS ENUM ('block', 'polite_one_edit', 'nofilter');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;

		DO $$ BEGIN
			CREATE TYPE final_source AS ENUM ('original', 'polite', 'user_edit', 'blocked', 'nofilter');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;

		DO $$ BEGIN
			CREATE TYPE decision_rule AS ENUM ('none', 'forced_accept_one_edit');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;

		DO $$ BEGIN
			CREATE TYPE final_choice_hint AS ENUM ('unknown', 'polite', 'user_edit', 'original');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;

		DO $$ BEGIN
			CREATE TYPE reaction_type AS ENUM ('like', 'hate');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;

		-- Users table
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		-- Posts table (per-post moderation policy)
		CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			content TEXT,
			password_hash VARCHAR(200),
			policy_mode policy_mode NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		-- Sub-posts table (article sections 1..3)
		CREATE TABLE IF NOT EXISTS sub_posts (
			id BIGSERIAL PRIMARY KEY,
			post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			ord SMALLINT NOT NULL CHECK (ord IN (1, 2, 3)),
			template_key VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (post_id, ord)
		);

		-- Comments table (final submission outcomes)
		CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			sub_post_id BIGINT REFERENCES sub_posts(id) ON DELETE CASCADE,
			article_ord SMALLINT,
			parent_comment_id BIGINT REFERENCES comments(id) ON DELETE CASCADE,
			text_original TEXT,
			text_generated_polite TEXT,
			text_user_edit TEXT,
			text_final TEXT,
			final_source final_source NOT NULL,
			was_edited BOOLEAN NOT NULL DEFAULT false,
			original_logit DOUBLE PRECISION,
			edit_logit DOUBLE PRECISION,
			final_logit DOUBLE PRECISION,
			threshold_applied DOUBLE PRECISION,
			attempts_count INTEGER NOT NULL DEFAULT 1,
			submit_success BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ,
			is_deleted BOOLEAN NOT NULL DEFAULT false,
			deleted_at TIMESTAMPTZ
		);

		-- Intervention events table (pre-submission telemetry)
		CREATE TABLE IF NOT EXISTS intervention_events (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			post_id BIGINT NOT NULL REFERENCES posts(id),
			article_ord SMALLINT NOT NULL CHECK (article_ord IN (1, 2, 3)),
			temp_uuid VARCHAR(64) NOT NULL,
			attempt_no INTEGER NOT NULL DEFAULT 1 CHECK (attempt_no > 0),
			original_logit DOUBLE PRECISION NOT NULL,
			threshold_applied DOUBLE PRECISION NOT NULL,
			shown_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			latency_ms INTEGER,
			action_applied VARCHAR(7) NOT NULL DEFAULT 'none',
			generated_polite_text TEXT,
			user_edit_text TEXT,
			edit_logit DOUBLE PRECISION,
			decision_rule_applied decision_rule NOT NULL DEFAULT 'none',
			final_choice_hint final_choice_hint NOT NULL DEFAULT 'unknown'
		);

		-- Reactions table
		CREATE TABLE IF NOT EXISTS reactions (
			id BIGSERIAL PRIMARY KEY,
			comment_id BIGINT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
			user_id VARCHAR(128) NOT NULL,
			reaction_type reaction_type NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ,
			UNIQUE (comment_id, user_id, reaction_type)
		);

		-- Reward claims table. The user_id uniqueness constraint is the
		-- backstop against double granting under concurrent claims.
		CREATE TABLE IF NOT EXISTS reward_claims (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			claimed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			status VARCHAR(20) NOT NULL DEFAULT 'granted'
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id);
		CREATE INDEX IF NOT EXISTS idx_comments_sub_post_id ON comments(sub_post_id);
		CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_comment_id);
		CREATE INDEX IF NOT EXISTS idx_comments_is_deleted ON comments(is_deleted);
		CREATE INDEX IF NOT EXISTS idx_sub_posts_post_id ON sub_posts(post_id);
		CREATE INDEX IF NOT EXISTS idx_reactions_comment_id ON reactions(comment_id);
		CREATE INDEX IF NOT EXISTS idx_reactions_user_id ON reactions(user_id);
		CREATE INDEX IF NOT EXISTS idx_intervention_events_post ON intervention_events(post_id);
		CREATE INDEX IF NOT EXISTS idx_reward_claims_post_id ON reward_claims(post_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"go.uber.org/zap"
)

// InterventionRepository implements the repositories.InterventionRepository interface
type InterventionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewInterventionRepository creates a new intervention repository
func NewInterventionRepository(db *DB, logger *zap.Logger) repositories.InterventionRepository {
	return &InterventionRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends an intervention event
func (r *InterventionRepository) Insert(ctx context.Context, event *models.InterventionEvent) error {
	query := `
		INSERT INTO intervention_events (
			user_id, post_id, article_ord, temp_uuid, attempt_no,
			original_logit, threshold_applied, shown_at, latency_ms,
			action_applied, generated_polite_text, user_edit_text, edit_logit,
			decision_rule_applied, final_choice_hint
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		event.UserID,
		event.PostID,
		event.Section,
		event.TempUUID,
		event.AttemptNo,
		event.OriginalLogit,
		event.ThresholdApplied,
		event.ShownAt,
		event.LatencyMs,
		event.ActionApplied,
		event.GeneratedPoliteText,
		event.UserEditText,
		event.EditLogit,
		event.DecisionRuleApplied,
		event.FinalChoiceHint,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to insert intervention event: %w", err)
	}

	r.logger.Debug("intervention event logged",
		zap.Int64("id", event.ID),
		zap.Int64("post_id", event.PostID))
	return nil
}

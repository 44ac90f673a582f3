package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/polite-web/polite-backend/internal/observability"
	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"go.uber.org/zap"
)

// Classifier scores a text against a threshold. Over-threshold is strict
// (score > threshold).
type Classifier interface {
	Classify(ctx context.Context, text string, threshold float64) (over bool, score float64, err error)
}

// Rewriter produces a polite rendition of a text.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// submissionState is a step of the submission state machine. The flow is a
// fixed-depth machine, not a retry loop: one edit, then a forced decision,
// bounding every submission to at most three classifier calls and one
// rewrite call.
type submissionState int

const (
	stateScoring submissionState = iota
	stateDeciding
	stateRewriting
	stateScoringEdit
	stateFinalizing
	stateDone
)

// Service orchestrates comment submissions through classification, policy
// resolution and optional rewriting, and owns comment reads and soft deletes.
type Service struct {
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	interventions repositories.InterventionRepository
	txManager     repositories.TransactionManager
	classifier    Classifier
	rewriter      Rewriter
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewService creates a new moderation service
func NewService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	interventions repositories.InterventionRepository,
	txManager repositories.TransactionManager,
	classifier Classifier,
	rewriter Rewriter,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		posts:         posts,
		comments:      comments,
		interventions: interventions,
		txManager:     txManager,
		classifier:    classifier,
		rewriter:      rewriter,
		metrics:       metrics,
		logger:        logger,
	}
}

// SuggestRequest asks for a moderation preview without persisting anything.
type SuggestRequest struct {
	PostID  int64
	Section int
	Text    string
}

// SuggestResult is the preview decision shown to the user before they submit.
type SuggestResult struct {
	PolicyMode       models.PolicyMode `json:"policy_mode"`
	OverThreshold    bool              `json:"over_threshold"`
	ThresholdApplied float64           `json:"threshold_applied"`
	Logit            *float64          `json:"logit,omitempty"`
	PoliteText       *string           `json:"polite_text,omitempty"`
	Message          string            `json:"message,omitempty"`
}

// SubmitRequest is one comment submission. TextUserEdit is present only when
// the user chose to revise after seeing the rewritten suggestion; at most one
// edit attempt is modeled. GeneratedPoliteText carries an already-generated
// suggestion so the rewrite call can be skipped.
type SubmitRequest struct {
	PostID              int64
	Section             int
	UserID              int64
	TextOriginal        string
	TextUserEdit        *string
	GeneratedPoliteText *string
	ParentCommentID     *int64
}

// submission carries the working state of one pass through the machine.
type submission struct {
	req  *SubmitRequest
	post *models.Post
	sub  *models.SubPost

	original Evaluation
	edit     *Evaluation
	decision Decision

	politeText *string
	finalText  *string
	finalLogit *float64
}

// Suggest previews the moderation decision for text without persisting. It
// rejects on missing post or section like Submit does.
func (s *Service) Suggest(ctx context.Context, req *SuggestRequest) (*SuggestResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, services.ErrEmptyText
	}
	if req.Section < models.SectionMin || req.Section > models.SectionMax {
		return nil, services.ErrInvalidSection
	}

	post, err := s.loadPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireSubPost(ctx, req.PostID, req.Section); err != nil {
		return nil, err
	}

	over, score, err := s.classifier.Classify(ctx, req.Text, post.Threshold)
	if err != nil {
		return nil, s.noteInferenceError(err)
	}

	s.metrics.RecordSuggestion()

	// The raw score stays server side except in nofilter mode, where the
	// client renders it directly.
	res := &SuggestResult{
		PolicyMode:       post.PolicyMode,
		OverThreshold:    over,
		ThresholdApplied: post.Threshold,
	}

	switch post.PolicyMode {
	case models.PolicyModeBlock:
		if over {
			res.Message = "comment would be blocked; revise and retry"
		} else {
			res.Message = "comment passes"
		}
	case models.PolicyModeNoFilter:
		res.Logit = &score
		res.Message = "no filtering on this post"
	default: // polite_one_edit
		if over {
			polite, err := s.rewriter.Rewrite(ctx, req.Text)
			if err != nil {
				return nil, s.noteInferenceError(err)
			}
			res.PoliteText = &polite
		} else {
			res.Message = "comment passes"
		}
	}

	return res, nil
}

// Submit drives one comment submission through the state machine:
// score the original, decide, optionally rewrite and rescore, then persist
// the immutable outcome. Either the full outcome commits or nothing is
// written.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*models.Comment, error) {
	if strings.TrimSpace(req.TextOriginal) == "" {
		return nil, services.ErrEmptyText
	}
	if req.Section < models.SectionMin || req.Section > models.SectionMax {
		return nil, services.ErrInvalidSection
	}

	post, err := s.loadPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	sub, err := s.requireSubPost(ctx, req.PostID, req.Section)
	if err != nil {
		return nil, err
	}
	if err := s.assertUserLock(ctx, req.UserID, req.PostID); err != nil {
		return nil, err
	}

	sm := &submission{req: req, post: post, sub: sub}

	var comment *models.Comment
	state := stateScoring
	for state != stateDone {
		switch state {
		case stateScoring:
			over, score, err := s.classifier.Classify(ctx, req.TextOriginal, post.Threshold)
			if err != nil {
				return nil, s.noteInferenceError(err)
			}
			sm.original = Evaluation{Over: over, Score: score}
			state = stateDeciding

		case stateDeciding:
			d := Resolve(post.PolicyMode, sm.original, nil)
			if !d.NeedsPolite {
				sm.decision = d
				state = stateFinalizing
				break
			}
			if req.TextUserEdit == nil {
				state = stateRewriting
			} else {
				state = stateScoringEdit
			}

		case stateRewriting:
			if err := s.ensurePoliteText(ctx, sm); err != nil {
				return nil, err
			}
			if err := s.scorePolite(ctx, sm); err != nil {
				return nil, err
			}
			sm.decision = Resolve(post.PolicyMode, sm.original, nil)
			state = stateFinalizing

		case stateScoringEdit:
			// The polite rendition is produced before the edit is judged so
			// the stored row carries it either way.
			if err := s.ensurePoliteText(ctx, sm); err != nil {
				return nil, err
			}
			over, score, err := s.classifier.Classify(ctx, *req.TextUserEdit, post.Threshold)
			if err != nil {
				return nil, s.noteInferenceError(err)
			}
			sm.edit = &Evaluation{Over: over, Score: score}
			sm.decision = Resolve(post.PolicyMode, sm.original, sm.edit)
			if sm.decision.FinalSource != models.FinalSourceUserEdit {
				if err := s.scorePolite(ctx, sm); err != nil {
					return nil, err
				}
			}
			state = stateFinalizing

		case stateFinalizing:
			comment = s.buildComment(sm)
			err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
				return s.comments.Create(txCtx, comment)
			})
			if err != nil {
				return nil, services.NewDomainError(services.ErrorTypeInternal,
					"failed to persist submission outcome", err)
			}
			state = stateDone
		}
	}

	s.metrics.RecordSubmission(string(comment.FinalSource))
	s.logger.Info("submission finalized",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("post_id", req.PostID),
		zap.String("final_source", string(comment.FinalSource)),
		zap.Bool("submit_success", comment.SubmitSuccess))

	return comment, nil
}

// ensurePoliteText fills sm.politeText, preferring the caller-supplied
// pre-generated suggestion over a fresh rewrite call.
func (s *Service) ensurePoliteText(ctx context.Context, sm *submission) error {
	if sm.politeText != nil {
		return nil
	}
	if sm.req.GeneratedPoliteText != nil && strings.TrimSpace(*sm.req.GeneratedPoliteText) != "" {
		sm.politeText = sm.req.GeneratedPoliteText
		return nil
	}
	polite, err := s.rewriter.Rewrite(ctx, sm.req.TextOriginal)
	if err != nil {
		return s.noteInferenceError(err)
	}
	sm.politeText = &polite
	return nil
}

// scorePolite records the polite rendition's score as the final logit.
func (s *Service) scorePolite(ctx context.Context, sm *submission) error {
	_, score, err := s.classifier.Classify(ctx, *sm.politeText, sm.post.Threshold)
	if err != nil {
		return s.noteInferenceError(err)
	}
	sm.finalLogit = &score
	return nil
}

// buildComment constructs the immutable outcome row from the machine state.
func (s *Service) buildComment(sm *submission) *models.Comment {
	c := &models.Comment{
		UserID:           sm.req.UserID,
		PostID:           sm.req.PostID,
		SubPostID:        &sm.sub.ID,
		Section:          sm.req.Section,
		ParentCommentID:  sm.req.ParentCommentID,
		TextOriginal:     sm.req.TextOriginal,
		FinalSource:      sm.decision.FinalSource,
		WasEdited:        sm.decision.WasEdited,
		OriginalLogit:    sm.original.Score,
		ThresholdApplied: sm.post.Threshold,
		AttemptsCount:    1,
		SubmitSuccess:    sm.decision.SubmitSuccess,
		CreatedAt:        time.Now(),
	}

	if sm.edit != nil {
		c.EditLogit = &sm.edit.Score
		c.TextUserEdit = sm.req.TextUserEdit
	}
	c.TextGeneratedPolite = sm.politeText

	switch sm.decision.FinalSource {
	case models.FinalSourceBlocked:
		// Blocked rows persist the rejection with no final text.
		c.TextFinal = nil
		c.FinalLogit = nil

	case models.FinalSourcePolite:
		c.TextFinal = sm.politeText
		c.FinalLogit = sm.finalLogit

	case models.FinalSourceUserEdit:
		c.TextFinal = sm.req.TextUserEdit
		c.FinalLogit = &sm.edit.Score

	default: // original, nofilter
		text := sm.req.TextOriginal
		c.TextFinal = &text
		score := sm.original.Score
		c.FinalLogit = &score
	}

	return c
}

// ListComments returns the visible comments of a section in submission order.
func (s *Service) ListComments(ctx context.Context, postID int64, section int, includeDeleted bool) ([]*models.Comment, error) {
	if section < models.SectionMin || section > models.SectionMax {
		return nil, services.ErrInvalidSection
	}
	sub, err := s.requireSubPost(ctx, postID, section)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListBySubPost(ctx, sub.ID, includeDeleted)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to list comments", err)
	}
	return comments, nil
}

// DeleteComment soft-deletes a comment. Deleting an already-deleted comment
// is idempotent and reported via alreadyDeleted.
func (s *Service) DeleteComment(ctx context.Context, id int64) (alreadyDeleted bool, err error) {
	alreadyDeleted, err = s.comments.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, services.ErrCommentNotFound
		}
		return false, services.NewDomainError(services.ErrorTypeInternal, "failed to delete comment", err)
	}
	return alreadyDeleted, nil
}

// LogIntervention appends a pre-submission intervention event, filling the
// defaults the client may omit.
func (s *Service) LogIntervention(ctx context.Context, event *models.InterventionEvent) error {
	if event.Section < models.SectionMin || event.Section > models.SectionMax {
		return services.ErrInvalidSection
	}
	if event.TempUUID == "" {
		event.TempUUID = uuid.NewString()
	}
	if event.AttemptNo < 1 {
		event.AttemptNo = 1
	}
	if event.ActionApplied == "" {
		event.ActionApplied = "none"
	}
	if event.DecisionRuleApplied == "" {
		event.DecisionRuleApplied = models.DecisionRuleNone
	}
	if event.FinalChoiceHint == "" {
		event.FinalChoiceHint = models.FinalChoiceHintUnknown
	}
	if event.ShownAt.IsZero() {
		event.ShownAt = time.Now()
	}

	if err := s.interventions.Insert(ctx, event); err != nil {
		return services.NewDomainError(services.ErrorTypeInternal, "failed to log intervention", err)
	}
	return nil
}

// noteInferenceError counts failed model calls before surfacing the error.
func (s *Service) noteInferenceError(err error) error {
	if services.IsExternalError(err) {
		s.metrics.RecordInferenceFailure()
	}
	return err
}

// loadPost fetches a post, translating missing rows into the domain error.
func (s *Service) loadPost(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrPostNotFound
		}
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load post", err)
	}
	return post, nil
}

// requireSubPost fetches the section's sub-post, translating missing rows.
func (s *Service) requireSubPost(ctx context.Context, postID int64, section int) (*models.SubPost, error) {
	sub, err := s.posts.GetSubPost(ctx, postID, section)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrSectionNotFound
		}
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load sub-post", err)
	}
	return sub, nil
}

// assertUserLock enforces the permanent association of a user with the first
// post they commented on.
func (s *Service) assertUserLock(ctx context.Context, userID, postID int64) error {
	firstPostID, err := s.comments.FirstPostID(ctx, userID)
	if err != nil {
		return services.NewDomainError(services.ErrorTypeInternal, "failed to check user lock", err)
	}
	if firstPostID != nil && *firstPostID != postID {
		return services.ErrUserLocked.WithDetail("locked_post_id", *firstPostID)
	}
	return nil
}

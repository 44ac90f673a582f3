package handlers

import (
	"context"
	"net/http"

	"github.com/polite-web/polite-backend/internal/observability"
	"github.com/polite-web/polite-backend/utils"
	"go.uber.org/zap"
)

// ClassifierGateway scores text through the admission-gated classifier.
type ClassifierGateway interface {
	Classify(ctx context.Context, text string, threshold float64) (over bool, score float64, err error)
}

// RewriterGateway rewrites text through the admission-gated rewriter.
type RewriterGateway interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// defaultThreshold applies when a direct classification request does not
// carry one.
const defaultThreshold = 0.5

// ModelHandler exposes the model gateways directly, for tooling and the
// pre-submission UI. Requests pass through the same admission gates as
// submissions.
type ModelHandler struct {
	classifier ClassifierGateway
	rewriter   RewriterGateway
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewModelHandler creates a new ModelHandler
func NewModelHandler(classifier ClassifierGateway, rewriter RewriterGateway, metrics *observability.Metrics, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{classifier: classifier, rewriter: rewriter, metrics: metrics, logger: logger}
}

// ClassifyRequest is the request body for POST /models/classify
type ClassifyRequest struct {
	Text      string   `json:"text" validate:"required"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// ClassifyResponse is the response body for POST /models/classify
type ClassifyResponse struct {
	OverThreshold    bool    `json:"over_threshold"`
	Score            float64 `json:"score"`
	ThresholdApplied float64 `json:"threshold_applied"`
}

// HandleClassify handles POST /models/classify
func (h *ModelHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	threshold := defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	over, score, err := h.classifier.Classify(r.Context(), req.Text, threshold)
	if err != nil {
		h.metrics.RecordInferenceFailure()
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, ClassifyResponse{
		OverThreshold:    over,
		Score:            score,
		ThresholdApplied: threshold,
	})
}

// RewriteRequest is the request body for POST /models/rewrite
type RewriteRequest struct {
	Text string `json:"text" validate:"required"`
}

// HandleRewrite handles POST /models/rewrite
func (h *ModelHandler) HandleRewrite(w http.ResponseWriter, r *http.Request) {
	var req RewriteRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	polite, err := h.rewriter.Rewrite(r.Context(), req.Text)
	if err != nil {
		h.metrics.RecordInferenceFailure()
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]string{"text": polite})
}

// HandleMetrics handles GET /metrics
func (h *ModelHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.metrics.Snapshot())
}

package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fanta-optimizer/internal/api/middleware"
	"github.com/stitts-dev/fanta-optimizer/internal/api/validation"
	"github.com/stitts-dev/fanta-optimizer/internal/metrics"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
	"github.com/stitts-dev/fanta-optimizer/internal/services"
	"github.com/stitts-dev/fanta-optimizer/pkg/utils"
)

type OptimizerHandler struct {
	optimizer *optimizer.Optimizer
	cache     *services.CacheService
	history   *services.HistoryService
	logger    *logrus.Logger
}

func NewOptimizerHandler(opt *optimizer.Optimizer, cache *services.CacheService, history *services.HistoryService, logger *logrus.Logger) *OptimizerHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OptimizerHandler{
		optimizer: opt,
		cache:     cache,
		history:   history,
		logger:    logger,
	}
}

// OptimizeResponse is the payload of a successful optimize call
type OptimizeResponse struct {
	BuildID string                 `json:"buildId"`
	Cached  bool                   `json:"cached"`
	Result  *optimizer.BuildResult `json:"result"`
}

// ValidateResponse is the payload of the validate call
type ValidateResponse struct {
	Valid    bool                  `json:"valid"`
	Summary  optimizer.PoolSummary `json:"summary"`
	Warnings []optimizer.Warning   `json:"warnings,omitempty"`
}

// Optimize builds the best roster for the posted players and config
func (h *OptimizerHandler) Optimize(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	log := h.logger.WithField("request_id", middleware.GetRequestID(c))

	requestHash, err := services.RequestHash(req, h.optimizer.Options())
	if err != nil {
		utils.SendInternalError(c, "Failed to fingerprint request")
		return
	}
	cacheKey := services.BuildCacheKey(requestHash)

	if h.cache.Enabled() {
		var cached services.CachedBuild
		switch err := h.cache.Get(ctx, cacheKey, &cached); {
		case err == nil && cached.Result != nil:
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			c.Set("build_id", cached.BuildID)
			utils.SendSuccess(c, OptimizeResponse{BuildID: cached.BuildID, Cached: true, Result: cached.Result})
			return
		case err == nil, errors.Is(err, services.ErrCacheMiss):
			metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		default:
			metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
			log.WithError(err).Warn("Cache lookup failed, optimizing without cache")
		}
	}

	startTime := time.Now()
	result, err := h.optimizer.BuildRequest(req)
	elapsed := time.Since(startTime)
	if err != nil {
		status, appErr, outcome := mapBuildError(err)
		metrics.ObserveBuild(nil, outcome, elapsed)
		log.WithError(err).WithField("outcome", outcome).Warn("Roster build failed")
		utils.SendError(c, status, appErr)
		return
	}

	outcome := metrics.OutcomeSuccess
	if result.Degraded() {
		outcome = metrics.OutcomeDegraded
	}
	metrics.ObserveBuild(result, outcome, elapsed)

	buildID := uuid.New()
	c.Set("build_id", buildID.String())
	log = log.WithField("build_id", buildID.String())

	if h.history != nil {
		if _, err := h.history.Save(ctx, buildID, requestHash, req, result, elapsed); err != nil {
			log.WithError(err).Error("Failed to save build history")
		}
	}
	if err := h.cache.Set(ctx, cacheKey, services.CachedBuild{BuildID: buildID.String(), Result: result}); err != nil {
		log.WithError(err).Warn("Failed to cache build")
	}

	log.WithFields(logrus.Fields{
		"total_cost":  result.TotalCost,
		"total_score": result.TotalScore,
		"warnings":    len(result.Warnings),
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Roster build served")

	utils.SendSuccess(c, OptimizeResponse{BuildID: buildID.String(), Result: result})
}

// Validate checks a request and summarizes its pool without solving it
func (h *OptimizerHandler) Validate(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	warnings, err := req.Check()
	if err != nil {
		status, appErr, _ := mapBuildError(err)
		utils.SendError(c, status, appErr)
		return
	}
	utils.SendSuccess(c, ValidateResponse{
		Valid:    true,
		Summary:  req.Summarize(),
		Warnings: warnings,
	})
}

func (h *OptimizerHandler) bindRequest(c *gin.Context) (*optimizer.Request, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			utils.AbortPayloadTooLarge(c, 0)
			return nil, false
		}
		utils.SendValidationError(c, "Failed to read request body", err.Error())
		return nil, false
	}

	req, err := validation.ParseOptimizeRequest(raw)
	if err != nil {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			utils.SendError(c, http.StatusBadRequest, utils.NewAppError(utils.ErrCodeValidation, vErr.Message, joinDetails(vErr.Details)))
			return nil, false
		}
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return nil, false
	}
	return req, true
}

package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bigfive-insight/internal/domain"
	"bigfive-insight/internal/service"
)

const (
	codeInvalidLength  = "invalid_length"
	codeInvalidType    = "invalid_type"
	codeOutOfRange     = "out_of_range"
	codeInvalidRequest = "invalid_request"
)

// PersonalityHandler expone el test Big Five por HTTP.
type PersonalityHandler struct {
	logger  *zap.Logger
	service *service.PersonalityService
}

func NewPersonalityHandler(logger *zap.Logger, svc *service.PersonalityService) *PersonalityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonalityHandler{logger: logger, service: svc}
}

type submitTestRequest struct {
	Answers      []any                `json:"answers"`
	Demographics *domain.Demographics `json:"demographics"`
}

// SubmitTest maneja POST /api/personality-test.
func (h *PersonalityHandler) SubmitTest(c *gin.Context) {
	var req submitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid personality test request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid request", codeInvalidRequest))
		return
	}
	if req.Answers == nil {
		c.JSON(http.StatusBadRequest, errorBody("no answers provided", codeInvalidRequest))
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), service.EvaluateInput{
		ClientID:     c.ClientIP(),
		Answers:      req.Answers,
		Demographics: req.Demographics,
	})
	if err != nil {
		h.writeEvaluateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"id":          result.ID,
		"scores":      result.Scores,
		"percentiles": result.Percentiles,
		"raw_scores":  result.RawScores,
		"narrative":   result.Narrative,
		"provenance":  result.Provenance,
	})
}

func (h *PersonalityHandler) writeEvaluateError(c *gin.Context, err error) {
	var rlErr *service.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		writeRateLimited(c, rlErr)
	case errors.Is(err, domain.ErrInvalidLength):
		c.JSON(http.StatusBadRequest, errorBody(err.Error(), codeInvalidLength))
	case errors.Is(err, domain.ErrInvalidType):
		c.JSON(http.StatusBadRequest, errorBody(err.Error(), codeInvalidType))
	case errors.Is(err, domain.ErrOutOfRange):
		c.JSON(http.StatusBadRequest, errorBody(err.Error(), codeOutOfRange))
	case errors.Is(err, service.ErrInvalidDemographics):
		c.JSON(http.StatusBadRequest, errorBody(err.Error(), codeInvalidRequest))
	case errors.Is(err, service.ErrResultNotPersisted):
		c.JSON(http.StatusInternalServerError, errorBody("could not save result", ""))
	default:
		h.logger.Error("personality test failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("could not process personality test", ""))
	}
}

// writeRateLimited responde 429 con detalles de la cuota y headers estandar.
func writeRateLimited(c *gin.Context, rlErr *service.RateLimitError) {
	retryAfter := int(math.Ceil(time.Until(rlErr.ResetAt).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(rlErr.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(rlErr.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(rlErr.ResetAt.Unix(), 10))
	c.Header("Retry-After", strconv.Itoa(retryAfter))

	c.JSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error":   "Rate limit exceeded",
		"details": gin.H{
			"limit":     rlErr.Limit,
			"window":    int64(rlErr.Window / time.Second),
			"remaining": rlErr.Remaining,
			"reset_at":  rlErr.ResetAt.UTC().Format(time.RFC3339),
		},
	})
}

// GetResult maneja GET /api/personality-test/:id.
func (h *PersonalityHandler) GetResult(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, errorBody("result not found", ""))
			return
		}
		h.logger.Error("get personality result failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("could not load result", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func errorBody(message, code string) gin.H {
	body := gin.H{"success": false, "error": message}
	if code != "" {
		body["code"] = code
	}
	return body
}

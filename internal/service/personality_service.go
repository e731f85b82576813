package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bigfive-insight/internal/domain"
	"bigfive-insight/internal/repository"
)

var (
	ErrRateLimited                     = errors.New("rate limit exceeded")
	ErrInvalidDemographics             = errors.New("invalid demographics")
	ErrResultNotFound                  = errors.New("personality result not found")
	ErrResultNotPersisted              = errors.New("personality result not persisted")
	ErrPersonalityServiceNotConfigured = errors.New("personality service not configured")
)

// RateLimitError describe un rechazo del admission controller. Envuelve
// ErrRateLimited para que errors.Is funcione.
type RateLimitError struct {
	Limit     int
	Window    time.Duration
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: limit %d per %s, resets at %s",
		ErrRateLimited, e.Limit, e.Window, e.ResetAt.UTC().Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// AdmissionPolicy es la cuota aplicada a cada identidad.
type AdmissionPolicy struct {
	Limit  int
	Window time.Duration
}

// EvaluateInput es una request de test ya decodificada. Answers se recibe sin
// tipar porque la validacion de tipos es parte de la evaluacion.
type EvaluateInput struct {
	ClientID     string
	Answers      []any
	Demographics *domain.Demographics
	Insight      GenerateOptions
}

// PersonalityService orquesta validacion, admision, scoring, insight y
// persistencia opcional de un test Big Five.
type PersonalityService struct {
	admission AdmissionController
	policy    AdmissionPolicy
	scorer    *TraitScorer
	insights  InsightGenerator
	repo      repository.ResultRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewPersonalityService arma el orquestador. repo puede ser nil: en ese caso los
// resultados no se guardan y GetResult siempre devuelve ErrResultNotFound.
func NewPersonalityService(
	admission AdmissionController,
	policy AdmissionPolicy,
	scorer *TraitScorer,
	insights InsightGenerator,
	repo repository.ResultRepository,
	logger *zap.Logger,
) *PersonalityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scorer == nil {
		scorer = NewTraitScorer(nil)
	}
	if policy.Limit == 0 {
		policy.Limit = defaultAdmissionLimit
	}
	if policy.Window <= 0 {
		policy.Window = defaultAdmissionWindow
	}
	return &PersonalityService{
		admission: admission,
		policy:    policy,
		scorer:    scorer,
		insights:  insights,
		repo:      repo,
		logger:    logger,
		now:       time.Now,
	}
}

// Policy devuelve la cuota efectiva.
func (s *PersonalityService) Policy() AdmissionPolicy {
	return s.policy
}

// Evaluate procesa un test completo. Las requests invalidas se rechazan antes de
// consumir cuota; las rechazadas por cuota nunca llegan al proveedor remoto.
func (s *PersonalityService) Evaluate(ctx context.Context, in EvaluateInput) (domain.PersonalityResult, error) {
	if s == nil || s.admission == nil || s.insights == nil {
		return domain.PersonalityResult{}, ErrPersonalityServiceNotConfigured
	}

	answers, err := domain.ParseAnswers(in.Answers)
	if err != nil {
		return domain.PersonalityResult{}, err
	}
	if err := in.Demographics.Validate(); err != nil {
		return domain.PersonalityResult{}, fmt.Errorf("%w: %v", ErrInvalidDemographics, err)
	}

	clientID := strings.TrimSpace(in.ClientID)
	if !s.admission.TryAdmit(clientID, s.policy.Limit, s.policy.Window) {
		rlErr := &RateLimitError{
			Limit:     s.policy.Limit,
			Window:    s.policy.Window,
			Remaining: s.admission.Remaining(clientID, s.policy.Limit, s.policy.Window),
			ResetAt:   s.admission.ResetAt(clientID, s.policy.Window),
		}
		s.logger.Warn("personality test rate limited",
			zap.String("client_ip", clientID),
			zap.Time("reset_at", rlErr.ResetAt),
		)
		return domain.PersonalityResult{}, rlErr
	}

	scoring, err := s.scorer.Score(answers, nil)
	if err != nil {
		return domain.PersonalityResult{}, err
	}

	insight := s.insights.Generate(ctx, domain.InsightRequest{
		Scores:       scoring.Scores,
		Percentiles:  scoring.Percentiles,
		Demographics: in.Demographics,
	}, in.Insight)

	result := domain.PersonalityResult{
		ID:          uuid.NewString(),
		Scores:      scoring.Scores,
		Percentiles: scoring.Percentiles,
		RawScores:   scoring.RawScores,
		Narrative:   insight.Narrative,
		Provenance:  insight.Provenance,
		CreatedAt:   s.now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, result); err != nil {
			s.logger.Error("failed to persist personality result",
				zap.String("result_id", result.ID), zap.Error(err))
			return domain.PersonalityResult{}, fmt.Errorf("%w: %v", ErrResultNotPersisted, err)
		}
	}

	s.logger.Info("personality test evaluated",
		zap.String("result_id", result.ID),
		zap.String("client_ip", clientID),
		zap.Int("answers", answers.Len()),
		zap.String("provenance", string(result.Provenance)),
		zap.Int("insight_attempts", insight.Attempts),
	)
	return result, nil
}

// GetResult busca un resultado guardado por id.
func (s *PersonalityService) GetResult(ctx context.Context, id string) (domain.PersonalityResult, error) {
	if s == nil {
		return domain.PersonalityResult{}, ErrPersonalityServiceNotConfigured
	}
	id = strings.TrimSpace(id)
	if s.repo == nil || id == "" {
		return domain.PersonalityResult{}, ErrResultNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.PersonalityResult{}, ErrResultNotFound
	}

	result, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PersonalityResult{}, ErrResultNotFound
		}
		return domain.PersonalityResult{}, fmt.Errorf("find personality result: %w", err)
	}
	return result, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bigfive-insight/internal/domain"
	"bigfive-insight/internal/llm"
)

const (
	defaultInsightMaxRetries  = 2
	defaultInsightTimeout     = 30 * time.Second
	defaultInsightBackoffBase = time.Second
)

// InsightGenerator produce la narrativa de un perfil. Nunca falla: ante
// cualquier problema del proveedor remoto devuelve la narrativa local.
type InsightGenerator interface {
	Generate(ctx context.Context, req domain.InsightRequest, opts GenerateOptions) domain.InsightResult
}

// GenerateOptions permite ajustar reintentos y timeout por llamada. Los valores
// <= 0 usan los defaults del servicio.
type GenerateOptions struct {
	// MaxRetries es la cantidad total de intentos remotos.
	MaxRetries int
	// Timeout aplica a cada intento remoto.
	Timeout time.Duration
}

// InsightConfig son los defaults del servicio.
type InsightConfig struct {
	MaxRetries  int
	Timeout     time.Duration
	BackoffBase time.Duration
}

// InsightService genera narrativas con el proveedor remoto y cae a un texto
// local deterministico cuando el proveedor no esta, falla o responde vacio.
type InsightService struct {
	provider *llm.LazyClient
	logger   *zap.Logger
	cfg      InsightConfig
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewInsightService(provider *llm.LazyClient, cfg InsightConfig, logger *zap.Logger) *InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultInsightMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultInsightTimeout
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultInsightBackoffBase
	}
	return &InsightService{
		provider: provider,
		logger:   logger,
		cfg:      cfg,
		sleep:    sleepContext,
	}
}

type insightState int

const (
	stateProviderSelect insightState = iota
	stateAttempt
	stateBackoff
	stateLocalFallback
	stateDone
)

func (s insightState) String() string {
	switch s {
	case stateProviderSelect:
		return "provider_select"
	case stateAttempt:
		return "attempt"
	case stateBackoff:
		return "backoff"
	case stateLocalFallback:
		return "local_fallback"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// insightRun es el estado mutable de una sola llamada a Generate.
type insightRun struct {
	ctx        context.Context
	req        domain.InsightRequest
	maxRetries int
	timeout    time.Duration

	client   llm.LLMClient
	prompt   string
	attempts int
	lastErr  error

	narrative  string
	provenance domain.Provenance
}

// Generate recorre la maquina de estados hasta Done. Los errores remotos se
// registran en el log y solo se reflejan en Provenance.
func (s *InsightService) Generate(ctx context.Context, req domain.InsightRequest, opts GenerateOptions) domain.InsightResult {
	run := &insightRun{
		ctx:        ctx,
		req:        req,
		maxRetries: s.cfg.MaxRetries,
		timeout:    s.cfg.Timeout,
	}
	if opts.MaxRetries > 0 {
		run.maxRetries = opts.MaxRetries
	}
	if opts.Timeout > 0 {
		run.timeout = opts.Timeout
	}

	state := stateProviderSelect
	for state != stateDone {
		state = s.next(run, state)
	}

	result := domain.InsightResult{
		Narrative:  run.narrative,
		Provenance: run.provenance,
		Attempts:   run.attempts,
	}
	if run.provenance == domain.ProvenanceRemote {
		result.Provider = s.provider.Name()
	}
	return result
}

// next es la funcion de transicion.
func (s *InsightService) next(run *insightRun, state insightState) insightState {
	switch state {
	case stateProviderSelect:
		return s.selectProvider(run)
	case stateAttempt:
		return s.attempt(run)
	case stateBackoff:
		return s.backoff(run)
	case stateLocalFallback:
		run.narrative = buildFallbackNarrative(run.req.Scores)
		run.provenance = domain.ProvenanceLocal
		return stateDone
	default:
		return stateDone
	}
}

func (s *InsightService) selectProvider(run *insightRun) insightState {
	if !s.provider.Configured() {
		return stateLocalFallback
	}
	client, err := s.provider.Client(run.ctx)
	if err != nil {
		s.logger.Warn("llm provider unavailable, using fallback insights",
			zap.String("provider", s.provider.Name()), zap.Error(err))
		return stateLocalFallback
	}
	run.client = client
	run.prompt = buildInsightPrompt(run.req.Scores, run.req.Percentiles, run.req.Demographics)
	return stateAttempt
}

func (s *InsightService) attempt(run *insightRun) insightState {
	if err := run.ctx.Err(); err != nil {
		s.logger.Warn("insight deadline exceeded before attempt, using fallback", zap.Error(err))
		return stateLocalFallback
	}

	run.attempts++
	text, err := s.callRemote(run)
	if err == nil {
		text = cleanNarrative(text)
		if text == "" {
			err = llm.ErrEmptyResponse
		}
	}
	if err != nil {
		run.lastErr = err
		s.logger.Warn("insight attempt failed",
			zap.String("provider", s.provider.Name()),
			zap.Int("attempt", run.attempts),
			zap.Int("max_retries", run.maxRetries),
			zap.Error(err),
		)
		return stateBackoff
	}

	run.narrative = text
	run.provenance = domain.ProvenanceRemote
	s.logger.Info("insight generated with remote provider",
		zap.String("provider", s.provider.Name()), zap.Int("attempt", run.attempts))
	return stateDone
}

// callRemote hace un intento con su propio deadline. Un panic del cliente se
// trata como un intento fallido.
func (s *InsightService) callRemote(run *insightRun) (text string, err error) {
	ctx, cancel := context.WithTimeout(run.ctx, run.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("llm client panic: %v", r)
		}
	}()
	return run.client.Generate(ctx, run.prompt)
}

func (s *InsightService) backoff(run *insightRun) insightState {
	if run.attempts >= run.maxRetries {
		s.logger.Error("all insight attempts failed, using fallback",
			zap.Int("attempts", run.attempts), zap.Error(run.lastErr))
		return stateLocalFallback
	}
	delay := s.cfg.BackoffBase << (run.attempts - 1)
	if err := s.sleep(run.ctx, delay); err != nil {
		s.logger.Warn("insight backoff interrupted, using fallback", zap.Error(err))
		return stateLocalFallback
	}
	return stateAttempt
}

// sleepContext duerme d o hasta que ctx termine; solo bloquea al llamador.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

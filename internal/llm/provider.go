package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	ErrProviderNotConfigured = errors.New("llm provider not configured")
	ErrEmptyResponse         = errors.New("llm empty response")
)

// Factory construye el cliente remoto. Se invoca a lo sumo una vez.
type Factory func(ctx context.Context) (LLMClient, error)

// LazyClient inicializa el cliente remoto en el primer uso, una sola vez aun con
// llamadas concurrentes. Si la inicializacion falla el error queda fijo y los
// llamadores deben usar su camino local.
type LazyClient struct {
	name    string
	factory Factory

	once   sync.Once
	client LLMClient
	err    error
}

// NewLazyClient crea el handle. Un factory nil representa un proveedor sin
// credenciales.
func NewLazyClient(name string, factory Factory) *LazyClient {
	return &LazyClient{name: name, factory: factory}
}

// Configured indica si hay credenciales para intentar el proveedor remoto.
func (l *LazyClient) Configured() bool {
	return l != nil && l.factory != nil
}

// Name devuelve el nombre del proveedor ("gemini", "openai" o "").
func (l *LazyClient) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Client devuelve el cliente inicializado. La cancelacion de ctx no afecta al
// handle compartido.
func (l *LazyClient) Client(ctx context.Context) (LLMClient, error) {
	if !l.Configured() {
		return nil, ErrProviderNotConfigured
	}
	l.once.Do(func() {
		l.client, l.err = l.factory(context.WithoutCancel(ctx))
		if l.err == nil && l.client == nil {
			l.err = ErrProviderNotConfigured
		}
	})
	return l.client, l.err
}

// Close cierra el cliente si fue inicializado y soporta io.Closer.
func (l *LazyClient) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	if closer, ok := l.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ProviderConfig agrupa credenciales y modelos de los proveedores soportados.
type ProviderConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	APIKey       string
	BaseURL      string
	Model        string
	Generation   GenerationConfig
}

// NewProvider elige el proveedor remoto segun las credenciales disponibles:
// Gemini primero, luego un endpoint OpenAI-compatible. Sin credenciales
// devuelve un LazyClient no configurado.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) *LazyClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case strings.TrimSpace(cfg.GeminiAPIKey) != "":
		return NewLazyClient(ProviderGemini, func(ctx context.Context) (LLMClient, error) {
			client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Generation)
			if err != nil {
				logger.Error("gemini client init failed", zap.Error(err))
				return nil, err
			}
			logger.Info("gemini client initialized", zap.String("model", client.name))
			return client, nil
		})
	case strings.TrimSpace(cfg.APIKey) != "":
		return NewLazyClient(ProviderOpenAI, func(ctx context.Context) (LLMClient, error) {
			return NewHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Generation, logger), nil
		})
	default:
		logger.Info("no llm credentials configured, insights will use local fallback")
		return NewLazyClient("", nil)
	}
}

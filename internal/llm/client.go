package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LLMClient define la interfaz para generar respuestas con un LLM.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig son los parametros fijos de generacion enviados al proveedor.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// DefaultGenerationConfig devuelve los parametros usados para los reportes de
// personalidad: algo de creatividad y espacio para un reporte largo.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.85,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

// HTTPClient implementa LLMClient usando la API de OpenAI-compatible.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	generation GenerationConfig
	client     *http.Client
	logger     *zap.Logger
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
// El timeout por request lo impone el contexto del llamador; el del http.Client
// es solo un tope de seguridad.
func NewHTTPClient(baseURL, apiKey, model string, generation GenerationConfig, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		generation: generation,
		client:     &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	if c.generation.Temperature > 0 {
		reqBody.Temperature = &c.generation.Temperature
	}
	if c.generation.TopP > 0 {
		reqBody.TopP = &c.generation.TopP
	}
	if c.generation.MaxOutputTokens > 0 {
		reqBody.MaxTokens = c.generation.MaxOutputTokens
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("llm error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 512)),
		)
		return "", fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return "", fmt.Errorf("llm api error: %s", cr.Error.Message)
	}

	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return cr.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

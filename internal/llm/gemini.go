package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient implementa LLMClient sobre Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiClient crea el cliente y configura el modelo con los parametros de
// generacion. Falla si no hay API key o si el SDK no puede inicializarse.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, generation GenerationConfig) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	if generation.Temperature > 0 {
		model.SetTemperature(generation.Temperature)
	}
	if generation.TopP > 0 {
		model.SetTopP(generation.TopP)
	}
	if generation.TopK > 0 {
		model.SetTopK(generation.TopK)
	}
	if generation.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(generation.MaxOutputTokens)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		name:   modelName,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return extractGeminiText(resp)
}

// Close libera la conexion del SDK.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

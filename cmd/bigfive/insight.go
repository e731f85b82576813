package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bigfive-insight/internal/config"
	"bigfive-insight/internal/domain"
	"bigfive-insight/internal/llm"
	"bigfive-insight/internal/service"
)

type insightFlags struct {
	answerInput
	apiKey     string
	maxRetries int
	timeout    time.Duration
	asJSON     bool
	verbose    bool
}

func newInsightCmd() *cobra.Command {
	var f insightFlags
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Generate a personality insight narrative",
		Long:  "Scores the answers and generates the insight narrative. Uses Gemini when GEMINI_API_KEY (or --api-key) is set, an OpenAI-compatible endpoint when LLM_API_KEY is set, and the local fallback otherwise.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInsight(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.answers, "answers", "a", "", "Comma separated answers, e.g. 3,4,2,...")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Path to a JSON file with an answers array or {\"answers\": [...], \"demographics\": {...}}")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	cmd.Flags().IntVar(&f.maxRetries, "max-retries", 0, "Total remote attempts (0 uses INSIGHT_MAX_RETRIES)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Per-attempt timeout (0 uses INSIGHT_TIMEOUT)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print scores and narrative as JSON")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log provider activity to stderr")
	return cmd
}

func runInsight(cmd *cobra.Command, f insightFlags) error {
	raw, demo, err := f.load()
	if err != nil {
		return err
	}
	answers, err := domain.ParseAnswers(raw)
	if err != nil {
		return err
	}
	if err := demo.Validate(); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidDemographics, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.apiKey != "" {
		cfg.GeminiAPIKey = f.apiKey
	}

	logger := zap.NewNop()
	if f.verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	defer logger.Sync()

	scoring, err := service.NewTraitScorer(nil).Score(answers, nil)
	if err != nil {
		return err
	}

	provider := llm.NewProvider(llm.ProviderConfig{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		APIKey:       cfg.LLMAPIKey,
		BaseURL:      cfg.LLMBaseURL,
		Model:        cfg.LLMModel,
		Generation:   llm.DefaultGenerationConfig(),
	}, logger)
	defer provider.Close()

	insights := service.NewInsightService(provider, service.InsightConfig{
		MaxRetries:  cfg.InsightMaxRetries,
		Timeout:     cfg.InsightTimeout,
		BackoffBase: cfg.InsightBackoffBase,
	}, logger)
	result := insights.Generate(cmd.Context(), domain.InsightRequest{
		Scores:       scoring.Scores,
		Percentiles:  scoring.Percentiles,
		Demographics: demo,
	}, service.GenerateOptions{MaxRetries: f.maxRetries, Timeout: f.timeout})

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Scores      domain.TraitScoreSet `json:"scores"`
			Percentiles domain.PercentileSet `json:"percentiles"`
			domain.InsightResult
		}{scoring.Scores, scoring.Percentiles, result})
	}

	fmt.Fprintln(out, result.Narrative)
	fmt.Fprintf(out, "\n(provenance: %s", result.Provenance)
	if result.Provider != "" {
		fmt.Fprintf(out, ", provider: %s", result.Provider)
	}
	fmt.Fprintln(out, ")")
	return nil
}

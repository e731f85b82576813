package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"bigfive-insight/internal/domain"
	"bigfive-insight/internal/service"
)

type scoreOutput struct {
	Scores          domain.TraitScoreSet     `json:"scores"`
	Percentiles     domain.PercentileSet     `json:"percentiles"`
	RawScores       map[domain.Trait]float64 `json:"raw_scores"`
	Interpretations map[domain.Trait]string  `json:"interpretations"`
}

func newScoreCmd() *cobra.Command {
	var in answerInput
	var questionMapFile string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a Big Five answer set",
		Long:  "Validates 44 or 50 answers in the 1-5 range and prints normalized scores, percentiles and a short interpretation per trait as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _, err := in.load()
			if err != nil {
				return err
			}
			answers, err := domain.ParseAnswers(raw)
			if err != nil {
				return err
			}
			qmap, err := loadQuestionMap(questionMapFile)
			if err != nil {
				return err
			}
			result, err := service.NewTraitScorer(nil).Score(answers, qmap)
			if err != nil {
				return err
			}

			out := scoreOutput{
				Scores:          result.Scores,
				Percentiles:     result.Percentiles,
				RawScores:       result.RawScores,
				Interpretations: make(map[domain.Trait]string, len(domain.BigFiveTraits)),
			}
			for _, trait := range domain.BigFiveTraits {
				out.Interpretations[trait] = service.InterpretTrait(trait, result.Scores[trait])
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&in.answers, "answers", "a", "", "Comma separated answers, e.g. 3,4,2,...")
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "Path to a JSON file with an answers array or {\"answers\": [...]}")
	cmd.Flags().StringVarP(&questionMapFile, "question-map", "q", "", "Path to a YAML/JSON trait -> item index map (defaults to the built-in map for the answer count)")
	return cmd
}

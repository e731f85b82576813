package service

import (
	"fmt"
	"strings"

	"bigfive-insight/internal/domain"
)

// TraitScorer maps a validated AnswerVector to trait scores and percentiles.
// It holds no mutable state and is safe for concurrent use.
type TraitScorer struct {
	curve PercentileCurve
}

// NewTraitScorer builds a scorer. A nil curve selects PiecewiseLinearCurve.
func NewTraitScorer(curve PercentileCurve) *TraitScorer {
	if curve == nil {
		curve = PiecewiseLinearCurve{}
	}
	return &TraitScorer{curve: curve}
}

// Score computes the ScoringResult for answers. When qmap is nil the built-in
// map for answers.Len() is used. Indices outside the vector are ignored; a
// trait with no usable index gets a raw score of 0 (normalized score 0).
func (s *TraitScorer) Score(answers domain.AnswerVector, qmap domain.QuestionMap) (domain.ScoringResult, error) {
	if !domain.IsSupportedLength(answers.Len()) {
		return domain.ScoringResult{}, fmt.Errorf("%w: expected 44 or 50 answers, got %d", domain.ErrInvalidLength, answers.Len())
	}
	if qmap == nil {
		qmap, _ = domain.DefaultQuestionMap(answers.Len())
	}
	curve := s.percentileCurve()

	result := domain.ScoringResult{
		Scores:      make(domain.TraitScoreSet, len(domain.BigFiveTraits)),
		Percentiles: make(domain.PercentileSet, len(domain.BigFiveTraits)),
		RawScores:   make(map[domain.Trait]float64, len(domain.BigFiveTraits)),
	}
	for _, trait := range domain.BigFiveTraits {
		raw := traitMean(answers, qmap[trait])
		normalized := clamp((raw-domain.MinAnswerValue)/(domain.MaxAnswerValue-domain.MinAnswerValue)*100, 0, 100)

		result.RawScores[trait] = raw
		result.Scores[trait] = normalized
		result.Percentiles[trait] = clamp(curve.Percentile(normalized), 0, 100)
	}
	return result, nil
}

func (s *TraitScorer) percentileCurve() PercentileCurve {
	if s == nil || s.curve == nil {
		return PiecewiseLinearCurve{}
	}
	return s.curve
}

func traitMean(answers domain.AnswerVector, indices []int) float64 {
	var sum float64
	var n int
	for _, idx := range indices {
		if idx < 0 || idx >= answers.Len() {
			continue
		}
		sum += answers.At(idx)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// TraitLevel clasifica un score normalizado en cinco niveles.
func TraitLevel(score float64) string {
	switch {
	case score < 20:
		return "very low"
	case score < 40:
		return "low"
	case score < 60:
		return "moderate"
	case score < 80:
		return "high"
	default:
		return "very high"
	}
}

// InterpretTrait devuelve una lectura corta, p.ej. "Openness: high (72.5/100)".
func InterpretTrait(trait domain.Trait, score float64) string {
	name := string(trait)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s: %s (%.1f/100)", name, TraitLevel(score), score)
}

package service

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigfive-insight/internal/domain"
)

func mustAnswers(t *testing.T, values []float64) domain.AnswerVector {
	t.Helper()
	vec, err := domain.NewAnswerVector(values)
	require.NoError(t, err)
	return vec
}

func constantAnswers(t *testing.T, n int, v float64) domain.AnswerVector {
	t.Helper()
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return mustAnswers(t, values)
}

func TestTraitScorerConstantAnswers(t *testing.T) {
	scorer := NewTraitScorer(nil)

	tests := []struct {
		value          float64
		wantScore      float64
		wantPercentile float64
	}{
		{value: 1, wantScore: 0, wantPercentile: 0},
		{value: 2, wantScore: 25, wantPercentile: 20},
		{value: 3, wantScore: 50, wantPercentile: 50},
		{value: 4, wantScore: 75, wantPercentile: 80},
		{value: 5, wantScore: 100, wantPercentile: 100},
	}

	for _, length := range domain.SupportedTestLengths {
		for _, tt := range tests {
			result, err := scorer.Score(constantAnswers(t, length, tt.value), nil)
			require.NoError(t, err)
			for _, trait := range domain.BigFiveTraits {
				assert.InDelta(t, tt.value, result.RawScores[trait], 1e-9)
				assert.InDelta(t, tt.wantScore, result.Scores[trait], 1e-9, "len %d value %v trait %s", length, tt.value, trait)
				assert.InDelta(t, tt.wantPercentile, result.Percentiles[trait], 1e-9)
			}
		}
	}
}

func TestTraitScorerOpennessFromMappedItems(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 3
	}
	// openness items (index mod 5 == 4) alternate 5 and 4 -> mean 4.5
	for i, idx := 0, 4; idx < 50; i, idx = i+1, idx+5 {
		values[idx] = 5
		if i%2 == 1 {
			values[idx] = 4
		}
	}

	result, err := NewTraitScorer(nil).Score(mustAnswers(t, values), nil)
	require.NoError(t, err)

	assert.InDelta(t, 4.5, result.RawScores[domain.TraitOpenness], 1e-9)
	assert.InDelta(t, 87.5, result.Scores[domain.TraitOpenness], 1e-9)
	assert.InDelta(t, 90.0, result.Percentiles[domain.TraitOpenness], 1e-9)
	assert.InDelta(t, 50.0, result.Scores[domain.TraitExtraversion], 1e-9)
}

func TestTraitScorerRandomAnswersStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	scorer := NewTraitScorer(nil)

	for i := 0; i < 500; i++ {
		length := domain.SupportedTestLengths[i%2]
		values := make([]float64, length)
		for j := range values {
			values[j] = 1 + rng.Float64()*4
		}
		vec := mustAnswers(t, values)

		first, err := scorer.Score(vec, nil)
		require.NoError(t, err)
		second, err := scorer.Score(vec, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second, "scoring must be deterministic")

		require.Len(t, first.Scores, 5)
		for _, trait := range domain.BigFiveTraits {
			s := first.Scores[trait]
			p := first.Percentiles[trait]
			assert.False(t, math.IsNaN(s) || math.IsNaN(p))
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 100.0)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
		}
	}
}

func TestTraitScorerCustomMap(t *testing.T) {
	vec := constantAnswers(t, 44, 4)

	t.Run("out of bounds indices are ignored", func(t *testing.T) {
		qmap := domain.QuestionMap{
			domain.TraitOpenness: {0, 1, 44, 100, -1},
		}
		result, err := NewTraitScorer(nil).Score(vec, qmap)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, result.RawScores[domain.TraitOpenness], 1e-9)
	})

	t.Run("trait without indices scores zero", func(t *testing.T) {
		qmap := domain.QuestionMap{
			domain.TraitOpenness: {0},
		}
		result, err := NewTraitScorer(nil).Score(vec, qmap)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.RawScores[domain.TraitNeuroticism])
		assert.Equal(t, 0.0, result.Scores[domain.TraitNeuroticism])
		assert.Equal(t, 0.0, result.Percentiles[domain.TraitNeuroticism])
	})

	t.Run("overlapping indices are allowed", func(t *testing.T) {
		qmap := domain.QuestionMap{
			domain.TraitOpenness:     {0, 1},
			domain.TraitExtraversion: {1, 2},
		}
		result, err := NewTraitScorer(nil).Score(vec, qmap)
		require.NoError(t, err)
		assert.InDelta(t, 75.0, result.Scores[domain.TraitOpenness], 1e-9)
		assert.InDelta(t, 75.0, result.Scores[domain.TraitExtraversion], 1e-9)
	})
}

func TestTraitScorerRejectsZeroVector(t *testing.T) {
	_, err := NewTraitScorer(nil).Score(domain.AnswerVector{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLength)
}

type fixedCurve float64

func (f fixedCurve) Percentile(float64) float64 { return float64(f) }

func TestTraitScorerUsesInjectedCurve(t *testing.T) {
	result, err := NewTraitScorer(fixedCurve(150)).Score(constantAnswers(t, 50, 3), nil)
	require.NoError(t, err)
	for _, trait := range domain.BigFiveTraits {
		assert.Equal(t, 100.0, result.Percentiles[trait], "curve output is clamped")
	}
}

func TestTraitLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "very low"},
		{19.9, "very low"},
		{20, "low"},
		{39.9, "low"},
		{40, "moderate"},
		{59.9, "moderate"},
		{60, "high"},
		{79.9, "high"},
		{80, "very high"},
		{100, "very high"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TraitLevel(tt.score), "score %v", tt.score)
	}
}

func TestInterpretTrait(t *testing.T) {
	assert.Equal(t, "Openness: high (72.5/100)", InterpretTrait(domain.TraitOpenness, 72.5))
	assert.Equal(t, "Neuroticism: very low (0.0/100)", InterpretTrait(domain.TraitNeuroticism, 0))
}

package service

import (
	"fmt"
	"strings"

	"bigfive-insight/internal/domain"
)

// fallbackHighThreshold separa las variantes "high" y "low" del texto local.
const fallbackHighThreshold = 60.0

type traitSuggestion struct {
	high string
	low  string
}

var fallbackSuggestions = map[domain.Trait]traitSuggestion{
	domain.TraitOpenness: {
		high: "Your high openness suggests you enjoy creativity and new experiences. Try exploring diverse content and creative problem-solving.",
		low:  "Your preference for routine and practicality can help maintain consistent focus. Stick to structured work environments.",
	},
	domain.TraitConscientiousness: {
		high: "Your strong conscientiousness indicates excellent organization skills. Use detailed to-do lists and time-blocking techniques.",
		low:  "Consider using simple productivity tools to build better organizational habits gradually.",
	},
	domain.TraitExtraversion: {
		high: "Your extraverted nature thrives on interaction. Balance social activities with focused work sessions.",
		low:  "Your introspective nature is great for deep work. Create quiet, distraction-free environments.",
	},
	domain.TraitAgreeableness: {
		high: "Your cooperative nature makes you a great team player. Set clear boundaries to protect your focus time.",
		low:  "Your assertiveness helps maintain personal boundaries. Use this strength to protect your productivity time.",
	},
	domain.TraitNeuroticism: {
		high: "Managing stress is important. Use short, controlled work sessions with planned breaks to keep a calm rhythm.",
		low:  "Your emotional stability is an asset. Leverage it during high-pressure situations.",
	},
}

var fallbackTips = []string{
	"Set clear daily goals before starting work sessions",
	"Use website blocking to eliminate distractions",
	"Take regular breaks to maintain mental freshness",
	"Track your progress to stay motivated",
}

// buildFallbackNarrative arma la narrativa local a partir de los scores. No hace
// I/O y no puede fallar: es el respaldo de disponibilidad del generador.
func buildFallbackNarrative(scores domain.TraitScoreSet) string {
	var sb strings.Builder
	sb.WriteString("## Your Personality Profile\n\n")
	sb.WriteString("Here are some insights based on your Big Five personality assessment.\n")

	sb.WriteString("\n### Key Insights\n\n")
	for _, trait := range domain.BigFiveTraits {
		score, ok := scores[trait]
		if !ok {
			continue
		}
		suggestion := fallbackSuggestions[trait].low
		if score > fallbackHighThreshold {
			suggestion = fallbackSuggestions[trait].high
		}
		name := string(trait)
		sb.WriteString(fmt.Sprintf("**%s%s**: %s\n", strings.ToUpper(name[:1]), name[1:], suggestion))
	}

	sb.WriteString("\n### Productivity Tips\n\n")
	for _, tip := range fallbackTips {
		sb.WriteString("- " + tip + "\n")
	}
	return sb.String()
}

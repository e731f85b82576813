package service

import (
	"fmt"
	"strings"

	"bigfive-insight/internal/domain"
)

const insightPromptTemplate = `You are a personality psychologist and productivity coach. You combine deep psychological insight with practical, evidence-based strategies. Your writing is warm, human and personal, like speaking directly to a friend.

PERSON YOU'RE ANALYZING:
Name: %s
Age: %s
Career: %s (%s)
Primary Goal: %s

CURRENT LIFE SATISFACTION:
Work/Studies: %s
Relationships: %s
Health: %s
Finances: %s
Personal Growth: %s

BIG FIVE PERSONALITY PROFILE:
%s
YOUR MISSION:
Write a deeply personalized productivity and self-development analysis for %s. Use the exact scores and life satisfaction above; never write generic advice.

REQUIRED OUTPUT FORMAT (Markdown, ## and ### headers, ** for bold, - for lists):

## QUOTE
One quote (15-25 words) that captures %s's personality and current situation. Format: "Quote text" - Author Name

## %s, Here's Your Unique Personality Blueprint
2-3 sentences capturing the essence of this specific trait combination and life context.

## Your Trait Deep-Dive
One ### section per trait (Openness to Experience, Conscientiousness, Extraversion, Agreeableness, Emotional Stability) with 3-4 second-person sentences on how THIS score shows up day to day.

## Your Natural Superpowers
3-4 concrete strengths that emerge from this combination, with percentile context where relevant.

## Your Growth Edges
2-3 specific pitfalls for this profile, framed as opportunities, with early warning signs.

## Productivity System Designed for YOUR Brain
### Deep Work & Focus
### Energy Management
### Task Management

## Your Life Domain Blueprint
For Career, Relationships, Health, Finances and Personal Growth: acknowledge the current status first, explain it through the traits, then give one book, one channel and one action for THIS WEEK.

## 30-Day Transformation Plan
Week 1-2 and Week 3-4, two actions each.

## Final Insight for %s
3-4 sentences that synthesize personality, life situation and potential.

GUIDELINES:
- Address %s by name 3-5 times; use "you" and contractions.
- Never describe a trait in isolation; show how traits combine with the life context.
- Be specific: exact scores, percentiles, time blocks and concrete examples for %s at %s.
- Balance warmth with honesty. No generic fluff.

Length: 1500-2000 words.`

// buildInsightPrompt arma el prompt del reporte remoto. Los campos de
// demographics ausentes usan valores neutros.
func buildInsightPrompt(scores domain.TraitScoreSet, percentiles domain.PercentileSet, demo *domain.Demographics) string {
	d := domain.Demographics{}
	if demo != nil {
		d = *demo
	}

	name := orDefault(d.Name, "friend")
	age := "your age"
	if d.Age > 0 {
		age = fmt.Sprintf("%d", d.Age)
	}
	career := orDefault(d.Career, "your field")
	careerStage := orDefault(d.CareerStage, "your career stage")
	primaryGoal := orDefault(d.PrimaryGoal, "personal growth")

	pillars := d.LifePillars
	const unspecified = "Not specified"

	return fmt.Sprintf(insightPromptTemplate,
		name,
		age,
		career, careerStage,
		primaryGoal,
		orDefault(pillars.Career, unspecified),
		orDefault(pillars.Relationships, unspecified),
		orDefault(pillars.Health, unspecified),
		orDefault(pillars.Finances, unspecified),
		orDefault(pillars.Growth, unspecified),
		formatTraitProfile(scores, percentiles),
		name,
		name,
		name,
		name,
		name,
		name, career,
	)
}

// formatTraitProfile lista una linea por rasgo; neuroticism se presenta
// invertido como estabilidad emocional.
func formatTraitProfile(scores domain.TraitScoreSet, percentiles domain.PercentileSet) string {
	labels := map[domain.Trait]string{
		domain.TraitOpenness:          "Openness to Experience",
		domain.TraitConscientiousness: "Conscientiousness",
		domain.TraitExtraversion:      "Extraversion",
		domain.TraitAgreeableness:     "Agreeableness",
		domain.TraitNeuroticism:       "Emotional Stability",
	}

	var sb strings.Builder
	for _, trait := range domain.BigFiveTraits {
		score := scores[trait]
		pct := percentiles[trait]
		if trait == domain.TraitNeuroticism {
			score = 100 - score
			pct = 100 - pct
		}
		sb.WriteString(fmt.Sprintf("%s: %.1f/100 (%s) - %.0fth percentile\n", labels[trait], score, promptLevel(score), pct))
	}
	return sb.String()
}

// promptLevel usa cortes mas finos alrededor de la media que TraitLevel.
func promptLevel(score float64) string {
	switch {
	case score >= 70:
		return "Very High"
	case score >= 55:
		return "High"
	case score >= 45:
		return "Moderate"
	case score >= 30:
		return "Low"
	default:
		return "Very Low"
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

package service

import (
	"strings"
	"testing"

	"bigfive-insight/internal/domain"
)

func TestBuildInsightPromptDefaults(t *testing.T) {
	req := sampleInsightRequest()
	prompt := buildInsightPrompt(req.Scores, req.Percentiles, nil)

	for _, want := range []string{
		"Name: friend",
		"Age: your age",
		"Career: your field (your career stage)",
		"Primary Goal: personal growth",
		"Work/Studies: Not specified",
		"Personal Growth: Not specified",
		"## friend, Here's Your Unique Personality Blueprint",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "%!") {
		t.Fatalf("prompt has formatting errors:\n%s", prompt)
	}
}

func TestBuildInsightPromptDemographics(t *testing.T) {
	req := sampleInsightRequest()
	demo := &domain.Demographics{
		Name:        "Tomas",
		Age:         29,
		Career:      "software engineering",
		CareerStage: "mid-level",
		PrimaryGoal: "ship a side project",
		LifePillars: domain.LifePillars{Career: "love it", Finances: "hate it"},
	}
	prompt := buildInsightPrompt(req.Scores, req.Percentiles, demo)

	for _, want := range []string{
		"Name: Tomas",
		"Age: 29",
		"Career: software engineering (mid-level)",
		"Primary Goal: ship a side project",
		"Work/Studies: love it",
		"Finances: hate it",
		"Relationships: Not specified",
		"Final Insight for Tomas",
		"for Tomas at software engineering",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestFormatTraitProfileOrderAndInversion(t *testing.T) {
	scores := domain.TraitScoreSet{
		domain.TraitOpenness:          50,
		domain.TraitConscientiousness: 56,
		domain.TraitExtraversion:      30,
		domain.TraitAgreeableness:     29.9,
		domain.TraitNeuroticism:       75,
	}
	pcts := domain.PercentileSet{
		domain.TraitOpenness:          50,
		domain.TraitConscientiousness: 57.2,
		domain.TraitExtraversion:      26,
		domain.TraitAgreeableness:     25.9,
		domain.TraitNeuroticism:       80,
	}
	got := formatTraitProfile(scores, pcts)
	want := "Openness to Experience: 50.0/100 (Moderate) - 50th percentile\n" +
		"Conscientiousness: 56.0/100 (High) - 57th percentile\n" +
		"Extraversion: 30.0/100 (Low) - 26th percentile\n" +
		"Agreeableness: 29.9/100 (Very Low) - 26th percentile\n" +
		"Emotional Stability: 25.0/100 (Very Low) - 20th percentile\n"
	if got != want {
		t.Fatalf("unexpected profile:\n%s\nwant:\n%s", got, want)
	}
}

func TestPromptLevel(t *testing.T) {
	tests := map[float64]string{
		70: "Very High", 69.9: "High", 55: "High", 54.9: "Moderate",
		45: "Moderate", 44.9: "Low", 30: "Low", 29.9: "Very Low",
	}
	for score, want := range tests {
		if got := promptLevel(score); got != want {
			t.Fatalf("promptLevel(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestBuildFallbackNarrative(t *testing.T) {
	scores := domain.TraitScoreSet{
		domain.TraitOpenness:          60.1,
		domain.TraitConscientiousness: 60,
		domain.TraitExtraversion:      90,
		domain.TraitAgreeableness:     10,
		domain.TraitNeuroticism:       75,
	}
	got := buildFallbackNarrative(scores)

	if !strings.HasPrefix(got, "## Your Personality Profile\n") {
		t.Fatalf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "### Key Insights") || !strings.Contains(got, "### Productivity Tips") {
		t.Fatalf("missing sections:\n%s", got)
	}
	if !strings.Contains(got, "**Openness**: "+fallbackSuggestions[domain.TraitOpenness].high) {
		t.Fatalf("60.1 should use the high openness text")
	}
	if !strings.Contains(got, "**Conscientiousness**: "+fallbackSuggestions[domain.TraitConscientiousness].low) {
		t.Fatalf("exactly 60 should use the low text")
	}
	if !strings.Contains(got, "**Neuroticism**: "+fallbackSuggestions[domain.TraitNeuroticism].high) {
		t.Fatalf("75 neuroticism should use the high text")
	}

	order := []string{"**Openness**", "**Conscientiousness**", "**Extraversion**", "**Agreeableness**", "**Neuroticism**"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(got, marker)
		if idx <= last {
			t.Fatalf("traits not in canonical order:\n%s", got)
		}
		last = idx
	}

	if again := buildFallbackNarrative(scores); again != got {
		t.Fatalf("fallback must be deterministic")
	}
}

func TestBuildFallbackNarrativeSkipsMissingTraits(t *testing.T) {
	got := buildFallbackNarrative(domain.TraitScoreSet{domain.TraitOpenness: 80})
	if strings.Contains(got, "**Neuroticism**") {
		t.Fatalf("missing trait should be skipped:\n%s", got)
	}
	if !strings.Contains(got, "**Openness**") {
		t.Fatalf("present trait should be listed")
	}
}

func TestCleanNarrative(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  ## Title\nbody  ", want: "## Title\nbody"},
		{name: "markdown fence", in: "```markdown\n## Title\n```", want: "## Title"},
		{name: "md fence uppercase", in: "```MD\ntext\n```\n", want: "text"},
		{name: "bare fence", in: "```\nhello\n```", want: "hello"},
		{name: "bom", in: "\uFEFF## Title", want: "## Title"},
		{name: "only fences", in: "```\n```", want: ""},
		{name: "empty", in: "   ", want: ""},
		{name: "inner code kept", in: "intro\n```go\nx := 1\n```\nend", want: "intro\n```go\nx := 1\n```\nend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanNarrative(tt.in); got != tt.want {
				t.Fatalf("cleanNarrative(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

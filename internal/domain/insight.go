package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Provenance indica que camino produjo la narrativa.
type Provenance string

const (
	ProvenanceRemote Provenance = "remote"
	ProvenanceLocal  Provenance = "local"
)

// LifePillars captura la satisfaccion declarada por area de vida (texto libre,
// p.ej. "love it", "hate it").
type LifePillars struct {
	Career        string `json:"career,omitempty" validate:"max=200"`
	Relationships string `json:"relationships,omitempty" validate:"max=200"`
	Health        string `json:"health,omitempty" validate:"max=200"`
	Finances      string `json:"finances,omitempty" validate:"max=200"`
	Growth        string `json:"growth,omitempty" validate:"max=200"`
}

// Demographics es el contexto opcional que personaliza el prompt remoto.
type Demographics struct {
	Name        string      `json:"name,omitempty" validate:"max=200"`
	Age         int         `json:"age,omitempty" validate:"min=0,max=120"`
	Career      string      `json:"career,omitempty" validate:"max=200"`
	CareerStage string      `json:"careerStage,omitempty" validate:"max=200"`
	PrimaryGoal string      `json:"primaryGoal,omitempty" validate:"max=200"`
	LifePillars LifePillars `json:"lifePillars,omitempty"`
}

var demographicsValidator = validator.New()

// Validate chequea limites de los campos de Demographics.
func (d *Demographics) Validate() error {
	if d == nil {
		return nil
	}
	return demographicsValidator.Struct(d)
}

// InsightRequest es la entrada de solo lectura del generador de insights.
type InsightRequest struct {
	Scores       TraitScoreSet
	Percentiles  PercentileSet
	Demographics *Demographics
}

// InsightResult es la narrativa generada junto con su procedencia.
type InsightResult struct {
	Narrative  string     `json:"narrative"`
	Provenance Provenance `json:"provenance"`
	Provider   string     `json:"provider,omitempty"`
	Attempts   int        `json:"attempts"`
}

// PersonalityResult es el resultado agregado de un test evaluado.
type PersonalityResult struct {
	ID          string            `json:"id"`
	Scores      TraitScoreSet     `json:"scores"`
	Percentiles PercentileSet     `json:"percentiles"`
	RawScores   map[Trait]float64 `json:"raw_scores"`
	Narrative   string            `json:"narrative"`
	Provenance  Provenance        `json:"provenance"`
	CreatedAt   time.Time         `json:"created_at"`
}

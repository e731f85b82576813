package domain

// Trait identifica una de las cinco dimensiones Big Five (OCEAN).
type Trait string

const (
	TraitOpenness          Trait = "openness"
	TraitConscientiousness Trait = "conscientiousness"
	TraitExtraversion      Trait = "extraversion"
	TraitAgreeableness     Trait = "agreeableness"
	TraitNeuroticism       Trait = "neuroticism"
)

// BigFiveTraits lista los rasgos en orden canonico. Todo lo que itera rasgos
// (scoring, prompts, fallback) usa este orden para ser deterministico.
var BigFiveTraits = []Trait{
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitNeuroticism,
}

// IsValid indica si t es uno de los cinco rasgos canonicos.
func (t Trait) IsValid() bool {
	switch t {
	case TraitOpenness, TraitConscientiousness, TraitExtraversion, TraitAgreeableness, TraitNeuroticism:
		return true
	}
	return false
}

// QuestionMap asocia cada rasgo con los indices del AnswerVector que lo miden.
type QuestionMap map[Trait][]int

// TraitScoreSet guarda el score normalizado [0,100] por rasgo.
type TraitScoreSet map[Trait]float64

// PercentileSet guarda el percentil [0,100] por rasgo.
type PercentileSet map[Trait]float64

// ScoringResult agrupa el resultado del scorer. No se muta despues de creado.
type ScoringResult struct {
	Scores      TraitScoreSet     `json:"scores"`
	Percentiles PercentileSet     `json:"percentiles"`
	RawScores   map[Trait]float64 `json:"raw_scores"`
}

// questionMap44 y questionMap50 siguen el layout de marcadores IPIP:
// indice mod 5 -> 0 E, 1 N, 2 A, 3 C, 4 O.
var questionMap44 = QuestionMap{
	TraitOpenness:          {4, 9, 14, 19, 24, 29, 34, 39, 43},
	TraitConscientiousness: {3, 8, 13, 18, 23, 28, 33, 38},
	TraitExtraversion:      {0, 5, 10, 15, 20, 25, 30, 35, 40},
	TraitAgreeableness:     {2, 7, 12, 17, 22, 27, 32, 37, 42},
	TraitNeuroticism:       {1, 6, 11, 16, 21, 26, 31, 36, 41},
}

var questionMap50 = QuestionMap{
	TraitOpenness:          {4, 9, 14, 19, 24, 29, 34, 39, 44, 49},
	TraitConscientiousness: {3, 8, 13, 18, 23, 28, 33, 38, 43, 48},
	TraitExtraversion:      {0, 5, 10, 15, 20, 25, 30, 35, 40, 45},
	TraitAgreeableness:     {2, 7, 12, 17, 22, 27, 32, 37, 42, 47},
	TraitNeuroticism:       {1, 6, 11, 16, 21, 26, 31, 36, 41, 46},
}

// DefaultQuestionMap devuelve una copia del mapa incorporado para la longitud
// de test indicada. ok es false si la longitud no esta soportada.
func DefaultQuestionMap(length int) (QuestionMap, bool) {
	var src QuestionMap
	switch length {
	case 44:
		src = questionMap44
	case 50:
		src = questionMap50
	default:
		return nil, false
	}
	out := make(QuestionMap, len(src))
	for trait, indices := range src {
		out[trait] = append([]int(nil), indices...)
	}
	return out, true
}

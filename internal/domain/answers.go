package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinAnswerValue = 1.0
	MaxAnswerValue = 5.0
)

// SupportedTestLengths son las longitudes de cuestionario aceptadas.
var SupportedTestLengths = []int{44, 50}

var (
	ErrInvalidLength = errors.New("invalid answer count")
	ErrInvalidType   = errors.New("answers must be numeric")
	ErrOutOfRange    = errors.New("answer out of range")
)

// AnswerVector es una respuesta validada al cuestionario. Solo se construye
// via ParseAnswers o NewAnswerVector, por lo que siempre cumple las reglas de
// longitud y rango. El zero value tiene longitud 0 y no es valido.
type AnswerVector struct {
	values []float64
}

// Len devuelve la cantidad de respuestas.
func (v AnswerVector) Len() int { return len(v.values) }

// At devuelve la respuesta en la posicion i.
func (v AnswerVector) At(i int) float64 { return v.values[i] }

// Values devuelve una copia de las respuestas.
func (v AnswerVector) Values() []float64 {
	return append([]float64(nil), v.values...)
}

// IsSupportedLength indica si n es una longitud de test soportada.
func IsSupportedLength(n int) bool {
	for _, l := range SupportedTestLengths {
		if n == l {
			return true
		}
	}
	return false
}

// NewAnswerVector valida y copia valores ya numericos.
func NewAnswerVector(values []float64) (AnswerVector, error) {
	if !IsSupportedLength(len(values)) {
		return AnswerVector{}, invalidLength(len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return AnswerVector{}, fmt.Errorf("%w: answer %d is not a finite number", ErrInvalidType, i)
		}
	}
	if err := checkRange(values); err != nil {
		return AnswerVector{}, err
	}
	return AnswerVector{values: append([]float64(nil), values...)}, nil
}

// ParseAnswers valida una lista decodificada de JSON (o similar). Se chequea en
// orden: longitud, tipo numerico, rango. Los strings numericos se aceptan
// ("3", " 4.5 "); booleanos, null y objetos no.
func ParseAnswers(raw []any) (AnswerVector, error) {
	if !IsSupportedLength(len(raw)) {
		return AnswerVector{}, invalidLength(len(raw))
	}

	values := make([]float64, len(raw))
	for i, item := range raw {
		v, ok := toFloat(item)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return AnswerVector{}, fmt.Errorf("%w: answer %d has value %v", ErrInvalidType, i, item)
		}
		values[i] = v
	}

	if err := checkRange(values); err != nil {
		return AnswerVector{}, err
	}
	return AnswerVector{values: values}, nil
}

// ValidateAnswers permite validar sin construir el vector (p.ej. antes de
// consumir un slot de rate limit).
func ValidateAnswers(raw []any) error {
	_, err := ParseAnswers(raw)
	return err
}

func invalidLength(n int) error {
	return fmt.Errorf("%w: expected 44 or 50 answers, got %d", ErrInvalidLength, n)
}

func checkRange(values []float64) error {
	for i, v := range values {
		if v < MinAnswerValue || v > MaxAnswerValue {
			return fmt.Errorf("%w: answer %d is %g, must be in the range 1-5", ErrOutOfRange, i, v)
		}
	}
	return nil
}

func toFloat(item any) (float64, bool) {
	switch v := item.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

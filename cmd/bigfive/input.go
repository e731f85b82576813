package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bigfive-insight/internal/domain"
)

// answerInput son los flags compartidos por score e insight.
type answerInput struct {
	answers string
	file    string
}

// testFile acepta tanto un array plano como el body del endpoint HTTP.
type testFile struct {
	Answers      []any                `json:"answers"`
	Demographics *domain.Demographics `json:"demographics"`
}

// load devuelve las respuestas sin tipar; la validacion la hace el dominio.
func (in answerInput) load() ([]any, *domain.Demographics, error) {
	switch {
	case in.answers != "" && in.file != "":
		return nil, nil, errors.New("cannot use --answers together with --file")
	case in.answers != "":
		parts := strings.Split(in.answers, ",")
		raw := make([]any, 0, len(parts))
		for _, p := range parts {
			raw = append(raw, strings.TrimSpace(p))
		}
		return raw, nil, nil
	case in.file != "":
		data, err := os.ReadFile(in.file)
		if err != nil {
			return nil, nil, fmt.Errorf("read answers file: %w", err)
		}
		return decodeTestFile(data)
	default:
		return nil, nil, errors.New("must provide --answers or --file")
	}
}

func decodeTestFile(data []byte) ([]any, *domain.Demographics, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, nil, fmt.Errorf("parse answers file: %w", err)
		}
		return raw, nil, nil
	}
	var tf testFile
	if err := json.Unmarshal(trimmed, &tf); err != nil {
		return nil, nil, fmt.Errorf("parse answers file: %w", err)
	}
	if tf.Answers == nil {
		return nil, nil, errors.New("answers file has no \"answers\" field")
	}
	return tf.Answers, tf.Demographics, nil
}

// loadQuestionMap lee un mapa rasgo -> indices (base 0) en YAML o JSON, p.ej.
//
//	openness: [4, 9, 14]
//	neuroticism: [1, 6, 11]
//
// Los rasgos que no aparecen quedan sin items y puntuan 0.
func loadQuestionMap(path string) (domain.QuestionMap, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question map: %w", err)
	}
	var raw map[string][]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse question map: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("question map is empty")
	}
	qmap := make(domain.QuestionMap, len(raw))
	for name, indices := range raw {
		trait := domain.Trait(strings.ToLower(strings.TrimSpace(name)))
		if !trait.IsValid() {
			return nil, fmt.Errorf("question map: unknown trait %q", name)
		}
		qmap[trait] = indices
	}
	return qmap, nil
}

package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
// Si Responses/Errs tienen elementos se consumen en orden, uno por llamada;
// al agotarse se usan Response y Err.
type MockClient struct {
	Response  string
	Err       error
	Responses []string
	Errs      []error
	// Block hace que Generate espere a que ctx termine (simula timeouts).
	Block bool

	mu      sync.Mutex
	calls   int
	prompts []string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	idx := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	resp, err := m.Response, m.Err
	if idx < len(m.Responses) {
		resp = m.Responses[idx]
	}
	if idx < len(m.Errs) {
		err = m.Errs[idx]
	}
	block := m.Block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return resp, err
}

// Calls devuelve cuantas veces se invoco Generate.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompt devuelve el ultimo prompt recibido.
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

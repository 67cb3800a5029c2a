package inference

import (
	"context"
	"sync"
)

// MockResponse is a canned reply for the MockInvoker. Raw, when set, is returned
// verbatim instead of wrapping Generation.
type MockResponse struct {
	Generation string
	Raw        []byte
	Err        error
}

// MockInvoker is a deterministic Invoker for tests and offline runs.
// It returns canned responses in FIFO order and records every request.
type MockInvoker struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  *MockResponse
	Calls     []InvokeRequest
}

// NewMockInvoker creates a MockInvoker with the given canned responses.
func NewMockInvoker(responses ...MockResponse) *MockInvoker {
	return &MockInvoker{responses: responses}
}

// WithFallback sets the response served once the queue is empty.
func (m *MockInvoker) WithFallback(resp MockResponse) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &resp
	return m
}

// InvokeModel returns the next canned response, the fallback, or
// ErrProviderUnavailable when neither is available.
func (m *MockInvoker) InvokeModel(_ context.Context, req *InvokeRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, *req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.fallback != nil:
		resp = *m.fallback
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Raw != nil {
		return resp.Raw, nil
	}
	return encodeGeneration(resp.Generation)
}

// ModelID returns "mock".
func (m *MockInvoker) ModelID() string {
	return "mock"
}

// CallCount returns the number of InvokeModel calls made.
func (m *MockInvoker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

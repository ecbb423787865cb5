package mocks

import "sync"

// MockMessageQueue records published messages and lets tests inject failures.
type MockMessageQueue struct {
	mu          sync.Mutex
	published   map[string][][]byte
	subscribers map[string][]func([]byte) error

	PublishFunc func(subject string, data []byte) error
	CloseFunc   func() error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		published:   make(map[string][][]byte),
		subscribers: make(map[string][]func([]byte) error),
	}
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}

	m.mu.Lock()
	m.published[subject] = append(m.published[subject], data)
	handlers := append([]func([]byte) error(nil), m.subscribers[subject]...)
	m.mu.Unlock()

	for _, h := range handlers {
		if err := h(data); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func([]byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[subject] = append(m.subscribers[subject], handler)
	return nil
}

func (m *MockMessageQueue) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Published returns all messages published to subject
func (m *MockMessageQueue) Published(subject string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.published[subject]...)
}

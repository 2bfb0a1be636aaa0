package messaging

import "sync"

// MockMessageSender records trade messages in memory for testing.
type MockMessageSender struct {
	mu     sync.Mutex
	trades []*TradeMessage
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// SendTradeMessage records the message.
func (m *MockMessageSender) SendTradeMessage(trade *TradeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, trade)
	return nil
}

// Trades returns a copy of the recorded messages.
func (m *MockMessageSender) Trades() []*TradeMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*TradeMessage, len(m.trades))
	copy(out, m.trades)
	return out
}

// Close does nothing.
func (m *MockMessageSender) Close() error {
	return nil
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)

package queue

import (
	"context"
	"fmt"
	"sync"
)

var (
	senderPool   chan *QueueMessageSender
	poolInitOnce sync.Once
	maxPoolSize  = 32

	poolMu      sync.Mutex
	poolBrokers []string
	poolTopic   string
)

// ConfigurePool sets the brokers and topic pooled senders connect to. Must be
// called before the first SendMessage; later calls have no effect.
func ConfigurePool(brokers []string, topic string) {
	poolMu.Lock()
	defer poolMu.Unlock()
	poolBrokers = brokers
	poolTopic = topic
}

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		poolMu.Lock()
		brokers, topic := poolBrokers, poolTopic
		poolMu.Unlock()

		senderPool = make(chan *QueueMessageSender, maxPoolSize)
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueueMessageSender(brokers, topic)
			if err != nil {
				fmt.Printf("Error creating sender: %v\n", err)
				continue
			}
			senderPool <- sender
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() *QueueMessageSender {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		fmt.Printf("Warning: sender pool is empty\n")
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender *QueueMessageSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		fmt.Printf("Warning: sender pool is full\n")
		_ = sender.Close()
	}
}

// SendMessage sends a depth message using a pooled sender.
func SendMessage(ctx context.Context, msg *DepthMessage) error {
	sender := GetSender()
	if sender == nil {
		return fmt.Errorf("failed to get message sender from pool")
	}

	if err := sender.SendDepthMessage(ctx, msg); err != nil {
		// A failed sender may hold a broken connection; drop it instead of
		// returning it to the pool.
		_ = sender.Close()
		return err
	}

	ReturnSender(sender)
	return nil
}

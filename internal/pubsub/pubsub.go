// Package pubsub provides the in-process event bus the client uses to
// announce state changes (such as a followee removal) to view components
// without coupling them to the service layer.
package pubsub

import "context"

// Message is one event on the bus.
type Message struct {
	Topic    string
	Payload  []byte
	Metadata map[string]string
}

// Handler processes one delivered message. A non-nil error nacks the
// message.
type Handler func(ctx context.Context, msg Message) error

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type Subscriber interface {
	// Subscribe registers handler for topic and returns immediately;
	// delivery happens on a background goroutine until ctx is canceled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// Bus combines both halves plus cleanup.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}

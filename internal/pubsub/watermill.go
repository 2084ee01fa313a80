package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

// WatermillBus implements Bus over watermill's in-memory GoChannel.
type WatermillBus struct {
	ch  *gochannel.GoChannel
	log logging.Logger
}

func NewWatermillBus(log logging.Logger) *WatermillBus {
	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	return &WatermillBus{ch: ch, log: log}
}

func (b *WatermillBus) Publish(ctx context.Context, msg Message) error {
	wm := message.NewMessage(watermill.NewUUID(), msg.Payload)
	for k, v := range msg.Metadata {
		wm.Metadata.Set(k, v)
	}
	return b.ch.Publish(msg.Topic, wm)
}

func (b *WatermillBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.ch.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wm := range messages {
			md := make(map[string]string, len(wm.Metadata))
			for k, v := range wm.Metadata {
				md[k] = v
			}
			msg := Message{Topic: topic, Payload: wm.Payload, Metadata: md}

			if err := handler(ctx, msg); err != nil {
				b.log.Error(ctx, "event handler failed", "topic", topic, "msg_id", wm.UUID, "error", err)
				wm.Nack()
				continue
			}
			wm.Ack()
		}
	}()

	return nil
}

func (b *WatermillBus) Close() error {
	return b.ch.Close()
}

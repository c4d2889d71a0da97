// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/locbeacon/internal/metrics"
	"github.com/tomtom215/locbeacon/internal/models"
)

// ErrBusClosed is returned when publishing to a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Bus is the in-process pub/sub that carries registry changes to the
// WebSocket hub and the optional NATS forwarder. Publishing never blocks on
// subscribers, and events published while nobody subscribes are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	mu     sync.RWMutex
	closed bool
}

// NewBus creates an in-process bus.
func NewBus(cfg BusConfig, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputBuffer,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		}, logger),
	}
}

// Publish encodes event and publishes it on its topic.
func (b *Bus) Publish(_ context.Context, event models.LocationEvent) error {
	topic, err := TopicFor(event.Type)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	data, err := SerializeEvent(&event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataEventType, event.Type)
	msg.Metadata.Set(MetadataUserID, event.UserID)

	err = b.pubsub.Publish(topic, msg)
	metrics.RecordEventPublish("bus", topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscriber returns the bus as a Watermill subscriber for router handlers.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

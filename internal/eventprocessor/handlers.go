// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// WebSocketBroadcaster sends an encoded payload to every connected viewer.
type WebSocketBroadcaster interface {
	BroadcastRaw(messageType string, data []byte)
}

// WebSocketHandler turns bus events into viewer frames.
type WebSocketHandler struct {
	hub    WebSocketBroadcaster
	logger watermill.LoggerAdapter

	messagesReceived  atomic.Int64
	messagesBroadcast atomic.Int64
}

// NewWebSocketHandler creates a handler that broadcasts to hub.
func NewWebSocketHandler(hub WebSocketBroadcaster, logger watermill.LoggerAdapter) (*WebSocketHandler, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &WebSocketHandler{hub: hub, logger: logger}, nil
}

// Handle broadcasts one event. Undecodable events are acked and dropped,
// since redelivery would fail the same way.
func (h *WebSocketHandler) Handle(msg *message.Message) error {
	h.messagesReceived.Add(1)

	event, err := DeserializeEvent(msg.Payload)
	if err != nil {
		h.logger.Error("dropping undecodable event", err, watermill.LogFields{"message_uuid": msg.UUID})
		return nil
	}

	payload, err := ViewerPayload(event)
	if err != nil {
		h.logger.Error("dropping event without viewer payload", err, watermill.LogFields{"message_uuid": msg.UUID})
		return nil
	}

	h.hub.BroadcastRaw(event.Type, payload)
	h.messagesBroadcast.Add(1)
	return nil
}

// Stats returns handler counters.
func (h *WebSocketHandler) Stats() HandlerStats {
	return HandlerStats{
		MessagesReceived: h.messagesReceived.Load(),
		MessagesHandled:  h.messagesBroadcast.Load(),
	}
}

// HandlerStats holds runtime counters for a handler.
type HandlerStats struct {
	MessagesReceived int64
	MessagesHandled  int64
	MessagesFailed   int64
}

// EventForwarder publishes bus messages to an external broker.
type EventForwarder interface {
	Forward(ctx context.Context, topic string, msg *message.Message) error
}

// ForwardHandler copies bus events to an EventForwarder.
type ForwardHandler struct {
	forwarder EventForwarder
	logger    watermill.LoggerAdapter

	messagesReceived  atomic.Int64
	messagesForwarded atomic.Int64
	messagesFailed    atomic.Int64
}

// NewForwardHandler creates a handler that forwards to f.
func NewForwardHandler(f EventForwarder, logger watermill.LoggerAdapter) (*ForwardHandler, error) {
	if f == nil {
		return nil, fmt.Errorf("forwarder required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &ForwardHandler{forwarder: f, logger: logger}, nil
}

// Handle forwards one event. While the breaker is open the event is dropped
// instead of retried, so a broker outage cannot back up the bus.
func (h *ForwardHandler) Handle(msg *message.Message) error {
	h.messagesReceived.Add(1)

	eventType := msg.Metadata.Get(MetadataEventType)
	topic, err := TopicFor(eventType)
	if err != nil {
		h.messagesFailed.Add(1)
		h.logger.Error("dropping event with unknown type", err, watermill.LogFields{"message_uuid": msg.UUID})
		return nil
	}

	forwarded := message.NewMessage(msg.UUID, msg.Payload)
	for k, v := range msg.Metadata {
		forwarded.Metadata.Set(k, v)
	}

	if err := h.forwarder.Forward(msg.Context(), topic, forwarded); err != nil {
		h.messagesFailed.Add(1)
		if errors.Is(err, ErrBreakerOpen) {
			return nil
		}
		return err
	}

	h.messagesForwarded.Add(1)
	return nil
}

// Stats returns handler counters.
func (h *ForwardHandler) Stats() HandlerStats {
	return HandlerStats{
		MessagesReceived: h.messagesReceived.Load(),
		MessagesHandled:  h.messagesForwarded.Load(),
		MessagesFailed:   h.messagesFailed.Load(),
	}
}

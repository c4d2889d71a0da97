// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package services

import (
	"context"
)

// PipelineRunner is satisfied by *eventprocessor.Pipeline.
type PipelineRunner interface {
	Run(ctx context.Context) error
}

// EventPipelineService runs the event router that feeds viewers and NATS.
// The pipeline builds a fresh router per Run, so restarts are safe.
type EventPipelineService struct {
	pipeline PipelineRunner
	name     string
}

// NewEventPipelineService wraps pipeline.
func NewEventPipelineService(pipeline PipelineRunner) *EventPipelineService {
	return &EventPipelineService{
		pipeline: pipeline,
		name:     "event-pipeline",
	}
}

// Serve implements suture.Service.
func (e *EventPipelineService) Serve(ctx context.Context) error {
	return e.pipeline.Run(ctx)
}

func (e *EventPipelineService) String() string {
	return e.name
}

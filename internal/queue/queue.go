// Package queue defines the durable job contract the pipeline runs on:
// typed jobs, delayed enqueue, bounded retry with exponential backoff and
// at-least-once delivery. Handlers own their idempotency. The in-process
// implementation in memory.go backs tests and single-node deployments; a
// broker-backed implementation satisfies the same interface.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType identifies a pipeline stage.
type JobType string

// Pipeline job types.
const (
	JobGenerateIdeas   JobType = "generateIdeas"
	JobGenerateAssets  JobType = "generateAssets"
	JobScoreAssets     JobType = "scoreAssets"
	JobRewriteLowScore JobType = "rewriteLowScore"
	JobSchedule        JobType = "schedule"
	JobPublish         JobType = "publish"
	JobMetricsSync     JobType = "metricsSync"
	JobPatternMining   JobType = "patternMining"
)

// Job is one unit of work delivered to a handler. Attempt starts at 1.
type Job struct {
	ID         uuid.UUID
	Type       JobType
	Payload    json.RawMessage
	Attempt    int
	EnqueuedAt time.Time
}

// Decode unmarshals the job payload into v.
func (j Job) Decode(v any) error {
	return json.Unmarshal(j.Payload, v)
}

// Options tune a single enqueue call.
type Options struct {
	// Delay holds the job back before first delivery.
	Delay time.Duration
	// Priority orders ready jobs within a type; lower runs first.
	Priority int
}

// Handler processes one job. A retryable error re-enqueues the job with
// backoff until the attempt cap; any other error dead-letters it.
type Handler func(ctx context.Context, job Job) error

// Queue is the enqueue side handed to job handlers and entry points.
type Queue interface {
	Enqueue(ctx context.Context, jobType JobType, payload any, opts Options) (uuid.UUID, error)
}

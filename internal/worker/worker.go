// Package worker assembles the pipeline runtime: store, queue, LLM
// client and all job handlers, wired together once at startup and
// passed explicitly instead of living in globals.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jonathan/viral-factory/internal/config"
	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/generation"
	"github.com/jonathan/viral-factory/internal/insights"
	"github.com/jonathan/viral-factory/internal/llm"
	"github.com/jonathan/viral-factory/internal/pipeline"
	"github.com/jonathan/viral-factory/internal/publish"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/regen"
	"github.com/jonathan/viral-factory/internal/retrieval"
	"github.com/jonathan/viral-factory/internal/scheduling"
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
)

// Per-type worker pool sizes. Ideation stays narrow to respect provider
// rate limits; dispatch is wide because most invocations are cheap
// early exits.
const (
	concurrencyIdeas    = 2
	concurrencyAssets   = 5
	concurrencyScoring  = 5
	concurrencyRewrite  = 3
	concurrencySchedule = 10
	concurrencyPublish  = 10
	concurrencyFeedback = 1
)

// Runtime is the assembled worker.
type Runtime struct {
	Store      store.Store
	Queue      *queue.Memory
	Scheduling *scheduling.Stage

	llm    llm.Client
	pg     *store.Postgres
	cron   *cron.Cron
	logger *log.Logger
}

// New builds the runtime from configuration. A missing DATABASE_URL
// runs on the in-memory store, which suits single-node and mock runs.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Runtime, error) {
	r := &Runtime{logger: logger}

	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		r.pg = pg
		r.Store = pg
		logger.Printf("[Worker] using postgres store")
	} else {
		r.Store = store.NewMemory()
		logger.Printf("[Worker] using in-memory store")
	}

	client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.llm = client

	quiet, err := scheduling.ParseQuietHours(cfg.QuietHoursStart, cfg.QuietHoursEnd)
	if err != nil {
		r.Close()
		return nil, err
	}

	r.Queue = queue.NewMemory(logger)
	retriever := retrieval.NewStatic(nil)

	gen := generation.NewStage(r.Store, r.Queue, client, retriever, logger)
	rg := regen.NewStage(r.Store, r.Queue, client, cfg.MinScore, cfg.MaxRegenAttempts, logger)
	r.Scheduling = scheduling.NewStage(r.Store, r.Queue, quiet, cfg.AutoPublishEnabled, logger)
	pub := publish.NewDispatcher(r.Store, cfg.WebhookURL, cfg.Environment, logger)
	ins := insights.NewStage(r.Store, insights.MockFetcher{}, logger)

	r.Queue.Register(queue.JobGenerateIdeas, gen.HandleGenerateIdeas, concurrencyIdeas)
	r.Queue.Register(queue.JobGenerateAssets, gen.HandleGenerateAssets, concurrencyAssets)
	r.Queue.Register(queue.JobScoreAssets, rg.HandleScoreAssets, concurrencyScoring)
	r.Queue.Register(queue.JobRewriteLowScore, rg.HandleRewriteLowScore, concurrencyRewrite)
	r.Queue.Register(queue.JobSchedule, r.Scheduling.HandleSchedule, concurrencySchedule)
	r.Queue.Register(queue.JobPublish, pub.HandlePublish, concurrencyPublish)
	r.Queue.Register(queue.JobMetricsSync, ins.HandleMetricsSync, concurrencyFeedback)
	r.Queue.Register(queue.JobPatternMining, ins.HandlePatternMining, concurrencyFeedback)

	return r, nil
}

// Start launches the queue workers and the periodic sweeps.
func (r *Runtime) Start(ctx context.Context) error {
	r.Queue.Start(ctx)
	c, err := insights.StartCron(r.Queue, r.Scheduling, r.logger)
	if err != nil {
		return err
	}
	r.cron = c
	r.logger.Printf("[Worker] pipeline worker started")
	return nil
}

// batchRequest carries the validated submission fields.
type batchRequest struct {
	Brief     string           `validate:"required,min=10"`
	Platforms []types.Platform `validate:"required,min=1"`
}

// SubmitBatch creates a batch and enqueues ideation for it.
func (r *Runtime) SubmitBatch(ctx context.Context, brief string, platforms []types.Platform, brandID, offerID uuid.UUID) (*types.Batch, error) {
	if err := validateBatchRequest(brief, platforms); err != nil {
		return nil, err
	}
	batch := &types.Batch{
		ID:        uuid.New(),
		Brief:     brief,
		Platforms: platforms,
		BrandID:   brandID,
		OfferID:   offerID,
		Status:    types.BatchDraft,
	}
	if err := pipeline.CheckBatch(batch.Status, types.BatchGenerating); err != nil {
		return nil, err
	}
	if err := r.Store.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	if _, err := r.Queue.Enqueue(ctx, queue.JobGenerateIdeas, queue.GenerateIdeasPayload{BatchID: batch.ID}, queue.Options{}); err != nil {
		return nil, fmt.Errorf("failed to enqueue ideation for batch %s: %w", batch.ID, err)
	}
	return batch, nil
}

// validateBatchRequest rejects malformed submissions before anything is
// persisted or enqueued.
func validateBatchRequest(brief string, platforms []types.Platform) error {
	req := batchRequest{Brief: brief, Platforms: platforms}
	if err := validator.New().Struct(req); err != nil {
		verr := &errs.ValidationError{Subject: "batch request", Cause: err}
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				verr.Fields = append(verr.Fields, errs.FieldError{Field: fe.Field(), Message: fe.Tag()})
			}
		}
		return verr
	}
	for _, p := range platforms {
		if !p.Valid() {
			return &errs.ValidationError{
				Subject: "batch request",
				Fields:  []errs.FieldError{{Field: "Platforms", Message: fmt.Sprintf("unknown platform %q", p)}},
			}
		}
	}
	return nil
}

// ScheduleAsset schedules an approved asset for publication.
func (r *Runtime) ScheduleAsset(ctx context.Context, assetID uuid.UUID, at time.Time, timezone string, mode types.PublishMode) (*types.Schedule, error) {
	return r.Scheduling.Create(ctx, assetID, at, timezone, mode)
}

// Close shuts the runtime down in reverse start order.
func (r *Runtime) Close() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	if r.Queue != nil {
		r.Queue.Close()
	}
	if r.llm != nil {
		_ = r.llm.Close()
	}
	if r.pg != nil {
		r.pg.Close()
	}
}

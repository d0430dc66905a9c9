package publish

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/pipeline"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
)

// DefaultMockDelay is the artificial latency of the mock connector.
const DefaultMockDelay = 100 * time.Millisecond

// Dispatcher selects a connector by publish mode and environment and
// records the result of each attempt.
type Dispatcher struct {
	store       store.Store
	logger      *log.Logger
	mock        Connector
	webhook     Connector
	environment string
	now         func() time.Time
}

// NewDispatcher builds a dispatcher. webhookURL may be empty; in
// production that makes non-mock modes fail with a configuration error
// instead of silently mocking.
func NewDispatcher(st store.Store, webhookURL, environment string, logger *log.Logger) *Dispatcher {
	d := &Dispatcher{
		store:       st,
		logger:      logger,
		mock:        NewMockConnector(DefaultMockDelay),
		environment: environment,
		now:         time.Now,
	}
	if webhookURL != "" {
		d.webhook = NewWebhookConnector(webhookURL)
	}
	return d
}

// selectConnector picks the connector purely from mode and environment.
func (d *Dispatcher) selectConnector(mode types.PublishMode) (Connector, error) {
	if mode == types.PublishMock {
		return d.mock, nil
	}
	if d.webhook != nil {
		return d.webhook, nil
	}
	if d.environment != "production" {
		return d.mock, nil
	}
	return nil, &errs.ConfigurationError{
		Message: fmt.Sprintf("no publish connector configured for mode %s in production", mode),
	}
}

// HandlePublish executes one queued schedule. Success or failure, it
// writes exactly one Post and moves the schedule and asset to a terminal
// state. Redelivery for a schedule no longer QUEUED is a no-op.
func (d *Dispatcher) HandlePublish(ctx context.Context, job queue.Job) error {
	var payload queue.PublishPayload
	if err := job.Decode(&payload); err != nil {
		return &errs.ValidationError{Subject: "publish payload", Cause: err}
	}

	schedule, err := d.store.GetSchedule(ctx, payload.ScheduleID)
	if err != nil {
		return err
	}
	if schedule.Status != types.ScheduleQueued {
		d.logger.Printf("[Publish] schedule %s is %s, skipping", schedule.ID, schedule.Status)
		return nil
	}

	asset, err := d.store.GetAsset(ctx, schedule.AssetID)
	if err != nil {
		return err
	}

	connector, cerr := d.selectConnector(schedule.PublishMode)
	var result *ConnectorResult
	pubErr := cerr
	if pubErr == nil {
		result, pubErr = connector.Publish(ctx, asset.Platform, asset.Payload)
	}

	success := pubErr == nil && result != nil && result.Success
	post := &types.Post{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		Platform:    asset.Platform,
		PublishedAt: d.now(),
		PublishMode: schedule.PublishMode,
		Success:     success,
	}
	if result != nil {
		post.ExternalID = result.ExternalID
		post.Response = result.RawResponse
	}
	if pubErr != nil {
		post.Response = map[string]any{"error": pubErr.Error()}
	}
	if err := d.store.CreatePost(ctx, post); err != nil {
		return err
	}

	if success {
		if err := d.store.UpdateScheduleStatus(ctx, schedule.ID, types.ScheduleQueued, types.SchedulePublished); err != nil {
			return err
		}
		if err := d.advanceAsset(ctx, asset, types.AssetPublished); err != nil {
			return err
		}
		d.logger.Printf("[Publish] schedule %s published asset %s as %s", schedule.ID, asset.ID, post.ExternalID)
		return nil
	}

	if err := d.store.UpdateScheduleStatus(ctx, schedule.ID, types.ScheduleQueued, types.ScheduleFailed); err != nil {
		return err
	}
	if err := d.advanceAsset(ctx, asset, types.AssetFailed); err != nil {
		return err
	}
	d.logger.Printf("[Publish] schedule %s failed for asset %s: %v", schedule.ID, asset.ID, pubErr)

	// A missing production connector is an operator problem; surface it
	// through the dead-letter path even though the entities are settled.
	if cerr != nil {
		return cerr
	}
	return nil
}

// advanceAsset moves the asset to its terminal state, tolerating the
// narrow race where a duplicate delivery already did.
func (d *Dispatcher) advanceAsset(ctx context.Context, asset *types.Asset, to types.AssetStatus) error {
	if asset.Status == to || pipeline.AssetTerminal(asset.Status) {
		return nil
	}
	if err := pipeline.CheckAsset(asset.Status, to); err != nil {
		return err
	}
	return d.store.UpdateAssetStatus(ctx, asset.ID, asset.Status, to)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/viral-factory/internal/config"
	"github.com/jonathan/viral-factory/internal/types"
	"github.com/jonathan/viral-factory/internal/worker"
)

var (
	scheduleConfigPath string
	scheduleAsset      string
	scheduleAt         string
	scheduleTimezone   string
	scheduleMode       string
	scheduleWait       time.Duration
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule an approved asset for publication",
	Long: `Create a schedule for an approved asset and run the dispatch loop
until it settles. MOCK mode publishes through the mock connector, MANUAL
queues immediately when due, AUTO additionally honors quiet hours, the
global auto-publish flag and a final risk re-check.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleConfigPath, "config", "", "Path to config.json file")
	scheduleCmd.Flags().StringVarP(&scheduleAsset, "asset", "a", "", "Asset ID (UUID)")
	scheduleCmd.Flags().StringVarP(&scheduleAt, "at", "t", "", "Publication time, RFC 3339 (defaults to now)")
	scheduleCmd.Flags().StringVar(&scheduleTimezone, "timezone", "UTC", "IANA timezone recorded on the schedule")
	scheduleCmd.Flags().StringVarP(&scheduleMode, "mode", "m", "MOCK", "Publish mode: MOCK, MANUAL or AUTO")
	scheduleCmd.Flags().DurationVar(&scheduleWait, "wait", time.Minute, "How long to wait for dispatch to settle")
	_ = scheduleCmd.MarkFlagRequired("asset")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(scheduleConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	assetID, err := uuid.Parse(scheduleAsset)
	if err != nil {
		return fmt.Errorf("invalid --asset: %w", err)
	}

	var mode types.PublishMode
	switch strings.ToUpper(scheduleMode) {
	case "MOCK":
		mode = types.PublishMock
	case "MANUAL":
		mode = types.PublishManual
	case "AUTO":
		mode = types.PublishAuto
	default:
		return fmt.Errorf("unknown publish mode %q", scheduleMode)
	}

	at := time.Now()
	if scheduleAt != "" {
		at, err = time.Parse(time.RFC3339, scheduleAt)
		if err != nil {
			return fmt.Errorf("invalid --at, want RFC 3339: %w", err)
		}
	}

	ctx := context.Background()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	rt, err := worker.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build worker runtime: %w", err)
	}
	defer rt.Close()

	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	schedule, err := rt.ScheduleAsset(ctx, assetID, at, scheduleTimezone, mode)
	if err != nil {
		return fmt.Errorf("failed to schedule asset: %w", err)
	}
	fmt.Printf("Schedule %s created (%s at %s)\n", schedule.ID, mode, at.Format(time.RFC3339))

	if !rt.Queue.Drain(scheduleWait) {
		fmt.Println("Dispatch still pending; the schedule may be deferred or held.")
	}

	final, err := rt.Store.GetSchedule(ctx, schedule.ID)
	if err != nil {
		return fmt.Errorf("failed to reload schedule: %w", err)
	}
	fmt.Printf("Schedule %s is %s\n", final.ID, final.Status)

	posts, err := rt.Store.ListPostsByAsset(ctx, assetID)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}
	for _, post := range posts {
		fmt.Printf("  post %s success=%t external=%s\n", post.ID, post.Success, post.ExternalID)
	}
	return nil
}

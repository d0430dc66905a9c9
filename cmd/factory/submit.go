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
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
	"github.com/jonathan/viral-factory/internal/worker"
)

var (
	submitConfigPath string
	submitBrief      string
	submitPlatforms  []string
	submitBrand      string
	submitOffer      string
	submitWait       time.Duration
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a brief and run the batch in-process",
	Long: `Create a content batch from a brief, run ideation, generation and
scoring against it, and print the resulting assets.

Brand and offer IDs are required when DATABASE_URL is set. Without a
database the command runs on the in-memory store and seeds a demo brand
and offer when none are given.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitConfigPath, "config", "", "Path to config.json file")
	submitCmd.Flags().StringVarP(&submitBrief, "brief", "b", "", "Campaign brief text")
	submitCmd.Flags().StringSliceVarP(&submitPlatforms, "platforms", "p", []string{"TIKTOK", "INSTAGRAM", "LINKEDIN"}, "Target platforms")
	submitCmd.Flags().StringVar(&submitBrand, "brand", "", "Brand ID (UUID)")
	submitCmd.Flags().StringVar(&submitOffer, "offer", "", "Offer ID (UUID)")
	submitCmd.Flags().DurationVar(&submitWait, "wait", 5*time.Minute, "How long to wait for the batch to finish")
	_ = submitCmd.MarkFlagRequired("brief")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(submitConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	platforms := make([]types.Platform, 0, len(submitPlatforms))
	for _, raw := range submitPlatforms {
		p := types.Platform(strings.ToUpper(strings.TrimSpace(raw)))
		if !p.Valid() {
			return fmt.Errorf("unknown platform %q", raw)
		}
		platforms = append(platforms, p)
	}

	ctx := context.Background()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	rt, err := worker.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build worker runtime: %w", err)
	}
	defer rt.Close()

	brandID, offerID, err := resolveRefs(rt.Store)
	if err != nil {
		return err
	}

	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	batch, err := rt.SubmitBatch(ctx, submitBrief, platforms, brandID, offerID)
	if err != nil {
		return fmt.Errorf("failed to submit batch: %w", err)
	}
	fmt.Printf("Batch %s submitted for %d platform(s)\n", batch.ID, len(platforms))

	if !rt.Queue.Drain(submitWait) {
		fmt.Println("Timed out waiting for the batch; partial results below.")
	}

	assets, err := rt.Store.ListAssetsByBatch(ctx, batch.ID)
	if err != nil {
		return fmt.Errorf("failed to list batch assets: %w", err)
	}
	for _, asset := range assets {
		line := fmt.Sprintf("  %s  %-10s %-16s %s", asset.ID, asset.Platform, asset.AssetType, asset.Status)
		if asset.Score != nil {
			line += fmt.Sprintf("  quality=%d risk=%s", asset.Score.Quality.Overall, asset.Score.Risk.RiskLevel)
		}
		fmt.Println(line)
	}
	if dead := rt.Queue.DeadLetters(); len(dead) > 0 {
		fmt.Printf("%d job(s) exhausted retries; inspect the worker log.\n", len(dead))
	}
	return nil
}

// resolveRefs turns the --brand and --offer flags into IDs. On the
// in-memory store a demo brand and offer are seeded when the flags are
// absent, so the command works without any database setup.
func resolveRefs(st store.Store) (uuid.UUID, uuid.UUID, error) {
	if submitBrand != "" && submitOffer != "" {
		brandID, err := uuid.Parse(submitBrand)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --brand: %w", err)
		}
		offerID, err := uuid.Parse(submitOffer)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --offer: %w", err)
		}
		return brandID, offerID, nil
	}
	if submitBrand != "" || submitOffer != "" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("--brand and --offer must be provided together")
	}

	mem, ok := st.(*store.Memory)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("--brand and --offer are required when DATABASE_URL is set")
	}

	brand := types.Brand{
		ID:   uuid.New(),
		Name: "Demo Brand",
		Tone: []string{"direct", "practical"},
	}
	offer := types.Offer{
		ID:        uuid.New(),
		Name:      "Demo Offer",
		URL:       "https://example.com/offer",
		ValueProp: "A worked example for trying the pipeline",
		Audience:  "early-stage founders",
		CTAs: types.CTADefaults{
			Soft: "Save this for later",
			Hard: "Comment DEMO for the link",
		},
	}
	mem.SeedBrand(brand)
	mem.SeedOffer(offer)
	fmt.Printf("Seeded demo brand %s and offer %s\n", brand.ID, offer.ID)
	return brand.ID, offer.ID, nil
}

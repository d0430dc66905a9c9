package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/types"
)

// Mining thresholds.
const (
	minSampleSize       = 5
	prevalenceThreshold = 0.3
)

// negativeHookWords mark mistake/avoidance framing.
var negativeHookWords = []string{"stop", "avoid", "never", "mistake"}

// scoredPost pairs a post with its weighted engagement score.
type scoredPost struct {
	post   types.Post
	weight int
}

// HandlePatternMining groups recent posts by platform, takes the top
// quintile by weighted engagement, and upserts frequency-based hook
// patterns per platform. The top posts' best-scoring variants get
// tagged as winners. Re-running replaces the previous findings.
func (s *Stage) HandlePatternMining(ctx context.Context, job queue.Job) error {
	now := s.now()
	posts, err := s.store.ListRecentPosts(ctx, now.Add(-miningWindow), miningCap)
	if err != nil {
		return err
	}

	byPlatform := make(map[types.Platform][]types.Post)
	for _, post := range posts {
		byPlatform[post.Platform] = append(byPlatform[post.Platform], post)
	}

	for platform, platformPosts := range byPlatform {
		if len(platformPosts) < minSampleSize {
			s.logger.Printf("[Insights] %s: %d posts, below mining minimum of %d", platform, len(platformPosts), minSampleSize)
			continue
		}
		if err := s.minePlatform(ctx, platform, platformPosts); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stage) minePlatform(ctx context.Context, platform types.Platform, posts []types.Post) error {
	scored := make([]scoredPost, 0, len(posts))
	for _, post := range posts {
		snapshot, err := s.store.LatestMetricSnapshot(ctx, post.ID)
		if err != nil {
			// No snapshot yet; the post has not been synced.
			continue
		}
		weight := snapshot.Engagement + 2*snapshot.Saves + 3*snapshot.Shares + 2*snapshot.Clicks
		scored = append(scored, scoredPost{post: post, weight: weight})
	}
	if len(scored) < minSampleSize {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].weight > scored[j].weight })
	topN := (len(scored) + 4) / 5
	if topN < 1 {
		topN = 1
	}
	top := scored[:topN]

	questions, numbers, negatives := 0, 0, 0
	for _, sp := range top {
		asset, err := s.store.GetAsset(ctx, sp.post.AssetID)
		if err != nil {
			continue
		}
		hook := strings.ToLower(asset.Payload.Hook())
		if strings.Contains(hook, "?") {
			questions++
		}
		if strings.ContainsAny(hook, "0123456789") {
			numbers++
		}
		for _, word := range negativeHookWords {
			if strings.Contains(hook, word) {
				negatives++
				break
			}
		}
		if err := s.tagWinningVariant(ctx, asset.ID); err != nil {
			return err
		}
	}

	counts := map[string]int{
		"question_hooks": questions,
		"number_hooks":   numbers,
		"negative_hooks": negatives,
	}
	labels := map[string]string{
		"question_hooks": "question hooks",
		"number_hooks":   "number-led hooks",
		"negative_hooks": "mistake/avoidance hooks",
	}
	for patternType, count := range counts {
		prevalence := float64(count) / float64(topN)
		if prevalence <= prevalenceThreshold {
			continue
		}
		pattern := &types.WinningPattern{
			Platform:    platform,
			PatternType: patternType,
			Findings: []string{
				fmt.Sprintf("%s appear in %d of the top %d posts (%.0f%%)", labels[patternType], count, topN, prevalence*100),
			},
			Confidence: prevalence,
			SampleSize: len(scored),
			MinedAt:    s.now(),
		}
		if err := s.store.UpsertWinningPattern(ctx, pattern); err != nil {
			return err
		}
		s.logger.Printf("[Insights] %s: %s at %.0f%% prevalence", platform, patternType, prevalence*100)
	}
	return nil
}

// tagWinningVariant marks the best-scoring variant of a top-performing
// asset as the winner.
func (s *Stage) tagWinningVariant(ctx context.Context, assetID uuid.UUID) error {
	variants, err := s.store.ListVariantsByAsset(ctx, assetID)
	if err != nil {
		return err
	}
	best := -1
	bestScore := -1
	for i, v := range variants {
		if v.Score == nil {
			continue
		}
		if v.Score.Overall > bestScore {
			best = i
			bestScore = v.Score.Overall
		}
	}
	if best < 0 {
		return nil
	}
	return s.store.MarkVariantWinner(ctx, variants[best].ID)
}

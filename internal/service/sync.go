package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reelgrid/reelgrid/internal/config"
	"github.com/reelgrid/reelgrid/internal/db/models"
	"github.com/reelgrid/reelgrid/internal/db/repository"
	"github.com/reelgrid/reelgrid/internal/streamhost"

	"go.uber.org/zap"
)

// Sync types accepted by Run.
const (
	SyncLatest = "latest"
	SyncFull   = "full"
)

// SyncResult reports the outcome of one sync invocation.
type SyncResult struct {
	Type     string `json:"type"`
	Synced   int    `json:"synced"`
	Deleted  int64  `json:"deleted"`
	Failed   int    `json:"failed"`
	Skipped  bool   `json:"skipped,omitempty"`
	Partial  bool   `json:"partial,omitempty"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration"`
}

// CatalogClient is the subset of the streamhost client the sync job uses.
type CatalogClient interface {
	ListVideos(ctx context.Context, page, perPage int) ([]streamhost.Video, error)
	LatestVideos(ctx context.Context, count int) ([]streamhost.Video, error)
	ListSubtitles(ctx context.Context, videoID string) ([]streamhost.Subtitle, error)
}

// SyncService reconciles the external catalog into the local store.
type SyncService struct {
	client    CatalogClient
	videos    repository.VideoRepository
	subtitles repository.SubtitleRepository
	publisher EventPublisher
	cfg       config.SyncConfig
	log       *zap.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	client CatalogClient,
	videos repository.VideoRepository,
	subtitles repository.SubtitleRepository,
	publisher EventPublisher,
	cfg config.SyncConfig,
	log *zap.Logger,
) *SyncService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &SyncService{
		client:    client,
		videos:    videos,
		subtitles: subtitles,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

// Run executes one sync of the given type.
func (s *SyncService) Run(ctx context.Context, syncType string) (*SyncResult, error) {
	start := time.Now()

	var (
		result *SyncResult
		err    error
	)
	switch syncType {
	case SyncLatest:
		result, err = s.runLatest(ctx)
	case SyncFull:
		result, err = s.runFull(ctx)
	default:
		return nil, &ValidationError{Field: "syncType", Message: "must be latest or full"}
	}

	elapsed := time.Since(start)
	syncDuration.WithLabelValues(syncType).Observe(elapsed.Seconds())

	if err != nil {
		syncRunsTotal.WithLabelValues(syncType, "failure").Inc()
		return nil, err
	}

	result.Duration = elapsed.Round(time.Millisecond).String()
	switch {
	case result.Skipped:
		syncRunsTotal.WithLabelValues(syncType, "skipped").Inc()
	case result.Partial:
		syncRunsTotal.WithLabelValues(syncType, "partial").Inc()
	default:
		syncRunsTotal.WithLabelValues(syncType, "success").Inc()
	}

	if !result.Skipped {
		s.publishResult(ctx, result)
	}

	s.log.Info("Catalog sync finished",
		zap.String("type", result.Type),
		zap.Int("synced", result.Synced),
		zap.Int64("deleted", result.Deleted),
		zap.Int("failed", result.Failed),
		zap.Bool("partial", result.Partial),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// runLatest fetches the newest records and upserts each together with its
// subtitle set. Side effects stay limited to the fetched subset.
func (s *SyncService) runLatest(ctx context.Context) (*SyncResult, error) {
	records, err := s.client.LatestVideos(ctx, s.cfg.LatestCount)
	if err != nil {
		return nil, &ExternalAPIError{Operation: "latest videos", Err: err}
	}

	result := &SyncResult{Type: SyncLatest}
	for _, record := range records {
		video := s.mapVideo(record)
		if err := s.videos.UpsertVideo(ctx, video); err != nil {
			s.log.Warn("Skipping video upsert",
				zap.String("externalId", record.ID), zap.Error(err))
			result.Failed++
			syncVideosFailed.Inc()
			continue
		}
		result.Synced++
		syncVideosUpserted.Inc()

		// Subtitle fetch failure leaves the upserted video without captions
		// until the next pass.
		subs, err := s.client.ListSubtitles(ctx, record.ID)
		if err != nil {
			s.log.Warn("Skipping subtitle refresh",
				zap.String("externalId", record.ID), zap.Error(err))
			continue
		}
		if err := s.subtitles.ReplaceForVideo(ctx, video.ID, mapSubtitles(video.ID, subs)); err != nil {
			s.log.Warn("Skipping subtitle replace",
				zap.String("externalId", record.ID), zap.Error(err))
		}
	}

	return result, nil
}

// runFull mirrors the entire external catalog: every record is upserted and
// local rows absent from the external id set are deleted. A page fetch
// failure makes the run partial and skips the delete step, since the fetched
// id set would be incomplete.
func (s *SyncService) runFull(ctx context.Context) (*SyncResult, error) {
	release, locked, err := s.videos.TryLockCatalogSync(ctx)
	if err != nil {
		return nil, err
	}
	if !locked {
		return &SyncResult{
			Type:    SyncFull,
			Skipped: true,
			Message: "another full sync is already running",
		}, nil
	}
	defer release()

	records, fetchErr := s.fetchAllPages(ctx)
	if fetchErr != nil && len(records) == 0 {
		return nil, &ExternalAPIError{Operation: "list videos", Err: fetchErr}
	}

	result := &SyncResult{Type: SyncFull}
	if fetchErr != nil {
		result.Partial = true
		result.Message = fmt.Sprintf("catalog fetch aborted early: %v", fetchErr)
	}

	seen := make([]string, 0, len(records))
	for _, record := range records {
		seen = append(seen, record.ID)
	}

	for i := 0; i < len(records); i += s.cfg.BatchSize {
		end := i + s.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		synced, failed := s.upsertBatch(ctx, records[i:end])
		result.Synced += synced
		result.Failed += failed

		// Inter-batch delay is the only backpressure against the host's
		// rate limits.
		if end < len(records) {
			select {
			case <-time.After(s.cfg.BatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	// Reconciliation delete only runs on a complete fetch
	if !result.Partial {
		deleted, err := s.videos.DeleteAbsentVideos(ctx, seen)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
		syncVideosDeleted.Add(float64(deleted))
	}

	return result, nil
}

// fetchAllPages walks the paginated catalog until a short or empty page.
// On a page failure it returns what was fetched so far together with the
// error.
func (s *SyncService) fetchAllPages(ctx context.Context) ([]streamhost.Video, error) {
	var all []streamhost.Video

	for page := 1; ; page++ {
		records, err := s.client.ListVideos(ctx, page, s.cfg.PageSize)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, records...)
		if len(records) < s.cfg.PageSize {
			return all, nil
		}
	}
}

// upsertBatch issues the batch's upserts concurrently and waits for all of
// them. Individual failures are logged and counted, not fatal.
func (s *SyncService) upsertBatch(ctx context.Context, records []streamhost.Video) (synced, failed int) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, record := range records {
		wg.Add(1)
		go func(record streamhost.Video) {
			defer wg.Done()

			video := s.mapVideo(record)
			if err := s.videos.UpsertVideo(ctx, video); err != nil {
				s.log.Warn("Skipping video upsert",
					zap.String("externalId", record.ID), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
				syncVideosFailed.Inc()
				return
			}

			mu.Lock()
			synced++
			mu.Unlock()
			syncVideosUpserted.Inc()
		}(record)
	}

	wg.Wait()
	return synced, failed
}

// mapVideo converts an external record to the local model, filling defined
// defaults for optional fields the host omitted.
func (s *SyncService) mapVideo(record streamhost.Video) *models.Video {
	created, err := record.ParseCreated()
	if err != nil {
		s.log.Debug("Unparseable creation timestamp, using now",
			zap.String("externalId", record.ID), zap.String("created", record.Created))
		created = time.Now()
	}

	video := models.NewVideo(record.ID, record.Name, created)
	video.Poster = record.Poster
	video.Preview = record.Preview
	video.AssetBaseURL = record.AssetBaseURL
	video.Duration = record.Duration
	video.PlayCount = record.Plays
	video.DownloadCount = record.Downloads
	if record.Resolution != "" {
		video.Resolution = record.Resolution
	}
	if record.Codec != "" {
		video.Codec = record.Codec
	}

	return video
}

func mapSubtitles(videoID int64, subs []streamhost.Subtitle) []*models.Subtitle {
	out := make([]*models.Subtitle, 0, len(subs))
	for _, sub := range subs {
		out = append(out, &models.Subtitle{
			ExternalID: sub.ID,
			VideoID:    videoID,
			Name:       sub.Name,
			URL:        sub.URL,
			Language:   sub.Language,
		})
	}
	return out
}

func (s *SyncService) publishResult(ctx context.Context, result *SyncResult) {
	event := &SyncEvent{
		ID:         uuid.New(),
		SyncType:   result.Type,
		Synced:     result.Synced,
		Deleted:    result.Deleted,
		Failed:     result.Failed,
		FinishedAt: time.Now(),
	}
	if err := s.publisher.PublishSyncCompleted(ctx, event); err != nil {
		s.log.Warn("Failed to publish sync event", zap.Error(err))
	}
}

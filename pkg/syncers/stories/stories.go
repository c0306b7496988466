// Package stories runs the story sync on an interval, in addition to the
// HTTP trigger surface. Intervals are expected to be far apart relative to a
// run's duration; overlapping runs are not serialized here.
package stories

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

type Synchronizer struct {
	service      service.SyncService
	syncInterval time.Duration
	log          zerolog.Logger
}

func New(service service.SyncService, syncIntervalSec int, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		service:      service,
		syncInterval: time.Duration(syncIntervalSec) * time.Second,
		log:          log,
	}
}

func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("context done, stopping story synchronizer")
			return
		case <-ticker.C:
			s.log.Info().Msg("running story synchronizer")

			result, err := s.service.Bidirectional(ctx, service.SyncOptions{IncludeRejected: false})
			if err != nil {
				s.log.Error().Fields(map[string]interface{}{"stack": errs.OpStack(err)}).Err(err).Msg("story sync run failed")
				continue
			}

			s.log.Info().Int("synced", result.Synced).Int("failed", result.Failed).Msg("story sync run completed")

			for _, syncErr := range result.Errors {
				s.log.Warn().Str("record_error", syncErr).Msg("story sync record failure")
			}
		}
	}
}

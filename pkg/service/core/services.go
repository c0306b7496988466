package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/service"
	"github.com/unheard/unheard-backend/pkg/service/core/api"
	"github.com/unheard/unheard-backend/pkg/service/core/storage"
)

type Services struct {
	StoryService service.StoryService
	SyncService  service.SyncService
}

func NewServices(
	stores *storage.Stores,
	clients *api.Clients,
	syncOutcomes *prometheus.CounterVec,
	log zerolog.Logger,
) *Services {
	return &Services{
		StoryService: NewStoryService(stores.StoryStorage, stores.ModerationLogStorage),
		SyncService: NewSyncService(
			stores.StoryStorage,
			stores.ModerationLogStorage,
			clients.CMSAPI,
			syncOutcomes,
			log.With().Str("component", "sync").Logger(),
		),
	}
}

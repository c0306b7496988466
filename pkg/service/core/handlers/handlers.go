package handlers

import (
	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/service/core"
)

type Handlers struct {
	StoryHandler *StoryHandler
	SyncHandler  *SyncHandler
}

func NewHandlers(s *core.Services, log zerolog.Logger) *Handlers {
	return &Handlers{
		StoryHandler: NewStoryHandler(s.StoryService, log.With().Str("component", "stories").Logger()),
		SyncHandler:  NewSyncHandler(s.SyncService, log.With().Str("component", "sync").Logger()),
	}
}

package storage

import (
	"github.com/unheard/unheard-backend/pkg/database"
	"github.com/unheard/unheard-backend/pkg/service"
	"github.com/unheard/unheard-backend/pkg/service/core/storage/postgres"
)

type Stores struct {
	StoryStorage         service.StoryStorage
	ModerationLogStorage service.ModerationLogStorage
}

func NewStores(repo *database.Repo) *Stores {
	return &Stores{
		StoryStorage:         postgres.NewStoryStorage(repo.GetDB()),
		ModerationLogStorage: postgres.NewModerationLogStorage(repo.GetDB()),
	}
}

package core

import (
	"context"

	"github.com/google/uuid"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

var _ service.StoryService = &storyService{}

type storyService struct {
	storyStorage  service.StoryStorage
	moderationLog service.ModerationLogStorage
}

func NewStoryService(storyStorage service.StoryStorage, moderationLog service.ModerationLogStorage) *storyService {
	return &storyService{
		storyStorage:  storyStorage,
		moderationLog: moderationLog,
	}
}

func (s *storyService) CreateStory(ctx context.Context, newStory *service.NewStory) (*service.Story, error) {
	const op errs.Op = "storyService.CreateStory"

	err := newStory.Validate()
	if err != nil {
		return nil, errs.E(errs.Validation, op, err)
	}

	story, err := s.storyStorage.CreateStory(ctx, newStory)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return story, nil
}

func (s *storyService) GetStory(ctx context.Context, id uuid.UUID) (*service.Story, error) {
	const op errs.Op = "storyService.GetStory"

	story, err := s.storyStorage.GetStory(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return story, nil
}

func (s *storyService) GetFeaturedStories(ctx context.Context) ([]*service.Story, error) {
	const op errs.Op = "storyService.GetFeaturedStories"

	stories, err := s.storyStorage.GetFeaturedStories(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return stories, nil
}

func (s *storyService) GetModerationLog(ctx context.Context, storyID uuid.UUID) ([]*service.ModerationEntry, error) {
	const op errs.Op = "storyService.GetModerationLog"

	// An unknown story is a 404, not an empty log.
	_, err := s.storyStorage.GetStory(ctx, storyID)
	if err != nil {
		return nil, errs.E(op, err)
	}

	entries, err := s.moderationLog.GetModerationEntriesForStory(ctx, storyID)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return entries, nil
}

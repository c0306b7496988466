package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

type StoryHandler struct {
	storyService service.StoryService
	log          zerolog.Logger
}

func NewStoryHandler(storyService service.StoryService, log zerolog.Logger) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		log:          log,
	}
}

func (h *StoryHandler) CreateStory(ctx context.Context, _ *http.Request, in service.NewStory) (*service.Story, error) {
	story, err := h.storyService.CreateStory(ctx, &in)
	if err != nil {
		return nil, err
	}

	return story, nil
}

func (h *StoryHandler) GetStory(ctx context.Context, _ *http.Request, _ any) (*service.Story, error) {
	const op errs.Op = "StoryHandler.GetStory"

	id, err := uuid.Parse(chi.URLParamFromCtx(ctx, "id"))
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	story, err := h.storyService.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}

	return story, nil
}

// GetModerationLog returns the audit trail of a story. Admin surface; the
// public story routes never expose moderation data.
func (h *StoryHandler) GetModerationLog(ctx context.Context, _ *http.Request, _ any) ([]*service.ModerationEntry, error) {
	const op errs.Op = "StoryHandler.GetModerationLog"

	id, err := uuid.Parse(chi.URLParamFromCtx(ctx, "id"))
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	entries, err := h.storyService.GetModerationLog(ctx, id)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (h *StoryHandler) GetFeaturedStories(ctx context.Context, _ *http.Request, _ any) ([]*service.Story, error) {
	stories, err := h.storyService.GetFeaturedStories(ctx)
	if err != nil {
		return nil, err
	}

	return stories, nil
}

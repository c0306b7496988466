package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/service/core/handlers"
	"github.com/unheard/unheard-backend/pkg/service/core/transport"
)

type StoryEndpoints struct {
	CreateStory        http.HandlerFunc
	GetStory           http.HandlerFunc
	GetFeaturedStories http.HandlerFunc
	GetModerationLog   http.HandlerFunc
}

func NewStoryEndpoints(log zerolog.Logger, h *handlers.StoryHandler) *StoryEndpoints {
	return &StoryEndpoints{
		CreateStory:        transport.For(h.CreateStory).RequestFromJSON().Build(log),
		GetStory:           transport.For(h.GetStory).Build(log),
		GetFeaturedStories: transport.For(h.GetFeaturedStories).Build(log),
		GetModerationLog:   transport.For(h.GetModerationLog).Build(log),
	}
}

// NewStoryRoutes wires the story surface. The moderation log is admin-only;
// everything else is public.
func NewStoryRoutes(endpoints *StoryEndpoints, adminAuth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/stories", func(r chi.Router) {
			r.Post("/", endpoints.CreateStory)
			r.Get("/", endpoints.GetFeaturedStories)
			r.Get("/{id}", endpoints.GetStory)
			r.With(adminAuth).Get("/{id}/moderation", endpoints.GetModerationLog)
		})
	}
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/service/core/handlers"
	"github.com/unheard/unheard-backend/pkg/service/core/transport"
)

type SyncEndpoints struct {
	TriggerSync              http.HandlerFunc
	TriggerCronSync          http.HandlerFunc
	GetSyncStatus            http.HandlerFunc
	HandleChangeNotification http.HandlerFunc
}

func NewSyncEndpoints(log zerolog.Logger, h *handlers.SyncHandler) *SyncEndpoints {
	return &SyncEndpoints{
		TriggerSync:              transport.For(h.TriggerSync).RequestFromJSON().Build(log),
		TriggerCronSync:          transport.For(h.TriggerCronSync).Build(log),
		GetSyncStatus:            transport.For(h.GetSyncStatus).Build(log),
		HandleChangeNotification: transport.For(h.HandleChangeNotification).RequestFromJSON().Build(log),
	}
}

// NewSyncRoutes wires the trigger surface. The cron and webhook routes have
// their own guards; the admin routes share the bearer token middleware. All
// guards run before any store access.
func NewSyncRoutes(endpoints *SyncEndpoints, cronSecret, adminAuth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/sync", func(r chi.Router) {
			r.With(cronSecret).Post("/cron", endpoints.TriggerCronSync)
			r.With(adminAuth).Post("/", endpoints.TriggerSync)
			r.With(adminAuth).Get("/status", endpoints.GetSyncStatus)
			// The webhook payload signature is verified by the edge proxy;
			// the shared secret still gates the route here.
			r.With(cronSecret).Post("/webhook", endpoints.HandleChangeNotification)
		})
	}
}

package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
	"github.com/unheard/unheard-backend/pkg/service/core/transport"
)

// CronSecretHeader carries the shared secret on scheduled sync requests.
const CronSecretHeader = "X-Sync-Secret"

type SyncHandler struct {
	syncService service.SyncService
	log         zerolog.Logger
}

func NewSyncHandler(syncService service.SyncService, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		log:         log,
	}
}

type SyncRequest struct {
	Direction       string `json:"direction"`
	IncludeRejected bool   `json:"includeRejected"`
}

// SyncResponse is the structured result of a sync trigger. Per-record
// failures show up in Failed and Errors; Success refers to the batch as a
// whole having run.
type SyncResponse struct {
	Success bool     `json:"success"`
	Synced  int      `json:"synced"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

func syncResponseFrom(result *service.SyncResult) *SyncResponse {
	return &SyncResponse{
		Success: result.Failed == 0,
		Synced:  result.Synced,
		Failed:  result.Failed,
		Errors:  result.Errors,
	}
}

// TriggerSync is the on-demand admin trigger.
func (h *SyncHandler) TriggerSync(ctx context.Context, _ *http.Request, in SyncRequest) (*SyncResponse, error) {
	const op errs.Op = "SyncHandler.TriggerSync"

	direction, err := service.ParseSyncDirection(in.Direction)
	if err != nil {
		return nil, errs.E(op, err)
	}

	opts := service.SyncOptions{IncludeRejected: in.IncludeRejected}

	var result *service.SyncResult

	switch direction {
	case service.SyncDirectionPush:
		result, err = h.syncService.PushStories(ctx, opts)
	case service.SyncDirectionPull:
		result, err = h.syncService.PullStories(ctx)
	case service.SyncDirectionBidirectional:
		result, err = h.syncService.Bidirectional(ctx, opts)
	}

	if err != nil {
		return nil, err
	}

	return syncResponseFrom(result), nil
}

// TriggerCronSync is the scheduled trigger: always bidirectional, never
// includes rejected stories.
func (h *SyncHandler) TriggerCronSync(ctx context.Context, _ *http.Request, _ any) (*SyncResponse, error) {
	result, err := h.syncService.Bidirectional(ctx, service.SyncOptions{IncludeRejected: false})
	if err != nil {
		return nil, err
	}

	return syncResponseFrom(result), nil
}

func (h *SyncHandler) GetSyncStatus(ctx context.Context, _ *http.Request, _ any) (*service.SyncStatus, error) {
	status, err := h.syncService.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	return status, nil
}

// HandleChangeNotification receives a single-document change pushed by the
// CMS. Signature verification happens upstream; the payload arriving here is
// the already-validated tuple. The CMS only needs an acknowledgement, not
// the updated story.
func (h *SyncHandler) HandleChangeNotification(ctx context.Context, _ *http.Request, in service.RemoteChange) (*transport.Accepted, error) {
	_, err := h.syncService.ApplyRemoteChange(ctx, in)
	if err != nil {
		return nil, err
	}

	return &transport.Accepted{}, nil
}

// CronSecretMiddleware rejects scheduled sync requests whose shared secret
// does not match, before any store access happens.
func CronSecretMiddleware(secret string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(CronSecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				errs.HTTPErrorResponse(w, log, errs.E(errs.Unauthenticated, errs.Op("handlers.CronSecretMiddleware"), errs.Str("invalid sync secret")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TokenAuthMiddleware guards the administrative endpoints with a static
// bearer token.
func TokenAuthMiddleware(token string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				errs.HTTPErrorResponse(w, log, errs.E(errs.Unauthenticated, errs.Op("handlers.TokenAuthMiddleware"), errs.Str("invalid or missing bearer token")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/unheard/unheard-backend/pkg/errs"
)

// SyncDirection selects which way a sync run writes.
type SyncDirection string

const (
	SyncDirectionPush          SyncDirection = "push"
	SyncDirectionPull          SyncDirection = "pull"
	SyncDirectionBidirectional SyncDirection = "bidirectional"
)

func ParseSyncDirection(raw string) (SyncDirection, error) {
	const op errs.Op = "service.ParseSyncDirection"

	switch SyncDirection(raw) {
	case SyncDirectionPush, SyncDirectionPull, SyncDirectionBidirectional:
		return SyncDirection(raw), nil
	}

	return "", errs.E(errs.InvalidRequest, op, errs.Parameter("direction"), errs.Str("unknown sync direction: "+raw))
}

type SyncOptions struct {
	IncludeRejected bool `json:"includeRejected"`
}

// SyncResult is the per-batch outcome. Per-record failures never abort a
// batch; they accumulate in Errors with the offending identifier.
type SyncResult struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

func (r *SyncResult) Merge(other *SyncResult) {
	r.Synced += other.Synced
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}

// SyncStatus is a coarse cross-store report: InSync compares total counts
// only, it is not a content-level diff. When one store is unreachable the
// report is partial and the corresponding Unavailable marker is set instead
// of the whole call failing.
type SyncStatus struct {
	NeonCount       int  `json:"neonCount"`
	CMSCount        int  `json:"cmsCount"`
	PendingCount    int  `json:"pendingCount"`
	ApprovedCount   int  `json:"approvedCount"`
	InSync          bool `json:"inSync"`
	NeonUnavailable bool `json:"neonUnavailable,omitempty"`
	CMSUnavailable  bool `json:"cmsUnavailable,omitempty"`
}

// RemoteChange is the already-validated payload of a CMS change
// notification for a single story. Status carries the CMS vocabulary as
// received on the wire and is parsed fail-closed when applied.
type RemoteChange struct {
	StoryID     uuid.UUID `json:"storyId"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
	Featured    bool      `json:"featured"`
	ModeratorID string    `json:"moderatorId,omitempty"`
}

// SyncService reconciles the relational store with the CMS.
//
// Records within a batch are written strictly one at a time to keep error
// attribution simple and to stay inside the CMS rate limits. Concurrent
// invocations are not serialized here; callers must not overlap runs.
type SyncService interface {
	PushStories(ctx context.Context, opts SyncOptions) (*SyncResult, error)
	PullStories(ctx context.Context) (*SyncResult, error)
	// Bidirectional runs push then pull. Push first, so stories submitted
	// since the last run exist in the CMS before moderation decisions are
	// pulled; the other order can drop a decision on a not-yet-pushed story.
	Bidirectional(ctx context.Context, opts SyncOptions) (*SyncResult, error)
	// ApplyRemoteChange is the single-record pull path, reused by the CMS
	// webhook so a moderation decision lands immediately instead of waiting
	// for the next scheduled pull.
	ApplyRemoteChange(ctx context.Context, change RemoteChange) (*Story, error)
	GetStatus(ctx context.Context) (*SyncStatus, error)
}

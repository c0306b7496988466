package service

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/unheard/unheard-backend/pkg/errs"
)

// StoryStatus is the canonical moderation status vocabulary. The CMS uses a
// lowercase synonym set, translated at the boundary, see ParseRemoteStatus.
type StoryStatus string

const (
	StoryStatusPending  StoryStatus = "PENDING"
	StoryStatusApproved StoryStatus = "APPROVED"
	StoryStatusRejected StoryStatus = "REJECTED"
)

// Remote returns the CMS vocabulary value for the status.
func (s StoryStatus) Remote() string {
	switch s {
	case StoryStatusPending:
		return "pending"
	case StoryStatusApproved:
		return "approved"
	case StoryStatusRejected:
		return "rejected"
	}

	return ""
}

// ParseStoryStatus parses a canonical status value. Unknown values are an
// error, never a default.
func ParseStoryStatus(raw string) (StoryStatus, error) {
	const op errs.Op = "service.ParseStoryStatus"

	switch StoryStatus(raw) {
	case StoryStatusPending, StoryStatusApproved, StoryStatusRejected:
		return StoryStatus(raw), nil
	}

	return "", errs.E(errs.Validation, op, errs.Parameter("status"), errs.Str("unrecognized status: "+raw))
}

// ParseRemoteStatus translates the CMS status vocabulary back to the
// canonical one. Unknown values fail closed so a malformed document can
// never end up approved by accident.
func ParseRemoteStatus(raw string) (StoryStatus, error) {
	const op errs.Op = "service.ParseRemoteStatus"

	switch raw {
	case "pending":
		return StoryStatusPending, nil
	case "approved":
		return StoryStatusApproved, nil
	case "rejected":
		return StoryStatusRejected, nil
	}

	return "", errs.E(errs.Validation, op, errs.Parameter("status"), errs.Str("unrecognized status: "+raw))
}

// CanTransitionTo reports whether a moderation transition is allowed.
// PENDING is the initial state and can never be re-entered: a moderation
// decision is only changed by another explicit APPROVED or REJECTED
// decision, never by sync putting a story back in review.
func (s StoryStatus) CanTransitionTo(next StoryStatus) bool {
	if s == next {
		return true
	}

	switch s {
	case StoryStatusPending:
		return next == StoryStatusApproved || next == StoryStatusRejected
	case StoryStatusApproved:
		return next == StoryStatusRejected
	case StoryStatusRejected:
		return next == StoryStatusApproved
	}

	return false
}

// Story is the relational representation of a story. The identifier is the
// join key between both stores and is never reassigned.
//
// The moderation fields (Status, ModerationNotes, Featured) trail the CMS,
// which owns them. Relational-only fields (AuthorID, CrisisFlag, Sentiment,
// AudioObject) never leave this store.
type Story struct {
	ID              uuid.UUID   `json:"id"`
	Content         string      `json:"content"`
	RefinedContent  *string     `json:"refinedContent"`
	Categories      []string    `json:"categories"`
	Status          StoryStatus `json:"status"`
	ModerationNotes *string     `json:"moderationNotes"`
	Featured        bool        `json:"featured"`
	AuthorID        *uuid.UUID  `json:"-"`
	CrisisFlag      bool        `json:"-"`
	Sentiment       *string     `json:"-"`
	AudioObject     *string     `json:"-"`
	Created         time.Time   `json:"created"`
	ApprovedAt      *time.Time  `json:"approvedAt"`
	LastModified    time.Time   `json:"lastModified"`
}

// NewStory is a story submission. Stories are always created PENDING in the
// relational store and mirrored into the CMS by the next push.
type NewStory struct {
	Content    string     `json:"content"`
	Categories []string   `json:"categories"`
	AuthorID   *uuid.UUID `json:"authorID"`
}

func (s NewStory) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Content, validation.Required, validation.Length(1, 20000)),
	)
}

// StoryCounts are per-status totals over the relational store.
type StoryCounts struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

type StoryStorage interface {
	GetStory(ctx context.Context, id uuid.UUID) (*Story, error)
	GetStories(ctx context.Context) ([]*Story, error)
	GetFeaturedStories(ctx context.Context) ([]*Story, error)
	CreateStory(ctx context.Context, newStory *NewStory) (*Story, error)
	// CreateMirroredStory inserts a row with an identifier assigned by the
	// other store, used when a story exists only in the CMS. Relational-only
	// fields start empty.
	CreateMirroredStory(ctx context.Context, story *Story) (*Story, error)
	// UpdateModeration writes the CMS-owned field group only. The approval
	// timestamp is set on the first transition into APPROVED and never
	// rewritten afterwards.
	UpdateModeration(ctx context.Context, update *RemoteStoryUpdate) (*Story, error)
	GetStoryCounts(ctx context.Context) (*StoryCounts, error)
}

type StoryService interface {
	CreateStory(ctx context.Context, newStory *NewStory) (*Story, error)
	GetStory(ctx context.Context, id uuid.UUID) (*Story, error)
	GetFeaturedStories(ctx context.Context) ([]*Story, error)
	// GetModerationLog lists the attributable moderation actions for a
	// story, oldest first.
	GetModerationLog(ctx context.Context, storyID uuid.UUID) ([]*ModerationEntry, error)
}

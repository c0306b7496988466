package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ModerationEntry is an attributable moderation action. Entries are only
// written when a moderator identity was attached to the change; anonymous
// status flips are applied but logged through zerolog instead, so the log
// table stays a record of who decided what.
type ModerationEntry struct {
	ID        uuid.UUID `json:"id"`
	StoryID   uuid.UUID `json:"storyId"`
	Action    string    `json:"action"`
	Moderator string    `json:"moderator"`
	Notes     *string   `json:"notes"`
	Created   time.Time `json:"created"`
}

type ModerationLogStorage interface {
	CreateModerationEntry(ctx context.Context, entry *ModerationEntry) error
	GetModerationEntriesForStory(ctx context.Context, storyID uuid.UUID) ([]*ModerationEntry, error)
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/unheard/unheard-backend/pkg/errs"
)

const storyTitleMaxLen = 60

// StoryDocument is the CMS representation of a story. Wire shape; the CMS
// status vocabulary is lowercase.
//
// Relational-only fields (author linkage, crisis flags, audio references)
// are deliberately absent: they are not meant for moderator view and never
// leave the relational store.
type StoryDocument struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	RefinedContent  string     `json:"refinedContent,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	Status          string     `json:"status"`
	ModerationNotes string     `json:"moderationNotes,omitempty"`
	Featured        bool       `json:"featured"`
	ModeratedBy     string     `json:"moderatedBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	LastModified    time.Time  `json:"lastModified"`
}

// RemoteStoryUpdate is the decoded, validated form of a CMS-side change,
// carrying only the field group the CMS owns.
type RemoteStoryUpdate struct {
	ID              uuid.UUID
	Status          StoryStatus
	ModerationNotes *string
	Featured        bool
	ModeratedBy     string
}

// DocumentFromStory maps a relational story to its CMS document shape.
func DocumentFromStory(story *Story) *StoryDocument {
	title := storyTitle(story.Content)

	doc := &StoryDocument{
		ID:           story.ID.String(),
		Title:        title,
		Slug:         slug.Make(title),
		Content:      story.Content,
		Categories:   story.Categories,
		Status:       story.Status.Remote(),
		Featured:     story.Featured,
		CreatedAt:    story.Created,
		ApprovedAt:   story.ApprovedAt,
		LastModified: story.LastModified,
	}

	if story.RefinedContent != nil {
		doc.RefinedContent = *story.RefinedContent
	}

	if story.ModerationNotes != nil {
		doc.ModerationNotes = *story.ModerationNotes
	}

	return doc
}

// ToStoryUpdate is the inverse mapping, from a CMS document to the update
// applied to the relational store. Only the CMS-owned moderation fields are
// carried; an unrecognized status vocabulary value is an error, never a
// guess.
func (d *StoryDocument) ToStoryUpdate() (*RemoteStoryUpdate, error) {
	const op errs.Op = "StoryDocument.ToStoryUpdate"

	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errs.E(errs.Validation, op, errs.Parameter("id"), err)
	}

	status, err := ParseRemoteStatus(d.Status)
	if err != nil {
		return nil, errs.E(op, err)
	}

	update := &RemoteStoryUpdate{
		ID:          id,
		Status:      status,
		Featured:    d.Featured,
		ModeratedBy: d.ModeratedBy,
	}

	if d.ModerationNotes != "" {
		notes := d.ModerationNotes
		update.ModerationNotes = &notes
	}

	return update, nil
}

func storyTitle(content string) string {
	title := strings.TrimSpace(content)
	if i := strings.IndexAny(title, "\r\n"); i >= 0 {
		title = title[:i]
	}

	if len(title) > storyTitleMaxLen {
		title = strings.TrimSpace(title[:storyTitleMaxLen])
	}

	if title == "" {
		title = "untitled"
	}

	return title
}

type CMSAPI interface {
	GetDocument(ctx context.Context, id string) (*StoryDocument, error)
	GetDocuments(ctx context.Context) ([]*StoryDocument, error)
	// UpsertDocument creates or fully replaces the document with the same
	// identifier, leaving CMS-owned moderation fields untouched on replace.
	UpsertDocument(ctx context.Context, doc *StoryDocument) error
	CountDocuments(ctx context.Context) (int, error)
}

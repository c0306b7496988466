package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

func strPtr(s string) *string {
	return &s
}

func TestDocumentFromStory(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	modified := created.Add(time.Hour)
	authorID := uuid.New()

	story := &service.Story{
		ID:              uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Content:         "I never told anyone this before.\nIt started years ago.",
		RefinedContent:  strPtr("I never told anyone this before."),
		Categories:      []string{"family", "grief"},
		Status:          service.StoryStatusPending,
		ModerationNotes: strPtr("needs second look"),
		Featured:        true,
		AuthorID:        &authorID,
		CrisisFlag:      true,
		Sentiment:       strPtr("negative"),
		AudioObject:     strPtr("audio/111.mp3"),
		Created:         created,
		LastModified:    modified,
	}

	doc := service.DocumentFromStory(story)

	assert.Equal(t, story.ID.String(), doc.ID)
	assert.Equal(t, "pending", doc.Status)
	assert.Equal(t, story.Content, doc.Content)
	assert.Equal(t, "I never told anyone this before.", doc.RefinedContent)
	assert.Equal(t, []string{"family", "grief"}, doc.Categories)
	assert.Equal(t, "needs second look", doc.ModerationNotes)
	assert.True(t, doc.Featured)
	assert.Equal(t, created, doc.CreatedAt)
	assert.Equal(t, modified, doc.LastModified)
	assert.Nil(t, doc.ApprovedAt)

	// The title is the first line of the content, the slug derived from it.
	assert.Equal(t, "I never told anyone this before.", doc.Title)
	assert.Equal(t, "i-never-told-anyone-this-before", doc.Slug)
}

func TestDocumentFromStoryOmitsRelationalOnlyFields(t *testing.T) {
	authorID := uuid.New()

	story := &service.Story{
		ID:          uuid.New(),
		Content:     "hello",
		Status:      service.StoryStatusPending,
		AuthorID:    &authorID,
		CrisisFlag:  true,
		Sentiment:   strPtr("negative"),
		AudioObject: strPtr("audio/some.mp3"),
	}

	doc := service.DocumentFromStory(story)

	// The document type has no author, crisis or audio fields; the closest
	// thing to a leak would be the content fields carrying them.
	assert.NotContains(t, doc.Content, authorID.String())
	assert.NotContains(t, doc.Title, authorID.String())
}

func TestDocumentFromStoryTruncatesLongTitle(t *testing.T) {
	story := &service.Story{
		ID:      uuid.New(),
		Content: strings.Repeat("word ", 40),
		Status:  service.StoryStatusPending,
	}

	doc := service.DocumentFromStory(story)

	assert.LessOrEqual(t, len(doc.Title), 60)
	assert.NotEmpty(t, doc.Slug)
}

func TestStoryDocumentRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		status   service.StoryStatus
		notes    *string
		featured bool
	}{
		{name: "pending without notes", status: service.StoryStatusPending},
		{name: "approved with notes", status: service.StoryStatusApproved, notes: strPtr("looks good"), featured: true},
		{name: "rejected", status: service.StoryStatusRejected, notes: strPtr("off topic")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			story := &service.Story{
				ID:              uuid.New(),
				Content:         "round trip",
				Status:          tc.status,
				ModerationNotes: tc.notes,
				Featured:        tc.featured,
			}

			update, err := service.DocumentFromStory(story).ToStoryUpdate()
			require.NoError(t, err)

			assert.Equal(t, story.ID, update.ID)
			assert.Equal(t, tc.status, update.Status)
			assert.Equal(t, tc.notes, update.ModerationNotes)
			assert.Equal(t, tc.featured, update.Featured)
		})
	}
}

func TestToStoryUpdateFailsClosedOnUnknownStatus(t *testing.T) {
	for _, status := range []string{"", "APPROVED", "published", "Pending", "approved "} {
		t.Run("status "+status, func(t *testing.T) {
			doc := &service.StoryDocument{
				ID:     uuid.New().String(),
				Status: status,
			}

			update, err := doc.ToStoryUpdate()

			assert.Nil(t, update)
			require.Error(t, err)
			assert.True(t, errs.KindIs(errs.Validation, err))
			assert.Contains(t, err.Error(), "unrecognized status")
		})
	}
}

func TestToStoryUpdateRejectsMalformedID(t *testing.T) {
	doc := &service.StoryDocument{
		ID:     "not-a-uuid",
		Status: "approved",
	}

	_, err := doc.ToStoryUpdate()
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.Validation, err))
}

func TestStatusVocabularyClosure(t *testing.T) {
	// Every canonical status maps to exactly one remote value and back.
	statuses := []service.StoryStatus{
		service.StoryStatusPending,
		service.StoryStatusApproved,
		service.StoryStatusRejected,
	}

	seen := map[string]bool{}

	for _, status := range statuses {
		remote := status.Remote()
		require.NotEmpty(t, remote)
		assert.False(t, seen[remote], "remote value %q mapped twice", remote)
		seen[remote] = true

		back, err := service.ParseRemoteStatus(remote)
		require.NoError(t, err)
		assert.Equal(t, status, back)
	}
}

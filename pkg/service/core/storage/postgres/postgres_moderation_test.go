package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unheard/unheard-backend/pkg/service"
)

func TestCreateModerationEntry(t *testing.T) {
	db, mock := newMockDB(t)
	storyID := uuid.New()
	notes := "clear violation"

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO moderation_log (story_id, action, moderator, notes) VALUES ($1, $2, $3, $4)`)).
		WithArgs(storyID, "PENDING -> REJECTED", "moderator-3", notes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	storage := NewModerationLogStorage(db)

	err := storage.CreateModerationEntry(context.Background(), &service.ModerationEntry{
		StoryID:   storyID,
		Action:    "PENDING -> REJECTED",
		Moderator: "moderator-3",
		Notes:     &notes,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetModerationEntriesForStory(t *testing.T) {
	db, mock := newMockDB(t)
	storyID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "story_id", "action", "moderator", "notes", "created_at"}).
		AddRow(uuid.New().String(), storyID.String(), "PENDING -> APPROVED", "moderator-1", nil, time.Now().Add(-time.Hour)).
		AddRow(uuid.New().String(), storyID.String(), "APPROVED -> REJECTED", "moderator-2", "second thoughts", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM moderation_log WHERE story_id = $1`)).
		WithArgs(storyID).
		WillReturnRows(rows)

	storage := NewModerationLogStorage(db)

	entries, err := storage.GetModerationEntriesForStory(context.Background(), storyID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "PENDING -> APPROVED", entries[0].Action)
	assert.Nil(t, entries[0].Notes)
	require.NotNil(t, entries[1].Notes)
	assert.Equal(t, "second thoughts", *entries[1].Notes)
}

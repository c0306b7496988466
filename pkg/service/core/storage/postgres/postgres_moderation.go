package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

var _ service.ModerationLogStorage = &moderationLogStorage{}

type moderationLogStorage struct {
	db *sql.DB
}

func NewModerationLogStorage(db *sql.DB) *moderationLogStorage {
	return &moderationLogStorage{db: db}
}

func (s *moderationLogStorage) CreateModerationEntry(ctx context.Context, entry *service.ModerationEntry) error {
	const op errs.Op = "moderationLogStorage.CreateModerationEntry"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO moderation_log (story_id, action, moderator, notes) VALUES ($1, $2, $3, $4)`,
		entry.StoryID,
		entry.Action,
		entry.Moderator,
		ptrToNullString(entry.Notes),
	)
	if err != nil {
		return errs.E(errs.Database, op, err)
	}

	return nil
}

func (s *moderationLogStorage) GetModerationEntriesForStory(ctx context.Context, storyID uuid.UUID) ([]*service.ModerationEntry, error) {
	const op errs.Op = "moderationLogStorage.GetModerationEntriesForStory"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, story_id, action, moderator, notes, created_at FROM moderation_log WHERE story_id = $1 ORDER BY created_at`,
		storyID,
	)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}
	defer rows.Close()

	var entries []*service.ModerationEntry

	for rows.Next() {
		var (
			entry service.ModerationEntry
			notes sql.NullString
		)

		err := rows.Scan(&entry.ID, &entry.StoryID, &entry.Action, &entry.Moderator, &notes, &entry.Created)
		if err != nil {
			return nil, errs.E(errs.Database, op, err)
		}

		entry.Notes = nullStringToPtr(notes)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return entries, nil
}

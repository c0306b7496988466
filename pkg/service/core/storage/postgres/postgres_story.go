package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

var _ service.StoryStorage = &storyStorage{}

type storyStorage struct {
	db *sql.DB
}

func NewStoryStorage(db *sql.DB) *storyStorage {
	return &storyStorage{db: db}
}

const storyColumns = `id, content, refined_content, categories, status, moderation_notes, featured, author_id, crisis_flag, sentiment, audio_object, created_at, approved_at, last_modified`

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(row scanner) (*service.Story, error) {
	var (
		story      service.Story
		refined    sql.NullString
		categories pq.StringArray
		rawStatus  string
		notes      sql.NullString
		authorID   uuid.NullUUID
		sentiment  sql.NullString
		audio      sql.NullString
		approvedAt sql.NullTime
	)

	err := row.Scan(
		&story.ID,
		&story.Content,
		&refined,
		&categories,
		&rawStatus,
		&notes,
		&story.Featured,
		&authorID,
		&story.CrisisFlag,
		&sentiment,
		&audio,
		&story.Created,
		&approvedAt,
		&story.LastModified,
	)
	if err != nil {
		return nil, err
	}

	status, err := service.ParseStoryStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	story.RefinedContent = nullStringToPtr(refined)
	story.Categories = categories
	story.Status = status
	story.ModerationNotes = nullStringToPtr(notes)
	story.AuthorID = nullUUIDToUUIDPtr(authorID)
	story.Sentiment = nullStringToPtr(sentiment)
	story.AudioObject = nullStringToPtr(audio)
	story.ApprovedAt = nullTimeToPtr(approvedAt)

	return &story, nil
}

func (s *storyStorage) GetStory(ctx context.Context, id uuid.UUID) (*service.Story, error) {
	const op errs.Op = "storyStorage.GetStory"

	row := s.db.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE id = $1`, id)

	story, err := scanStory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.E(errs.NotExist, op, fmt.Errorf("story with id %s not found", id))
		}

		return nil, errs.E(errs.Database, op, err)
	}

	return story, nil
}

func (s *storyStorage) GetStories(ctx context.Context) ([]*service.Story, error) {
	const op errs.Op = "storyStorage.GetStories"

	rows, err := s.db.QueryContext(ctx, `SELECT `+storyColumns+` FROM stories ORDER BY created_at`)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}
	defer rows.Close()

	return collectStories(op, rows)
}

func (s *storyStorage) GetFeaturedStories(ctx context.Context) ([]*service.Story, error) {
	const op errs.Op = "storyStorage.GetFeaturedStories"

	rows, err := s.db.QueryContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE status = 'APPROVED' AND featured ORDER BY approved_at DESC`)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}
	defer rows.Close()

	return collectStories(op, rows)
}

func collectStories(op errs.Op, rows *sql.Rows) ([]*service.Story, error) {
	var stories []*service.Story

	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, errs.E(errs.Database, op, err)
		}

		stories = append(stories, story)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return stories, nil
}

func (s *storyStorage) CreateStory(ctx context.Context, newStory *service.NewStory) (*service.Story, error) {
	const op errs.Op = "storyStorage.CreateStory"

	categories := newStory.Categories
	if categories == nil {
		categories = []string{}
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO stories (content, categories, author_id) VALUES ($1, $2, $3) RETURNING `+storyColumns,
		newStory.Content,
		pq.StringArray(categories),
		uuidPtrToNullUUID(newStory.AuthorID),
	)

	story, err := scanStory(row)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return story, nil
}

func (s *storyStorage) CreateMirroredStory(ctx context.Context, story *service.Story) (*service.Story, error) {
	const op errs.Op = "storyStorage.CreateMirroredStory"

	categories := story.Categories
	if categories == nil {
		categories = []string{}
	}

	var approvedAt sql.NullTime
	if story.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *story.ApprovedAt, Valid: true}
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO stories (id, content, refined_content, categories, status, moderation_notes, featured, created_at, approved_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING `+storyColumns,
		story.ID,
		story.Content,
		ptrToNullString(story.RefinedContent),
		pq.StringArray(categories),
		string(story.Status),
		ptrToNullString(story.ModerationNotes),
		story.Featured,
		story.Created,
		approvedAt,
	)

	created, err := scanStory(row)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return created, nil
}

// UpdateModeration writes the CMS-owned field group. approved_at is written
// at most once, on the first transition into APPROVED, and survives later
// transitions unchanged.
func (s *storyStorage) UpdateModeration(ctx context.Context, update *service.RemoteStoryUpdate) (*service.Story, error) {
	const op errs.Op = "storyStorage.UpdateModeration"

	row := s.db.QueryRowContext(ctx,
		`UPDATE stories
		SET status = $2,
			moderation_notes = $3,
			featured = $4,
			approved_at = CASE WHEN $2 = 'APPROVED' THEN COALESCE(approved_at, now()) ELSE approved_at END,
			last_modified = now()
		WHERE id = $1
		RETURNING `+storyColumns,
		update.ID,
		string(update.Status),
		ptrToNullString(update.ModerationNotes),
		update.Featured,
	)

	story, err := scanStory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.E(errs.NotExist, op, fmt.Errorf("story with id %s not found", update.ID))
		}

		return nil, errs.E(errs.Database, op, err)
	}

	return story, nil
}

func (s *storyStorage) GetStoryCounts(ctx context.Context) (*service.StoryCounts, error) {
	const op errs.Op = "storyStorage.GetStoryCounts"

	row := s.db.QueryRowContext(ctx,
		`SELECT
			count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'APPROVED'),
			count(*) FILTER (WHERE status = 'REJECTED')
		FROM stories`,
	)

	counts := &service.StoryCounts{}

	err := row.Scan(&counts.Total, &counts.Pending, &counts.Approved, &counts.Rejected)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return counts, nil
}

package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

var _ service.SyncService = &syncService{}

// syncService reconciles stories between the relational store and the CMS.
//
// Authority over a record is partitioned by field group, not decided per
// record: the CMS owns the moderation fields (status, notes, featured), the
// relational store owns the content fields and everything that never leaves
// it. Pushes replace the content side of a document, pulls replace the
// moderation side of a row, and neither direction touches the other group.
type syncService struct {
	storyStorage  service.StoryStorage
	moderationLog service.ModerationLogStorage
	cmsAPI        service.CMSAPI
	outcomes      *prometheus.CounterVec
	log           zerolog.Logger
}

func NewSyncService(
	storyStorage service.StoryStorage,
	moderationLog service.ModerationLogStorage,
	cmsAPI service.CMSAPI,
	outcomes *prometheus.CounterVec,
	log zerolog.Logger,
) *syncService {
	return &syncService{
		storyStorage:  storyStorage,
		moderationLog: moderationLog,
		cmsAPI:        cmsAPI,
		outcomes:      outcomes,
		log:           log,
	}
}

func (s *syncService) count(direction, outcome string) {
	if s.outcomes == nil {
		return
	}

	s.outcomes.WithLabelValues(direction, outcome).Inc()
}

// PushStories mirrors relational stories into the CMS, one at a time. A
// failing record is recorded and the batch continues; only an unreachable
// relational store aborts the run before any write happens.
func (s *syncService) PushStories(ctx context.Context, opts service.SyncOptions) (*service.SyncResult, error) {
	const op errs.Op = "syncService.PushStories"

	log := s.log.With().Str("run_id", shortuuid.New()).Str("direction", "push").Logger()

	stories, err := s.storyStorage.GetStories(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	result := &service.SyncResult{Errors: []string{}}

	for _, story := range stories {
		if story.Status == service.StoryStatusRejected && !opts.IncludeRejected {
			continue
		}

		err := s.cmsAPI.UpsertDocument(ctx, service.DocumentFromStory(story))
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", story.ID, err))
			s.count("push", "failed")
			log.Error().Err(err).Str("story_id", story.ID.String()).Msg("pushing story to cms")

			continue
		}

		result.Synced++
		s.count("push", "synced")
	}

	log.Info().Int("synced", result.Synced).Int("failed", result.Failed).Msg("push completed")

	return result, nil
}

// PullStories applies CMS-side moderation changes to the relational store.
// Documents whose moderation fields already match the relational mirror are
// skipped, which is what makes a repeated pull a no-op.
func (s *syncService) PullStories(ctx context.Context) (*service.SyncResult, error) {
	const op errs.Op = "syncService.PullStories"

	log := s.log.With().Str("run_id", shortuuid.New()).Str("direction", "pull").Logger()

	docs, err := s.cmsAPI.GetDocuments(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	result := &service.SyncResult{Errors: []string{}}

	for _, doc := range docs {
		changed, err := s.pullDocument(ctx, log, doc)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.ID, err))
			s.count("pull", "failed")
			log.Error().Err(err).Str("story_id", doc.ID).Msg("pulling story from cms")

			continue
		}

		if changed {
			result.Synced++
			s.count("pull", "synced")
		}
	}

	log.Info().Int("synced", result.Synced).Int("failed", result.Failed).Msg("pull completed")

	return result, nil
}

// pullDocument applies a single CMS document. Returns whether anything was
// written.
func (s *syncService) pullDocument(ctx context.Context, log zerolog.Logger, doc *service.StoryDocument) (bool, error) {
	const op errs.Op = "syncService.pullDocument"

	update, err := doc.ToStoryUpdate()
	if err != nil {
		return false, errs.E(op, err)
	}

	story, err := s.storyStorage.GetStory(ctx, update.ID)
	if err != nil {
		if errs.KindIs(errs.NotExist, err) {
			// The story only exists in the CMS: mirror it into the
			// relational store rather than treating it as corruption.
			created, err := s.createMirror(ctx, doc, update)
			if err != nil {
				return false, errs.E(op, err)
			}

			log.Info().Str("story_id", created.ID.String()).Msg("created relational mirror for cms-only story")

			return true, nil
		}

		return false, errs.E(op, err)
	}

	if !moderationDiffers(story, update) {
		return false, nil
	}

	_, err = s.applyModeration(ctx, log, story, update)
	if err != nil {
		return false, errs.E(op, err)
	}

	return true, nil
}

// ApplyRemoteChange is the single-record pull path used by the CMS webhook.
func (s *syncService) ApplyRemoteChange(ctx context.Context, change service.RemoteChange) (*service.Story, error) {
	const op errs.Op = "syncService.ApplyRemoteChange"

	log := s.log.With().Str("run_id", shortuuid.New()).Str("direction", "pull").Logger()

	status, err := service.ParseRemoteStatus(change.Status)
	if err != nil {
		return nil, errs.E(op, err)
	}

	story, err := s.storyStorage.GetStory(ctx, change.StoryID)
	if err != nil {
		if errs.KindIs(errs.NotExist, err) {
			// A notification for a story that only exists in the CMS: fetch
			// the full document and mirror it, same as the batch pull does.
			created, err := s.mirrorFromCMS(ctx, log, change.StoryID)
			if err != nil {
				return nil, errs.E(op, err)
			}

			return created, nil
		}

		return nil, errs.E(op, err)
	}

	update := &service.RemoteStoryUpdate{
		ID:              change.StoryID,
		Status:          status,
		ModerationNotes: change.Notes,
		Featured:        change.Featured,
		ModeratedBy:     change.ModeratorID,
	}

	if !moderationDiffers(story, update) {
		return story, nil
	}

	updated, err := s.applyModeration(ctx, log, story, update)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return updated, nil
}

// Bidirectional pushes before pulling so that stories submitted since the
// last run exist in the CMS before moderation decisions come back; the other
// order can drop a decision made on a story that had not been pushed yet.
func (s *syncService) Bidirectional(ctx context.Context, opts service.SyncOptions) (*service.SyncResult, error) {
	const op errs.Op = "syncService.Bidirectional"

	result, err := s.PushStories(ctx, opts)
	if err != nil {
		return nil, errs.E(op, err)
	}

	pulled, err := s.PullStories(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	result.Merge(pulled)

	return result, nil
}

// GetStatus reports cross-store counts. An unreachable store marks the
// report partial instead of failing it, so the dashboard stays useful during
// a partial outage.
func (s *syncService) GetStatus(ctx context.Context) (*service.SyncStatus, error) {
	status := &service.SyncStatus{}

	counts, err := s.storyStorage.GetStoryCounts(ctx)
	if err != nil {
		status.NeonUnavailable = true
		s.log.Error().Err(err).Msg("relational store unavailable for status report")
	} else {
		status.NeonCount = counts.Total
		status.PendingCount = counts.Pending
		status.ApprovedCount = counts.Approved
	}

	cmsCount, err := s.cmsAPI.CountDocuments(ctx)
	if err != nil {
		status.CMSUnavailable = true
		s.log.Error().Err(err).Msg("cms unavailable for status report")
	} else {
		status.CMSCount = cmsCount
	}

	status.InSync = !status.NeonUnavailable && !status.CMSUnavailable && status.NeonCount == status.CMSCount

	return status, nil
}

// applyModeration writes the CMS-owned field group for one story, enforcing
// the transition rules, and records the action in the moderation log when a
// moderator identity is attached.
func (s *syncService) applyModeration(ctx context.Context, log zerolog.Logger, story *service.Story, update *service.RemoteStoryUpdate) (*service.Story, error) {
	const op errs.Op = "syncService.applyModeration"

	if !story.Status.CanTransitionTo(update.Status) {
		return nil, errs.E(errs.Invalid, op, errs.Parameter("status"),
			fmt.Errorf("transition %s to %s is not allowed", story.Status, update.Status))
	}

	updated, err := s.storyStorage.UpdateModeration(ctx, update)
	if err != nil {
		return nil, errs.E(op, err)
	}

	if update.Status == story.Status {
		return updated, nil
	}

	action := fmt.Sprintf("%s -> %s", story.Status, update.Status)

	if update.ModeratedBy == "" {
		// Status change without an attributable moderator: applied, but
		// kept out of the moderation log.
		log.Info().
			Str("story_id", story.ID.String()).
			Str("action", action).
			Bool("attributed", false).
			Msg("unattributed moderation change applied")

		return updated, nil
	}

	err = s.moderationLog.CreateModerationEntry(ctx, &service.ModerationEntry{
		StoryID:   story.ID,
		Action:    action,
		Moderator: update.ModeratedBy,
		Notes:     update.ModerationNotes,
	})
	if err != nil {
		// The moderation fields are already written; a failed audit row
		// should not undo or fail the record.
		log.Error().Err(err).Str("story_id", story.ID.String()).Msg("writing moderation log entry")
	}

	return updated, nil
}

// mirrorFromCMS fetches the document for a story the relational store does
// not have and creates the relational mirror. The change notification only
// carries the moderation fields, so the content comes from the document.
func (s *syncService) mirrorFromCMS(ctx context.Context, log zerolog.Logger, id uuid.UUID) (*service.Story, error) {
	const op errs.Op = "syncService.mirrorFromCMS"

	doc, err := s.cmsAPI.GetDocument(ctx, id.String())
	if err != nil {
		return nil, errs.E(op, err)
	}

	update, err := doc.ToStoryUpdate()
	if err != nil {
		return nil, errs.E(op, err)
	}

	created, err := s.createMirror(ctx, doc, update)
	if err != nil {
		return nil, errs.E(op, err)
	}

	log.Info().Str("story_id", created.ID.String()).Msg("created relational mirror for cms-only story")

	return created, nil
}

func (s *syncService) createMirror(ctx context.Context, doc *service.StoryDocument, update *service.RemoteStoryUpdate) (*service.Story, error) {
	const op errs.Op = "syncService.createMirror"

	mirror := &service.Story{
		ID:              update.ID,
		Content:         doc.Content,
		Categories:      doc.Categories,
		Status:          update.Status,
		ModerationNotes: update.ModerationNotes,
		Featured:        update.Featured,
		Created:         doc.CreatedAt,
		ApprovedAt:      doc.ApprovedAt,
	}

	if doc.RefinedContent != "" {
		refined := doc.RefinedContent
		mirror.RefinedContent = &refined
	}

	created, err := s.storyStorage.CreateMirroredStory(ctx, mirror)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return created, nil
}

// moderationDiffers is the change detector for the pull direction: it
// compares only the CMS-owned field group against the relational mirror.
func moderationDiffers(story *service.Story, update *service.RemoteStoryUpdate) bool {
	if story.Status != update.Status {
		return true
	}

	if story.Featured != update.Featured {
		return true
	}

	return !equalStringPtr(story.ModerationNotes, update.ModerationNotes)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

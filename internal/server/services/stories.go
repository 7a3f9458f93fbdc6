package services

import (
	"context"
	"errors"
	"time"

	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/models"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
)

type ViewResult struct {
	Viewers []string
	Expired bool
}

// StoryService manages ephemeral stories. A story is active for TTL after
// creation; past that it is treated as absent everywhere and deleted lazily
// by whichever operation notices it first.
type StoryService struct {
	repomanager repomanager.RepositoryManager
	clock       clock.Clock
	ids         clock.IDGenerator
	ttl         time.Duration
	logger      logging.Logger
}

func NewStoryService(rm repomanager.RepositoryManager, c clock.Clock, ids clock.IDGenerator,
	cfg *config.Config, logger logging.Logger) *StoryService {
	return &StoryService{
		repomanager: rm,
		clock:       c,
		ids:         ids,
		ttl:         cfg.StoryTTL,
		logger:      logger.With("module", "stories"),
	}
}

// TTL is the configured story lifetime.
func (s *StoryService) TTL() time.Duration { return s.ttl }

// storyExpired reports whether a story created at createdAt is gone at now.
// A story is still active at exactly createdAt+ttl.
func storyExpired(createdAt, now int64, ttl time.Duration) bool {
	return now-createdAt > ttl.Milliseconds()
}

func (s *StoryService) expired(createdAt, now int64) bool {
	return storyExpired(createdAt, now, s.ttl)
}

func storyTarget(id string) models.TargetRef {
	return models.TargetRef{Kind: models.TargetStory, ID: id}
}

// purgeStories removes the engagement targets of deleted stories, together
// with their memberships and comments.
func purgeStories(ctx context.Context, r repomanager.Repositories, ids ...string) error {
	for _, id := range ids {
		if _, err := r.Counters().Delete(ctx, storyTarget(id)); err != nil {
			return err
		}
	}
	return nil
}

// cutoff is the oldest creation time still active at now.
func (s *StoryService) cutoff(now int64) int64 {
	return now - s.ttl.Milliseconds()
}

// Create stores a new story stamped with server time. An empty id gets a
// generated one. An active story with the same id is a conflict; an expired
// one is replaced.
func (s *StoryService) Create(ctx context.Context, id, ownerID string, payload models.StoryPayload) (*models.Story, error) {
	if id == "" {
		id = s.ids.New()
	}
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	if err := validateID("ownerId", ownerID); err != nil {
		return nil, err
	}
	if err := validateStoryPayload(payload); err != nil {
		return nil, err
	}

	var story *models.Story
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		now := clock.Millis(s.clock)

		existing, err := r.Stories().GetForUpdate(ctx, id)
		switch {
		case err == nil && !s.expired(existing.CreatedAt, now):
			return common.ErrorAlreadyExists
		case err == nil:
			if _, err := r.Stories().Delete(ctx, id); err != nil {
				return err
			}
			if err := purgeStories(ctx, r, id); err != nil {
				return err
			}
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		story = &models.Story{ID: id, OwnerID: ownerID, CreatedAt: now, Payload: payload, Viewers: []string{}}
		inserted, err := r.Stories().Insert(ctx, story)
		if err != nil {
			return err
		}
		if !inserted {
			return common.ErrorAlreadyExists
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("create story "+id, err)
	}
	s.logger.Debug(ctx, "story created", "id", id, "owner", ownerID)
	return story, nil
}

// RecordView adds viewerID to the story's viewer set. An expired story is
// deleted and reported with Expired set; that is a result, not an error.
func (s *StoryService) RecordView(ctx context.Context, id, viewerID string) (*ViewResult, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	if err := validateID("viewerId", viewerID); err != nil {
		return nil, err
	}

	var res ViewResult
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		now := clock.Millis(s.clock)
		story, err := r.Stories().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if s.expired(story.CreatedAt, now) {
			res.Expired = true
			if _, err := r.Stories().Delete(ctx, id); err != nil {
				return err
			}
			return purgeStories(ctx, r, id)
		}
		if err := r.Stories().AddViewer(ctx, id, viewerID, now); err != nil {
			return err
		}
		res.Viewers, err = r.Stories().Viewers(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeErr("view story "+id, err)
	}
	if res.Expired {
		s.logger.Debug(ctx, "expired story removed on view", "id", id)
	}
	return &res, nil
}

// ListActive returns active stories oldest first and deletes expired ones.
func (s *StoryService) ListActive(ctx context.Context) ([]*models.Story, error) {
	var list []*models.Story
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		cutoff := s.cutoff(clock.Millis(s.clock))
		removed, err := r.Stories().DeleteExpired(ctx, cutoff)
		if err != nil {
			return err
		}
		if err := purgeStories(ctx, r, removed...); err != nil {
			return err
		}
		if len(removed) > 0 {
			s.logger.Debug(ctx, "expired stories removed on list", "count", len(removed))
		}
		list, err = r.Stories().SelectActive(ctx, cutoff)
		return err
	})
	if err != nil {
		return nil, storeErr("list stories", err)
	}
	return list, nil
}

// Delete removes a story regardless of its age, along with its likes,
// views and comments.
func (s *StoryService) Delete(ctx context.Context, id string) (bool, error) {
	if err := validateID("id", id); err != nil {
		return false, err
	}
	var deleted bool
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		if deleted, err = r.Stories().Delete(ctx, id); err != nil {
			return err
		}
		return purgeStories(ctx, r, id)
	})
	if err != nil {
		return false, storeErr("delete story "+id, err)
	}
	return deleted, nil
}

// Sweep deletes every expired story and returns how many were removed.
func (s *StoryService) Sweep(ctx context.Context) (int64, error) {
	var removed []string
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		if removed, err = r.Stories().DeleteExpired(ctx, s.cutoff(clock.Millis(s.clock))); err != nil {
			return err
		}
		return purgeStories(ctx, r, removed...)
	})
	if err != nil {
		return 0, storeErr("sweep stories", err)
	}
	return int64(len(removed)), nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *StoryService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Error(ctx, "story sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "story sweep", "removed", n)
			}
		}
	}
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/models"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
)

type ToggleResult struct {
	Active bool
	Count  int64
}

type CommentPage struct {
	Comments []*models.Comment
	Cursor   int64
	HasMore  bool
}

// EngagementService maintains likes, dislikes, views, comments and ratings.
// Every mutation locks the target row, so counters always match the
// membership rows they summarize.
type EngagementService struct {
	repomanager repomanager.RepositoryManager
	clock       clock.Clock
	ids         clock.IDGenerator
	storyTTL    time.Duration
	logger      logging.Logger
}

func NewEngagementService(rm repomanager.RepositoryManager, c clock.Clock, ids clock.IDGenerator,
	cfg *config.Config, logger logging.Logger) *EngagementService {
	return &EngagementService{
		repomanager: rm,
		clock:       c,
		ids:         ids,
		storyTTL:    cfg.StoryTTL,
		logger:      logger.With("module", "engagement"),
	}
}

// ensureTarget creates the target if needed. Story targets exist only while
// their story is active: a missing story is ErrorNotFound and an expired one
// ErrorExpired. The story row stays locked until commit, so a concurrent
// delete cannot leave engagement behind.
func (s *EngagementService) ensureTarget(ctx context.Context, r repomanager.Repositories, target models.TargetRef, now int64) error {
	if target.Kind == models.TargetStory {
		story, err := r.Stories().GetForUpdate(ctx, target.ID)
		if err != nil {
			return err
		}
		if storyExpired(story.CreatedAt, now, s.storyTTL) {
			return common.ErrorExpired
		}
	}
	return r.Counters().Ensure(ctx, target, now)
}

// lockTarget creates the target if needed and locks it for the rest of the
// transaction.
func (s *EngagementService) lockTarget(ctx context.Context, r repomanager.Repositories, target models.TargetRef, now int64) (*models.Counters, error) {
	if err := s.ensureTarget(ctx, r, target, now); err != nil {
		return nil, err
	}
	return r.Counters().Lock(ctx, target)
}

// Toggle flips the user's like or dislike on target, or records a view.
// Views are insert-only: a repeated view is a no-op reporting Active.
func (s *EngagementService) Toggle(ctx context.Context, target models.TargetRef, userID string, kind models.MembershipKind) (*ToggleResult, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	if _, err := models.ParseMembershipKind(string(kind)); err != nil {
		return nil, common.NewValidationError("kind", err.Error())
	}

	var res ToggleResult
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		now := clock.Millis(s.clock)
		counters, err := s.lockTarget(ctx, r, target, now)
		if err != nil {
			return err
		}

		m := models.Membership{Target: target, Kind: kind, UserID: userID}
		counter := kind.Counter()

		if kind == models.MembershipView {
			inserted, err := r.Memberships().Insert(ctx, m, now)
			if err != nil {
				return err
			}
			res = ToggleResult{Active: true, Count: counters.Get(counter)}
			if inserted {
				res.Count, err = r.Counters().Increment(ctx, target, counter, 1)
			}
			return err
		}

		removed, err := r.Memberships().Delete(ctx, m)
		if err != nil {
			return err
		}
		if removed {
			res.Count, err = r.Counters().Increment(ctx, target, counter, -1)
			return err
		}
		if _, err := r.Memberships().Insert(ctx, m, now); err != nil {
			return err
		}
		res.Active = true
		res.Count, err = r.Counters().Increment(ctx, target, counter, 1)
		return err
	})
	if err != nil {
		return nil, storeErr("toggle", err)
	}

	s.logger.Debug(ctx, "toggled", "target", target.String(), "kind", string(kind),
		"user", userID, "active", res.Active, "count", res.Count)
	return &res, nil
}

// DeleteTarget removes a target with all its memberships and comments.
func (s *EngagementService) DeleteTarget(ctx context.Context, target models.TargetRef) (bool, error) {
	if err := validateTarget(target); err != nil {
		return false, err
	}
	var deleted bool
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		deleted, err = r.Counters().Delete(ctx, target)
		return err
	})
	if err != nil {
		return false, storeErr("delete target", err)
	}
	if deleted {
		s.logger.Info(ctx, "target deleted", "target", target.String())
	}
	return deleted, nil
}

// Counters reads a target's counters. A target nobody engaged with reports
// zeros.
func (s *EngagementService) Counters(ctx context.Context, target models.TargetRef) (*models.Counters, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	c, err := s.repomanager.Repositories().Counters().Get(ctx, target)
	if errors.Is(err, common.ErrorNotFound) {
		return &models.Counters{Target: target}, nil
	}
	if err != nil {
		return nil, storeErr("counters", err)
	}
	return c, nil
}

// AddComment appends a comment; its seq is the target's new comment count.
func (s *EngagementService) AddComment(ctx context.Context, target models.TargetRef, userID, text string) (*models.Comment, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, common.NewValidationError("text", "must not be empty")
	case utf8.RuneCountInString(text) > maxCommentLength:
		return nil, common.NewValidationError("text", "too long")
	}
	if err := validateText("text", text); err != nil {
		return nil, err
	}

	var comment *models.Comment
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		now := clock.Millis(s.clock)
		if _, err := s.lockTarget(ctx, r, target, now); err != nil {
			return err
		}
		seq, err := r.Counters().Increment(ctx, target, models.CounterComments, 1)
		if err != nil {
			return err
		}
		comment = &models.Comment{
			Target:    target,
			Seq:       seq,
			ID:        s.ids.New(),
			UserID:    userID,
			Text:      text,
			CreatedAt: now,
		}
		return r.Comments().Insert(ctx, comment)
	})
	if err != nil {
		return nil, storeErr("add comment", err)
	}
	return comment, nil
}

// ListComments pages through a target's comments by seq.
func (s *EngagementService) ListComments(ctx context.Context, target models.TargetRef, cursor string, limit int) (*CommentPage, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, common.NewValidationError("limit", "must not be negative")
	}
	from, ok := ParseCursor(cursor)
	if !ok {
		s.logger.Warn(ctx, "malformed comment cursor, listing from the beginning", "target", target.String(), "cursor", cursor)
	}

	fetch := 0
	if limit > 0 {
		fetch = limit + 1
	}
	list, err := s.repomanager.Repositories().Comments().SelectAfter(ctx, target, from, fetch)
	if err != nil {
		return nil, storeErr("list comments", err)
	}

	page := &CommentPage{Cursor: from}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
		page.HasMore = true
	}
	page.Comments = list
	if n := len(list); n > 0 {
		page.Cursor = list[n-1].Seq
	}
	return page, nil
}

// Rate folds a 1..5 score into the target's running average.
func (s *EngagementService) Rate(ctx context.Context, target models.TargetRef, score int) (*models.Counters, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if score < 1 || score > 5 {
		return nil, common.NewValidationError("score", "must be between 1 and 5")
	}

	var out *models.Counters
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := s.ensureTarget(ctx, r, target, clock.Millis(s.clock)); err != nil {
			return err
		}
		var err error
		out, err = r.Counters().AddRating(ctx, target, int64(score))
		return err
	})
	if err != nil {
		return nil, storeErr("rate", err)
	}
	return out, nil
}

// Audit lists counters that disagree with their membership rows.
func (s *EngagementService) Audit(ctx context.Context) ([]models.CounterDrift, error) {
	drift, err := s.repomanager.Repositories().Counters().Drift(ctx)
	if err != nil {
		return nil, storeErr("audit", err)
	}
	for _, d := range drift {
		s.logger.Warn(ctx, "counter drift", "target", d.Target.String(),
			"counter", string(d.Counter), "stored", d.Stored, "actual", d.Actual)
	}
	return drift, nil
}

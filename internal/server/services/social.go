package services

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/models"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
)

// fanOutLimit bounds concurrent store lookups per Mutual/Suggestions call.
const fanOutLimit = 8

// SocialService maintains the follow graph and answers graph queries.
type SocialService struct {
	repomanager repomanager.RepositoryManager
	clock       clock.Clock
	logger      logging.Logger
}

func NewSocialService(rm repomanager.RepositoryManager, c clock.Clock, logger logging.Logger) *SocialService {
	return &SocialService{
		repomanager: rm,
		clock:       c,
		logger:      logger.With("module", "social"),
	}
}

func validatePair(followerID, followedID string) error {
	if err := validateID("followerId", followerID); err != nil {
		return err
	}
	if err := validateID("followedId", followedID); err != nil {
		return err
	}
	if followerID == followedID {
		return common.NewValidationError("followedId", "cannot follow yourself")
	}
	return nil
}

// Follow adds the edge; changed is false when it already existed.
func (s *SocialService) Follow(ctx context.Context, followerID, followedID string) (bool, error) {
	if err := validatePair(followerID, followedID); err != nil {
		return false, err
	}
	changed, err := s.repomanager.Repositories().Follows().Insert(ctx, models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		FollowedAt: clock.Millis(s.clock),
	})
	if err != nil {
		return false, storeErr("follow", err)
	}
	return changed, nil
}

// Unfollow removes the edge; changed is false when there was none.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followedID string) (bool, error) {
	if err := validatePair(followerID, followedID); err != nil {
		return false, err
	}
	changed, err := s.repomanager.Repositories().Follows().Delete(ctx, followerID, followedID)
	if err != nil {
		return false, storeErr("unfollow", err)
	}
	return changed, nil
}

func (s *SocialService) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	if err := validatePair(followerID, followedID); err != nil {
		return false, err
	}
	ok, err := s.repomanager.Repositories().Follows().Exists(ctx, followerID, followedID)
	if err != nil {
		return false, storeErr("is following", err)
	}
	return ok, nil
}

// Mutual returns the users userID follows who follow back, sorted.
func (s *SocialService) Mutual(ctx context.Context, userID string) ([]string, error) {
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	repos := s.repomanager.Repositories()
	following, err := repos.Follows().Following(ctx, userID)
	if err != nil {
		return nil, storeErr("mutual", err)
	}

	back := make([]bool, len(following))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, other := range following {
		i, other := i, other
		g.Go(func() error {
			ok, err := repos.Follows().Exists(gctx, other, userID)
			back[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr("mutual", err)
	}

	mutual := []string{}
	for i, other := range following {
		if back[i] {
			mutual = append(mutual, other)
		}
	}
	slices.Sort(mutual)
	return mutual, nil
}

// Suggestions returns friends of friends that userID does not follow yet,
// excluding userID, sorted and de-duplicated.
func (s *SocialService) Suggestions(ctx context.Context, userID string) ([]string, error) {
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	repos := s.repomanager.Repositories()
	following, err := repos.Follows().Following(ctx, userID)
	if err != nil {
		return nil, storeErr("suggestions", err)
	}

	second := make([][]string, len(following))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, other := range following {
		i, other := i, other
		g.Go(func() error {
			ids, err := repos.Follows().Following(gctx, other)
			second[i] = ids
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr("suggestions", err)
	}

	known := make(map[string]bool, len(following)+1)
	known[userID] = true
	for _, id := range following {
		known[id] = true
	}
	suggestions := []string{}
	for _, ids := range second {
		for _, id := range ids {
			if !known[id] {
				known[id] = true
				suggestions = append(suggestions, id)
			}
		}
	}
	slices.Sort(suggestions)
	s.logger.Debug(ctx, "suggestions computed", "user", userID, "following", len(following), "suggested", len(suggestions))
	return suggestions, nil
}

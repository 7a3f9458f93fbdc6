package grpc

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/api"
	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

func (s *GRPCServer) PullDelta(ctx context.Context, req *api.PullDeltaRequest) (*api.PullDeltaResponse, error) {
	res, err := s.sync.Pull(ctx, req.Collection, req.ContainerID, req.Cursor, int(req.Limit))
	if err != nil {
		return nil, s.fail(ctx, "pull delta", err)
	}
	return &api.PullDeltaResponse{
		Records:    toAPIRecords(res.Records),
		ServerTime: res.ServerTime,
		Cursor:     formatCursor(res.Cursor),
		HasMore:    res.HasMore,
	}, nil
}

func (s *GRPCServer) PushBatch(ctx context.Context, req *api.PushBatchRequest) (*api.PushBatchResponse, error) {
	res, err := s.sync.Push(ctx, req.Collection, req.ContainerID, fromAPIRecords(req.Records))
	if err != nil {
		return nil, s.fail(ctx, "push batch", err)
	}

	out := &api.PushBatchResponse{
		Created:  res.Created,
		Accepted: int32(res.Accepted),
		Results:  make([]*api.UpsertOutcome, len(res.Results)),
	}
	for i, r := range res.Results {
		out.Results[i] = &api.UpsertOutcome{Accepted: r.Accepted, Record: toAPIRecord(r.Record)}
	}
	return out, nil
}

func (s *GRPCServer) UpsertRecord(ctx context.Context, req *api.UpsertRecordRequest) (*api.UpsertRecordResponse, error) {
	res, err := s.sync.Upsert(ctx, req.Collection, req.ContainerID, fromAPIRecord(req.Record))
	if err != nil {
		return nil, s.fail(ctx, "upsert record", err)
	}
	return &api.UpsertRecordResponse{Accepted: res.Accepted, Record: toAPIRecord(res.Record)}, nil
}

func (s *GRPCServer) GetRecord(ctx context.Context, req *api.GetRecordRequest) (*api.Record, error) {
	rec, err := s.sync.Get(ctx, req.Collection, req.ContainerID, req.ID)
	if err != nil {
		return nil, s.fail(ctx, "get record", err)
	}
	return toAPIRecord(rec), nil
}

func (s *GRPCServer) Toggle(ctx context.Context, req *api.ToggleRequest) (*api.ToggleResponse, error) {
	res, err := s.engagement.Toggle(ctx, fromAPITarget(req.Target), req.UserID, models.MembershipKind(req.Kind))
	if err != nil {
		return nil, s.fail(ctx, "toggle", err)
	}
	return &api.ToggleResponse{Active: res.Active, Count: res.Count}, nil
}

func (s *GRPCServer) DeleteTarget(ctx context.Context, req *api.TargetRequest) (*api.DeleteTargetResponse, error) {
	deleted, err := s.engagement.DeleteTarget(ctx, fromAPITarget(req.Target))
	if err != nil {
		return nil, s.fail(ctx, "delete target", err)
	}
	return &api.DeleteTargetResponse{Deleted: deleted}, nil
}

func (s *GRPCServer) GetCounters(ctx context.Context, req *api.TargetRequest) (*api.Counters, error) {
	c, err := s.engagement.Counters(ctx, fromAPITarget(req.Target))
	if err != nil {
		return nil, s.fail(ctx, "get counters", err)
	}
	return toAPICounters(c), nil
}

func (s *GRPCServer) AddComment(ctx context.Context, req *api.AddCommentRequest) (*api.Comment, error) {
	c, err := s.engagement.AddComment(ctx, fromAPITarget(req.Target), req.UserID, req.Text)
	if err != nil {
		return nil, s.fail(ctx, "add comment", err)
	}
	return toAPIComment(c), nil
}

func (s *GRPCServer) ListComments(ctx context.Context, req *api.ListCommentsRequest) (*api.ListCommentsResponse, error) {
	page, err := s.engagement.ListComments(ctx, fromAPITarget(req.Target), req.Cursor, int(req.Limit))
	if err != nil {
		return nil, s.fail(ctx, "list comments", err)
	}
	out := &api.ListCommentsResponse{
		Comments: make([]*api.Comment, len(page.Comments)),
		Cursor:   formatCursor(page.Cursor),
		HasMore:  page.HasMore,
	}
	for i, c := range page.Comments {
		out.Comments[i] = toAPIComment(c)
	}
	return out, nil
}

func (s *GRPCServer) Rate(ctx context.Context, req *api.RateRequest) (*api.Counters, error) {
	c, err := s.engagement.Rate(ctx, fromAPITarget(req.Target), int(req.Score))
	if err != nil {
		return nil, s.fail(ctx, "rate", err)
	}
	return toAPICounters(c), nil
}

func (s *GRPCServer) CreateStory(ctx context.Context, req *api.CreateStoryRequest) (*api.Story, error) {
	var payload models.StoryPayload
	if len(req.Payload) > 0 && string(req.Payload) != "null" {
		if err := models.DecodeStrict(req.Payload, &payload); err != nil {
			return nil, s.fail(ctx, "create story", common.NewValidationError("payload", err.Error()))
		}
	}

	story, err := s.stories.Create(ctx, req.ID, req.OwnerID, payload)
	if err != nil {
		return nil, s.fail(ctx, "create story", err)
	}
	out, err := toAPIStory(story, s.stories.TTL())
	if err != nil {
		return nil, s.fail(ctx, "create story", err)
	}
	return out, nil
}

func (s *GRPCServer) ViewStory(ctx context.Context, req *api.ViewStoryRequest) (*api.ViewStoryResponse, error) {
	res, err := s.stories.RecordView(ctx, req.ID, req.ViewerID)
	if err != nil {
		return nil, s.fail(ctx, "view story", err)
	}
	return &api.ViewStoryResponse{Viewers: nonNil(res.Viewers), Expired: res.Expired}, nil
}

func (s *GRPCServer) ListStories(ctx context.Context, _ *api.ListStoriesRequest) (*api.ListStoriesResponse, error) {
	list, err := s.stories.ListActive(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list stories", err)
	}
	out := &api.ListStoriesResponse{Stories: make([]*api.Story, 0, len(list))}
	ttl := s.stories.TTL()
	for _, story := range list {
		st, err := toAPIStory(story, ttl)
		if err != nil {
			return nil, s.fail(ctx, "list stories", err)
		}
		out.Stories = append(out.Stories, st)
	}
	return out, nil
}

func (s *GRPCServer) DeleteStory(ctx context.Context, req *api.DeleteStoryRequest) (*api.DeleteStoryResponse, error) {
	deleted, err := s.stories.Delete(ctx, req.ID)
	if err != nil {
		return nil, s.fail(ctx, "delete story", err)
	}
	return &api.DeleteStoryResponse{Deleted: deleted}, nil
}

func (s *GRPCServer) Follow(ctx context.Context, req *api.FollowRequest) (*api.FollowResponse, error) {
	changed, err := s.social.Follow(ctx, req.FollowerID, req.FollowedID)
	if err != nil {
		return nil, s.fail(ctx, "follow", err)
	}
	return &api.FollowResponse{Changed: changed}, nil
}

func (s *GRPCServer) Unfollow(ctx context.Context, req *api.FollowRequest) (*api.FollowResponse, error) {
	changed, err := s.social.Unfollow(ctx, req.FollowerID, req.FollowedID)
	if err != nil {
		return nil, s.fail(ctx, "unfollow", err)
	}
	return &api.FollowResponse{Changed: changed}, nil
}

func (s *GRPCServer) IsFollowing(ctx context.Context, req *api.FollowRequest) (*api.IsFollowingResponse, error) {
	ok, err := s.social.IsFollowing(ctx, req.FollowerID, req.FollowedID)
	if err != nil {
		return nil, s.fail(ctx, "is following", err)
	}
	return &api.IsFollowingResponse{Following: ok}, nil
}

func (s *GRPCServer) Mutual(ctx context.Context, req *api.UserRequest) (*api.UsersResponse, error) {
	ids, err := s.social.Mutual(ctx, req.UserID)
	if err != nil {
		return nil, s.fail(ctx, "mutual", err)
	}
	return &api.UsersResponse{UserIDs: nonNil(ids)}, nil
}

func (s *GRPCServer) Suggestions(ctx context.Context, req *api.UserRequest) (*api.UsersResponse, error) {
	ids, err := s.social.Suggestions(ctx, req.UserID)
	if err != nil {
		return nil, s.fail(ctx, "suggestions", err)
	}
	return &api.UsersResponse{UserIDs: nonNil(ids)}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK", ServerTime: clock.Millis(s.clock)}, nil
}

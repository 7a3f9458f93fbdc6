package api

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls the sync service over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, c *Client, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PullDelta(ctx context.Context, in *PullDeltaRequest, opts ...grpc.CallOption) (*PullDeltaResponse, error) {
	return invoke[PullDeltaRequest, PullDeltaResponse](ctx, c, "PullDelta", in, opts)
}

func (c *Client) PushBatch(ctx context.Context, in *PushBatchRequest, opts ...grpc.CallOption) (*PushBatchResponse, error) {
	return invoke[PushBatchRequest, PushBatchResponse](ctx, c, "PushBatch", in, opts)
}

func (c *Client) UpsertRecord(ctx context.Context, in *UpsertRecordRequest, opts ...grpc.CallOption) (*UpsertRecordResponse, error) {
	return invoke[UpsertRecordRequest, UpsertRecordResponse](ctx, c, "UpsertRecord", in, opts)
}

func (c *Client) GetRecord(ctx context.Context, in *GetRecordRequest, opts ...grpc.CallOption) (*Record, error) {
	return invoke[GetRecordRequest, Record](ctx, c, "GetRecord", in, opts)
}

func (c *Client) Toggle(ctx context.Context, in *ToggleRequest, opts ...grpc.CallOption) (*ToggleResponse, error) {
	return invoke[ToggleRequest, ToggleResponse](ctx, c, "Toggle", in, opts)
}

func (c *Client) DeleteTarget(ctx context.Context, in *TargetRequest, opts ...grpc.CallOption) (*DeleteTargetResponse, error) {
	return invoke[TargetRequest, DeleteTargetResponse](ctx, c, "DeleteTarget", in, opts)
}

func (c *Client) GetCounters(ctx context.Context, in *TargetRequest, opts ...grpc.CallOption) (*Counters, error) {
	return invoke[TargetRequest, Counters](ctx, c, "GetCounters", in, opts)
}

func (c *Client) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*Comment, error) {
	return invoke[AddCommentRequest, Comment](ctx, c, "AddComment", in, opts)
}

func (c *Client) ListComments(ctx context.Context, in *ListCommentsRequest, opts ...grpc.CallOption) (*ListCommentsResponse, error) {
	return invoke[ListCommentsRequest, ListCommentsResponse](ctx, c, "ListComments", in, opts)
}

func (c *Client) Rate(ctx context.Context, in *RateRequest, opts ...grpc.CallOption) (*Counters, error) {
	return invoke[RateRequest, Counters](ctx, c, "Rate", in, opts)
}

func (c *Client) CreateStory(ctx context.Context, in *CreateStoryRequest, opts ...grpc.CallOption) (*Story, error) {
	return invoke[CreateStoryRequest, Story](ctx, c, "CreateStory", in, opts)
}

func (c *Client) ViewStory(ctx context.Context, in *ViewStoryRequest, opts ...grpc.CallOption) (*ViewStoryResponse, error) {
	return invoke[ViewStoryRequest, ViewStoryResponse](ctx, c, "ViewStory", in, opts)
}

func (c *Client) ListStories(ctx context.Context, in *ListStoriesRequest, opts ...grpc.CallOption) (*ListStoriesResponse, error) {
	return invoke[ListStoriesRequest, ListStoriesResponse](ctx, c, "ListStories", in, opts)
}

func (c *Client) DeleteStory(ctx context.Context, in *DeleteStoryRequest, opts ...grpc.CallOption) (*DeleteStoryResponse, error) {
	return invoke[DeleteStoryRequest, DeleteStoryResponse](ctx, c, "DeleteStory", in, opts)
}

func (c *Client) Follow(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*FollowResponse, error) {
	return invoke[FollowRequest, FollowResponse](ctx, c, "Follow", in, opts)
}

func (c *Client) Unfollow(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*FollowResponse, error) {
	return invoke[FollowRequest, FollowResponse](ctx, c, "Unfollow", in, opts)
}

func (c *Client) IsFollowing(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*IsFollowingResponse, error) {
	return invoke[FollowRequest, IsFollowingResponse](ctx, c, "IsFollowing", in, opts)
}

func (c *Client) Mutual(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UserRequest, UsersResponse](ctx, c, "Mutual", in, opts)
}

func (c *Client) Suggestions(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UserRequest, UsersResponse](ctx, c, "Suggestions", in, opts)
}

func (c *Client) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c, "Ping", in, opts)
}

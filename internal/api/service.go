package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "spectra.sync.v1.SyncService"

// SyncServiceServer is implemented by the server side of the sync service.
type SyncServiceServer interface {
	PullDelta(context.Context, *PullDeltaRequest) (*PullDeltaResponse, error)
	PushBatch(context.Context, *PushBatchRequest) (*PushBatchResponse, error)
	UpsertRecord(context.Context, *UpsertRecordRequest) (*UpsertRecordResponse, error)
	GetRecord(context.Context, *GetRecordRequest) (*Record, error)

	Toggle(context.Context, *ToggleRequest) (*ToggleResponse, error)
	DeleteTarget(context.Context, *TargetRequest) (*DeleteTargetResponse, error)
	GetCounters(context.Context, *TargetRequest) (*Counters, error)
	AddComment(context.Context, *AddCommentRequest) (*Comment, error)
	ListComments(context.Context, *ListCommentsRequest) (*ListCommentsResponse, error)
	Rate(context.Context, *RateRequest) (*Counters, error)

	CreateStory(context.Context, *CreateStoryRequest) (*Story, error)
	ViewStory(context.Context, *ViewStoryRequest) (*ViewStoryResponse, error)
	ListStories(context.Context, *ListStoriesRequest) (*ListStoriesResponse, error)
	DeleteStory(context.Context, *DeleteStoryRequest) (*DeleteStoryResponse, error)

	Follow(context.Context, *FollowRequest) (*FollowResponse, error)
	Unfollow(context.Context, *FollowRequest) (*FollowResponse, error)
	IsFollowing(context.Context, *FollowRequest) (*IsFollowingResponse, error)
	Mutual(context.Context, *UserRequest) (*UsersResponse, error)
	Suggestions(context.Context, *UserRequest) (*UsersResponse, error)

	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// FullMethod returns the gRPC method path of name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the descriptor of one unary method from its interface method.
func unary[Req, Resp any](name string, call func(SyncServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SyncServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SyncServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("PullDelta", SyncServiceServer.PullDelta),
		unary("PushBatch", SyncServiceServer.PushBatch),
		unary("UpsertRecord", SyncServiceServer.UpsertRecord),
		unary("GetRecord", SyncServiceServer.GetRecord),
		unary("Toggle", SyncServiceServer.Toggle),
		unary("DeleteTarget", SyncServiceServer.DeleteTarget),
		unary("GetCounters", SyncServiceServer.GetCounters),
		unary("AddComment", SyncServiceServer.AddComment),
		unary("ListComments", SyncServiceServer.ListComments),
		unary("Rate", SyncServiceServer.Rate),
		unary("CreateStory", SyncServiceServer.CreateStory),
		unary("ViewStory", SyncServiceServer.ViewStory),
		unary("ListStories", SyncServiceServer.ListStories),
		unary("DeleteStory", SyncServiceServer.DeleteStory),
		unary("Follow", SyncServiceServer.Follow),
		unary("Unfollow", SyncServiceServer.Unfollow),
		unary("IsFollowing", SyncServiceServer.IsFollowing),
		unary("Mutual", SyncServiceServer.Mutual),
		unary("Suggestions", SyncServiceServer.Suggestions),
		unary("Ping", SyncServiceServer.Ping),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Package grpc exposes the sync, engagement, story and social services over
// gRPC using the contract in internal/api.
package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/Extra154/spectra-data-server/internal/api"
	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/models"
	"github.com/Extra154/spectra-data-server/internal/server/services"
)

type SyncService interface {
	Pull(ctx context.Context, collection, containerID, cursor string, limit int) (*services.PullResult, error)
	Push(ctx context.Context, collection, containerID string, batch []*models.Record) (*services.PushResult, error)
	Upsert(ctx context.Context, collection, containerID string, rec *models.Record) (*services.UpsertResult, error)
	Get(ctx context.Context, collection, containerID, id string) (*models.Record, error)
}

type EngagementService interface {
	Toggle(ctx context.Context, target models.TargetRef, userID string, kind models.MembershipKind) (*services.ToggleResult, error)
	DeleteTarget(ctx context.Context, target models.TargetRef) (bool, error)
	Counters(ctx context.Context, target models.TargetRef) (*models.Counters, error)
	AddComment(ctx context.Context, target models.TargetRef, userID, text string) (*models.Comment, error)
	ListComments(ctx context.Context, target models.TargetRef, cursor string, limit int) (*services.CommentPage, error)
	Rate(ctx context.Context, target models.TargetRef, score int) (*models.Counters, error)
}

type StoryService interface {
	Create(ctx context.Context, id, ownerID string, payload models.StoryPayload) (*models.Story, error)
	RecordView(ctx context.Context, id, viewerID string) (*services.ViewResult, error)
	ListActive(ctx context.Context) ([]*models.Story, error)
	Delete(ctx context.Context, id string) (bool, error)
	TTL() time.Duration
}

type SocialService interface {
	Follow(ctx context.Context, followerID, followedID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	Mutual(ctx context.Context, userID string) ([]string, error)
	Suggestions(ctx context.Context, userID string) ([]string, error)
}

// Services bundles the domain services the server dispatches to.
type Services struct {
	Sync       SyncService
	Engagement EngagementService
	Stories    StoryService
	Social     SocialService
}

type GRPCServer struct {
	address    string
	logger     logging.Logger
	clock      clock.Clock
	timeout    time.Duration
	sync       SyncService
	engagement EngagementService
	stories    StoryService
	social     SocialService
}

var _ api.SyncServiceServer = (*GRPCServer)(nil)

// NewGRPCServer builds a server listening on address. A positive timeout
// bounds every request.
func NewGRPCServer(address string, l logging.Logger, c clock.Clock, timeout time.Duration, svc Services) *GRPCServer {
	return &GRPCServer{
		address:    address,
		logger:     l.With("module", "grpc_server"),
		clock:      c,
		timeout:    timeout,
		sync:       svc.Sync,
		engagement: svc.Engagement,
		stories:    svc.Stories,
		social:     svc.Social,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		s.recoveryInterceptor,
		s.timeoutInterceptor,
	))
	api.RegisterSyncServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	served := make(chan struct{})
	defer close(served)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-served:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

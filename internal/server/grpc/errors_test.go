package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Extra154/spectra-data-server/internal/common"
)

func TestToStatus_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"validation", common.NewValidationError("id", "must not be empty"), codes.InvalidArgument},
		{"invalid input", fmt.Errorf("op: %w", common.ErrorInvalidInput), codes.InvalidArgument},
		{"not found", fmt.Errorf("view story s1: %w", common.ErrorNotFound), codes.NotFound},
		{"expired", common.ErrorExpired, codes.NotFound},
		{"already exists", common.ErrorAlreadyExists, codes.AlreadyExists},
		{"deadline", fmt.Errorf("pull: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"store", fmt.Errorf("pull: %w: %w", common.ErrorStoreUnavailable, errors.New("conn reset")), codes.Unavailable},
		{"unknown", errors.New("boom"), codes.Internal},
		{"status passes through", status.Error(codes.PermissionDenied, "no"), codes.PermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status.Code(toStatus(tt.err)); got != tt.want {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToStatus_ValidationCarriesField(t *testing.T) {
	err := toStatus(fmt.Errorf("push: %w", common.NewValidationError("records[2].payload", "senderName is required")))

	st, _ := status.FromError(err)
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", st.Code())
	}
	if len(st.Details()) != 1 {
		t.Fatalf("want one detail, got %d", len(st.Details()))
	}
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	if !ok {
		t.Fatalf("unexpected detail type %T", st.Details()[0])
	}
	v := br.GetFieldViolations()[0]
	if v.GetField() != "records[2].payload" || v.GetDescription() != "senderName is required" {
		t.Fatalf("unexpected violation: %v", v)
	}
}

func TestToStatus_HidesStoreDetails(t *testing.T) {
	err := toStatus(fmt.Errorf("pull: %w: %w", common.ErrorStoreUnavailable, errors.New("password authentication failed")))
	if msg := status.Convert(err).Message(); msg != "store unavailable" {
		t.Fatalf("unexpected message %q", msg)
	}
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/auth-service/internal/testutil"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	lg := NewLogging(testutil.MakeNoopLogger())

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req any) (any, error) {
				time.Sleep(10 * time.Millisecond)
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.InvalidArgument, "bad input")
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "non-grpc error becomes Internal",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}
			resp, err := lg.HandleGRPC(context.Background(), struct{}{}, info, tt.handler)

			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
				return
			}
			assert.Equal(t, tt.wantCode, codeOf(err))
		})
	}
}

func TestLogging_HealthChecksLogAtDebug(t *testing.T) {
	log, buf := testutil.MakeBufferLogger(slog.LevelInfo, "text")
	lg := NewLogging(log)

	ok := func(context.Context, any) (any, error) { return "ok", nil }

	_, _ = lg.HandleGRPC(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, ok)
	assert.Empty(t, buf.String())

	_, _ = lg.HandleGRPC(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}, ok)
	assert.Contains(t, buf.String(), "gRPC request completed")
	assert.Contains(t, buf.String(), "/svc/Method")
}

type fakeStream struct {
	grpc.ServerStream
}

func (fakeStream) Context() context.Context { return context.Background() }

func TestLogging_HandleStream(t *testing.T) {
	lg := NewLogging(testutil.MakeNoopLogger())
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}

	err := lg.HandleStream(nil, fakeStream{}, info, func(any, grpc.ServerStream) error {
		return status.Error(codes.Canceled, "client gone")
	})
	assert.Equal(t, codes.Canceled, codeOf(err))
}

func TestRecovery(t *testing.T) {
	rec := NewRecovery(testutil.MakeNoopLogger())

	_, err := rec.Unary()(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Panic"},
		func(context.Context, any) (any, error) { panic("boom") })
	assert.Equal(t, codes.Internal, codeOf(err))

	err = rec.Stream()(nil, fakeStream{}, &grpc.StreamServerInfo{FullMethod: "/svc/Stream"},
		func(any, grpc.ServerStream) error { panic("boom") })
	assert.Equal(t, codes.Internal, codeOf(err))
}

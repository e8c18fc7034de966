package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	servermocks "github.com/dtroode/auth-service/internal/mocks"
	"github.com/dtroode/auth-service/internal/testutil"
)

type sweepCounter struct{ total int64 }

func (s *sweepCounter) RecordsSwept(n int64) { s.total += n }

func TestSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()
	store := &servermocks.RefreshTokenStore{}
	counter := &sweepCounter{}

	store.On("DeleteExpired", ctx, fixedNow).Return(int64(3), nil).Once()
	store.On("DeleteExpired", ctx, fixedNow).Return(int64(0), assert.AnError).Once()

	s := NewSweeper(store, time.Minute, counter, testutil.MakeNoopLogger())
	s.now = func() time.Time { return fixedNow }

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int64(3), counter.total)

	_, err = s.SweepOnce(ctx)
	require.ErrorIs(t, err, assert.AnError)
}

func TestSweeper_Run(t *testing.T) {
	store := &servermocks.RefreshTokenStore{}
	swept := make(chan struct{}, 1)
	store.On("DeleteExpired", mock.Anything, mock.Anything).
		Return(int64(1), nil).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s := NewSweeper(store, 5*time.Millisecond, nil, testutil.MakeNoopLogger())
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_Disabled(t *testing.T) {
	store := &servermocks.RefreshTokenStore{}
	s := NewSweeper(store, 0, nil, testutil.MakeNoopLogger())

	s.Run(context.Background())
	store.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
}

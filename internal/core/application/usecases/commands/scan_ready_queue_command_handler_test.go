package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanReadyQueueCommandHandler_Handle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	batchSize := 100

	newHandler := func(repo *MockJobRepository, directory *MockCourierDirectory, notifier *MockNotificationDispatcher) commands.ScanReadyQueueCommandHandler {
		start := commands.NewStartBroadcastCommandHandler(repo, directory,
			services.NewProximityFinder(), notifier, 0, fixedNow(now), discardLogger())
		return commands.NewScanReadyQueueCommandHandler(repo, start, batchSize, discardLogger())
	}

	t.Run("should broadcast every ready job", func(t *testing.T) {
		ctx := t.Context()
		first := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-2*time.Minute))
		second := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("GetReadyForBroadcast", ctx, batchSize).
			Return([]*deliveryjob.Job{first, second}, nil).Once()
		repo.On("Get", ctx, first.ID()).Return(first, nil).Once()
		repo.On("Get", ctx, second.ID()).Return(second, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{}, nil).Twice()
		repo.On("Update", ctx, first).Return(nil).Once()
		repo.On("Update", ctx, second).Return(nil).Once()

		h := newHandler(repo, directory, notifier)
		cmd := commands.NewScanReadyQueueCommand()
		err := h.Handle(ctx, cmd)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		assert.Equal(t, deliveryjob.BroadcastBroadcasting, first.BroadcastStatus())
		assert.Equal(t, deliveryjob.BroadcastBroadcasting, second.BroadcastStatus())
	})

	t.Run("should continue the sweep past a failing job", func(t *testing.T) {
		ctx := t.Context()
		failing := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-2*time.Minute))
		healthy := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("GetReadyForBroadcast", ctx, batchSize).
			Return([]*deliveryjob.Job{failing, healthy}, nil).Once()
		repo.On("Get", ctx, failing.ID()).Return(nil, assert.AnError).Once()
		repo.On("Get", ctx, healthy.ID()).Return(healthy, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{}, nil).Once()
		repo.On("Update", ctx, healthy).Return(nil).Once()

		h := newHandler(repo, directory, notifier)
		cmd := commands.NewScanReadyQueueCommand()
		err := h.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, deliveryjob.BroadcastBroadcasting, healthy.BroadcastStatus())
		assert.Equal(t, deliveryjob.BroadcastNotStarted, failing.BroadcastStatus())
	})

	t.Run("should do nothing on an empty queue", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockJobRepository)

		repo.On("GetReadyForBroadcast", ctx, batchSize).
			Return([]*deliveryjob.Job{}, nil).Once()

		h := newHandler(repo, new(MockCourierDirectory), new(MockNotificationDispatcher))
		cmd := commands.NewScanReadyQueueCommand()
		err := h.Handle(ctx, cmd)

		require.NoError(t, err)
	})

	t.Run("should surface a query failure", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockJobRepository)
		repo.On("GetReadyForBroadcast", ctx, batchSize).Return(nil, assert.AnError).Once()

		h := newHandler(repo, new(MockCourierDirectory), new(MockNotificationDispatcher))
		cmd := commands.NewScanReadyQueueCommand()
		err := h.Handle(ctx, cmd)

		require.ErrorIs(t, err, assert.AnError)
	})
}

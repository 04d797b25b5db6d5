package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStartBroadcastCommandHandler_Handle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newHandler := func(repo *MockJobRepository, directory *MockCourierDirectory, notifier *MockNotificationDispatcher, maxOffers int) commands.StartBroadcastCommandHandler {
		return commands.NewStartBroadcastCommandHandler(repo, directory,
			services.NewProximityFinder(), notifier, maxOffers, fixedNow(now), discardLogger())
	}

	startCmd := func(t *testing.T, jobID kernel.UUID) commands.StartBroadcastCommand {
		t.Helper()
		cmd, err := commands.NewStartBroadcastCommand(jobID)
		require.NoError(t, err)
		return cmd
	}

	t.Run("should open broadcast and notify couriers in range nearest first", func(t *testing.T) {
		ctx := t.Context()
		job := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))
		near := eligibleCourierAt(t, 35.1900, 33.3823)  // ~0.5 km
		far := eligibleCourierAt(t, 35.2800, 33.3823)   // ~10.5 km, out of range
		middle := eligibleCourierAt(t, 35.2000, 33.3823) // ~1.6 km

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("Get", ctx, job.ID()).Return(job, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{far, middle, near}, nil).Once()
		repo.On("Update", ctx, job).Return(nil).Once()
		notifier.On("NotifyOffer", ctx, job, []kernel.UUID{near.ID(), middle.ID()}).Return(nil).Once()

		h := newHandler(repo, directory, notifier, 0)
		err := h.Handle(ctx, startCmd(t, job.ID()))

		require.NoError(t, err)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
		assert.Equal(t, deliveryjob.BroadcastBroadcasting, job.BroadcastStatus())
		assert.Equal(t, 1, job.Attempts())
		require.NotNil(t, job.BroadcastEnd())
		assert.Equal(t, now.Add(60*time.Second), *job.BroadcastEnd())
		assert.Len(t, job.OfferedCouriers(), 2)
	})

	t.Run("should cap offers at the configured maximum", func(t *testing.T) {
		ctx := t.Context()
		job := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))
		near := eligibleCourierAt(t, 35.1900, 33.3823)
		middle := eligibleCourierAt(t, 35.2000, 33.3823)

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("Get", ctx, job.ID()).Return(job, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{middle, near}, nil).Once()
		repo.On("Update", ctx, job).Return(nil).Once()
		notifier.On("NotifyOffer", ctx, job, []kernel.UUID{near.ID()}).Return(nil).Once()

		h := newHandler(repo, directory, notifier, 1)
		err := h.Handle(ctx, startCmd(t, job.ID()))

		require.NoError(t, err)
		assert.Len(t, job.OfferedCouriers(), 1)
	})

	t.Run("should open broadcast even with nobody in range", func(t *testing.T) {
		ctx := t.Context()
		job := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("Get", ctx, job.ID()).Return(job, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{}, nil).Once()
		repo.On("Update", ctx, job).Return(nil).Once()

		h := newHandler(repo, directory, notifier, 0)
		err := h.Handle(ctx, startCmd(t, job.ID()))

		require.NoError(t, err)
		assert.Equal(t, deliveryjob.BroadcastBroadcasting, job.BroadcastStatus())
		assert.Empty(t, job.OfferedCouriers())
		notifier.AssertNotCalled(t, "NotifyOffer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should not fail when offer push fails", func(t *testing.T) {
		ctx := t.Context()
		job := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))
		near := eligibleCourierAt(t, 35.1900, 33.3823)

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("Get", ctx, job.ID()).Return(job, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{near}, nil).Once()
		repo.On("Update", ctx, job).Return(nil).Once()
		notifier.On("NotifyOffer", ctx, job, []kernel.UUID{near.ID()}).Return(assert.AnError).Once()

		h := newHandler(repo, directory, notifier, 0)
		err := h.Handle(ctx, startCmd(t, job.ID()))

		require.NoError(t, err)
	})

	t.Run("should surface a lost write race", func(t *testing.T) {
		ctx := t.Context()
		job := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("Get", ctx, job.ID()).Return(job, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{}, nil).Once()
		repo.On("Update", ctx, job).Return(ports.ErrConcurrentUpdate).Once()

		h := newHandler(repo, directory, notifier, 0)
		err := h.Handle(ctx, startCmd(t, job.ID()))

		require.ErrorIs(t, err, ports.ErrConcurrentUpdate)
		notifier.AssertNotCalled(t, "NotifyOffer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should refuse a job already assigned manually", func(t *testing.T) {
		ctx := t.Context()
		job := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), now.Add(-time.Minute))
		require.NoError(t, job.AssignManually(kernel.NewUUID(), now.Add(-time.Second)))

		repo := new(MockJobRepository)
		directory := new(MockCourierDirectory)
		notifier := new(MockNotificationDispatcher)

		repo.On("Get", ctx, job.ID()).Return(job, nil).Once()
		directory.On("GetAvailable", ctx).Return([]*courier.Courier{}, nil).Once()

		h := newHandler(repo, directory, notifier, 0)
		err := h.Handle(ctx, startCmd(t, job.ID()))

		require.ErrorIs(t, err, deliveryjob.ErrInvalidState)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

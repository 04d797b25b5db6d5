package commands_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateJobCommandHandler_Handle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newCommand := func(t *testing.T, id kernel.UUID, radiusKm float64, durationSec, maxAttempts int) commands.CreateJobCommand {
		t.Helper()
		cmd, err := commands.NewCreateJobCommand(id,
			mustGeoPoint(t, 35.1856, 33.3823), mustGeoPoint(t, 35.1700, 33.3600),
			"1 Ledra Street", "20 Onasagorou Street", 1250,
			deliveryjob.PriorityNormal, radiusKm, durationSec, maxAttempts)
		require.NoError(t, err)
		return cmd
	}

	t.Run("should persist a pending job awaiting broadcast", func(t *testing.T) {
		ctx := t.Context()
		id := kernel.NewUUID()
		repo := new(MockJobRepository)

		var created *deliveryjob.Job
		repo.On("Add", ctx, mock.AnythingOfType("*deliveryjob.Job")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*deliveryjob.Job)
			}).
			Return(nil).Once()

		h := commands.NewCreateJobCommandHandler(repo, fixedNow(now))
		err := h.Handle(ctx, newCommand(t, id, 0, 0, 0))

		require.NoError(t, err)
		repo.AssertExpectations(t)
		require.NotNil(t, created)
		assert.True(t, created.ID().IsEqual(id))
		assert.Equal(t, deliveryjob.StatusPending, created.Status())
		assert.Equal(t, deliveryjob.BroadcastNotStarted, created.BroadcastStatus())
		assert.Equal(t, now, created.CreatedAt())
		assert.InDelta(t, deliveryjob.DefaultRadiusKm, created.RadiusKm(), 0.001)
	})

	t.Run("should clamp broadcast overrides into bounds", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockJobRepository)

		var created *deliveryjob.Job
		repo.On("Add", ctx, mock.AnythingOfType("*deliveryjob.Job")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*deliveryjob.Job)
			}).
			Return(nil).Once()

		h := commands.NewCreateJobCommandHandler(repo, fixedNow(now))
		err := h.Handle(ctx, newCommand(t, kernel.NewUUID(), 500, 5, 99))

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.InDelta(t, deliveryjob.MaxRadiusKm, created.RadiusKm(), 0.001)
		assert.Equal(t, deliveryjob.MinDurationSec, created.DurationSec())
		assert.Equal(t, deliveryjob.MaxMaxAttempts, created.MaxAttempts())
	})

	t.Run("should fail on unconstructed command", func(t *testing.T) {
		repo := new(MockJobRepository)
		h := commands.NewCreateJobCommandHandler(repo, fixedNow(now))

		err := h.Handle(t.Context(), commands.CreateJobCommand{})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("should propagate repository failure", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockJobRepository)
		repo.On("Add", ctx, mock.AnythingOfType("*deliveryjob.Job")).
			Return(errors.New("insert failed")).Once()

		h := commands.NewCreateJobCommandHandler(repo, fixedNow(now))
		err := h.Handle(ctx, newCommand(t, kernel.NewUUID(), 0, 0, 0))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert failed")
	})
}

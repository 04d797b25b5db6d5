package inmem_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/inmem"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock shared by every handler in a flow test, so
// the test can march time past broadcast deadlines.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// dispatchHarness wires the real command handlers to the in-memory adapters.
type dispatchHarness struct {
	clock     *testClock
	jobs      *inmem.JobStore
	directory *inmem.CourierDirectory
	notifier  *inmem.RecordingNotifier

	createJob  commands.CreateJobCommandHandler
	scanReady  commands.ScanReadyQueueCommandHandler
	acceptJob  commands.AcceptJobCommandHandler
	assignJob  commands.AssignManuallyCommandHandler
	expireJobs commands.ExpireBroadcastsCommandHandler
}

func newDispatchHarness(t *testing.T) *dispatchHarness {
	t.Helper()

	clock := newTestClock()
	jobs := inmem.NewJobStore(clock.Now)
	directory := inmem.NewCourierDirectory()
	notifier := inmem.NewRecordingNotifier()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	startHandler := commands.NewStartBroadcastCommandHandler(
		jobs, directory, services.NewProximityFinder(), notifier, 10, clock.Now, logger)

	return &dispatchHarness{
		clock:      clock,
		jobs:       jobs,
		directory:  directory,
		notifier:   notifier,
		createJob:  commands.NewCreateJobCommandHandler(jobs, clock.Now),
		scanReady:  commands.NewScanReadyQueueCommandHandler(jobs, startHandler, 100, logger),
		acceptJob:  commands.NewAcceptJobCommandHandler(jobs, directory, notifier, clock.Now, logger),
		assignJob:  commands.NewAssignManuallyCommandHandler(jobs, directory, notifier, clock.Now, logger),
		expireJobs: commands.NewExpireBroadcastsCommandHandler(jobs, notifier, notifier, 100, clock.Now, logger),
	}
}

func (h *dispatchHarness) createPendingJob(t *testing.T) kernel.UUID {
	t.Helper()

	pickup, err := kernel.NewGeoPoint(35.1856, 33.3823)
	require.NoError(t, err)
	dropoff, err := kernel.NewGeoPoint(35.1700, 33.3600)
	require.NoError(t, err)

	jobID := kernel.NewUUID()
	command, err := commands.NewCreateJobCommand(jobID, pickup, dropoff,
		"1 Ledra Street", "20 Onasagorou Street", 1250, deliveryjob.PriorityNormal, 0, 0, 0)
	require.NoError(t, err)
	require.NoError(t, h.createJob.Handle(context.Background(), command))

	return jobID
}

func (h *dispatchHarness) addCourierAt(t *testing.T, name string, lat, lon float64) kernel.UUID {
	t.Helper()

	location, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	c, err := courier.NewCourier(kernel.NewUUID(), name, true, true, false, &location, location)
	require.NoError(t, err)
	require.NoError(t, h.directory.Save(context.Background(), c))

	return c.ID()
}

func (h *dispatchHarness) runScan(t *testing.T) {
	t.Helper()
	require.NoError(t, h.scanReady.Handle(context.Background(), commands.NewScanReadyQueueCommand()))
}

func (h *dispatchHarness) runSweep(t *testing.T) {
	t.Helper()
	require.NoError(t, h.expireJobs.Handle(context.Background(), commands.NewExpireBroadcastsCommand()))
}

func (h *dispatchHarness) accept(jobID, courierID kernel.UUID) error {
	command, err := commands.NewAcceptJobCommand(jobID, courierID)
	if err != nil {
		return err
	}
	return h.acceptJob.Handle(context.Background(), command)
}

func Test_DispatchFlow_BroadcastAndAccept(t *testing.T) {
	h := newDispatchHarness(t)
	ctx := context.Background()

	near := h.addCourierAt(t, "Andreas", 35.1900, 33.3823)
	farther := h.addCourierAt(t, "Maria", 35.2000, 33.3823)
	h.addCourierAt(t, "Costas", 36.0000, 33.3823) // well outside the 5km radius

	jobID := h.createPendingJob(t)
	h.runScan(t)

	t.Run("should offer the job to couriers inside the radius only", func(t *testing.T) {
		offers := h.notifier.Offers()
		require.Len(t, offers, 2)
		assert.True(t, offers[0].CourierID.IsEqual(near))
		assert.True(t, offers[1].CourierID.IsEqual(farther))
	})

	t.Run("should mark the job broadcasting with a deadline", func(t *testing.T) {
		job, err := h.jobs.Get(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, deliveryjob.BroadcastBroadcasting, job.BroadcastStatus())
		assert.Equal(t, 1, job.Attempts())
		require.NotNil(t, job.BroadcastEnd())
		assert.True(t, job.BroadcastEnd().Equal(h.clock.Now().Add(60*time.Second)))
	})

	t.Run("should assign the job to the accepting courier", func(t *testing.T) {
		h.clock.Advance(10 * time.Second)
		require.NoError(t, h.accept(jobID, near))

		job, err := h.jobs.Get(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, deliveryjob.StatusAccepted, job.Status())
		require.NotNil(t, job.AssignedCourier())
		assert.True(t, job.AssignedCourier().IsEqual(near))
	})

	t.Run("should revoke the offer from the losing courier", func(t *testing.T) {
		revocations := h.notifier.Revocations()
		require.Len(t, revocations, 1)
		assert.True(t, revocations[0].CourierID.IsEqual(farther))
	})

	t.Run("should refuse a second acceptance", func(t *testing.T) {
		err := h.accept(jobID, farther)
		require.ErrorIs(t, err, deliveryjob.ErrAlreadyAccepted)
	})
}

func Test_DispatchFlow_ContestedAcceptance(t *testing.T) {
	h := newDispatchHarness(t)
	ctx := context.Background()

	const contenders = 6
	courierIDs := make([]kernel.UUID, contenders)
	for i := range contenders {
		courierIDs[i] = h.addCourierAt(t, "Courier", 35.1900, 33.3823)
	}

	jobID := h.createPendingJob(t)
	h.runScan(t)
	h.clock.Advance(5 * time.Second)

	results := make(chan error, contenders)
	for _, courierID := range courierIDs {
		go func() {
			results <- h.accept(jobID, courierID)
		}()
	}

	var wins, alreadyAccepted int
	for range contenders {
		switch err := <-results; {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, deliveryjob.ErrAlreadyAccepted)
			alreadyAccepted++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, contenders-1, alreadyAccepted)

	job, err := h.jobs.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, deliveryjob.StatusAccepted, job.Status())
	require.NotNil(t, job.AssignedCourier())
}

func Test_DispatchFlow_AcceptAfterDeadline(t *testing.T) {
	h := newDispatchHarness(t)

	courierID := h.addCourierAt(t, "Andreas", 35.1900, 33.3823)
	jobID := h.createPendingJob(t)
	h.runScan(t)

	h.clock.Advance(61 * time.Second)

	err := h.accept(jobID, courierID)
	require.ErrorIs(t, err, deliveryjob.ErrBroadcastExpired)
}

func Test_DispatchFlow_RetryEscalation(t *testing.T) {
	h := newDispatchHarness(t)
	ctx := context.Background()

	// Maria sits roughly 6.5km north of the pickup: outside the initial 5km
	// radius, inside the escalated 7.5km one.
	maria := h.addCourierAt(t, "Maria", 35.2440, 33.3823)

	jobID := h.createPendingJob(t)
	h.runScan(t)

	t.Run("should broadcast to nobody on the first attempt", func(t *testing.T) {
		assert.Empty(t, h.notifier.Offers())
	})

	t.Run("should requeue with escalated parameters after the deadline", func(t *testing.T) {
		h.clock.Advance(61 * time.Second)
		h.runSweep(t)

		job, err := h.jobs.Get(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, deliveryjob.BroadcastNotStarted, job.BroadcastStatus())
		assert.InDelta(t, 7.5, job.RadiusKm(), 0.001)
		assert.Equal(t, 72, job.DurationSec())
		assert.Equal(t, 1, job.Attempts())
	})

	t.Run("should reach the farther courier on the second attempt", func(t *testing.T) {
		h.runScan(t)

		offers := h.notifier.Offers()
		require.Len(t, offers, 1)
		assert.True(t, offers[0].CourierID.IsEqual(maria))

		require.NoError(t, h.accept(jobID, maria))
		job, err := h.jobs.Get(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, deliveryjob.StatusAccepted, job.Status())
	})
}

func Test_DispatchFlow_EscalationToManualAssignment(t *testing.T) {
	h := newDispatchHarness(t)
	ctx := context.Background()

	// No couriers at all: every broadcast attempt runs out.
	jobID := h.createPendingJob(t)

	for range deliveryjob.DefaultMaxAttempts {
		h.runScan(t)
		h.clock.Advance(301 * time.Second)
		h.runSweep(t)
	}

	t.Run("should escalate to manual assignment after the attempt budget", func(t *testing.T) {
		job, err := h.jobs.Get(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, deliveryjob.BroadcastManualAssignment, job.BroadcastStatus())
		assert.Equal(t, deliveryjob.DefaultMaxAttempts, job.Attempts())

		alerts := h.notifier.ManualAlerts()
		require.Len(t, alerts, 1)
		assert.True(t, alerts[0].IsEqual(jobID))
	})

	t.Run("should stay out of the ready queue once escalated", func(t *testing.T) {
		h.runScan(t)
		assert.Empty(t, h.notifier.Offers())
	})

	t.Run("should let an operator assign a courier manually", func(t *testing.T) {
		operatorPick := h.addCourierAt(t, "Andreas", 35.1900, 33.3823)

		command, err := commands.NewAssignManuallyCommand(jobID, operatorPick)
		require.NoError(t, err)
		require.NoError(t, h.assignJob.Handle(ctx, command))

		job, err := h.jobs.Get(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, deliveryjob.StatusAccepted, job.Status())
		require.NotNil(t, job.AssignedCourier())
		assert.True(t, job.AssignedCourier().IsEqual(operatorPick))
		assert.Nil(t, job.AcceptedAt())
	})
}

func Test_DispatchFlow_SweepRevokesOutstandingOffers(t *testing.T) {
	h := newDispatchHarness(t)

	slow := h.addCourierAt(t, "Andreas", 35.1900, 33.3823)
	jobID := h.createPendingJob(t)
	h.runScan(t)
	require.Len(t, h.notifier.Offers(), 1)

	h.clock.Advance(61 * time.Second)
	h.runSweep(t)

	revocations := h.notifier.Revocations()
	require.Len(t, revocations, 1)
	assert.True(t, revocations[0].JobID.IsEqual(jobID))
	assert.True(t, revocations[0].CourierID.IsEqual(slow))
}

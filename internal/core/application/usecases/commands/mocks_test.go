package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Add(ctx context.Context, job *deliveryjob.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, job *deliveryjob.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryjob.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deliveryjob.Job), args.Error(1)
}

func (m *MockJobRepository) GetReadyForBroadcast(ctx context.Context, limit int) ([]*deliveryjob.Job, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deliveryjob.Job), args.Error(1)
}

func (m *MockJobRepository) GetExpiredBroadcasts(ctx context.Context, limit int) ([]*deliveryjob.Job, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deliveryjob.Job), args.Error(1)
}

type MockCourierDirectory struct{ mock.Mock }

func (m *MockCourierDirectory) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierDirectory) GetAvailable(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockNotificationDispatcher struct{ mock.Mock }

func (m *MockNotificationDispatcher) NotifyOffer(ctx context.Context, job *deliveryjob.Job, courierIDs []kernel.UUID) error {
	args := m.Called(ctx, job, courierIDs)
	return args.Error(0)
}

func (m *MockNotificationDispatcher) NotifyOfferRevoked(ctx context.Context, jobID kernel.UUID, courierIDs []kernel.UUID) error {
	args := m.Called(ctx, jobID, courierIDs)
	return args.Error(0)
}

type MockAdminAlerts struct{ mock.Mock }

func (m *MockAdminAlerts) ManualAssignmentRequired(ctx context.Context, job *deliveryjob.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustGeoPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

// newPendingJob builds a job waiting in the ready queue.
func newPendingJob(t *testing.T, settings deliveryjob.BroadcastSettings, createdAt time.Time) *deliveryjob.Job {
	t.Helper()

	job, err := deliveryjob.NewJob(
		kernel.NewUUID(),
		mustGeoPoint(t, 35.1856, 33.3823),
		mustGeoPoint(t, 35.1700, 33.3600),
		"1 Ledra Street",
		"20 Onasagorou Street",
		1250,
		deliveryjob.PriorityNormal,
		settings,
		createdAt,
	)
	require.NoError(t, err)

	return job
}

// newBroadcastingJob builds a job mid-broadcast, offered to the given couriers.
func newBroadcastingJob(t *testing.T, startedAt time.Time, offered []kernel.UUID) *deliveryjob.Job {
	t.Helper()

	job := newPendingJob(t, deliveryjob.DefaultBroadcastSettings(), startedAt.Add(-time.Minute))
	require.NoError(t, job.StartBroadcast(startedAt, offered))

	return job
}

// eligibleCourierAt builds an eligible courier at the given point.
func eligibleCourierAt(t *testing.T, lat, lon float64) *courier.Courier {
	t.Helper()

	location := mustGeoPoint(t, lat, lon)
	c, err := courier.NewCourier(kernel.NewUUID(), "Courier", true, true, false, &location, location)
	require.NoError(t, err)

	return c
}

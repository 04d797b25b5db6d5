package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/jobrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetJobStatusQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetJobStatusQueryHandler
	jobRepo   *jobrepo.GormJobRepository
	now       time.Time
}

func (suite *GetJobStatusQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&jobrepo.JobDTO{}))
}

func (suite *GetJobStatusQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE jobs").Error)

	suite.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	nowFn := func() time.Time { return suite.now }
	suite.handler = queries.NewGetJobStatusQueryHandler(suite.db, nowFn)
	suite.jobRepo = jobrepo.NewGormJobRepository(suite.db, nowFn)
}

func (suite *GetJobStatusQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetJobStatusQueryHandlerTestSuite) createTestJob() *deliveryjob.Job {
	pickup, err := kernel.NewGeoPoint(35.1856, 33.3823)
	suite.Require().NoError(err)
	dropoff, err := kernel.NewGeoPoint(35.1700, 33.3600)
	suite.Require().NoError(err)

	job, err := deliveryjob.NewJob(kernel.NewUUID(), pickup, dropoff,
		"1 Ledra Street", "20 Onasagorou Street", 1250, deliveryjob.PriorityNormal,
		deliveryjob.DefaultBroadcastSettings(), suite.now)
	suite.Require().NoError(err)

	return job
}

func (suite *GetJobStatusQueryHandlerTestSuite) TestHandle_PendingJob() {
	ctx := context.Background()
	job := suite.createTestJob()
	suite.Require().NoError(suite.jobRepo.Add(ctx, job))

	query, err := queries.NewGetJobStatusQuery(job.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.True(result.ID.IsEqual(job.ID()))
	suite.Equal("Pending", result.Status)
	suite.Equal("NotStarted", result.BroadcastStatus)
	suite.Equal("Normal", result.Priority)
	suite.Equal(0, result.Attempts)
	suite.Equal(deliveryjob.DefaultMaxAttempts, result.MaxAttempts)
	suite.InDelta(deliveryjob.DefaultRadiusKm, result.RadiusKm, 0.001)
	suite.Nil(result.BroadcastEnd)
	suite.Nil(result.AssignedCourier)
	suite.False(result.CanBeAccepted)
}

func (suite *GetJobStatusQueryHandlerTestSuite) TestHandle_BroadcastingJobCanBeAccepted() {
	ctx := context.Background()
	job := suite.createTestJob()
	suite.Require().NoError(job.StartBroadcast(suite.now, []kernel.UUID{kernel.NewUUID()}))
	suite.Require().NoError(suite.jobRepo.Add(ctx, job))

	query, err := queries.NewGetJobStatusQuery(job.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal("Broadcasting", result.BroadcastStatus)
	suite.Equal(1, result.Attempts)
	suite.Require().NotNil(result.BroadcastEnd)
	suite.True(result.BroadcastEnd.Equal(suite.now.Add(60 * time.Second)))
	suite.True(result.CanBeAccepted)
}

func (suite *GetJobStatusQueryHandlerTestSuite) TestHandle_BroadcastingJobPastDeadline() {
	ctx := context.Background()
	job := suite.createTestJob()
	suite.Require().NoError(job.StartBroadcast(suite.now, nil))
	suite.Require().NoError(suite.jobRepo.Add(ctx, job))

	// The deadline passes before the client polls.
	suite.now = suite.now.Add(61 * time.Second)

	query, err := queries.NewGetJobStatusQuery(job.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal("Broadcasting", result.BroadcastStatus)
	suite.False(result.CanBeAccepted)
}

func (suite *GetJobStatusQueryHandlerTestSuite) TestHandle_AcceptedJob() {
	ctx := context.Background()
	job := suite.createTestJob()
	suite.Require().NoError(job.StartBroadcast(suite.now, nil))
	courierID := kernel.NewUUID()
	suite.Require().NoError(job.Accept(courierID, suite.now.Add(10*time.Second)))
	suite.Require().NoError(suite.jobRepo.Add(ctx, job))

	query, err := queries.NewGetJobStatusQuery(job.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal("Accepted", result.Status)
	suite.Equal("Accepted", result.BroadcastStatus)
	suite.Require().NotNil(result.AssignedCourier)
	suite.True(result.AssignedCourier.IsEqual(courierID))
	suite.False(result.CanBeAccepted)
}

func (suite *GetJobStatusQueryHandlerTestSuite) TestHandle_JobNotFound() {
	query, err := queries.NewGetJobStatusQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(context.Background(), query)

	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *GetJobStatusQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	var invalidQuery queries.GetJobStatusQuery

	_, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "must be created via NewGetJobStatusQuery constructor")
}

func TestGetJobStatusQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetJobStatusQueryHandlerTestSuite))
}

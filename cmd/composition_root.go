package cmd

import (
	"log/slog"
	"time"

	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/jobrepo"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters into use case handlers. All handlers share
// one clock so a test (or a future replay tool) can substitute it in one
// place.
type CompositionRoot struct {
	config Config
	gormDB *gorm.DB
	logger *slog.Logger
	now    func() time.Time

	jobRepo          *jobrepo.GormJobRepository
	courierDirectory *courierrepo.GormCourierDirectory
	notifier         *notify.SlogNotificationDispatcher
	alerts           *notify.SlogAdminAlerts
}

// NewCompositionRoot creates the application object graph on top of an open
// database connection.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	now := time.Now

	return CompositionRoot{
		config:           config,
		gormDB:           gormDB,
		logger:           logger,
		now:              now,
		jobRepo:          jobrepo.NewGormJobRepository(gormDB, now),
		courierDirectory: courierrepo.NewGormCourierDirectory(gormDB),
		notifier:         notify.NewSlogNotificationDispatcher(logger),
		alerts:           notify.NewSlogAdminAlerts(logger),
	}
}

func (c *CompositionRoot) CreateCreateJobCommandHandler() commands.CreateJobCommandHandler {
	return commands.NewCreateJobCommandHandler(c.jobRepo, c.now)
}

func (c *CompositionRoot) CreateStartBroadcastCommandHandler() commands.StartBroadcastCommandHandler {
	return commands.NewStartBroadcastCommandHandler(
		c.jobRepo,
		c.courierDirectory,
		services.NewProximityFinder(),
		c.notifier,
		c.config.MaxOffersPerBroadcast,
		c.now,
		c.logger,
	)
}

func (c *CompositionRoot) CreateAcceptJobCommandHandler() commands.AcceptJobCommandHandler {
	return commands.NewAcceptJobCommandHandler(c.jobRepo, c.courierDirectory, c.notifier, c.now, c.logger)
}

func (c *CompositionRoot) CreateAssignManuallyCommandHandler() commands.AssignManuallyCommandHandler {
	return commands.NewAssignManuallyCommandHandler(c.jobRepo, c.courierDirectory, c.notifier, c.now, c.logger)
}

func (c *CompositionRoot) CreateScanReadyQueueCommandHandler() commands.ScanReadyQueueCommandHandler {
	return commands.NewScanReadyQueueCommandHandler(
		c.jobRepo,
		c.CreateStartBroadcastCommandHandler(),
		c.config.ScanBatchSize,
		c.logger,
	)
}

func (c *CompositionRoot) CreateExpireBroadcastsCommandHandler() commands.ExpireBroadcastsCommandHandler {
	return commands.NewExpireBroadcastsCommandHandler(
		c.jobRepo,
		c.notifier,
		c.alerts,
		c.config.ExpiryBatchSize,
		c.now,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetJobStatusQueryHandler() queries.GetJobStatusQueryHandler {
	return queries.NewGetJobStatusQueryHandler(c.gormDB, c.now)
}

func (c *CompositionRoot) CreateGetActiveJobsForCourierQueryHandler() queries.GetActiveJobsForCourierQueryHandler {
	return queries.NewGetActiveJobsForCourierQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableJobsForCourierQueryHandler() queries.GetAvailableJobsForCourierQueryHandler {
	return queries.NewGetAvailableJobsForCourierQueryHandler(c.gormDB, c.now)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateScanReadyQueueCommandHandler(),
		c.CreateExpireBroadcastsCommandHandler(),
		c.logger,
	)
}

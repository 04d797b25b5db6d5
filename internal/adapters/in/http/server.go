// Package http exposes the dispatch engine over a REST API.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/deliveryjob"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createJobHandler      commands.CreateJobCommandHandler
	startBroadcastHandler commands.StartBroadcastCommandHandler
	acceptJobHandler      commands.AcceptJobCommandHandler
	assignManuallyHandler commands.AssignManuallyCommandHandler

	getJobStatusHandler     queries.GetJobStatusQueryHandler
	getActiveJobsHandler    queries.GetActiveJobsForCourierQueryHandler
	getAvailableJobsHandler queries.GetAvailableJobsForCourierQueryHandler

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createJobHandler commands.CreateJobCommandHandler,
	startBroadcastHandler commands.StartBroadcastCommandHandler,
	acceptJobHandler commands.AcceptJobCommandHandler,
	assignManuallyHandler commands.AssignManuallyCommandHandler,
	getJobStatusHandler queries.GetJobStatusQueryHandler,
	getActiveJobsHandler queries.GetActiveJobsForCourierQueryHandler,
	getAvailableJobsHandler queries.GetAvailableJobsForCourierQueryHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		createJobHandler:        createJobHandler,
		startBroadcastHandler:   startBroadcastHandler,
		acceptJobHandler:        acceptJobHandler,
		assignManuallyHandler:   assignManuallyHandler,
		getJobStatusHandler:     getJobStatusHandler,
		getActiveJobsHandler:    getActiveJobsHandler,
		getAvailableJobsHandler: getAvailableJobsHandler,
		logger:                  logger,
	}
}

// RegisterRoutes attaches all API routes to the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	v1 := e.Group("/api/v1")
	v1.POST("/jobs", s.CreateJob)
	v1.GET("/jobs/:id", s.GetJobStatus)
	v1.POST("/jobs/:id/accept", s.AcceptJob)
	v1.POST("/jobs/:id/assign", s.AssignCourier)
	v1.GET("/couriers/:id/active-jobs", s.GetCourierActiveJobs)
	v1.GET("/couriers/:id/available-jobs", s.GetCourierAvailableJobs)
}

// ErrorResponse is the JSON body returned on any failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GeoPointDTO carries a coordinate pair in a request or response body.
type GeoPointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CreateJobRequest is the body of POST /api/v1/jobs. Broadcast overrides are
// optional; zero values select the configured defaults. Supplying courier_id
// opts out of automated dispatch: the job is assigned to that courier
// directly and never enters a broadcast. Setting auto_dispatch to false
// leaves the job pending for the next scanner tick instead of broadcasting
// immediately.
type CreateJobRequest struct {
	Pickup         GeoPointDTO `json:"pickup"`
	Dropoff        GeoPointDTO `json:"dropoff"`
	PickupAddress  string      `json:"pickup_address"`
	DropoffAddress string      `json:"dropoff_address"`
	FeeCents       int64       `json:"fee_cents"`
	Priority       string      `json:"priority,omitempty"`
	RadiusKm       float64     `json:"radius_km,omitempty"`
	DurationSec    int         `json:"duration_sec,omitempty"`
	MaxAttempts    int         `json:"max_attempts,omitempty"`
	CourierID      string      `json:"courier_id,omitempty"`
	AutoDispatch   *bool       `json:"auto_dispatch,omitempty"`
}

// CreateJobResponse returns the identifier assigned to a new job.
type CreateJobResponse struct {
	ID string `json:"id"`
}

// CourierActionRequest is the body of the accept and assign endpoints.
type CourierActionRequest struct {
	CourierID string `json:"courier_id"`
}

// JobStatusResponse is the body of GET /api/v1/jobs/:id.
type JobStatusResponse struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	BroadcastStatus string     `json:"broadcast_status"`
	Priority        string     `json:"priority"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"max_attempts"`
	RadiusKm        float64    `json:"radius_km"`
	DurationSec     int        `json:"duration_sec"`
	BroadcastStart  *time.Time `json:"broadcast_start,omitempty"`
	BroadcastEnd    *time.Time `json:"broadcast_end,omitempty"`
	AssignedCourier *string    `json:"assigned_courier_id,omitempty"`
	CanBeAccepted   bool       `json:"can_be_accepted"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ActiveJobResponse is one entry of GET /api/v1/couriers/:id/active-jobs.
type ActiveJobResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	PickupAddress  string     `json:"pickup_address"`
	DropoffAddress string     `json:"dropoff_address"`
	FeeCents       int64      `json:"fee_cents"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty"`
}

// AvailableJobResponse is one entry of GET /api/v1/couriers/:id/available-jobs.
// DistanceKm is present only when the request supplied a location.
type AvailableJobResponse struct {
	ID             string    `json:"id"`
	Priority       string    `json:"priority"`
	PickupAddress  string    `json:"pickup_address"`
	DropoffAddress string    `json:"dropoff_address"`
	FeeCents       int64     `json:"fee_cents"`
	RadiusKm       float64   `json:"radius_km"`
	BroadcastEnd   time.Time `json:"broadcast_end"`
	DistanceKm     *float64  `json:"distance_km,omitempty"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateJob handles POST /api/v1/jobs - registers a new delivery job for dispatch.
func (s *Server) CreateJob(ctx echo.Context) error {
	var request CreateJobRequest
	if err := ctx.Bind(&request); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request body")
	}

	pickup, err := kernel.NewGeoPoint(request.Pickup.Lat, request.Pickup.Lon)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid pickup point: "+err.Error())
	}
	dropoff, err := kernel.NewGeoPoint(request.Dropoff.Lat, request.Dropoff.Lon)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid dropoff point: "+err.Error())
	}
	priority, err := deliveryjob.PriorityFromString(request.Priority)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid priority: "+err.Error())
	}

	var manualCourierID *kernel.UUID
	if request.CourierID != "" {
		courierID, idErr := kernel.UUIDFromString(request.CourierID)
		if idErr != nil {
			return errorJSON(ctx, http.StatusBadRequest, "Invalid courier ID")
		}
		manualCourierID = &courierID
	}

	jobID := kernel.NewUUID()
	cmd, err := commands.NewCreateJobCommand(jobID, pickup, dropoff,
		request.PickupAddress, request.DropoffAddress, request.FeeCents, priority,
		request.RadiusKm, request.DurationSec, request.MaxAttempts)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid job data: "+err.Error())
	}

	if handleErr := s.createJobHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return domainError(ctx, handleErr)
	}

	if manualCourierID != nil {
		assignCmd, assignErr := commands.NewAssignManuallyCommand(jobID, *manualCourierID)
		if assignErr != nil {
			return errorJSON(ctx, http.StatusBadRequest, "Invalid courier ID")
		}
		if handleErr := s.assignManuallyHandler.Handle(ctx.Request().Context(), assignCmd); handleErr != nil {
			return domainError(ctx, handleErr)
		}
		return ctx.JSON(http.StatusCreated, CreateJobResponse{ID: jobID.String()})
	}

	if request.AutoDispatch == nil || *request.AutoDispatch {
		s.dispatchNow(ctx, jobID)
	}

	return ctx.JSON(http.StatusCreated, CreateJobResponse{ID: jobID.String()})
}

// dispatchNow opens the first broadcast inline so a job does not wait for
// the next scanner tick. Failure is not fatal to the creation: the job is
// already persisted and the scanner picks it up.
func (s *Server) dispatchNow(ctx echo.Context, jobID kernel.UUID) {
	cmd, err := commands.NewStartBroadcastCommand(jobID)
	if err != nil {
		s.logger.WarnContext(ctx.Request().Context(), "immediate dispatch skipped",
			"job_id", jobID.String(), "error", err)
		return
	}

	if err = s.startBroadcastHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		s.logger.WarnContext(ctx.Request().Context(), "immediate dispatch failed, job left for scanner",
			"job_id", jobID.String(), "error", err)
	}
}

// GetJobStatus handles GET /api/v1/jobs/:id - retrieves a job's dispatch state.
func (s *Server) GetJobStatus(ctx echo.Context) error {
	jobID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid job ID")
	}

	query, err := queries.NewGetJobStatusQuery(jobID)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid job ID")
	}

	status, err := s.getJobStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := JobStatusResponse{
		ID:              status.ID.String(),
		Status:          status.Status,
		BroadcastStatus: status.BroadcastStatus,
		Priority:        status.Priority,
		Attempts:        status.Attempts,
		MaxAttempts:     status.MaxAttempts,
		RadiusKm:        status.RadiusKm,
		DurationSec:     status.DurationSec,
		BroadcastStart:  status.BroadcastStart,
		BroadcastEnd:    status.BroadcastEnd,
		CanBeAccepted:   status.CanBeAccepted,
		CreatedAt:       status.CreatedAt,
	}
	if status.AssignedCourier != nil {
		courierID := status.AssignedCourier.String()
		response.AssignedCourier = &courierID
	}

	return ctx.JSON(http.StatusOK, response)
}

// AcceptJob handles POST /api/v1/jobs/:id/accept - a courier claims a
// broadcast job. Exactly one courier wins; everyone else gets a conflict.
func (s *Server) AcceptJob(ctx echo.Context) error {
	cmd, ok, response := bindCourierAction(ctx, commands.NewAcceptJobCommand)
	if !ok {
		return response
	}

	if handleErr := s.acceptJobHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return domainError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AssignCourier handles POST /api/v1/jobs/:id/assign - an operator assigns a
// courier directly, bypassing the broadcast.
func (s *Server) AssignCourier(ctx echo.Context) error {
	cmd, ok, response := bindCourierAction(ctx, commands.NewAssignManuallyCommand)
	if !ok {
		return response
	}

	if handleErr := s.assignManuallyHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return domainError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetCourierActiveJobs handles GET /api/v1/couriers/:id/active-jobs.
func (s *Server) GetCourierActiveJobs(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid courier ID")
	}

	query, err := queries.NewGetActiveJobsForCourierQuery(courierID)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid courier ID")
	}

	jobs, err := s.getActiveJobsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]ActiveJobResponse, len(jobs))
	for i, job := range jobs {
		response[i] = ActiveJobResponse{
			ID:             job.ID.String(),
			Status:         job.Status,
			Priority:       job.Priority,
			PickupAddress:  job.PickupAddress,
			DropoffAddress: job.DropoffAddress,
			FeeCents:       job.FeeCents,
			AssignedAt:     job.AssignedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetCourierAvailableJobs handles GET /api/v1/couriers/:id/available-jobs -
// lists the open broadcasts a courier could accept right now. Optional lat
// and lon query parameters narrow the list to broadcasts whose radius covers
// that location; without them the full list is returned.
func (s *Server) GetCourierAvailableJobs(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid courier ID")
	}

	var location *kernel.GeoPoint
	if latParam, lonParam := ctx.QueryParam("lat"), ctx.QueryParam("lon"); latParam != "" || lonParam != "" {
		lat, latErr := strconv.ParseFloat(latParam, 64)
		lon, lonErr := strconv.ParseFloat(lonParam, 64)
		if latErr != nil || lonErr != nil {
			return errorJSON(ctx, http.StatusBadRequest, "Invalid location")
		}
		point, pointErr := kernel.NewGeoPoint(lat, lon)
		if pointErr != nil {
			return errorJSON(ctx, http.StatusBadRequest, "Invalid location: "+pointErr.Error())
		}
		location = &point
	}

	query, err := queries.NewGetAvailableJobsForCourierQuery(courierID, location)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid courier ID")
	}

	jobs, err := s.getAvailableJobsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]AvailableJobResponse, len(jobs))
	for i, job := range jobs {
		response[i] = AvailableJobResponse{
			ID:             job.ID.String(),
			Priority:       job.Priority,
			PickupAddress:  job.PickupAddress,
			DropoffAddress: job.DropoffAddress,
			FeeCents:       job.FeeCents,
			RadiusKm:       job.RadiusKm,
			BroadcastEnd:   job.BroadcastEnd,
			DistanceKm:     job.DistanceKm,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// bindCourierAction builds a two-ID command from the job ID path parameter
// and the courier ID body shared by the accept and assign endpoints. On a
// malformed request it writes the 400 response itself and reports ok=false.
func bindCourierAction[C any](
	ctx echo.Context,
	newCommand func(kernel.UUID, kernel.UUID) (C, error),
) (cmd C, ok bool, response error) {
	jobID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return cmd, false, errorJSON(ctx, http.StatusBadRequest, "Invalid job ID")
	}

	var request CourierActionRequest
	if err = ctx.Bind(&request); err != nil {
		return cmd, false, errorJSON(ctx, http.StatusBadRequest, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(request.CourierID)
	if err != nil {
		return cmd, false, errorJSON(ctx, http.StatusBadRequest, "Invalid courier ID")
	}

	cmd, err = newCommand(jobID, courierID)
	if err != nil {
		return cmd, false, errorJSON(ctx, http.StatusBadRequest, "Invalid command: "+err.Error())
	}

	return cmd, true, nil
}

// domainError maps an application error to the HTTP status that describes it.
func domainError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return errorJSON(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, deliveryjob.ErrAlreadyAccepted),
		errors.Is(err, ports.ErrConcurrentUpdate):
		return errorJSON(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, deliveryjob.ErrBroadcastExpired):
		return errorJSON(ctx, http.StatusGone, err.Error())
	case errors.Is(err, deliveryjob.ErrInvalidState),
		errors.Is(err, commands.ErrCourierNotEligible):
		return errorJSON(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	default:
		return errorJSON(ctx, http.StatusInternalServerError, "Internal server error")
	}
}

func errorJSON(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, ErrorResponse{Code: code, Message: message})
}

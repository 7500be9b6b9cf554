package handler

import (
	"context"
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/application"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/response"
	appuc "bluujobs/internal/usecase/application"

	"github.com/gofiber/fiber/v3"
)

type ApplicationUsecase interface {
	List(ctx context.Context) ([]application.Application, error)
	ListByWorker(ctx context.Context, workerID string) ([]application.Application, error)
	ListForEmployer(ctx context.Context, actor user.Actor, jobID string) ([]application.Application, error)
	HasApplied(ctx context.Context, workerID, jobID string) (bool, error)
	Apply(ctx context.Context, actor user.Actor, in appuc.ApplyInput) (application.Application, error)
	UpdateStatus(ctx context.Context, actor user.Actor, id string, raw string) (application.Application, error)
}

type ApplicationHandler struct {
	uc ApplicationUsecase
}

type applyRequest struct {
	JobID    string `json:"jobId"`
	WorkerID string `json:"workerId"`
}

func NewApplicationHandler(uc ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Apply)
	r.Get("/job/:jobId", h.ListForJob)
	r.Get("/check/:jobId", h.HasApplied)
	r.Patch("/:id/status", h.UpdateStatus)
}

// List returns every application to admins and the actor's own otherwise.
func (h *ApplicationHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var apps []application.Application
	if actor.IsAdmin() {
		apps, err = h.uc.List(c.Context())
	} else {
		apps, err = h.uc.ListByWorker(c.Context(), actor.ID)
	}
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.OK(c, apps)
}

func (h *ApplicationHandler) ListForJob(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := pathID(c, "jobId")
	if err != nil {
		return err
	}
	apps, err := h.uc.ListForEmployer(c.Context(), actor, jobID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.OK(c, apps)
}

func (h *ApplicationHandler) HasApplied(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := pathID(c, "jobId")
	if err != nil {
		return err
	}
	ok, err := h.uc.HasApplied(c.Context(), actor.ID, jobID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.OK(c, fiber.Map{"applied": ok})
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req applyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	app, err := h.uc.Apply(c.Context(), actor, appuc.ApplyInput{JobID: req.JobID, WorkerID: req.WorkerID})
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Created(c, app)
}

func (h *ApplicationHandler) UpdateStatus(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	app, err := h.uc.UpdateStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.OK(c, app)
}

func mapApplicationUsecaseError(err error) error {
	switch {
	case errors.Is(err, appuc.ErrNotFound):
		return middleware.NotFound("Application not found", err)
	case errors.Is(err, appuc.ErrJobNotFound):
		return middleware.NotFound("Job not found", err)
	case errors.Is(err, appuc.ErrForbidden):
		return middleware.Forbidden(err)
	case errors.Is(err, appuc.ErrNotWorker):
		return middleware.NewAppError(fiber.StatusForbidden, "Only workers can apply for jobs", nil, err)
	case errors.Is(err, appuc.ErrAlreadyApplied):
		return middleware.Conflict("Already applied to this job", err)
	case errors.Is(err, appuc.ErrJobClosed):
		return middleware.Conflict("Job is not open for applications", err)
	case errors.Is(err, appuc.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Invalid status transition", nil, err)
	case errors.Is(err, appuc.ErrInvalidInput):
		return middleware.BadRequest("Invalid request payload", err)
	default:
		return middleware.Internal(err)
	}
}

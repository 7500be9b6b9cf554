package handler

import (
	"context"
	"errors"
	"time"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/response"
	"bluujobs/internal/search"
	jobuc "bluujobs/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
)

type JobUsecase interface {
	Get(ctx context.Context, id string) (job.Job, error)
	ListByEmployer(ctx context.Context, employerID string) ([]job.Job, error)
	Search(ctx context.Context, opts search.Options) ([]job.Job, error)
	Create(ctx context.Context, actor user.Actor, in jobuc.CreateInput) (job.Job, error)
	Update(ctx context.Context, actor user.Actor, id string, patch job.Patch) (job.Job, error)
	SetStatus(ctx context.Context, actor user.Actor, id string, status job.Status) (job.Job, error)
	Delete(ctx context.Context, actor user.Actor, id string) error
}

type JobHandler struct {
	uc JobUsecase
}

type createJobRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Location           string     `json:"location"`
	Pincode            string     `json:"pincode"`
	Area               string     `json:"area"`
	Wage               int        `json:"wage"`
	Duration           string     `json:"duration"`
	Category           string     `json:"category"`
	JobType            string     `json:"jobType"`
	ExperienceRequired string     `json:"experienceRequired"`
	ExpiresAt          *time.Time `json:"expiresAt"`
	EmployerID         string     `json:"employerId"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func NewJobHandler(uc JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

// RegisterRoutes mounts reads on r and writes behind protect.
func (h *JobHandler) RegisterRoutes(r fiber.Router, protect fiber.Handler) {
	if r == nil {
		return
	}

	r.Get("/", h.Search)
	r.Get("/employer/:employerId", h.ListByEmployer)
	r.Get("/:id", h.Get)
	r.Post("/", protect, h.Create)
	r.Put("/:id", protect, h.Update)
	r.Patch("/:id/status", protect, h.SetStatus)
	r.Delete("/:id", protect, h.Delete)
}

// Search filters and sorts jobs by query parameters: q, category, location,
// minWage, maxWage, jobType, experience, sort, near and open.
func (h *JobHandler) Search(c fiber.Ctx) error {
	minWage, err := parseQueryIntStrict(c, "minWage", 0)
	if err != nil {
		return err
	}
	maxWage, err := parseQueryIntStrict(c, "maxWage", 0)
	if err != nil {
		return err
	}
	openOnly, err := parseQueryBool(c, "open")
	if err != nil {
		return err
	}

	jobs, err := h.uc.Search(c.Context(), search.Options{
		Query:       c.Query("q"),
		Category:    c.Query("category"),
		Location:    c.Query("location"),
		MinWage:     minWage,
		MaxWage:     maxWage,
		JobType:     c.Query("jobType"),
		Experience:  c.Query("experience"),
		SortBy:      c.Query("sort"),
		NearPincode: c.Query("near"),
		OpenOnly:    openOnly,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.OK(c, jobs)
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	j, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.OK(c, j)
}

func (h *JobHandler) ListByEmployer(c fiber.Ctx) error {
	id, err := pathID(c, "employerId")
	if err != nil {
		return err
	}
	jobs, err := h.uc.ListByEmployer(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.OK(c, jobs)
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req createJobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	j, err := h.uc.Create(c.Context(), actor, jobuc.CreateInput{
		Title:              req.Title,
		Description:        req.Description,
		Location:           req.Location,
		Pincode:            req.Pincode,
		Area:               req.Area,
		Wage:               req.Wage,
		Duration:           req.Duration,
		Category:           req.Category,
		JobType:            req.JobType,
		ExperienceRequired: req.ExperienceRequired,
		ExpiresAt:          req.ExpiresAt,
		EmployerID:         req.EmployerID,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Created(c, j)
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch job.Patch
	if err := bindBody(c, &patch); err != nil {
		return err
	}

	j, err := h.uc.Update(c.Context(), actor, id, patch)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.OK(c, j)
}

func (h *JobHandler) SetStatus(c fiber.Ctx) error {
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
	status, ok := job.ParseStatus(req.Status)
	if !ok {
		return middleware.BadRequest("Invalid status", nil)
	}

	j, err := h.uc.SetStatus(c.Context(), actor, id, status)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.OK(c, j)
}

func (h *JobHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), actor, id); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.OK(c, nil)
}

func mapJobUsecaseError(err error) error {
	switch {
	case errors.Is(err, jobuc.ErrNotFound):
		return middleware.NotFound("Job not found", err)
	case errors.Is(err, jobuc.ErrForbidden):
		return middleware.Forbidden(err)
	case errors.Is(err, jobuc.ErrInvalidInput):
		return middleware.BadRequest("Invalid request payload", err)
	default:
		return middleware.Internal(err)
	}
}

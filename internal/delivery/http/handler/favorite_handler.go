package handler

import (
	"context"
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/favorite"
	"bluujobs/internal/domain/job"
	"bluujobs/internal/pkg/response"
	favuc "bluujobs/internal/usecase/favorite"

	"github.com/gofiber/fiber/v3"
)

type FavoriteUsecase interface {
	Jobs(ctx context.Context, userID string) ([]job.Job, error)
	Add(ctx context.Context, userID, jobID string) (favorite.Favorite, error)
	Remove(ctx context.Context, userID, jobID string) error
	IsFavorite(ctx context.Context, userID, jobID string) (bool, error)
}

type FavoriteHandler struct {
	uc FavoriteUsecase
}

func NewFavoriteHandler(uc FavoriteUsecase) *FavoriteHandler {
	return &FavoriteHandler{uc: uc}
}

func (h *FavoriteHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:jobId", h.Check)
	r.Put("/:jobId", h.Add)
	r.Delete("/:jobId", h.Remove)
}

// List returns the actor's saved jobs.
func (h *FavoriteHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobs, err := h.uc.Jobs(c.Context(), actor.ID)
	if err != nil {
		return mapFavoriteUsecaseError(err)
	}
	return response.OK(c, jobs)
}

func (h *FavoriteHandler) Check(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := pathID(c, "jobId")
	if err != nil {
		return err
	}
	ok, err := h.uc.IsFavorite(c.Context(), actor.ID, jobID)
	if err != nil {
		return mapFavoriteUsecaseError(err)
	}
	return response.OK(c, fiber.Map{"favorite": ok})
}

func (h *FavoriteHandler) Add(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := pathID(c, "jobId")
	if err != nil {
		return err
	}
	f, err := h.uc.Add(c.Context(), actor.ID, jobID)
	if err != nil {
		return mapFavoriteUsecaseError(err)
	}
	return response.OK(c, f)
}

func (h *FavoriteHandler) Remove(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := pathID(c, "jobId")
	if err != nil {
		return err
	}
	if err := h.uc.Remove(c.Context(), actor.ID, jobID); err != nil {
		return mapFavoriteUsecaseError(err)
	}
	return response.OK(c, nil)
}

func mapFavoriteUsecaseError(err error) error {
	if errors.Is(err, favuc.ErrJobNotFound) {
		return middleware.NotFound("Job not found", err)
	}
	return middleware.Internal(err)
}

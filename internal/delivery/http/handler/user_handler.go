package handler

import (
	"context"
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/response"
	useruc "bluujobs/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
)

type UserUsecase interface {
	List(ctx context.Context) ([]user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	PublicProfile(ctx context.Context, id string) (user.PublicProfile, error)
	Update(ctx context.Context, actor user.Actor, id string, patch user.Patch) (user.User, error)
	Delete(ctx context.Context, actor user.Actor, id string) error
}

type UserHandler struct {
	uc UserUsecase
}

func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", middleware.RequireAdmin(), h.List)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", middleware.RequireAdmin(), h.Delete)
}

func (h *UserHandler) List(c fiber.Ctx) error {
	users, err := h.uc.List(c.Context())
	if err != nil {
		return mapUserUsecaseError(err)
	}
	return response.OK(c, users)
}

// Get returns the full record to the user themselves and to admins, and the
// public profile to everyone else.
func (h *UserHandler) Get(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if actor.Can(id) {
		u, err := h.uc.Get(c.Context(), id)
		if err != nil {
			return mapUserUsecaseError(err)
		}
		return response.OK(c, u)
	}

	prof, err := h.uc.PublicProfile(c.Context(), id)
	if err != nil {
		return mapUserUsecaseError(err)
	}
	return response.OK(c, prof)
}

func (h *UserHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch user.Patch
	if err := bindBody(c, &patch); err != nil {
		return err
	}

	u, err := h.uc.Update(c.Context(), actor, id, patch)
	if err != nil {
		return mapUserUsecaseError(err)
	}
	return response.OK(c, u)
}

func (h *UserHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), actor, id); err != nil {
		return mapUserUsecaseError(err)
	}
	return response.OK(c, nil)
}

func mapUserUsecaseError(err error) error {
	switch {
	case errors.Is(err, useruc.ErrNotFound):
		return middleware.NotFound("User not found", err)
	case errors.Is(err, useruc.ErrForbidden):
		return middleware.Forbidden(err)
	case errors.Is(err, useruc.ErrInvalidInput):
		return middleware.BadRequest("Invalid request payload", err)
	case errors.Is(err, useruc.ErrEmailAlreadyRegistered):
		return middleware.Conflict("Email already registered", err)
	default:
		return middleware.Internal(err)
	}
}

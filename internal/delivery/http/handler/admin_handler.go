package handler

import (
	"context"
	"encoding/json"
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/response"
	adminuc "bluujobs/internal/usecase/admin"

	"github.com/gofiber/fiber/v3"
)

type AdminUsecase interface {
	Stats(ctx context.Context) (adminuc.Stats, error)
	Reconcile(ctx context.Context, actor user.Actor) (adminuc.Report, error)
	Export(ctx context.Context, name string) (json.RawMessage, error)
}

type AdminHandler struct {
	uc AdminUsecase
}

func NewAdminHandler(uc AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// RegisterRoutes expects r to be guarded by RequireAdmin already.
func (h *AdminHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/stats", h.Stats)
	r.Post("/reconcile", h.Reconcile)
	r.Get("/export/:collection", h.Export)
}

func (h *AdminHandler) Stats(c fiber.Ctx) error {
	st, err := h.uc.Stats(c.Context())
	if err != nil {
		return mapAdminUsecaseError(err)
	}
	return response.OK(c, st)
}

func (h *AdminHandler) Reconcile(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	rep, err := h.uc.Reconcile(c.Context(), actor)
	if err != nil {
		return mapAdminUsecaseError(err)
	}
	return response.OK(c, rep)
}

func (h *AdminHandler) Export(c fiber.Ctx) error {
	name, err := pathID(c, "collection")
	if err != nil {
		return err
	}
	raw, err := h.uc.Export(c.Context(), name)
	if err != nil {
		return mapAdminUsecaseError(err)
	}
	return response.OK(c, raw)
}

func mapAdminUsecaseError(err error) error {
	switch {
	case errors.Is(err, adminuc.ErrUnknownCollection):
		return middleware.NotFound("Unknown collection", err)
	case errors.Is(err, adminuc.ErrForbidden):
		return middleware.Forbidden(err)
	default:
		return middleware.Internal(err)
	}
}

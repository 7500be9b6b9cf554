package handler

import (
	"context"
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/response"
	notifuc "bluujobs/internal/usecase/notification"

	"github.com/gofiber/fiber/v3"
)

type NotificationUsecase interface {
	ForUser(ctx context.Context, userID string) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Add(ctx context.Context, actor user.Actor, in notifuc.CreateInput) (notification.Notification, error)
	MarkRead(ctx context.Context, actor user.Actor, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type NotificationHandler struct {
	uc NotificationUsecase
}

type createNotificationRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewNotificationHandler(uc NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/", h.Create)
	r.Post("/read-all", h.MarkAllRead)
	r.Patch("/:id/read", h.MarkRead)
}

func (h *NotificationHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	items, err := h.uc.ForUser(c.Context(), actor.ID)
	if err != nil {
		return mapNotificationUsecaseError(err)
	}
	return response.OK(c, items)
}

func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	n, err := h.uc.UnreadCount(c.Context(), actor.ID)
	if err != nil {
		return mapNotificationUsecaseError(err)
	}
	return response.OK(c, fiber.Map{"count": n})
}

// Create notifies userId, defaulting to the actor.
func (h *NotificationHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req createNotificationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.UserID == "" {
		req.UserID = actor.ID
	}

	n, err := h.uc.Add(c.Context(), actor, notifuc.CreateInput{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		return mapNotificationUsecaseError(err)
	}
	return response.Created(c, n)
}

func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.MarkRead(c.Context(), actor, id); err != nil {
		return mapNotificationUsecaseError(err)
	}
	return response.OK(c, nil)
}

func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	n, err := h.uc.MarkAllRead(c.Context(), actor.ID)
	if err != nil {
		return mapNotificationUsecaseError(err)
	}
	return response.OK(c, fiber.Map{"updated": n})
}

func mapNotificationUsecaseError(err error) error {
	switch {
	case errors.Is(err, notifuc.ErrForbidden):
		return middleware.Forbidden(err)
	case errors.Is(err, notifuc.ErrInvalidInput):
		return middleware.BadRequest("Invalid request payload", err)
	default:
		return middleware.Internal(err)
	}
}

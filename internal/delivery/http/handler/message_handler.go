package handler

import (
	"context"
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/message"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/response"
	msguc "bluujobs/internal/usecase/message"

	"github.com/gofiber/fiber/v3"
)

type MessageUsecase interface {
	Inbox(ctx context.Context, userID string) ([]message.Message, error)
	Conversation(ctx context.Context, userID, otherID string) ([]message.Message, error)
	Partners(ctx context.Context, userID string) ([]msguc.Partner, error)
	Send(ctx context.Context, actor user.Actor, in msguc.SendInput) (message.Message, error)
	MarkRead(ctx context.Context, actor user.Actor, id string) error
}

type MessageHandler struct {
	uc MessageUsecase
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func NewMessageHandler(uc MessageUsecase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

func (h *MessageHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.Inbox)
	r.Get("/partners", h.Partners)
	r.Get("/with/:userId", h.Conversation)
	r.Post("/", h.Send)
	r.Patch("/:id/read", h.MarkRead)
}

func (h *MessageHandler) Inbox(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	msgs, err := h.uc.Inbox(c.Context(), actor.ID)
	if err != nil {
		return mapMessageUsecaseError(err)
	}
	return response.OK(c, msgs)
}

func (h *MessageHandler) Partners(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	partners, err := h.uc.Partners(c.Context(), actor.ID)
	if err != nil {
		return mapMessageUsecaseError(err)
	}
	return response.OK(c, partners)
}

func (h *MessageHandler) Conversation(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	other, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	msgs, err := h.uc.Conversation(c.Context(), actor.ID, other)
	if err != nil {
		return mapMessageUsecaseError(err)
	}
	return response.OK(c, msgs)
}

func (h *MessageHandler) Send(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	m, err := h.uc.Send(c.Context(), actor, msguc.SendInput{ReceiverID: req.ReceiverID, Content: req.Content})
	if err != nil {
		return mapMessageUsecaseError(err)
	}
	return response.Created(c, m)
}

func (h *MessageHandler) MarkRead(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.MarkRead(c.Context(), actor, id); err != nil {
		return mapMessageUsecaseError(err)
	}
	return response.OK(c, nil)
}

func mapMessageUsecaseError(err error) error {
	switch {
	case errors.Is(err, msguc.ErrRecipientNotFound):
		return middleware.NotFound("Recipient not found", err)
	case errors.Is(err, msguc.ErrForbidden):
		return middleware.Forbidden(err)
	case errors.Is(err, msguc.ErrInvalidInput):
		return middleware.BadRequest("Invalid request payload", err)
	default:
		return middleware.Internal(err)
	}
}

package handler

import (
	"context"
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/review"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/response"
	reviewuc "bluujobs/internal/usecase/review"

	"github.com/gofiber/fiber/v3"
)

type ReviewUsecase interface {
	ForUser(ctx context.Context, userID string) ([]review.Review, error)
	Add(ctx context.Context, actor user.Actor, in reviewuc.CreateInput) (review.Review, error)
}

type ReviewHandler struct {
	uc ReviewUsecase
}

type createReviewRequest struct {
	ToUserID string `json:"toUserId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	JobID    string `json:"jobId"`
}

func NewReviewHandler(uc ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

func (h *ReviewHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/user/:userId", h.ForUser)
	r.Post("/", h.Create)
}

func (h *ReviewHandler) ForUser(c fiber.Ctx) error {
	id, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	items, err := h.uc.ForUser(c.Context(), id)
	if err != nil {
		return mapReviewUsecaseError(err)
	}
	return response.OK(c, items)
}

func (h *ReviewHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req createReviewRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	rv, err := h.uc.Add(c.Context(), actor, reviewuc.CreateInput{
		ToUserID: req.ToUserID,
		Rating:   req.Rating,
		Comment:  req.Comment,
		JobID:    req.JobID,
	})
	if err != nil {
		return mapReviewUsecaseError(err)
	}
	return response.Created(c, rv)
}

func mapReviewUsecaseError(err error) error {
	switch {
	case errors.Is(err, reviewuc.ErrUserNotFound):
		return middleware.NotFound("User not found", err)
	case errors.Is(err, reviewuc.ErrJobNotFound):
		return middleware.NotFound("Job not found", err)
	case errors.Is(err, reviewuc.ErrSelfReview):
		return middleware.BadRequest("Cannot review yourself", err)
	case errors.Is(err, reviewuc.ErrForbidden):
		return middleware.Forbidden(err)
	case errors.Is(err, reviewuc.ErrInvalidInput):
		return middleware.BadRequest("Invalid request payload", err)
	default:
		return middleware.Internal(err)
	}
}

package handler

import (
	"errors"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/jwt"
	"bluujobs/internal/pkg/response"
	ucauth "bluujobs/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AuthHandler struct {
	uc  ucauth.AuthUsecase
	jwt jwt.Service
}

type registerRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Phone      string   `json:"phone"`
	UserType   string   `json:"userType"`
	Location   string   `json:"location"`
	Pincode    string   `json:"pincode"`
	Area       string   `json:"area"`
	Skills     []string `json:"skills"`
	Company    string   `json:"company"`
	Experience string   `json:"experience"`
	Bio        string   `json:"bio"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authResult struct {
	User user.User `json:"user"`
	tokenPair
}

func NewAuthHandler(uc ucauth.AuthUsecase, jwtSvc jwt.Service) *AuthHandler {
	return &AuthHandler{uc: uc, jwt: jwtSvc}
}

// RegisterRoutes mounts the auth endpoints. protect guards the ones that
// need a signed-in user.
func (h *AuthHandler) RegisterRoutes(r fiber.Router, protect fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", protect, h.Logout)
	r.Get("/me", protect, h.Me)
	r.Put("/password", protect, h.ChangePassword)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		UserType:   req.UserType,
		Location:   req.Location,
		Pincode:    req.Pincode,
		Area:       req.Area,
		Skills:     req.Skills,
		Company:    req.Company,
		Experience: req.Experience,
		Bio:        req.Bio,
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	scope := uuid.NewString()
	usr, err = h.uc.SetCurrentUser(c.Context(), scope, usr.ID)
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	tokens, err := h.issue(usr, scope)
	if err != nil {
		return err
	}
	return response.Created(c, authResult{User: usr, tokenPair: tokens})
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	scope := uuid.NewString()
	usr, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password, Scope: scope})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	tokens, err := h.issue(usr, scope)
	if err != nil {
		return err
	}
	return response.OK(c, authResult{User: usr, tokenPair: tokens})
}

// Refresh trades a refresh token for a new pair bound to the same session.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get("Authorization"))
	if !ok {
		return middleware.Unauthorized("Unauthorized", nil)
	}

	claims, err := h.jwt.ValidateRefreshToken(tok)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return middleware.Unauthorized("Refresh token expired", err)
		}
		return middleware.Unauthorized("Invalid refresh token", err)
	}

	usr, ok, err := h.uc.CurrentUser(c.Context(), claims.SessionID)
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	if !ok || usr.ID != claims.UserID {
		return middleware.Unauthorized("Session ended", nil)
	}

	// Extend the session to match the new refresh token.
	usr, err = h.uc.SetCurrentUser(c.Context(), claims.SessionID, usr.ID)
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	tokens, err := h.issue(usr, claims.SessionID)
	if err != nil {
		return err
	}
	return response.OK(c, tokens)
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := h.uc.Logout(c.Context(), middleware.SessionFrom(c)); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.OK(c, nil)
}

func (h *AuthHandler) Me(c fiber.Ctx) error {
	usr, ok, err := h.uc.CurrentUser(c.Context(), middleware.SessionFrom(c))
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	if !ok {
		return middleware.Unauthorized("Session ended", nil)
	}
	return response.OK(c, usr)
}

func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := h.uc.ChangePassword(c.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.OK(c, nil)
}

func (h *AuthHandler) issue(u user.User, scope string) (tokenPair, error) {
	sub := jwt.Subject{UserID: u.ID, Role: string(u.UserType), SessionID: scope}
	access, err := h.jwt.GenerateAccessToken(sub)
	if err != nil {
		return tokenPair{}, middleware.Internal(err)
	}
	refresh, err := h.jwt.GenerateRefreshToken(sub)
	if err != nil {
		return tokenPair{}, middleware.Internal(err)
	}
	return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return middleware.Conflict("Email already registered", err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.Unauthorized("Invalid email or password", err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.BadRequest("Bad request", err)
	case errors.Is(err, ucauth.ErrNotFound):
		return middleware.NotFound("User not found", err)
	default:
		return middleware.Internal(err)
	}
}

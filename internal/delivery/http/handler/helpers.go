package handler

import (
	"strconv"
	"strings"

	"bluujobs/internal/delivery/http/middleware"
	"bluujobs/internal/domain/user"

	"github.com/gofiber/fiber/v3"
)

func currentActor(c fiber.Ctx) (user.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return user.Actor{}, middleware.Unauthorized("Unauthorized", nil)
	}
	return a, nil
}

func bindBody(c fiber.Ctx, dst any) error {
	if err := c.Bind().Body(dst); err != nil {
		return middleware.BadRequest("Invalid request payload", err)
	}
	return nil
}

func pathID(c fiber.Ctx, name string) (string, error) {
	id := strings.TrimSpace(c.Params(name))
	if id == "" {
		return "", middleware.BadRequest("Bad request", nil)
	}
	return id, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, middleware.BadRequest("Invalid "+key, err)
	}
	return n, nil
}

func parseQueryBool(c fiber.Ctx, key string) (bool, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, middleware.BadRequest("Invalid "+key, err)
	}
	return b, nil
}

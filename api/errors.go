package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/storage"
)

// errorHandler answers every error a handler returns, and fiber's own
// (unknown route, bad method), with the {"error": "..."} body clients expect.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, msg := classify(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"request_id", requestID(c),
				"error", err,
			)
		}
		return c.Status(status).JSON(dating.ErrorResponse{Error: msg})
	}
}

// classify maps an error to the HTTP status and message sent to the client.
func classify(err error) (int, string) {
	var (
		fiberErr      *fiber.Error
		validationErr *dating.ValidationError
		llmErr        *llm.Error
		notFound      storage.NotFoundError
		conflict      storage.ConflictError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.As(err, &llmErr):
		return llmErr.Status, llmErr.Message
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, notFoundMessage(notFound)
	case errors.As(err, &conflict):
		if conflict.Field == "email" {
			return fiber.StatusConflict, "Email already registered"
		}
		return fiber.StatusConflict, conflict.Error()
	case errors.Is(err, storage.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, context.Canceled):
		return 499, "Request cancelled"
	default:
		return fiber.StatusInternalServerError, fmt.Sprintf("Unexpected error: %v", err)
	}
}

func notFoundMessage(err storage.NotFoundError) string {
	switch err.Kind {
	case "user":
		return "User not found"
	case "chat window":
		return "Chat window not found"
	default:
		return err.Error()
	}
}

// streamErrorMessage is the message of the error event ending a failed
// stream. Headers are long gone by then so the status is dropped.
func streamErrorMessage(err error) string {
	_, msg := classify(err)
	return msg
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(RequestIDHeader)
}

package handlers

import (
	"annadaan/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Success    bool        `json:"success"`
}

// Respond writes a successful envelope with the given status code.
func Respond(c *fiber.Ctx, statusCode int, message string, data interface{}) error {
	return c.Status(statusCode).JSON(Envelope{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Success:    statusCode < 400,
	})
}

// Fail maps a service error to its HTTP status and writes a failure envelope.
// Unclassified errors surface as a generic 500 message.
func Fail(c *fiber.Ctx, err error) error {
	statusCode := apperrors.StatusCode(err)
	return c.Status(statusCode).JSON(Envelope{
		StatusCode: statusCode,
		Message:    apperrors.Message(err),
		Data:       nil,
		Success:    false,
	})
}

// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/Kyu-Ar/app/dto"
	businessflow "github.com/amirphl/Kyu-Ar/business_flow"
	"github.com/amirphl/Kyu-Ar/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// baseHandler carries what every handler needs to validate input, build a
// request context and answer in the API envelope
type baseHandler struct {
	validator      *validator.Validate
	requestTimeout time.Duration
}

func newBaseHandler(requestTimeout time.Duration) baseHandler {
	if requestTimeout <= 0 {
		requestTimeout = utils.RequestTimeout
	}
	return baseHandler{
		validator:      validator.New(),
		requestTimeout: requestTimeout,
	}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validate runs struct validation and returns the formatted messages, or nil
func (h *baseHandler) validate(req any) []string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors []string
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			validationErrors = append(validationErrors, getValidationErrorMessage(fe))
		}
		return validationErrors
	}
	return []string{err.Error()}
}

// createRequestContext derives the context a flow call runs under. The caller
// must call the returned cancel func.
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}

// flowError maps a business flow failure onto a status code and error code.
// Unknown failures are logged and reported as 500 with fallbackCode.
func (h *baseHandler) flowError(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	switch {
	case businessflow.IsCodeNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Code not found", "CODE_NOT_FOUND", nil)
	case businessflow.IsUnsupportedType(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported code type", "UNSUPPORTED_TYPE", err.Error())
	case businessflow.IsInvalidInput(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request", businessflow.ErrorCode(err, "INVALID_INPUT"), err.Error())
	}
	log.Printf("%s: request_id=%s path=%s error=%v", fallbackMessage, requestID(c), c.Path(), err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, businessflow.ErrorCode(err, fallbackCode), nil)
}

func requestID(c fiber.Ctx) string {
	if id := c.GetRespHeader(fiber.HeaderXRequestID); id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

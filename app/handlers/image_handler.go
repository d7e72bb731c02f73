package handlers

import (
	"context"
	"time"

	"github.com/amirphl/Kyu-Ar/app/dto"
	businessflow "github.com/amirphl/Kyu-Ar/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ImageHandlerInterface defines the contract for QR image handlers
type ImageHandlerInterface interface {
	PNG(c fiber.Ctx) error
	SVG(c fiber.Ctx) error
}

// ImageHandler renders QR images for raw data or registered codes
type ImageHandler struct {
	baseHandler
	flow businessflow.RenderFlow
}

func NewImageHandler(flow businessflow.RenderFlow, requestTimeout time.Duration) *ImageHandler {
	return &ImageHandler{
		baseHandler: newBaseHandler(requestTimeout),
		flow:        flow,
	}
}

// PNG renders a QR code as PNG
// @Summary Render PNG
// @Description Encode data, or the target of a registered code, as a PNG QR image
// @Tags Images
// @Produce image/png
// @Param data query string false "Content to encode (percent-encoding accepted)"
// @Param slug query string false "Slug of a registered code"
// @Param scale query int false "Pixels per module, 1-20 (default 8)"
// @Param border query int false "Quiet zone in modules, 0-10 (default 2)"
// @Param dark query string false "Module colour (#rgb, #rrggbb or CSS name)"
// @Param light query string false "Background colour"
// @Param gradient_start query string false "Gradient start colour"
// @Param gradient_end query string false "Gradient end colour"
// @Param gradient_direction query string false "horizontal, vertical or diagonal"
// @Success 200 {string} string "PNG image"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Code not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/image.png [get]
func (h *ImageHandler) PNG(c fiber.Ctx) error {
	return h.render(c, "/api/v1/image.png", h.flow.PNG)
}

// SVG renders a QR code as SVG
// @Summary Render SVG
// @Description Encode data, or the target of a registered code, as an SVG QR image
// @Tags Images
// @Produce image/svg+xml
// @Param data query string false "Content to encode (percent-encoding accepted)"
// @Param slug query string false "Slug of a registered code"
// @Param scale query int false "Pixels per module, 1-20 (default 8)"
// @Param border query int false "Quiet zone in modules, 0-10 (default 2)"
// @Param dark query string false "Module colour (#rgb, #rrggbb or CSS name)"
// @Param light query string false "Background colour"
// @Param gradient_start query string false "Gradient start colour"
// @Param gradient_end query string false "Gradient end colour"
// @Param gradient_direction query string false "horizontal, vertical or diagonal"
// @Success 200 {string} string "SVG image"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Code not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/image.svg [get]
func (h *ImageHandler) SVG(c fiber.Ctx) error {
	return h.render(c, "/api/v1/image.svg", h.flow.SVG)
}

type renderFunc func(ctx context.Context, req dto.RenderImageRequest) (*dto.RenderedImage, error)

func (h *ImageHandler) render(c fiber.Ctx, endpoint string, fn renderFunc) error {
	var req dto.RenderImageRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if validationErrors := h.validate(&req); validationErrors != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx, cancel := h.createRequestContext(c, endpoint)
	defer cancel()

	img, err := fn(ctx, req)
	if err != nil {
		return h.flowError(c, err, "Failed to render image", "RENDER_FAILED")
	}

	c.Set("Content-Type", img.ContentType)
	c.Set("Cache-Control", "public, max-age=300")
	return c.Send(img.Body)
}

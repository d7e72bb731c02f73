package handlers

import (
	"time"

	"github.com/amirphl/Kyu-Ar/app/dto"
	businessflow "github.com/amirphl/Kyu-Ar/business_flow"
	"github.com/amirphl/Kyu-Ar/models"
	"github.com/gofiber/fiber/v3"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CodeHandlerInterface defines the contract for code registry handlers
type CodeHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Redirect(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
	ExportScansCSV(c fiber.Ctx) error
	ExportScansExcel(c fiber.Ctx) error
}

// CodeHandler serves the code registry endpoints
type CodeHandler struct {
	baseHandler
	codeFlow      businessflow.CodeFlow
	scanFlow      businessflow.ScanFlow
	publicBaseURL string
}

// NewCodeHandler creates a code handler. publicBaseURL, when set, is used to
// build the short_url of returned codes.
func NewCodeHandler(codeFlow businessflow.CodeFlow, scanFlow businessflow.ScanFlow, publicBaseURL string, requestTimeout time.Duration) *CodeHandler {
	return &CodeHandler{
		baseHandler:   newBaseHandler(requestTimeout),
		codeFlow:      codeFlow,
		scanFlow:      scanFlow,
		publicBaseURL: publicBaseURL,
	}
}

// Create registers a new code
// @Summary Create code
// @Description Register a URL, WIFI, VCARD or TEXT code. The slug is derived from the title when given.
// @Tags Codes
// @Accept json
// @Produce json
// @Param request body dto.CreateCodeRequest true "Code to register"
// @Success 201 {object} dto.APIResponse{data=dto.CodeResponse} "Code created"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/codes [post]
func (h *CodeHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if validationErrors := h.validate(&req); validationErrors != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	payload, err := models.ParseCodePayload(req.Type, req.TargetURL, req.Data)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported code type", "UNSUPPORTED_TYPE", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/codes")
	defer cancel()

	result, err := h.codeFlow.Create(ctx, businessflow.CreateCodeInput{
		Title:   req.Title,
		Note:    req.Note,
		Payload: payload,
	})
	if err != nil {
		return h.flowError(c, err, "Failed to create code", "CREATE_CODE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Code created successfully", h.withShortURL(result))
}

// List returns the most recently created codes
// @Summary List codes
// @Tags Codes
// @Produce json
// @Param limit query int false "Maximum number of codes (default 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListCodesResponse} "Codes"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/codes [get]
func (h *CodeHandler) List(c fiber.Ctx) error {
	var req dto.ListCodesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if validationErrors := h.validate(&req); validationErrors != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/codes")
	defer cancel()

	result, err := h.codeFlow.ListRecent(ctx, req.Limit)
	if err != nil {
		return h.flowError(c, err, "Failed to list codes", "LIST_CODES_FAILED")
	}
	for i := range result.Items {
		h.withShortURL(&result.Items[i])
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Codes retrieved successfully", result)
}

// Get returns a single code
// @Summary Get code
// @Tags Codes
// @Produce json
// @Param slug path string true "Code slug"
// @Success 200 {object} dto.APIResponse{data=dto.CodeResponse} "Code"
// @Failure 404 {object} dto.APIResponse "Code not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/codes/{slug} [get]
func (h *CodeHandler) Get(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/codes/{slug}")
	defer cancel()

	result, err := h.codeFlow.GetBySlug(ctx, c.Params("slug"))
	if err != nil {
		return h.flowError(c, err, "Failed to get code", "GET_CODE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Code retrieved successfully", h.withShortURL(result))
}

// Redirect records a scan and redirects to the code's target
// @Summary Visit code
// @Tags Codes
// @Param slug path string true "Code slug"
// @Success 302 {string} string "Redirect"
// @Failure 404 {object} dto.APIResponse "Code not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/codes/{slug}/redirect [get]
// @Router /s/{slug} [get]
func (h *CodeHandler) Redirect(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/codes/{slug}/redirect")
	defer cancel()

	meta := businessflow.NewScanMetadata(c.IP(), c.Get("User-Agent"), c.Get("Referer"))
	target, err := h.scanFlow.Visit(ctx, c.Params("slug"), meta)
	if err != nil {
		return h.flowError(c, err, "Failed to record scan", "RECORD_SCAN_FAILED")
	}

	return c.Redirect().Status(fiber.StatusFound).To(target)
}

// Stats returns scan statistics of a code
// @Summary Code stats
// @Tags Codes
// @Produce json
// @Param slug path string true "Code slug"
// @Success 200 {object} dto.APIResponse{data=dto.CodeStatsResponse} "Stats"
// @Failure 404 {object} dto.APIResponse "Code not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/codes/{slug}/stats [get]
func (h *CodeHandler) Stats(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/codes/{slug}/stats")
	defer cancel()

	result, err := h.scanFlow.Stats(ctx, c.Params("slug"))
	if err != nil {
		return h.flowError(c, err, "Failed to get stats", "GET_STATS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stats retrieved successfully", result)
}

// ExportScansCSV downloads the scans of a code as CSV
// @Summary Export scans (CSV)
// @Tags Codes
// @Produce text/csv
// @Param slug path string true "Code slug"
// @Success 200 {string} string "CSV file"
// @Failure 404 {object} dto.APIResponse "Code not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/codes/{slug}/scans.csv [get]
func (h *CodeHandler) ExportScansCSV(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/codes/{slug}/scans.csv")
	defer cancel()

	filename, data, err := h.scanFlow.ExportScansCSV(ctx, c.Params("slug"))
	if err != nil {
		return h.flowError(c, err, "Failed to export scans", "EXPORT_SCANS_FAILED")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// ExportScansExcel downloads the scans of a code as an Excel workbook
// @Summary Export scans (Excel)
// @Tags Codes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param slug path string true "Code slug"
// @Success 200 {string} string "Excel file"
// @Failure 404 {object} dto.APIResponse "Code not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/codes/{slug}/scans.xlsx [get]
func (h *CodeHandler) ExportScansExcel(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/codes/{slug}/scans.xlsx")
	defer cancel()

	filename, data, err := h.scanFlow.ExportScansExcel(ctx, c.Params("slug"))
	if err != nil {
		return h.flowError(c, err, "Failed to export scans", "EXPORT_SCANS_FAILED")
	}

	c.Set("Content-Type", excelContentType)
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *CodeHandler) withShortURL(code *dto.CodeResponse) *dto.CodeResponse {
	if h.publicBaseURL != "" && code != nil {
		code.ShortURL = h.publicBaseURL + "/s/" + code.Slug
	}
	return code
}

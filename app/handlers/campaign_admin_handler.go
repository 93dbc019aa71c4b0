package handlers

import (
	"fmt"
	"log"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/app/middleware"
	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CampaignAdminHandlerInterface defines the contract for admin campaign and winner handlers
type CampaignAdminHandlerInterface interface {
	ListCampaigns(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	CreateCampaign(c fiber.Ctx) error
	UpdateCampaign(c fiber.Ctx) error
	DeleteCampaign(c fiber.Ctx) error
	ListWinners(c fiber.Ctx) error
	ExportWinners(c fiber.Ctx) error
	UploadWinnersExport(c fiber.Ctx) error
}

// CampaignAdminHandler handles campaign management for admins
type CampaignAdminHandler struct {
	responder
	flow       businessflow.AdminCampaignFlow
	exportFlow businessflow.WinnerExportFlow
	validator  *validator.Validate
}

func NewCampaignAdminHandler(flow businessflow.AdminCampaignFlow, exportFlow businessflow.WinnerExportFlow) CampaignAdminHandlerInterface {
	return &CampaignAdminHandler{
		flow:       flow,
		exportFlow: exportFlow,
		validator:  validator.New(),
	}
}

// mapCampaignError reports admin campaign failures
func (h *CampaignAdminHandler) mapCampaignError(c fiber.Ctx, op string, err error) error {
	switch {
	case businessflow.IsCampaignNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
	case businessflow.IsCampaignUpdateRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "CAMPAIGN_UPDATE_REQUIRED", nil)
	case businessflow.IsInvalidSponsorAmount(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Sponsor amount must not be negative", "INVALID_SPONSOR_AMOUNT", nil)
	case businessflow.IsInvalidPage(err), businessflow.IsInvalidPageSize(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PAGINATION", nil)
	case businessflow.IsInvalidPhase(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.ErrInvalidPhase.Error(), "INVALID_PHASE", nil)
	}
	log.Println(op, "failed", err)
	return h.storageUnavailable(c)
}

// ListCampaigns lists campaigns for admins
// @Summary List campaigns (admin)
// @Tags Admin Campaigns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param is_active query bool false "Filter by active flag"
// @Param has_winner query bool false "Filter by winner flag"
// @Param phase query string false "Filter by phase (pending, revealed, expired, already_won)"
// @Param created_after query string false "Created at or after (RFC3339)"
// @Param created_before query string false "Created before (RFC3339)"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListCampaignsResponse} "Campaigns"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/admin/campaigns [get]
func (h *CampaignAdminHandler) ListCampaigns(c fiber.Ctx) error {
	var filter dto.AdminListCampaignsFilter
	var err error
	if filter.Page, err = queryInt(c, "page", 1); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.IsActive, err = queryBool(c, "is_active"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.HasWinner, err = queryBool(c, "has_winner"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.CreatedAfter, err = queryTime(c, "created_after"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.CreatedBefore, err = queryTime(c, "created_before"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	filter.Phase = c.Query("phase")

	ctx, cancel := createRequestContext(c, "/api/v1/admin/campaigns")
	defer cancel()

	result, err := h.flow.ListCampaigns(ctx, filter)
	if err != nil {
		return h.mapCampaignError(c, "List campaigns", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetCampaign returns one campaign with its secret code
// @Summary Get campaign (admin)
// @Tags Admin Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignAdminDTO} "Campaign"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/admin/campaigns/{id} [get]
func (h *CampaignAdminHandler) GetCampaign(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/campaigns/:id")
	defer cancel()

	result, err := h.flow.GetCampaign(ctx, c.Params("id"))
	if err != nil {
		return h.mapCampaignError(c, "Get campaign", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// CreateCampaign creates a campaign
// @Summary Create campaign (admin)
// @Tags Admin Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCampaignRequest true "Campaign"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignAdminDTO} "Campaign created"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/admin/campaigns [post]
func (h *CampaignAdminHandler) CreateCampaign(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/campaigns")
	defer cancel()

	result, err := h.flow.CreateCampaign(ctx, adminID, &req, clientMetadata(c))
	if err != nil {
		return h.mapCampaignError(c, "Create campaign", err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign created successfully", result)
}

// UpdateCampaign applies a partial update
// @Summary Update campaign (admin)
// @Description Only provided fields change. The winner flag cannot be set through this endpoint.
// @Tags Admin Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID (UUID)"
// @Param request body dto.UpdateCampaignRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignAdminDTO} "Campaign updated"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/admin/campaigns/{id} [put]
func (h *CampaignAdminHandler) UpdateCampaign(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	req.ID = c.Params("id")

	ctx, cancel := createRequestContext(c, "/api/v1/admin/campaigns/:id")
	defer cancel()

	result, err := h.flow.UpdateCampaign(ctx, adminID, &req, clientMetadata(c))
	if err != nil {
		return h.mapCampaignError(c, "Update campaign", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign updated successfully", result)
}

// DeleteCampaign removes a campaign; its winner record is kept
// @Summary Delete campaign (admin)
// @Tags Admin Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteCampaignResponse} "Campaign deleted"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/admin/campaigns/{id} [delete]
func (h *CampaignAdminHandler) DeleteCampaign(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/campaigns/:id")
	defer cancel()

	result, err := h.flow.DeleteCampaign(ctx, adminID, c.Params("id"), clientMetadata(c))
	if err != nil {
		return h.mapCampaignError(c, "Delete campaign", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListWinners lists winners with contact details
// @Summary List winners (admin)
// @Tags Admin Winners
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param won_after query string false "Won at or after (RFC3339)"
// @Param won_before query string false "Won before (RFC3339)"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListWinnersResponse} "Winners"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/admin/winners [get]
func (h *CampaignAdminHandler) ListWinners(c fiber.Ctx) error {
	var filter dto.AdminListWinnersFilter
	var err error
	if filter.Page, err = queryInt(c, "page", 1); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.WonAfter, err = queryTime(c, "won_after"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	if filter.WonBefore, err = queryTime(c, "won_before"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/winners")
	defer cancel()

	result, err := h.flow.ListWinners(ctx, filter)
	if err != nil {
		return h.mapCampaignError(c, "List winners", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportWinners downloads all winners as an Excel workbook
// @Summary Export winners (admin)
// @Description One sheet with every winner plus one sheet per sponsor
// @Tags Admin Winners
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "Winners workbook"
// @Failure 500 {object} dto.APIResponse "Failed to build workbook"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/admin/winners/export [get]
func (h *CampaignAdminHandler) ExportWinners(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/winners/export")
	defer cancel()

	export, err := h.exportFlow.BuildWorkbook(ctx, &adminID, clientMetadata(c))
	if err != nil {
		if businessflow.IsStorageUnavailable(err) {
			log.Println("Export winners failed", err)
			return h.storageUnavailable(c)
		}
		log.Println("Export winners failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build winners workbook", "EXCEL_WRITE_ERROR", nil)
	}

	c.Set(fiber.HeaderContentType, businessflow.XLSXContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	return c.Status(fiber.StatusOK).Send(export.Content)
}

// UploadWinnersExport stores a winners workbook in object storage
// @Summary Upload winners export (admin)
// @Tags Admin Winners
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.APIResponse{data=dto.WinnersExport} "Workbook uploaded"
// @Failure 409 {object} dto.APIResponse "Object storage not configured"
// @Failure 502 {object} dto.APIResponse "Upload failed"
// @Router /api/v1/admin/winners/export/upload [post]
func (h *CampaignAdminHandler) UploadWinnersExport(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/winners/export/upload")
	defer cancel()

	export, err := h.exportFlow.Upload(ctx)
	if err != nil {
		switch {
		case businessflow.IsExportStorageNotConfigured(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Object storage is not configured", "EXPORT_STORAGE_NOT_CONFIGURED", nil)
		case businessflow.IsStorageUnavailable(err):
			log.Println("Upload winners export failed", err)
			return h.storageUnavailable(c)
		}
		log.Println("Upload winners export failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to upload winners workbook", businessflow.BusinessErrorCode(err), nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Winners workbook uploaded", export)
}

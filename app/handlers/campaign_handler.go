package handlers

import (
	"log"

	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CampaignHandlerInterface defines the contract for public campaign handlers
type CampaignHandlerInterface interface {
	GetActiveCampaign(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
}

// CampaignHandler serves the public campaign pages
type CampaignHandler struct {
	responder
	flow businessflow.CampaignFlow
}

func NewCampaignHandler(flow businessflow.CampaignFlow) CampaignHandlerInterface {
	return &CampaignHandler{flow: flow}
}

// GetActiveCampaign returns the campaign currently offered to visitors
// @Summary Active campaign
// @Description Returns the most recently created active campaign that has no winner and whose countdown has not ended
// @Tags Campaigns
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CampaignPublicDTO} "Active campaign"
// @Failure 404 {object} dto.APIResponse "No active campaign"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/campaigns/active [get]
func (h *CampaignHandler) GetActiveCampaign(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/active")
	defer cancel()

	result, err := h.flow.GetActiveCampaign(ctx)
	if err != nil {
		if businessflow.IsNoActiveCampaign(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "There is no active campaign right now", "NO_ACTIVE_CAMPAIGN", nil)
		}
		log.Println("Get active campaign failed", err)
		return h.storageUnavailable(c)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Active campaign retrieved successfully", result)
}

// GetCampaign returns the public view of one campaign
// @Summary Get campaign
// @Description The secret code is included once the countdown has ended
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignPublicDTO} "Campaign"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/:id")
	defer cancel()

	result, err := h.flow.GetCampaign(ctx, c.Params("id"))
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		log.Println("Get campaign failed", err)
		return h.storageUnavailable(c)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

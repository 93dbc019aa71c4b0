package handlers

import (
	"log"

	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/gofiber/fiber/v3"
)

// StatsHandlerInterface defines the contract for public statistics handlers
type StatsHandlerInterface interface {
	GetVisionStats(c fiber.Ctx) error
	GetTopSponsors(c fiber.Ctx) error
}

type StatsHandler struct {
	responder
	flow businessflow.CampaignFlow
}

func NewStatsHandler(flow businessflow.CampaignFlow) StatsHandlerInterface {
	return &StatsHandler{flow: flow}
}

// GetVisionStats returns contest totals
// @Summary Vision statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.VisionStatsResponse} "Statistics"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/stats/vision [get]
func (h *StatsHandler) GetVisionStats(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/stats/vision")
	defer cancel()

	result, err := h.flow.GetVisionStats(ctx)
	if err != nil {
		log.Println("Get vision stats failed", err)
		return h.storageUnavailable(c)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Statistics retrieved successfully", result)
}

// GetTopSponsors lists sponsors by total sponsored amount
// @Summary Top sponsors
// @Tags Stats
// @Produce json
// @Param limit query int false "Number of sponsors (default 5)"
// @Success 200 {object} dto.APIResponse{data=dto.TopSponsorsResponse} "Sponsors"
// @Failure 400 {object} dto.APIResponse "Invalid limit"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/stats/sponsors [get]
func (h *StatsHandler) GetTopSponsors(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", utils.DefaultTopSponsorsLimit)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/stats/sponsors")
	defer cancel()

	result, err := h.flow.GetTopSponsors(ctx, limit)
	if err != nil {
		log.Println("Get top sponsors failed", err)
		return h.storageUnavailable(c)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sponsors retrieved successfully", result)
}

package handlers

import (
	"log"

	"github.com/amirphl/countdown-contest/app/dto"
	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// WinnerHandlerInterface defines the contract for claim and winner handlers
type WinnerHandlerInterface interface {
	SubmitClaim(c fiber.Ctx) error
	ListWinners(c fiber.Ctx) error
	GetCampaignWinner(c fiber.Ctx) error
}

// WinnerHandler handles winner claims and public winner lookups
type WinnerHandler struct {
	responder
	flow      businessflow.WinnerFlow
	validator *validator.Validate
}

func NewWinnerHandler(flow businessflow.WinnerFlow) WinnerHandlerInterface {
	return &WinnerHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// claimFailure describes how a rejected claim is reported
type claimFailure struct {
	status  int
	code    string
	message string
}

// classifyClaimError gives every claim rejection its own status and code
func classifyClaimError(err error) claimFailure {
	switch {
	case businessflow.IsTooManyAttempts(err):
		return claimFailure{fiber.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too many claim attempts, please wait before trying again"}
	case businessflow.IsCampaignNotFound(err):
		return claimFailure{fiber.StatusNotFound, "CAMPAIGN_NOT_FOUND", "Campaign not found"}
	case businessflow.IsAlreadyWon(err):
		return claimFailure{fiber.StatusConflict, "ALREADY_WON", "Someone has already won this campaign"}
	case businessflow.IsCodeMismatch(err):
		return claimFailure{fiber.StatusBadRequest, "CODE_MISMATCH", "The secret code is incorrect"}
	case businessflow.IsCampaignInactive(err):
		return claimFailure{fiber.StatusBadRequest, "CAMPAIGN_INACTIVE", "This campaign is not active"}
	case businessflow.IsClaimNotOpen(err):
		return claimFailure{fiber.StatusBadRequest, "CLAIM_NOT_OPEN", "The code has not been revealed yet"}
	case businessflow.IsClaimWindowExpired(err):
		return claimFailure{fiber.StatusBadRequest, "CLAIM_WINDOW_EXPIRED", "The claim window for this campaign has closed"}
	default:
		return claimFailure{fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Service temporarily unavailable, please retry"}
	}
}

// SubmitClaim records the first valid claim on a campaign as its winner
// @Summary Submit winner claim
// @Description Claims a campaign with its revealed secret code. Exactly one claim per campaign can succeed.
// @Tags Winners
// @Accept json
// @Produce json
// @Param request body dto.SubmitWinnerRequest true "Claim"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitWinnerResponse} "Claim accepted"
// @Failure 400 {object} dto.APIResponse "Validation failed, code mismatch, campaign inactive, claim not open or window expired"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Campaign already won"
// @Failure 429 {object} dto.APIResponse "Too many attempts"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/winners [post]
func (h *WinnerHandler) SubmitClaim(c fiber.Ctx) error {
	var req dto.SubmitWinnerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/winners")
	defer cancel()

	result, err := h.flow.SubmitClaim(ctx, &req, clientMetadata(c))
	if err != nil {
		failure := classifyClaimError(err)
		if failure.status == fiber.StatusServiceUnavailable {
			log.Println("Submit claim failed", err)
		}
		return h.ErrorResponse(c, failure.status, failure.message, failure.code, nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListWinners lists winners newest first
// @Summary List winners
// @Description Lists winners without contact details, optionally for one campaign
// @Tags Winners
// @Produce json
// @Param campaignId query string false "Campaign ID (UUID)"
// @Param limit query int false "Maximum number of winners (default and max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListWinnersResponse} "Winners"
// @Failure 400 {object} dto.APIResponse "Invalid campaign id"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/winners [get]
func (h *WinnerHandler) ListWinners(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/winners")
	defer cancel()

	result, err := h.flow.ListWinners(ctx, c.Query("campaignId"), limit)
	if err != nil {
		if businessflow.IsInvalidCampaignID(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign id must be a UUID", "INVALID_CAMPAIGN_ID", nil)
		}
		log.Println("List winners failed", err)
		return h.storageUnavailable(c)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Winners retrieved successfully", result)
}

// GetCampaignWinner returns the winner of one campaign
// @Summary Campaign winner
// @Tags Winners
// @Produce json
// @Param id path string true "Campaign ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=dto.WinnerPublicDTO} "Winner"
// @Failure 404 {object} dto.APIResponse "Winner not found"
// @Failure 503 {object} dto.APIResponse "Storage unavailable"
// @Router /api/v1/campaigns/{id}/winner [get]
func (h *WinnerHandler) GetCampaignWinner(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/:id/winner")
	defer cancel()

	result, err := h.flow.GetCampaignWinner(ctx, c.Params("id"))
	if err != nil {
		if businessflow.IsWinnerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Winner not found", "WINNER_NOT_FOUND", nil)
		}
		log.Println("Get campaign winner failed", err)
		return h.storageUnavailable(c)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Winner retrieved successfully", result)
}

package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
)

// AdminCampaignFlow handles campaign management and winner review for admins
type AdminCampaignFlow interface {
	ListCampaigns(ctx context.Context, filter dto.AdminListCampaignsFilter) (*dto.AdminListCampaignsResponse, error)
	GetCampaign(ctx context.Context, id string) (*dto.CampaignAdminDTO, error)
	CreateCampaign(ctx context.Context, adminID uint, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignAdminDTO, error)
	UpdateCampaign(ctx context.Context, adminID uint, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignAdminDTO, error)
	DeleteCampaign(ctx context.Context, adminID uint, id string, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error)
	ListWinners(ctx context.Context, filter dto.AdminListWinnersFilter) (*dto.AdminListWinnersResponse, error)
}

// AdminCampaignFlowImpl implements AdminCampaignFlow
type AdminCampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	winnerRepo   repository.WinnerRepository
	auditRepo    repository.AuditLogRepository
	clock        utils.Clock
	claimWindow  time.Duration
}

// NewAdminCampaignFlow creates a new admin campaign flow instance
func NewAdminCampaignFlow(
	campaignRepo repository.CampaignRepository,
	winnerRepo repository.WinnerRepository,
	auditRepo repository.AuditLogRepository,
	clock utils.Clock,
	claimWindow time.Duration,
) AdminCampaignFlow {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if claimWindow <= 0 {
		claimWindow = utils.DefaultClaimWindowAfterReveal
	}
	return &AdminCampaignFlowImpl{
		campaignRepo: campaignRepo,
		winnerRepo:   winnerRepo,
		auditRepo:    auditRepo,
		clock:        clock,
		claimWindow:  claimWindow,
	}
}

// ListCampaigns lists campaigns newest first. The phase filter is evaluated against
// the flow's clock so it agrees with the phase reported on each item.
func (s *AdminCampaignFlowImpl) ListCampaigns(ctx context.Context, filter dto.AdminListCampaignsFilter) (*dto.AdminListCampaignsResponse, error) {
	page, limit, err := normalizePage(filter.Page, filter.Limit, utils.DefaultPageSize)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", err.Error(), err)
	}

	now := s.clock.Now()
	cf := models.CampaignFilter{
		IsActive:      filter.IsActive,
		HasWinner:     filter.HasWinner,
		CreatedAfter:  filter.CreatedAfter,
		CreatedBefore: filter.CreatedBefore,
	}
	if filter.Phase != "" {
		phase := models.CampaignPhase(strings.ToLower(strings.TrimSpace(filter.Phase)))
		if !phase.Valid() {
			return nil, NewBusinessError("INVALID_PHASE", ErrInvalidPhase.Error(), ErrInvalidPhase)
		}
		cf = PhaseFilter(cf, phase, now, s.claimWindow)
	}

	total, err := s.campaignRepo.Count(ctx, cf)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to count campaigns", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	rows, err := s.campaignRepo.ByFilter(ctx, cf, "created_at DESC, id DESC", limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to list campaigns", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	items := make([]dto.CampaignAdminDTO, 0, len(rows))
	for _, c := range rows {
		items = append(items, ToCampaignAdminDTO(*c, now, s.claimWindow))
	}

	return &dto.AdminListCampaignsResponse{
		Message:    "Campaigns retrieved successfully",
		Items:      items,
		Pagination: newPagination(total, page, limit),
	}, nil
}

// GetCampaign returns the admin view of one campaign
func (s *AdminCampaignFlowImpl) GetCampaign(ctx context.Context, id string) (*dto.CampaignAdminDTO, error) {
	c, err := findCampaign(ctx, s.campaignRepo, id)
	if err != nil {
		return nil, err
	}
	out := ToCampaignAdminDTO(*c, s.clock.Now(), s.claimWindow)
	return &out, nil
}

// CreateCampaign stores a new campaign. New campaigns always start active and unwon.
func (s *AdminCampaignFlowImpl) CreateCampaign(ctx context.Context, adminID uint, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignAdminDTO, error) {
	if req == nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Request body is required", ErrCampaignUpdateRequired)
	}
	if req.SponsorAmount != nil && req.SponsorAmount.IsNegative() {
		return nil, NewBusinessError("INVALID_SPONSOR_AMOUNT", "Sponsor amount must not be negative", ErrInvalidSponsorAmount)
	}

	now := s.clock.Now()
	campaign := &models.Campaign{
		UUID:               uuid.New(),
		SponsorName:        strings.TrimSpace(req.SponsorName),
		SponsorTagline:     strings.TrimSpace(req.SponsorTagline),
		SponsorWebsite:     strings.TrimSpace(req.SponsorWebsite),
		PosterURL:          strings.TrimSpace(req.PosterURL),
		SecretCode:         req.SecretCode,
		MysteryDescription: req.MysteryDescription,
		PrizeValue:         trimmedOrNil(req.PrizeValue),
		SponsorAmount:      req.SponsorAmount,
		CountdownEnd:       req.CountdownEnd.UTC(),
		IsActive:           utils.ToPtr(true),
		HasWinner:          false,
		WinnerImageURL:     trimmedOrNil(req.WinnerImageURL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to create campaign", fmt.Errorf("%w: %w", storageError(err), err))
	}

	writeAuditLog(ctx, s.auditRepo, auditEntry{
		AdminID:     &adminID,
		CampaignID:  &campaign.ID,
		Action:      models.AuditActionCampaignCreated,
		Description: fmt.Sprintf("Campaign %s created for %s", campaign.UUID, campaign.SponsorName),
		Success:     true,
	}, metadata)

	out := ToCampaignAdminDTO(*campaign, now, s.claimWindow)
	return &out, nil
}

// UpdateCampaign applies a partial update. Identity, creation time and has_winner are never changed.
func (s *AdminCampaignFlowImpl) UpdateCampaign(ctx context.Context, adminID uint, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignAdminDTO, error) {
	if req == nil || !hasCampaignChanges(req) {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_REQUIRED", "At least one field must be provided", ErrCampaignUpdateRequired)
	}
	if req.SponsorAmount != nil && req.SponsorAmount.IsNegative() {
		return nil, NewBusinessError("INVALID_SPONSOR_AMOUNT", "Sponsor amount must not be negative", ErrInvalidSponsorAmount)
	}

	campaign, err := findCampaign(ctx, s.campaignRepo, req.ID)
	if err != nil {
		return nil, err
	}

	applyCampaignChanges(campaign, req)

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
		}
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to update campaign", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	writeAuditLog(ctx, s.auditRepo, auditEntry{
		AdminID:     &adminID,
		CampaignID:  &campaign.ID,
		Action:      models.AuditActionCampaignUpdated,
		Description: fmt.Sprintf("Campaign %s updated", campaign.UUID),
		Success:     true,
		Extra:       map[string]any{"fields": changedCampaignFields(req)},
	}, metadata)

	out := ToCampaignAdminDTO(*campaign, s.clock.Now(), s.claimWindow)
	return &out, nil
}

// DeleteCampaign hard-deletes a campaign. Its winner row, if any, is kept.
func (s *AdminCampaignFlowImpl) DeleteCampaign(ctx context.Context, adminID uint, id string, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error) {
	campaign, err := findCampaign(ctx, s.campaignRepo, id)
	if err != nil {
		return nil, err
	}

	if err := s.campaignRepo.Delete(ctx, campaign.ID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
		}
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to delete campaign", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	writeAuditLog(ctx, s.auditRepo, auditEntry{
		AdminID:     &adminID,
		CampaignID:  &campaign.ID,
		Action:      models.AuditActionCampaignDeleted,
		Description: fmt.Sprintf("Campaign %s deleted", campaign.UUID),
		Success:     true,
		Extra:       map[string]any{"sponsor_name": campaign.SponsorName, "had_winner": campaign.HasWinner},
	}, metadata)

	return &dto.DeleteCampaignResponse{
		Message: "Campaign deleted successfully",
		ID:      campaign.UUID.String(),
	}, nil
}

// ListWinners lists winners with contact details and their campaign's sponsor,
// optionally limited to a won_at range
func (s *AdminCampaignFlowImpl) ListWinners(ctx context.Context, filter dto.AdminListWinnersFilter) (*dto.AdminListWinnersResponse, error) {
	page, limit, err := normalizePage(filter.Page, filter.Limit, utils.DefaultPageSize)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", err.Error(), err)
	}

	wf := models.WinnerFilter{WonAfter: filter.WonAfter, WonBefore: filter.WonBefore}
	total, err := s.winnerRepo.Count(ctx, wf)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to count winners", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	rows, err := s.winnerRepo.ListWithCampaign(ctx, wf, limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to list winners", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	items := make([]dto.WinnerAdminDTO, 0, len(rows))
	for _, w := range rows {
		items = append(items, ToWinnerAdminDTO(*w))
	}

	return &dto.AdminListWinnersResponse{
		Message:    "Winners retrieved successfully",
		Items:      items,
		Pagination: newPagination(total, page, limit),
	}, nil
}

func hasCampaignChanges(req *dto.UpdateCampaignRequest) bool {
	return len(changedCampaignFields(req)) > 0
}

func changedCampaignFields(req *dto.UpdateCampaignRequest) []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(req.SponsorName != nil, "sponsor_name")
	add(req.SponsorTagline != nil, "sponsor_tagline")
	add(req.SponsorWebsite != nil, "sponsor_website")
	add(req.PosterURL != nil, "poster_url")
	add(req.SecretCode != nil, "secret_code")
	add(req.MysteryDescription != nil, "mystery_description")
	add(req.PrizeValue != nil, "prize_value")
	add(req.SponsorAmount != nil, "sponsor_amount")
	add(req.CountdownEnd != nil, "countdown_end")
	add(req.IsActive != nil, "is_active")
	add(req.WinnerImageURL != nil, "winner_image_url")
	return fields
}

func applyCampaignChanges(c *models.Campaign, req *dto.UpdateCampaignRequest) {
	if req.SponsorName != nil {
		c.SponsorName = strings.TrimSpace(*req.SponsorName)
	}
	if req.SponsorTagline != nil {
		c.SponsorTagline = strings.TrimSpace(*req.SponsorTagline)
	}
	if req.SponsorWebsite != nil {
		c.SponsorWebsite = strings.TrimSpace(*req.SponsorWebsite)
	}
	if req.PosterURL != nil {
		c.PosterURL = strings.TrimSpace(*req.PosterURL)
	}
	if req.SecretCode != nil {
		c.SecretCode = *req.SecretCode
	}
	if req.MysteryDescription != nil {
		c.MysteryDescription = *req.MysteryDescription
	}
	if req.PrizeValue != nil {
		c.PrizeValue = trimmedOrNil(req.PrizeValue)
	}
	if req.SponsorAmount != nil {
		amount := *req.SponsorAmount
		c.SponsorAmount = &amount
	}
	if req.CountdownEnd != nil {
		c.CountdownEnd = req.CountdownEnd.UTC()
	}
	if req.IsActive != nil {
		c.IsActive = utils.ToPtr(*req.IsActive)
	}
	if req.WinnerImageURL != nil {
		c.WinnerImageURL = trimmedOrNil(req.WinnerImageURL)
	}
}

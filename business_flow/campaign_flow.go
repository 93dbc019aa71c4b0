package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
)

// CampaignFlow serves the public campaign pages and contest stats
type CampaignFlow interface {
	GetActiveCampaign(ctx context.Context) (*dto.CampaignPublicDTO, error)
	GetCampaign(ctx context.Context, id string) (*dto.CampaignPublicDTO, error)
	GetVisionStats(ctx context.Context) (*dto.VisionStatsResponse, error)
	GetTopSponsors(ctx context.Context, limit int) (*dto.TopSponsorsResponse, error)
}

// CampaignFlowImpl implements CampaignFlow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	winnerRepo   repository.WinnerRepository
	clock        utils.Clock
	claimWindow  time.Duration
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	winnerRepo repository.WinnerRepository,
	clock utils.Clock,
	claimWindow time.Duration,
) CampaignFlow {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if claimWindow <= 0 {
		claimWindow = utils.DefaultClaimWindowAfterReveal
	}
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		winnerRepo:   winnerRepo,
		clock:        clock,
		claimWindow:  claimWindow,
	}
}

// GetActiveCampaign queries the store on every call; nothing is cached between requests
func (s *CampaignFlowImpl) GetActiveCampaign(ctx context.Context) (*dto.CampaignPublicDTO, error) {
	now := s.clock.Now()

	candidates, err := s.campaignRepo.ListSelectable(ctx, now)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to load campaigns", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	selected := SelectActiveCampaign(candidates, now)
	if selected == nil {
		return nil, NewBusinessError("NO_ACTIVE_CAMPAIGN", "There is no active campaign right now", ErrNoActiveCampaign)
	}

	out := ToCampaignPublicDTO(*selected, now, s.claimWindow)
	return &out, nil
}

// GetCampaign returns the public view of a single campaign
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, id string) (*dto.CampaignPublicDTO, error) {
	campaign, err := findCampaign(ctx, s.campaignRepo, id)
	if err != nil {
		return nil, err
	}

	out := ToCampaignPublicDTO(*campaign, s.clock.Now(), s.claimWindow)
	return &out, nil
}

// GetVisionStats counts campaigns and winners and sums sponsor money
func (s *CampaignFlowImpl) GetVisionStats(ctx context.Context) (*dto.VisionStatsResponse, error) {
	campaigns, err := s.campaignRepo.Count(ctx, models.CampaignFilter{})
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to count campaigns", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	winners, err := s.winnerRepo.Count(ctx, models.WinnerFilter{})
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to count winners", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	raised, err := s.campaignRepo.SumSponsorAmount(ctx)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to sum sponsor amounts", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	return &dto.VisionStatsResponse{
		Campaigns:    campaigns,
		Winners:      winners,
		RaisedAmount: raised.Round(2),
	}, nil
}

// GetTopSponsors aggregates campaigns by sponsor name
func (s *CampaignFlowImpl) GetTopSponsors(ctx context.Context, limit int) (*dto.TopSponsorsResponse, error) {
	if limit <= 0 {
		limit = utils.DefaultTopSponsorsLimit
	}
	if limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}

	rows, err := s.campaignRepo.TopSponsors(ctx, limit)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to load sponsors", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	items := make([]dto.SponsorDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.SponsorDTO{
			SponsorName:   r.SponsorName,
			CampaignCount: r.CampaignCount,
			TotalAmount:   r.TotalAmount.Round(2),
		})
	}
	return &dto.TopSponsorsResponse{Items: items}, nil
}

// findCampaign resolves a public campaign id. Malformed ids are reported as not found.
func findCampaign(ctx context.Context, repo repository.CampaignRepository, id string) (*models.Campaign, error) {
	parsed, err := utils.ParseUUID(id)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	campaign, err := repo.ByUUID(ctx, parsed.String())
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to load campaign", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	return campaign, nil
}

package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/app/services"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
)

// ClaimObserver receives the outcome label and latency of every claim
type ClaimObserver func(outcome string, elapsed time.Duration)

// ClaimOutcomeWon labels a successful claim
const ClaimOutcomeWon = "won"

// WinnerFlow handles claims and winner lookups
type WinnerFlow interface {
	SubmitClaim(ctx context.Context, req *dto.SubmitWinnerRequest, metadata *ClientMetadata) (*dto.SubmitWinnerResponse, error)
	ListWinners(ctx context.Context, campaignID string, limit int) (*dto.ListWinnersResponse, error)
	GetCampaignWinner(ctx context.Context, campaignID string) (*dto.WinnerPublicDTO, error)
}

// WinnerFlowImpl implements WinnerFlow
type WinnerFlowImpl struct {
	campaignRepo repository.CampaignRepository
	winnerRepo   repository.WinnerRepository
	auditRepo    repository.AuditLogRepository
	txRunner     repository.TransactionRunner
	throttle     services.ClaimThrottle
	clock        utils.Clock
	claimWindow  time.Duration
	observe      ClaimObserver
}

// NewWinnerFlow creates a new winner flow instance
func NewWinnerFlow(
	campaignRepo repository.CampaignRepository,
	winnerRepo repository.WinnerRepository,
	auditRepo repository.AuditLogRepository,
	txRunner repository.TransactionRunner,
	throttle services.ClaimThrottle,
	clock utils.Clock,
	claimWindow time.Duration,
	observe ClaimObserver,
) WinnerFlow {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if claimWindow <= 0 {
		claimWindow = utils.DefaultClaimWindowAfterReveal
	}
	if throttle == nil {
		throttle = services.NoopClaimThrottle{}
	}
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &WinnerFlowImpl{
		campaignRepo: campaignRepo,
		winnerRepo:   winnerRepo,
		auditRepo:    auditRepo,
		txRunner:     txRunner,
		throttle:     throttle,
		clock:        clock,
		claimWindow:  claimWindow,
		observe:      observe,
	}
}

// SubmitClaim validates a claim and, if it is the first valid one, records the winner.
// Checks run in a fixed order and stop at the first failure: campaign exists, not yet
// won, code matches exactly, campaign active, countdown ended, claim window still open.
// The winner is committed with a compare-and-set on has_winner so concurrent valid
// claims produce exactly one winner; the losers get ALREADY_WON.
func (f *WinnerFlowImpl) SubmitClaim(ctx context.Context, req *dto.SubmitWinnerRequest, metadata *ClientMetadata) (result *dto.SubmitWinnerResponse, err error) {
	start := time.Now()
	defer func() {
		outcome := ClaimOutcomeWon
		if err != nil {
			outcome = strings.ToLower(BusinessErrorCode(err))
			if outcome == "" {
				outcome = "error"
			}
		}
		f.observe(outcome, time.Since(start))
	}()

	if req == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	campaignUUID, perr := utils.ParseUUID(req.CampaignID)
	if perr != nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	// attempts are counted per canonical id so spelling variants share one budget
	if metadata != nil {
		allowed, terr := f.throttle.Allow(ctx, metadata.IPAddress, campaignUUID.String())
		if terr != nil {
			log.Printf("claim throttle unavailable, allowing attempt: %v", terr)
		} else if !allowed {
			return nil, NewBusinessError("TOO_MANY_ATTEMPTS", "Too many claim attempts, slow down", ErrTooManyAttempts)
		}
	}

	campaign, err := f.campaignRepo.ByUUID(ctx, campaignUUID.String())
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Storage is unavailable, try again", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	now := f.clock.Now()
	if rejection := f.checkClaim(campaign, req.CodeUsed, now); rejection != nil {
		f.auditRejection(ctx, campaign, rejection, metadata)
		return nil, rejection
	}

	winner := &models.Winner{
		UUID:         uuid.New(),
		CampaignID:   campaign.ID,
		CampaignUUID: campaign.UUID,
		WinnerName:   strings.TrimSpace(req.WinnerName),
		WinnerEmail:  trimmedOrNil(req.WinnerEmail),
		WinnerPhone:  trimmedOrNil(req.WinnerPhone),
		CodeUsed:     req.CodeUsed,
		WonAt:        now,
	}

	err = f.txRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := f.campaignRepo.MarkWon(txCtx, campaign.ID); err != nil {
			return err
		}
		return f.winnerRepo.Save(txCtx, winner)
	})
	if err != nil {
		var berr *BusinessError
		if repository.IsConflict(err) {
			berr = NewBusinessError("ALREADY_WON", "This campaign already has a winner", fmt.Errorf("%w: %w", ErrStorageConflict, err))
		} else {
			berr = NewBusinessError("STORAGE_UNAVAILABLE", "Storage is unavailable, try again", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
		}
		f.auditRejection(ctx, campaign, berr, metadata)
		return nil, berr
	}

	writeAuditLog(ctx, f.auditRepo, auditEntry{
		CampaignID:  &campaign.ID,
		Action:      models.AuditActionWinnerClaimed,
		Description: fmt.Sprintf("Campaign %s won by %s", campaign.UUID, winner.WinnerName),
		Success:     true,
		Extra:       map[string]any{"winner_uuid": winner.UUID.String()},
	}, metadata)

	return &dto.SubmitWinnerResponse{
		Message: "Congratulations, you won!",
		Winner:  ToWinnerPublicDTO(*winner),
	}, nil
}

// checkClaim applies the claim rules to the stored campaign
func (f *WinnerFlowImpl) checkClaim(campaign *models.Campaign, code string, now time.Time) *BusinessError {
	if campaign.HasWinner {
		return NewBusinessError("ALREADY_WON", "This campaign already has a winner", ErrAlreadyWon)
	}
	if code != campaign.SecretCode {
		return NewBusinessError("CODE_MISMATCH", "The secret code is incorrect", ErrCodeMismatch)
	}
	if !campaign.Active() {
		return NewBusinessError("CAMPAIGN_INACTIVE", "This campaign is not active", ErrCampaignInactive)
	}

	switch EvaluatePhase(campaign, now, f.claimWindow) {
	case models.CampaignPhasePending:
		return NewBusinessError("CLAIM_NOT_OPEN", "The code has not been revealed yet", ErrClaimNotOpen)
	case models.CampaignPhaseExpired:
		return NewBusinessError("CLAIM_WINDOW_EXPIRED", "The claim window for this campaign has closed", ErrClaimWindowExpired)
	case models.CampaignPhaseAlreadyWon:
		return NewBusinessError("ALREADY_WON", "This campaign already has a winner", ErrAlreadyWon)
	}
	return nil
}

func (f *WinnerFlowImpl) auditRejection(ctx context.Context, campaign *models.Campaign, rejection *BusinessError, metadata *ClientMetadata) {
	errMsg := rejection.Error()
	writeAuditLog(ctx, f.auditRepo, auditEntry{
		CampaignID:  &campaign.ID,
		Action:      models.AuditActionClaimRejected,
		Description: fmt.Sprintf("Claim on campaign %s rejected: %s", campaign.UUID, rejection.Code),
		Success:     false,
		ErrorMsg:    &errMsg,
	}, metadata)
}

// ListWinners lists winners newest first, optionally for one campaign
func (f *WinnerFlowImpl) ListWinners(ctx context.Context, campaignID string, limit int) (*dto.ListWinnersResponse, error) {
	if limit <= 0 || limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}

	filter := models.WinnerFilter{}
	if strings.TrimSpace(campaignID) != "" {
		parsed, err := utils.ParseUUID(campaignID)
		if err != nil {
			return nil, NewBusinessError("INVALID_CAMPAIGN_ID", "Campaign id must be a UUID", ErrInvalidCampaignID)
		}
		filter.CampaignUUID = &parsed
	}

	winners, err := f.winnerRepo.ByFilter(ctx, filter, "won_at DESC, id DESC", limit, 0)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to list winners", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	items := make([]dto.WinnerPublicDTO, 0, len(winners))
	for _, w := range winners {
		items = append(items, ToWinnerPublicDTO(*w))
	}
	return &dto.ListWinnersResponse{Items: items}, nil
}

// GetCampaignWinner returns the winner of a campaign. Winners of deleted campaigns are still found.
func (f *WinnerFlowImpl) GetCampaignWinner(ctx context.Context, campaignID string) (*dto.WinnerPublicDTO, error) {
	parsed, err := utils.ParseUUID(campaignID)
	if err != nil {
		return nil, NewBusinessError("WINNER_NOT_FOUND", "Winner not found", ErrWinnerNotFound)
	}

	winner, err := f.winnerRepo.ByCampaignUUID(ctx, parsed)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to load winner", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}
	if winner == nil {
		return nil, NewBusinessError("WINNER_NOT_FOUND", "Winner not found", ErrWinnerNotFound)
	}

	out := ToWinnerPublicDTO(*winner)
	return &out, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

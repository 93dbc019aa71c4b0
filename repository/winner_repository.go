package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WinnerRepositoryImpl implements WinnerRepository interface
type WinnerRepositoryImpl struct {
	*BaseRepository[models.Winner, models.WinnerFilter]
}

// NewWinnerRepository creates a new winner repository
func NewWinnerRepository(db *gorm.DB) WinnerRepository {
	return &WinnerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Winner, models.WinnerFilter](db),
	}
}

func (r *WinnerRepositoryImpl) first(ctx context.Context, filter models.WinnerFilter) (*models.Winner, error) {
	winners, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(winners) == 0 {
		return nil, nil
	}
	return winners[0], nil
}

// ByUUID retrieves a winner by UUID
func (r *WinnerRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Winner, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	return r.first(ctx, models.WinnerFilter{UUID: &parsedUUID})
}

// ByCampaignID retrieves the winner of a campaign
func (r *WinnerRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint) (*models.Winner, error) {
	return r.first(ctx, models.WinnerFilter{CampaignID: &campaignID})
}

// ByCampaignUUID retrieves the winner of a campaign by the campaign's UUID
func (r *WinnerRepositoryImpl) ByCampaignUUID(ctx context.Context, campaignUUID uuid.UUID) (*models.Winner, error) {
	return r.first(ctx, models.WinnerFilter{CampaignUUID: &campaignUUID})
}

// ListWithCampaign lists winners newest first along with the sponsor of each campaign
func (r *WinnerRepositoryImpl) ListWithCampaign(ctx context.Context, filter models.WinnerFilter, limit, offset int) ([]*models.WinnerWithCampaign, error) {
	db := r.getDB(ctx)

	query := db.Table("winners AS w").
		Select("w.*, c.sponsor_name AS sponsor_name, c.prize_value AS prize_value").
		Joins("LEFT JOIN campaigns AS c ON c.id = w.campaign_id")
	query = r.applyFilter(query, filter, "w.").Order("w.won_at DESC, w.id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.WinnerWithCampaign
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list winners with campaign: %w", err)
	}

	return rows, nil
}

// applyFilter applies filter criteria to a GORM query. col qualifies column names
// when the winners table is aliased.
func (r *WinnerRepositoryImpl) applyFilter(query *gorm.DB, filter models.WinnerFilter, col string) *gorm.DB {
	if filter.UUID != nil {
		query = query.Where(col+"uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		query = query.Where(col+"campaign_id = ?", *filter.CampaignID)
	}
	if filter.CampaignUUID != nil {
		query = query.Where(col+"campaign_uuid = ?", *filter.CampaignUUID)
	}
	if filter.WonAfter != nil {
		query = query.Where(col+"won_at >= ?", *filter.WonAfter)
	}
	if filter.WonBefore != nil {
		query = query.Where(col+"won_at < ?", *filter.WonBefore)
	}
	return query
}

// ByFilter retrieves winners based on filter criteria
func (r *WinnerRepositoryImpl) ByFilter(ctx context.Context, filter models.WinnerFilter, orderBy string, limit, offset int) ([]*models.Winner, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Winner{}), filter, "")

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var winners []*models.Winner
	if err := query.Find(&winners).Error; err != nil {
		return nil, fmt.Errorf("failed to find winners by filter: %w", err)
	}

	return winners, nil
}

// Count returns the number of winners matching the filter
func (r *WinnerRepositoryImpl) Count(ctx context.Context, filter models.WinnerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Winner{}), filter, "")

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count winners: %w", err)
	}

	return count, nil
}

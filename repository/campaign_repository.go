// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// campaignEditableColumns lists the columns an admin update may write
var campaignEditableColumns = []string{
	"sponsor_name",
	"sponsor_tagline",
	"sponsor_website",
	"poster_url",
	"secret_code",
	"mystery_description",
	"prize_value",
	"sponsor_amount",
	"countdown_end",
	"is_active",
	"winner_image_url",
	"updated_at",
}

// CampaignRepositoryImpl implements CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// ByUUID retrieves a campaign by UUID
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	campaigns, err := r.ByFilter(ctx, models.CampaignFilter{UUID: &parsedUUID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return nil, nil
	}

	return campaigns[0], nil
}

// ListSelectable returns every campaign that may be offered as the active one at now
func (r *CampaignRepositoryImpl) ListSelectable(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
	err := db.Where("is_active = ? AND has_winner = ? AND countdown_end > ?", true, false, now.UTC()).
		Order("created_at DESC, id DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list selectable campaigns: %w", err)
	}

	return campaigns, nil
}

// Update persists the admin-editable columns of campaign
func (r *CampaignRepositoryImpl) Update(ctx context.Context, campaign *models.Campaign) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				err = db.Commit().Error
			}
		}()
	}

	campaign.UpdatedAt = utils.UTCNow()

	res := db.Model(&models.Campaign{ID: campaign.ID}).
		Select(campaignEditableColumns).
		Updates(campaign)
	if res.Error != nil {
		err = fmt.Errorf("failed to update campaign %d: %w", campaign.ID, res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = ErrNoRowsAffected
		return err
	}

	return nil
}

// Delete hard-deletes a campaign. Winner rows are kept.
func (r *CampaignRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	res := db.Delete(&models.Campaign{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete campaign %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

// MarkWon is the compare-and-set that decides the single winner of a campaign
func (r *CampaignRepositoryImpl) MarkWon(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	res := db.Model(&models.Campaign{}).
		Where("id = ? AND has_winner = ?", id, false).
		Updates(map[string]any{
			"has_winner": true,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark campaign %d as won: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}

	return nil
}

// SumSponsorAmount totals sponsor_amount over all campaigns
func (r *CampaignRepositoryImpl) SumSponsorAmount(ctx context.Context) (decimal.Decimal, error) {
	db := r.getDB(ctx)

	var total decimal.Decimal
	err := db.Model(&models.Campaign{}).
		Select("COALESCE(SUM(sponsor_amount), 0)").
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sponsor amounts: %w", err)
	}

	return total, nil
}

// TopSponsors groups campaigns by sponsor and orders them by total amount
func (r *CampaignRepositoryImpl) TopSponsors(ctx context.Context, limit int) ([]models.SponsorTotal, error) {
	db := r.getDB(ctx)

	if limit <= 0 {
		limit = utils.DefaultTopSponsorsLimit
	}

	var rows []models.SponsorTotal
	err := db.Model(&models.Campaign{}).
		Select("sponsor_name, COUNT(*) AS campaign_count, COALESCE(SUM(sponsor_amount), 0) AS total_amount").
		Group("sponsor_name").
		Order("total_amount DESC, campaign_count DESC, sponsor_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top sponsors: %w", err)
	}

	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CampaignRepositoryImpl) applyFilter(query *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.HasWinner != nil {
		query = query.Where("has_winner = ?", *filter.HasWinner)
	}
	if filter.CountdownEndsAfter != nil {
		query = query.Where("countdown_end > ?", *filter.CountdownEndsAfter)
	}
	if filter.CountdownEndsBy != nil {
		query = query.Where("countdown_end <= ?", *filter.CountdownEndsBy)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Campaign{})

	query = r.applyFilter(query, filter)

	// Apply ordering (default to id DESC)
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

	var campaigns []*models.Campaign
	err := query.Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find campaigns by filter: %w", err)
	}

	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	return count, nil
}

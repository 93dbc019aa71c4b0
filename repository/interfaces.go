// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/countdown-contest/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	// ListSelectable returns active, unwon campaigns whose countdown ends after now, newest first
	ListSelectable(ctx context.Context, now time.Time) ([]*models.Campaign, error)
	// Update writes every admin-editable column. has_winner, uuid and created_at are never written.
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id uint) error
	// MarkWon flips has_winner from false to true. It returns ErrConcurrentUpdate when
	// the campaign is already won or gone.
	MarkWon(ctx context.Context, id uint) error
	SumSponsorAmount(ctx context.Context) (decimal.Decimal, error)
	TopSponsors(ctx context.Context, limit int) ([]models.SponsorTotal, error)
}

// WinnerRepository defines operations for winners
type WinnerRepository interface {
	Repository[models.Winner, models.WinnerFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Winner, error)
	ByCampaignID(ctx context.Context, campaignID uint) (*models.Winner, error)
	ByCampaignUUID(ctx context.Context, campaignUUID uuid.UUID) (*models.Winner, error)
	// ListWithCampaign lists winners newest first joined with their campaign's sponsor fields
	ListWithCampaign(ctx context.Context, filter models.WinnerFilter, limit, offset int) ([]*models.WinnerWithCampaign, error)
}

// AdminRepository defines operations for admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	Exists(ctx context.Context, filter models.AdminFilter) (bool, error)
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAdmin(ctx context.Context, adminID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

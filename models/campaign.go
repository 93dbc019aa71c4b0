// Package models contains domain entities for the countdown contest
package models

import (
	"time"

	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignPhase is the lifecycle phase of a campaign at a given instant
type CampaignPhase string

const (
	CampaignPhasePending    CampaignPhase = "pending"
	CampaignPhaseRevealed   CampaignPhase = "revealed"
	CampaignPhaseExpired    CampaignPhase = "expired"
	CampaignPhaseAlreadyWon CampaignPhase = "already_won"
)

// String returns the string representation of the phase
func (p CampaignPhase) String() string {
	return string(p)
}

// Valid checks if the phase is one of the known values
func (p CampaignPhase) Valid() bool {
	switch p {
	case CampaignPhasePending, CampaignPhaseRevealed, CampaignPhaseExpired, CampaignPhaseAlreadyWon:
		return true
	default:
		return false
	}
}

// Campaign is a sponsor's time-boxed contest around a poster, a countdown and a secret code
type Campaign struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	UUID               uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	SponsorName        string           `gorm:"size:255;not null;index:idx_campaigns_sponsor_name" json:"sponsor_name"`
	SponsorTagline     string           `gorm:"size:512;not null" json:"sponsor_tagline"`
	SponsorWebsite     string           `gorm:"size:1024;not null" json:"sponsor_website"`
	PosterURL          string           `gorm:"size:2048;not null" json:"poster_url"`
	SecretCode         string           `gorm:"size:255;not null" json:"-"`
	MysteryDescription string           `gorm:"type:text;not null" json:"mystery_description"`
	PrizeValue         *string          `gorm:"size:255" json:"prize_value,omitempty"`
	SponsorAmount      *decimal.Decimal `gorm:"type:numeric(18,2)" json:"sponsor_amount,omitempty"`
	CountdownEnd       time.Time        `gorm:"not null;index:idx_campaigns_countdown_end" json:"countdown_end"`
	IsActive           *bool            `gorm:"not null;default:true;index:idx_campaigns_is_active" json:"is_active"`
	HasWinner          bool             `gorm:"not null;default:false;index:idx_campaigns_has_winner" json:"has_winner"`
	WinnerImageURL     *string          `gorm:"size:2048" json:"winner_image_url,omitempty"`
	CreatedAt          time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	now := utils.UTCNow()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = utils.UTCNow()
	return nil
}

// Active reports the admin-controlled active flag
func (c *Campaign) Active() bool {
	return utils.IsTrue(c.IsActive)
}

// IsSelectableAt reports whether c may be offered as the active campaign at now
func (c *Campaign) IsSelectableAt(now time.Time) bool {
	return c.Active() && !c.HasWinner && c.CountdownEnd.After(now)
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	UUID               *uuid.UUID
	IsActive           *bool
	HasWinner          *bool
	CountdownEndsAfter *time.Time // countdown_end > t
	CountdownEndsBy    *time.Time // countdown_end <= t
	CreatedAfter       *time.Time // created_at >= t
	CreatedBefore      *time.Time // created_at < t
}

// SponsorTotal aggregates campaigns per sponsor
type SponsorTotal struct {
	SponsorName   string          `json:"sponsor_name"`
	CampaignCount int64           `json:"campaign_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

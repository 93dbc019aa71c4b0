package models

import (
	"time"

	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Winner records the single successful claim of a campaign. Rows are immutable and
// outlive the campaign they reference.
type Winner struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_winners_uuid" json:"uuid"`
	CampaignID   uint      `gorm:"not null;uniqueIndex:uk_winners_campaign_id" json:"campaign_id"`
	CampaignUUID uuid.UUID `gorm:"type:uuid;not null;index:idx_winners_campaign_uuid" json:"campaign_uuid"`
	WinnerName   string    `gorm:"size:255;not null" json:"winner_name"`
	WinnerEmail  *string   `gorm:"size:255" json:"winner_email,omitempty"`
	WinnerPhone  *string   `gorm:"size:64" json:"winner_phone,omitempty"`
	CodeUsed     string    `gorm:"size:255;not null" json:"code_used"`
	WonAt        time.Time `gorm:"not null;index:idx_winners_won_at" json:"won_at"`
}

// TableName returns the table name for the model
func (Winner) TableName() string {
	return "winners"
}

// BeforeCreate is called before creating a new record
func (w *Winner) BeforeCreate(tx *gorm.DB) error {
	if w.UUID == uuid.Nil {
		w.UUID = uuid.New()
	}
	if w.WonAt.IsZero() {
		w.WonAt = utils.UTCNow()
	}
	return nil
}

// WinnerFilter represents filter criteria for winner queries
type WinnerFilter struct {
	UUID         *uuid.UUID
	CampaignID   *uint
	CampaignUUID *uuid.UUID
	WonAfter     *time.Time // won_at >= t
	WonBefore    *time.Time // won_at < t
}

// WinnerWithCampaign joins a winner with the sponsor fields of its campaign. Sponsor
// fields are nil when the campaign has since been deleted.
type WinnerWithCampaign struct {
	Winner
	SponsorName *string `gorm:"column:sponsor_name"`
	PrizeValue  *string `gorm:"column:prize_value"`
}

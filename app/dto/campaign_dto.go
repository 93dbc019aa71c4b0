package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignPublicDTO is the campaign as shown to visitors. SecretCode is only set once
// the countdown has ended.
type CampaignPublicDTO struct {
	ID                 string    `json:"id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	SponsorName        string    `json:"sponsor_name" example:"TechFlow Pro"`
	SponsorTagline     string    `json:"sponsor_tagline"`
	SponsorWebsite     string    `json:"sponsor_website"`
	PosterURL          string    `json:"poster_url"`
	MysteryDescription string    `json:"mystery_description"`
	PrizeValue         *string   `json:"prize_value,omitempty" example:"$200+"`
	CountdownEnd       time.Time `json:"countdown_end"`
	ClaimWindowEndsAt  time.Time `json:"claim_window_ends_at"`
	IsActive           bool      `json:"is_active"`
	HasWinner          bool      `json:"has_winner"`
	WinnerImageURL     *string   `json:"winner_image_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	Phase              string    `json:"phase" example:"pending"`
	SecondsUntilReveal int64     `json:"seconds_until_reveal" example:"2700"`
	SecretCode         *string   `json:"secret_code,omitempty"`
}

// CampaignAdminDTO is the full campaign including the secret code
type CampaignAdminDTO struct {
	ID                 string           `json:"id"`
	InternalID         uint             `json:"internal_id"`
	SponsorName        string           `json:"sponsor_name"`
	SponsorTagline     string           `json:"sponsor_tagline"`
	SponsorWebsite     string           `json:"sponsor_website"`
	PosterURL          string           `json:"poster_url"`
	SecretCode         string           `json:"secret_code"`
	MysteryDescription string           `json:"mystery_description"`
	PrizeValue         *string          `json:"prize_value,omitempty"`
	SponsorAmount      *decimal.Decimal `json:"sponsor_amount,omitempty" swaggertype:"string" example:"1500.00"`
	CountdownEnd       time.Time        `json:"countdown_end"`
	IsActive           bool             `json:"is_active"`
	HasWinner          bool             `json:"has_winner"`
	WinnerImageURL     *string          `json:"winner_image_url,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Phase              string           `json:"phase"`
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	SponsorName        string           `json:"sponsor_name" validate:"required,min=1,max=255"`
	SponsorTagline     string           `json:"sponsor_tagline" validate:"max=512"`
	SponsorWebsite     string           `json:"sponsor_website" validate:"omitempty,url,max=1024"`
	PosterURL          string           `json:"poster_url" validate:"required,url,max=2048"`
	SecretCode         string           `json:"secret_code" validate:"required,min=1,max=255"`
	MysteryDescription string           `json:"mystery_description" validate:"max=4000"`
	PrizeValue         *string          `json:"prize_value,omitempty" validate:"omitempty,max=255"`
	SponsorAmount      *decimal.Decimal `json:"sponsor_amount,omitempty" swaggertype:"string"`
	CountdownEnd       time.Time        `json:"countdown_end" validate:"required"`
	WinnerImageURL     *string          `json:"winner_image_url,omitempty" validate:"omitempty,url,max=2048"`
}

// UpdateCampaignRequest is a partial update; nil fields are left unchanged
type UpdateCampaignRequest struct {
	ID                 string           `json:"-"`
	SponsorName        *string          `json:"sponsor_name,omitempty" validate:"omitempty,min=1,max=255"`
	SponsorTagline     *string          `json:"sponsor_tagline,omitempty" validate:"omitempty,max=512"`
	SponsorWebsite     *string          `json:"sponsor_website,omitempty" validate:"omitempty,url,max=1024"`
	PosterURL          *string          `json:"poster_url,omitempty" validate:"omitempty,url,max=2048"`
	SecretCode         *string          `json:"secret_code,omitempty" validate:"omitempty,min=1,max=255"`
	MysteryDescription *string          `json:"mystery_description,omitempty" validate:"omitempty,max=4000"`
	PrizeValue         *string          `json:"prize_value,omitempty" validate:"omitempty,max=255"`
	SponsorAmount      *decimal.Decimal `json:"sponsor_amount,omitempty" swaggertype:"string"`
	CountdownEnd       *time.Time       `json:"countdown_end,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	WinnerImageURL     *string          `json:"winner_image_url,omitempty" validate:"omitempty,url,max=2048"`
}

// DeleteCampaignResponse confirms a deletion
type DeleteCampaignResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// AdminListCampaignsFilter represents optional filters of the admin campaign list
type AdminListCampaignsFilter struct {
	IsActive      *bool      `json:"is_active,omitempty"`
	HasWinner     *bool      `json:"has_winner,omitempty"`
	Phase         string     `json:"phase,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
	Page          int        `json:"page"`
	Limit         int        `json:"limit"`
}

// AdminListCampaignsResponse represents a paginated list of campaigns
type AdminListCampaignsResponse struct {
	Message    string             `json:"message"`
	Items      []CampaignAdminDTO `json:"items"`
	Pagination PaginationInfo     `json:"pagination"`
}

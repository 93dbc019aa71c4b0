package dto

import (
	"time"
)

// SubmitWinnerRequest is a visitor's claim on a campaign
type SubmitWinnerRequest struct {
	CampaignID  string  `json:"campaign_id" validate:"required,uuid"`
	WinnerName  string  `json:"winner_name" validate:"required,min=1,max=255"`
	WinnerEmail *string `json:"winner_email,omitempty" validate:"omitempty,email,max=255"`
	WinnerPhone *string `json:"winner_phone,omitempty" validate:"omitempty,min=3,max=64"`
	CodeUsed    string  `json:"code_used" validate:"max=255"`
}

// WinnerPublicDTO omits contact details
type WinnerPublicDTO struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	WinnerName string    `json:"winner_name"`
	WonAt      time.Time `json:"won_at"`
}

// WinnerAdminDTO carries contact details and the campaign's sponsor
type WinnerAdminDTO struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaign_id"`
	WinnerName  string    `json:"winner_name"`
	WinnerEmail *string   `json:"winner_email,omitempty"`
	WinnerPhone *string   `json:"winner_phone,omitempty"`
	CodeUsed    string    `json:"code_used"`
	WonAt       time.Time `json:"won_at"`
	SponsorName *string   `json:"sponsor_name,omitempty"`
	PrizeValue  *string   `json:"prize_value,omitempty"`
}

// SubmitWinnerResponse is returned on a successful claim
type SubmitWinnerResponse struct {
	Message string          `json:"message"`
	Winner  WinnerPublicDTO `json:"winner"`
}

// ListWinnersResponse lists winners for the public endpoint
type ListWinnersResponse struct {
	Items []WinnerPublicDTO `json:"items"`
}

// AdminListWinnersFilter represents optional filters of the admin winner list
type AdminListWinnersFilter struct {
	WonAfter  *time.Time `json:"won_after,omitempty"`
	WonBefore *time.Time `json:"won_before,omitempty"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}

// AdminListWinnersResponse lists winners with contact details
type AdminListWinnersResponse struct {
	Message    string           `json:"message"`
	Items      []WinnerAdminDTO `json:"items"`
	Pagination PaginationInfo   `json:"pagination"`
}

// WinnersExport is a generated workbook
type WinnersExport struct {
	FileName  string `json:"file_name"`
	Rows      int    `json:"rows"`
	ObjectURL string `json:"object_url,omitempty"`
	Content   []byte `json:"-"`
}

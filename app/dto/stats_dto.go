package dto

import "github.com/shopspring/decimal"

// VisionStatsResponse summarises the contest for the public vision page
type VisionStatsResponse struct {
	Campaigns    int64           `json:"campaigns" example:"12"`
	Winners      int64           `json:"winners" example:"9"`
	RaisedAmount decimal.Decimal `json:"raised_amount" swaggertype:"string" example:"4200.00"`
}

// SponsorDTO aggregates the campaigns of one sponsor
type SponsorDTO struct {
	SponsorName   string          `json:"sponsor_name"`
	CampaignCount int64           `json:"campaign_count"`
	TotalAmount   decimal.Decimal `json:"total_amount" swaggertype:"string"`
}

// TopSponsorsResponse lists sponsors by total amount
type TopSponsorsResponse struct {
	Items []SponsorDTO `json:"items"`
}

package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CampaignOption tweaks a fixture campaign before it is inserted
type CampaignOption func(*models.Campaign)

func WithCountdownEnd(t time.Time) CampaignOption {
	return func(c *models.Campaign) { c.CountdownEnd = t }
}

func WithSponsor(name string, amount int64) CampaignOption {
	return func(c *models.Campaign) {
		c.SponsorName = name
		c.SponsorAmount = utils.ToPtr(decimal.NewFromInt(amount))
	}
}

func WithSecretCode(code string) CampaignOption {
	return func(c *models.Campaign) { c.SecretCode = code }
}

func Inactive() CampaignOption {
	return func(c *models.Campaign) { c.IsActive = utils.ToPtr(false) }
}

// CreateTestCampaign inserts an active campaign whose countdown ends in one hour
func (tf *TestFixtures) CreateTestCampaign(opts ...CampaignOption) (*models.Campaign, error) {
	suffix := rand.Intn(1000000)
	campaign := &models.Campaign{
		SponsorName:        fmt.Sprintf("Sponsor %06d", suffix),
		SponsorTagline:     "Tagline",
		SponsorWebsite:     "https://example.com",
		PosterURL:          "https://cdn.example.com/poster.png",
		SecretCode:         "SECRET123",
		MysteryDescription: "Be the first to say the code",
		PrizeValue:         utils.ToPtr("$100"),
		CountdownEnd:       utils.UTCNow().Add(time.Hour),
		IsActive:           utils.ToPtr(true),
	}
	for _, opt := range opts {
		opt(campaign)
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestWinner records a winner for campaign without touching has_winner
func (tf *TestFixtures) CreateTestWinner(campaign *models.Campaign, name string) (*models.Winner, error) {
	winner := &models.Winner{
		CampaignID:   campaign.ID,
		CampaignUUID: campaign.UUID,
		WinnerName:   name,
		CodeUsed:     campaign.SecretCode,
	}
	if err := tf.DB.DB.Create(winner).Error; err != nil {
		return nil, fmt.Errorf("failed to create test winner: %w", err)
	}
	return winner, nil
}

// CreateTestAdmin inserts an active admin whose password is TestPass123!
func (tf *TestFixtures) CreateTestAdmin(username string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// CreateTestAuditLog inserts an audit log entry
func (tf *TestFixtures) CreateTestAuditLog(adminID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test audit log for action: %s", action)
	entry := &models.AuditLog{
		AdminID:     adminID,
		Action:      action,
		Description: &description,
		IPAddress:   utils.ToPtr("127.0.0.1"),
		UserAgent:   utils.ToPtr("Test User Agent"),
		Success:     utils.ToPtr(success),
	}
	if !success {
		entry.ErrorMessage = utils.ToPtr("Test error message")
	}

	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}
	return entry, nil
}

package businessflow

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
)

// ClientMetadata holds client information for audit logging and throttling
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToCampaignPublicDTO renders the visitor view of c at now
func ToCampaignPublicDTO(c models.Campaign, now time.Time, claimWindow time.Duration) dto.CampaignPublicDTO {
	out := dto.CampaignPublicDTO{
		ID:                 c.UUID.String(),
		SponsorName:        c.SponsorName,
		SponsorTagline:     c.SponsorTagline,
		SponsorWebsite:     c.SponsorWebsite,
		PosterURL:          c.PosterURL,
		MysteryDescription: c.MysteryDescription,
		PrizeValue:         c.PrizeValue,
		CountdownEnd:       c.CountdownEnd.UTC(),
		ClaimWindowEndsAt:  c.CountdownEnd.Add(claimWindow).UTC(),
		IsActive:           c.Active(),
		HasWinner:          c.HasWinner,
		WinnerImageURL:     c.WinnerImageURL,
		CreatedAt:          c.CreatedAt.UTC(),
		Phase:              EvaluatePhase(&c, now, claimWindow).String(),
		SecondsUntilReveal: SecondsUntilReveal(&c, now),
	}
	if IsRevealed(&c, now) {
		out.SecretCode = utils.ToPtr(c.SecretCode)
	}
	return out
}

// ToCampaignAdminDTO renders every field of c
func ToCampaignAdminDTO(c models.Campaign, now time.Time, claimWindow time.Duration) dto.CampaignAdminDTO {
	return dto.CampaignAdminDTO{
		ID:                 c.UUID.String(),
		InternalID:         c.ID,
		SponsorName:        c.SponsorName,
		SponsorTagline:     c.SponsorTagline,
		SponsorWebsite:     c.SponsorWebsite,
		PosterURL:          c.PosterURL,
		SecretCode:         c.SecretCode,
		MysteryDescription: c.MysteryDescription,
		PrizeValue:         c.PrizeValue,
		SponsorAmount:      c.SponsorAmount,
		CountdownEnd:       c.CountdownEnd.UTC(),
		IsActive:           c.Active(),
		HasWinner:          c.HasWinner,
		WinnerImageURL:     c.WinnerImageURL,
		CreatedAt:          c.CreatedAt.UTC(),
		UpdatedAt:          c.UpdatedAt.UTC(),
		Phase:              EvaluatePhase(&c, now, claimWindow).String(),
	}
}

func ToWinnerPublicDTO(w models.Winner) dto.WinnerPublicDTO {
	return dto.WinnerPublicDTO{
		ID:         w.UUID.String(),
		CampaignID: w.CampaignUUID.String(),
		WinnerName: w.WinnerName,
		WonAt:      w.WonAt.UTC(),
	}
}

func ToWinnerAdminDTO(w models.WinnerWithCampaign) dto.WinnerAdminDTO {
	return dto.WinnerAdminDTO{
		ID:          w.UUID.String(),
		CampaignID:  w.CampaignUUID.String(),
		WinnerName:  w.WinnerName,
		WinnerEmail: w.WinnerEmail,
		WinnerPhone: w.WinnerPhone,
		CodeUsed:    w.CodeUsed,
		WonAt:       w.WonAt.UTC(),
		SponsorName: w.SponsorName,
		PrizeValue:  w.PrizeValue,
	}
}

func ToAdminDTOModel(a models.Admin) dto.AdminDTO {
	out := dto.AdminDTO{
		ID:        a.ID,
		UUID:      a.UUID.String(),
		Username:  a.Username,
		IsActive:  a.IsActive,
		CreatedAt: utils.FormatRFC3339(a.CreatedAt),
	}
	if a.LastLoginAt != nil {
		out.LastLoginAt = utils.ToPtr(utils.FormatRFC3339(*a.LastLoginAt))
	}
	return out
}

func ToAdminSessionDTO(accessToken, refreshToken string, accessTTL time.Duration) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessTTL.Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    utils.UTCNowRFC3339(),
	}
}

func newPagination(total int64, page, limit int) dto.PaginationInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return dto.PaginationInfo{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// normalizePage applies defaults to page and limit and rejects out of range values
func normalizePage(page, limit, defaultLimit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if limit < 1 || limit > utils.MaxPageSize {
		return 0, 0, ErrInvalidPageSize
	}
	return page, limit, nil
}

// storageError classifies a repository error for callers
func storageError(err error) error {
	if repository.IsConflict(err) {
		return ErrStorageConflict
	}
	return ErrStorageUnavailable
}

// auditEntry describes a single audit log row
type auditEntry struct {
	AdminID     *uint
	CampaignID  *uint
	Action      string
	Description string
	Success     bool
	ErrorMsg    *string
	Extra       map[string]any
}

// writeAuditLog persists an audit row. Failures are logged and never returned.
func writeAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, entry auditEntry, metadata *ClientMetadata) {
	if auditRepo == nil {
		return
	}

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AdminID:      entry.AdminID,
		CampaignID:   entry.CampaignID,
		Action:       entry.Action,
		Description:  &entry.Description,
		Success:      utils.ToPtr(entry.Success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: entry.ErrorMsg,
	}

	extra := make(map[string]any, len(entry.Extra))
	if metadata != nil {
		for k, v := range metadata.Additional {
			extra[k] = v
		}
	}
	for k, v := range entry.Extra {
		extra[k] = v
	}
	if len(extra) > 0 {
		if raw, err := json.Marshal(extra); err == nil {
			audit.Metadata = raw
		}
	}

	// Extract request ID from context if available
	if requestID, ok := ctx.Value(utils.RequestIDKey).(string); ok && requestID != "" {
		audit.RequestID = &requestID
	} else if metadata != nil && metadata.RequestID != "" {
		audit.RequestID = utils.ToPtr(metadata.RequestID)
	}

	// The audit row is written outside the caller's transaction.
	if err := auditRepo.Save(context.WithoutCancel(withoutTx(ctx)), audit); err != nil {
		log.Printf("failed to write audit log %s: %v", entry.Action, err)
	}
}

// withoutTx drops a transaction carried by ctx
func withoutTx(ctx context.Context) context.Context {
	if ctx.Value(repository.TxContextKey) == nil {
		return ctx
	}
	return context.WithValue(ctx, repository.TxContextKey, nil)
}

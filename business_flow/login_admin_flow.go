package businessflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/app/services"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthFlow represents the admin authentication flow used by handlers
type AdminAuthFlow interface {
	InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error)
	Verify(ctx context.Context, req *dto.AdminCaptchaVerifyRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Refresh(ctx context.Context, req *dto.AdminRefreshRequest) (*dto.AdminSessionDTO, error)
	Logout(ctx context.Context, adminID uint, accessToken string, metadata *ClientMetadata) (*dto.AdminLogoutResponse, error)
}

// AdminAuthFlowImpl provides captcha-init, admin credential verification and logout
type AdminAuthFlowImpl struct {
	adminRepo      repository.AdminRepository
	auditRepo      repository.AuditLogRepository
	tokenService   services.TokenService
	captchaSvc     services.CaptchaService
	accessTokenTTL time.Duration
}

func NewAdminAuthFlow(
	adminRepo repository.AdminRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
	accessTokenTTL time.Duration,
) AdminAuthFlow {
	if accessTokenTTL <= 0 {
		accessTokenTTL = utils.AccessTokenTTL
	}
	return &AdminAuthFlowImpl{
		adminRepo:      adminRepo,
		auditRepo:      auditRepo,
		tokenService:   tokenService,
		captchaSvc:     captchaSvc,
		accessTokenTTL: accessTokenTTL,
	}
}

func (af *AdminAuthFlowImpl) InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewBusinessError("CAPTCHA_NOT_AVAILABLE", "Captcha service not available", ErrCacheNotAvailable)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_INIT_FAILED", "Failed to initialize captcha", err)
	}
	return &dto.AdminCaptchaInitResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
	}, nil
}

func (af *AdminAuthFlowImpl) Verify(ctx context.Context, req *dto.AdminCaptchaVerifyRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	if req == nil || len(req.Username) == 0 || len(req.Password) == 0 {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrIncorrectPassword)
	}
	if len(req.ChallengeID) == 0 {
		return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha challenge missing", ErrInvalidCaptcha)
	}

	// Verify captcha first
	if af.captchaSvc == nil || !af.captchaSvc.VerifyRotate(ctx, req.ChallengeID, req.UserAngle) {
		af.auditLoginFailure(ctx, nil, req.Username, "captcha rejected", metadata)
		return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha validation failed", ErrInvalidCaptcha)
	}

	admin, err := af.adminRepo.ByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}
	if admin == nil {
		af.auditLoginFailure(ctx, nil, req.Username, "unknown username", metadata)
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		af.auditLoginFailure(ctx, &admin.ID, req.Username, "inactive admin", metadata)
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		af.auditLoginFailure(ctx, &admin.ID, req.Username, "incorrect password", metadata)
		return nil, NewBusinessError("ADMIN_INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := af.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	now := utils.UTCNow()
	if err := af.adminRepo.UpdateLastLogin(ctx, admin.ID, now); err == nil {
		admin.LastLoginAt = &now
	}

	writeAuditLog(ctx, af.auditRepo, auditEntry{
		AdminID:     &admin.ID,
		Action:      models.AuditActionAdminLoginSuccess,
		Description: fmt.Sprintf("Admin %s logged in", admin.Username),
		Success:     true,
	}, metadata)

	return &dto.AdminLoginResponse{
		Admin:   ToAdminDTOModel(*admin),
		Session: ToAdminSessionDTO(accessToken, refreshToken, af.accessTokenTTL),
	}, nil
}

func (af *AdminAuthFlowImpl) Refresh(ctx context.Context, req *dto.AdminRefreshRequest) (*dto.AdminSessionDTO, error) {
	if req == nil || req.RefreshToken == "" {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Refresh token is required", ErrInvalidToken)
	}

	accessToken, refreshToken, err := af.tokenService.RefreshAdminToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return nil, NewBusinessError("TOKEN_EXPIRED", "Refresh token has expired", fmt.Errorf("%w: %w", ErrInvalidToken, err))
		}
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Refresh token is invalid", fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}

	session := ToAdminSessionDTO(accessToken, refreshToken, af.accessTokenTTL)
	return &session, nil
}

// Logout revokes the access token presented with the request
func (af *AdminAuthFlowImpl) Logout(ctx context.Context, adminID uint, accessToken string, metadata *ClientMetadata) (*dto.AdminLogoutResponse, error) {
	if err := af.tokenService.RevokeToken(ctx, accessToken); err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Failed to revoke token", err)
	}

	writeAuditLog(ctx, af.auditRepo, auditEntry{
		AdminID:     &adminID,
		Action:      models.AuditActionAdminLogout,
		Description: "Admin logged out",
		Success:     true,
	}, metadata)

	return &dto.AdminLogoutResponse{Message: "Logged out successfully"}, nil
}

func (af *AdminAuthFlowImpl) auditLoginFailure(ctx context.Context, adminID *uint, username, reason string, metadata *ClientMetadata) {
	writeAuditLog(ctx, af.auditRepo, auditEntry{
		AdminID:     adminID,
		Action:      models.AuditActionAdminLoginFailed,
		Description: fmt.Sprintf("Admin login failed for %s", username),
		Success:     false,
		ErrorMsg:    &reason,
	}, metadata)
}

// Package businessflow contains the core business logic and use cases of the contest
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign lookup
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrNoActiveCampaign  = errors.New("no active campaign")
	ErrInvalidCampaignID = errors.New("invalid campaign id")

	// Claim outcomes
	ErrAlreadyWon         = errors.New("campaign already has a winner")
	ErrCodeMismatch       = errors.New("secret code does not match")
	ErrCampaignInactive   = errors.New("campaign is not active")
	ErrClaimNotOpen       = errors.New("claim window has not opened yet")
	ErrClaimWindowExpired = errors.New("claim window has expired")
	ErrTooManyAttempts    = errors.New("too many claim attempts")

	// Storage
	ErrStorageConflict    = errors.New("concurrent write lost the race")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Winner lookup
	ErrWinnerNotFound = errors.New("winner not found")

	// Campaign admin
	ErrCampaignUpdateRequired = errors.New("at least one field must be provided for update")
	ErrInvalidSponsorAmount   = errors.New("sponsor amount must not be negative")

	// Admin auth
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidCaptcha    = errors.New("invalid captcha")
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrInvalidToken      = errors.New("invalid token")

	// Export
	ErrExportStorageNotConfigured = errors.New("export storage is not configured")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
	ErrInvalidPhase    = errors.New("phase must be one of pending, revealed, expired, already_won")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// BusinessErrorCode returns the code of the outermost BusinessError in err's chain
func BusinessErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsNoActiveCampaign(err error) bool {
	return errors.Is(err, ErrNoActiveCampaign)
}

func IsInvalidCampaignID(err error) bool {
	return errors.Is(err, ErrInvalidCampaignID)
}

// IsAlreadyWon also covers a lost compare-and-set, which the caller sees as the same outcome
func IsAlreadyWon(err error) bool {
	return errors.Is(err, ErrAlreadyWon) || errors.Is(err, ErrStorageConflict)
}

func IsCodeMismatch(err error) bool {
	return errors.Is(err, ErrCodeMismatch)
}

func IsCampaignInactive(err error) bool {
	return errors.Is(err, ErrCampaignInactive)
}

func IsClaimNotOpen(err error) bool {
	return errors.Is(err, ErrClaimNotOpen)
}

func IsClaimWindowExpired(err error) bool {
	return errors.Is(err, ErrClaimWindowExpired)
}

func IsTooManyAttempts(err error) bool {
	return errors.Is(err, ErrTooManyAttempts)
}

func IsStorageConflict(err error) bool {
	return errors.Is(err, ErrStorageConflict)
}

func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

func IsWinnerNotFound(err error) bool {
	return errors.Is(err, ErrWinnerNotFound)
}

func IsCampaignUpdateRequired(err error) bool {
	return errors.Is(err, ErrCampaignUpdateRequired)
}

func IsInvalidSponsorAmount(err error) bool {
	return errors.Is(err, ErrInvalidSponsorAmount)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsExportStorageNotConfigured(err error) bool {
	return errors.Is(err, ErrExportStorageNotConfigured)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsInvalidPhase(err error) bool {
	return errors.Is(err, ErrInvalidPhase)
}

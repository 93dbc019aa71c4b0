package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for admin refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// CaptchaTTL is how long a rotate captcha challenge stays valid
	CaptchaTTL = 2 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Contest constants
const (
	// DefaultClaimWindowAfterReveal is how long a revealed campaign accepts claims
	DefaultClaimWindowAfterReveal = 10 * time.Minute

	// DefaultClaimAttemptLimit is the number of claim attempts allowed per client and campaign within the attempt window
	DefaultClaimAttemptLimit = 10

	// DefaultClaimAttemptWindow is the fixed window claim attempts are counted in
	DefaultClaimAttemptWindow = time.Minute

	// DefaultTopSponsorsLimit bounds the sponsors leaderboard
	DefaultTopSponsorsLimit = 5

	// DefaultPageSize is used when a list request omits its limit
	DefaultPageSize = 20

	// MaxPageSize bounds admin list endpoints
	MaxPageSize = 100
)

// Redis key prefixes
const (
	RevokedTokenKeyPrefix = "revoked_token:"
	CaptchaKeyPrefix      = "captcha:rotate:"
	ClaimAttemptKeyPrefix = "claim_attempts:"
	ExportLockKey         = "lock:winners_export"
)

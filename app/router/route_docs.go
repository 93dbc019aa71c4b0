package router

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"auth":        "public",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/campaigns/active",
			"auth":        "public",
			"description": "Campaign currently offered to visitors, 404 NO_ACTIVE_CAMPAIGN when none",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/campaigns/:id",
			"auth":        "public",
			"description": "Public view of a campaign; the secret code appears once the countdown has ended",
			"parameters": map[string]any{
				"id": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/campaigns/:id/winner",
			"auth":        "public",
			"description": "Winner of a campaign without contact details, 404 WINNER_NOT_FOUND when none",
			"parameters": map[string]any{
				"id": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/winners",
			"auth":        "public",
			"description": "Claim a campaign with its revealed secret code; only the first valid claim wins",
			"parameters": map[string]any{
				"campaign_id":  "string (required) - Campaign UUID",
				"winner_name":  "string (required) - Display name of the claimant",
				"winner_email": "string (optional) - Contact email",
				"winner_phone": "string (optional) - Contact phone",
				"code_used":    "string (required) - Secret code, compared exactly",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/winners",
			"auth":        "public",
			"description": "Winners newest first without contact details",
			"parameters": map[string]any{
				"campaignId": "string (optional) - Query parameter: only winners of this campaign",
				"limit":      "number (optional) - Query parameter: maximum results (max 100)",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/stats/vision",
			"auth":        "public",
			"description": "Campaign count, winner count and total sponsored amount",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/stats/sponsors",
			"auth":        "public",
			"description": "Sponsors ordered by total sponsored amount",
			"parameters": map[string]any{
				"limit": "number (optional) - Query parameter: number of sponsors (default 5)",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/admin/auth/captcha/init",
			"auth":        "public",
			"description": "Start admin login with a rotate captcha challenge",
			"parameters":  map[string]any{},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/auth/login",
			"auth":        "public",
			"description": "Verify captcha and admin credentials, returns access and refresh tokens",
			"parameters": map[string]any{
				"challenge_id": "string (required) - Captcha challenge id",
				"user_angle":   "number (required) - Rotation angle chosen by the user",
				"username":     "string (required) - Admin username",
				"password":     "string (required) - Admin password",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/auth/refresh",
			"auth":        "public",
			"description": "Exchange a single use refresh token for a new token pair",
			"parameters": map[string]any{
				"refresh_token": "string (required) - Refresh token",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/auth/logout",
			"auth":        "admin",
			"description": "Revoke the access token of the current session",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/campaigns",
			"auth":        "admin",
			"description": "List campaigns newest first including secret codes",
			"parameters": map[string]any{
				"page":           "number (optional) - Query parameter: page number (default 1)",
				"limit":          "number (optional) - Query parameter: page size (default 20, max 100)",
				"is_active":      "bool (optional) - Query parameter: filter by active flag",
				"has_winner":     "bool (optional) - Query parameter: filter by winner flag",
				"phase":          "string (optional) - Query parameter: pending, revealed, expired or already_won",
				"created_after":  "string (optional) - Query parameter: RFC3339, created at or after",
				"created_before": "string (optional) - Query parameter: RFC3339, created before",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/campaigns",
			"auth":        "admin",
			"description": "Create a campaign",
			"parameters": map[string]any{
				"sponsor_name":        "string (required) - Sponsor name",
				"poster_url":          "string (required) - Poster image URL",
				"secret_code":         "string (required) - Code revealed at countdown end",
				"countdown_end":       "string (required) - RFC3339 instant the code is revealed",
				"sponsor_tagline":     "string (optional) - Sponsor tagline",
				"sponsor_website":     "string (optional) - Sponsor website URL",
				"mystery_description": "string (optional) - Teaser text",
				"prize_value":         "string (optional) - Human readable prize value",
				"sponsor_amount":      "string (optional) - Decimal amount contributed by the sponsor",
				"winner_image_url":    "string (optional) - Image shown once the campaign is won",
			},
		},
		{
			"method":      "PUT",
			"path":        "/api/v1/campaigns/:id",
			"auth":        "admin",
			"description": "Partially update a campaign; the winner flag cannot be changed",
			"parameters": map[string]any{
				"id": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "DELETE",
			"path":        "/api/v1/campaigns/:id",
			"auth":        "admin",
			"description": "Delete a campaign; its winner record is kept",
			"parameters": map[string]any{
				"id": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/admin/campaigns/:id",
			"auth":        "admin",
			"description": "Admin view of a campaign",
			"parameters": map[string]any{
				"id": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/admin/winners",
			"auth":        "admin",
			"description": "Winners with contact details and sponsor",
			"parameters": map[string]any{
				"page":       "number (optional) - Query parameter: page number (default 1)",
				"limit":      "number (optional) - Query parameter: page size (default 20, max 100)",
				"won_after":  "string (optional) - Query parameter: RFC3339, won at or after",
				"won_before": "string (optional) - Query parameter: RFC3339, won before",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/admin/winners/export",
			"auth":        "admin",
			"description": "Download all winners as an xlsx workbook with one sheet per sponsor",
			"parameters":  map[string]any{},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/winners/export/upload",
			"auth":        "admin",
			"description": "Build the winners workbook and upload it to object storage",
			"parameters":  map[string]any{},
		},
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWinnerFlow struct {
	claimErr  error
	listErr   error
	lastLimit int
	lastReq   *dto.SubmitWinnerRequest
}

func (s *stubWinnerFlow) SubmitClaim(_ context.Context, req *dto.SubmitWinnerRequest, _ *businessflow.ClientMetadata) (*dto.SubmitWinnerResponse, error) {
	s.lastReq = req
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	return &dto.SubmitWinnerResponse{
		Message: "Congratulations, you won!",
		Winner:  dto.WinnerPublicDTO{ID: "w-1", CampaignID: req.CampaignID, WinnerName: req.WinnerName, WonAt: time.Now().UTC()},
	}, nil
}

func (s *stubWinnerFlow) ListWinners(_ context.Context, _ string, limit int) (*dto.ListWinnersResponse, error) {
	s.lastLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	return &dto.ListWinnersResponse{Items: []dto.WinnerPublicDTO{}}, nil
}

func (s *stubWinnerFlow) GetCampaignWinner(_ context.Context, _ string) (*dto.WinnerPublicDTO, error) {
	return nil, businessflow.NewBusinessError("WINNER_NOT_FOUND", "Winner not found", businessflow.ErrWinnerNotFound)
}

type stubCampaignFlow struct {
	activeErr   error
	sponsorsLim int
}

func (s *stubCampaignFlow) GetActiveCampaign(context.Context) (*dto.CampaignPublicDTO, error) {
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	return &dto.CampaignPublicDTO{ID: "c-1", SponsorName: "TechFlow Pro", Phase: "pending"}, nil
}

func (s *stubCampaignFlow) GetCampaign(context.Context, string) (*dto.CampaignPublicDTO, error) {
	return nil, businessflow.NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", businessflow.ErrCampaignNotFound)
}

func (s *stubCampaignFlow) GetVisionStats(context.Context) (*dto.VisionStatsResponse, error) {
	return &dto.VisionStatsResponse{Campaigns: 3, Winners: 1}, nil
}

func (s *stubCampaignFlow) GetTopSponsors(_ context.Context, limit int) (*dto.TopSponsorsResponse, error) {
	s.sponsorsLim = limit
	return &dto.TopSponsorsResponse{Items: []dto.SponsorDTO{}}, nil
}

type stubAdminCampaignFlow struct {
	businessflow.AdminCampaignFlow
	createdBy      uint
	updateErr      error
	listErr        error
	campaignFilter dto.AdminListCampaignsFilter
	winnerFilter   dto.AdminListWinnersFilter
}

func (s *stubAdminCampaignFlow) ListCampaigns(_ context.Context, filter dto.AdminListCampaignsFilter) (*dto.AdminListCampaignsResponse, error) {
	s.campaignFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return &dto.AdminListCampaignsResponse{Message: "ok", Items: []dto.CampaignAdminDTO{}}, nil
}

func (s *stubAdminCampaignFlow) ListWinners(_ context.Context, filter dto.AdminListWinnersFilter) (*dto.AdminListWinnersResponse, error) {
	s.winnerFilter = filter
	return &dto.AdminListWinnersResponse{Message: "ok", Items: []dto.WinnerAdminDTO{}}, nil
}

func (s *stubAdminCampaignFlow) CreateCampaign(_ context.Context, adminID uint, req *dto.CreateCampaignRequest, _ *businessflow.ClientMetadata) (*dto.CampaignAdminDTO, error) {
	s.createdBy = adminID
	return &dto.CampaignAdminDTO{ID: "c-2", SponsorName: req.SponsorName, SecretCode: req.SecretCode}, nil
}

func (s *stubAdminCampaignFlow) UpdateCampaign(context.Context, uint, *dto.UpdateCampaignRequest, *businessflow.ClientMetadata) (*dto.CampaignAdminDTO, error) {
	return nil, s.updateErr
}

type stubExportFlow struct {
	uploadErr error
}

func (s *stubExportFlow) BuildWorkbook(context.Context, *uint, *businessflow.ClientMetadata) (*dto.WinnersExport, error) {
	return &dto.WinnersExport{FileName: "winners-20260301-120000.xlsx", Rows: 1, Content: []byte("PK")}, nil
}

func (s *stubExportFlow) Upload(context.Context) (*dto.WinnersExport, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &dto.WinnersExport{FileName: "w.xlsx", ObjectURL: "https://cdn.example.com/w.xlsx"}, nil
}

func withAdmin(id uint) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals("admin_id", id)
		return c.Next()
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Details any    `json:"details"`
	} `json:"error"`
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

const validClaim = `{"campaign_id":"f47ac10b-58cc-4372-a567-0e02b2c3d479","winner_name":"Ada","code_used":"TECH2024WIN"}`

func TestSubmitClaim_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"throttled", businessflow.ErrTooManyAttempts, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS"},
		{"not found", businessflow.ErrCampaignNotFound, http.StatusNotFound, "CAMPAIGN_NOT_FOUND"},
		{"already won", businessflow.ErrAlreadyWon, http.StatusConflict, "ALREADY_WON"},
		{"lost race", fmt.Errorf("wrap: %w", businessflow.ErrStorageConflict), http.StatusConflict, "ALREADY_WON"},
		{"code mismatch", businessflow.ErrCodeMismatch, http.StatusBadRequest, "CODE_MISMATCH"},
		{"inactive", businessflow.ErrCampaignInactive, http.StatusBadRequest, "CAMPAIGN_INACTIVE"},
		{"not open", businessflow.ErrClaimNotOpen, http.StatusBadRequest, "CLAIM_NOT_OPEN"},
		{"expired", businessflow.ErrClaimWindowExpired, http.StatusBadRequest, "CLAIM_WINDOW_EXPIRED"},
		{"storage", businessflow.ErrStorageUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			h := NewWinnerHandler(&stubWinnerFlow{claimErr: businessflow.NewBusinessError("X", "x", tc.err)})
			app.Post("/winners", h.SubmitClaim)

			resp, env := doRequest(t, app, http.MethodPost, "/winners", validClaim)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestSubmitClaim_Success(t *testing.T) {
	app := fiber.New()
	flow := &stubWinnerFlow{}
	app.Post("/winners", NewWinnerHandler(flow).SubmitClaim)

	resp, env := doRequest(t, app, http.MethodPost, "/winners", validClaim)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)
	require.NotNil(t, flow.lastReq)
	assert.Equal(t, "TECH2024WIN", flow.lastReq.CodeUsed)

	var data dto.SubmitWinnerResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Ada", data.Winner.WinnerName)
}

func TestSubmitClaim_RejectsBadInput(t *testing.T) {
	app := fiber.New()
	flow := &stubWinnerFlow{}
	app.Post("/winners", NewWinnerHandler(flow).SubmitClaim)

	resp, env := doRequest(t, app, http.MethodPost, "/winners", `{"campaign_id":"nope","winner_name":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	resp, env = doRequest(t, app, http.MethodPost, "/winners", `{"campaign_id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	assert.Nil(t, flow.lastReq)
}

func TestListWinners_Query(t *testing.T) {
	app := fiber.New()
	flow := &stubWinnerFlow{}
	app.Get("/winners", NewWinnerHandler(flow).ListWinners)

	resp, _ := doRequest(t, app, http.MethodGet, "/winners?limit=7", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, flow.lastLimit)

	resp, env := doRequest(t, app, http.MethodGet, "/winners?limit=many", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUERY", env.Error.Code)

	flow.listErr = businessflow.NewBusinessError("INVALID_CAMPAIGN_ID", "bad", businessflow.ErrInvalidCampaignID)
	resp, env = doRequest(t, app, http.MethodGet, "/winners?campaignId=x", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CAMPAIGN_ID", env.Error.Code)
}

func TestGetCampaignWinner_NotFound(t *testing.T) {
	app := fiber.New()
	app.Get("/campaigns/:id/winner", NewWinnerHandler(&stubWinnerFlow{}).GetCampaignWinner)

	resp, env := doRequest(t, app, http.MethodGet, "/campaigns/abc/winner", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "WINNER_NOT_FOUND", env.Error.Code)
}

func TestCampaignHandler(t *testing.T) {
	flow := &stubCampaignFlow{}
	app := fiber.New()
	h := NewCampaignHandler(flow)
	app.Get("/campaigns/active", h.GetActiveCampaign)
	app.Get("/campaigns/:id", h.GetCampaign)

	t.Run("active", func(t *testing.T) {
		resp, env := doRequest(t, app, http.MethodGet, "/campaigns/active", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var data dto.CampaignPublicDTO
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "TechFlow Pro", data.SponsorName)
		assert.Nil(t, data.SecretCode)
	})

	t.Run("no active campaign", func(t *testing.T) {
		flow.activeErr = businessflow.NewBusinessError("NO_ACTIVE_CAMPAIGN", "none", businessflow.ErrNoActiveCampaign)
		defer func() { flow.activeErr = nil }()

		resp, env := doRequest(t, app, http.MethodGet, "/campaigns/active", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NO_ACTIVE_CAMPAIGN", env.Error.Code)
	})

	t.Run("storage down", func(t *testing.T) {
		flow.activeErr = businessflow.ErrStorageUnavailable
		defer func() { flow.activeErr = nil }()

		resp, env := doRequest(t, app, http.MethodGet, "/campaigns/active", "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "STORAGE_UNAVAILABLE", env.Error.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp, env := doRequest(t, app, http.MethodGet, "/campaigns/not-a-uuid", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "CAMPAIGN_NOT_FOUND", env.Error.Code)
	})
}

func TestStatsHandler_SponsorLimit(t *testing.T) {
	flow := &stubCampaignFlow{}
	app := fiber.New()
	h := NewStatsHandler(flow)
	app.Get("/stats/vision", h.GetVisionStats)
	app.Get("/stats/sponsors", h.GetTopSponsors)

	resp, _ := doRequest(t, app, http.MethodGet, "/stats/sponsors", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, flow.sponsorsLim)

	resp, _ = doRequest(t, app, http.MethodGet, "/stats/sponsors?limit=2", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, flow.sponsorsLim)

	resp, env := doRequest(t, app, http.MethodGet, "/stats/vision", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats dto.VisionStatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(3), stats.Campaigns)
}

func TestCampaignAdminHandler(t *testing.T) {
	const body = `{"sponsor_name":"TechFlow Pro","poster_url":"https://cdn.example.com/p.png","secret_code":"TECH2024WIN","countdown_end":"2026-03-01T12:00:00Z"}`

	t.Run("create requires admin", func(t *testing.T) {
		app := fiber.New()
		app.Post("/admin/campaigns", NewCampaignAdminHandler(&stubAdminCampaignFlow{}, &stubExportFlow{}).CreateCampaign)

		resp, env := doRequest(t, app, http.MethodPost, "/admin/campaigns", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "ADMIN_AUTHENTICATION_REQUIRED", env.Error.Code)
	})

	t.Run("create", func(t *testing.T) {
		flow := &stubAdminCampaignFlow{}
		app := fiber.New()
		app.Post("/admin/campaigns", withAdmin(9), NewCampaignAdminHandler(flow, &stubExportFlow{}).CreateCampaign)

		resp, env := doRequest(t, app, http.MethodPost, "/admin/campaigns", body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, uint(9), flow.createdBy)

		var data dto.CampaignAdminDTO
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "TECH2024WIN", data.SecretCode)
	})

	t.Run("create validates", func(t *testing.T) {
		app := fiber.New()
		app.Post("/admin/campaigns", withAdmin(9), NewCampaignAdminHandler(&stubAdminCampaignFlow{}, &stubExportFlow{}).CreateCampaign)

		resp, env := doRequest(t, app, http.MethodPost, "/admin/campaigns", `{"sponsor_name":"x","poster_url":"not a url"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("update errors", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{businessflow.ErrCampaignNotFound, http.StatusNotFound, "CAMPAIGN_NOT_FOUND"},
			{businessflow.ErrCampaignUpdateRequired, http.StatusBadRequest, "CAMPAIGN_UPDATE_REQUIRED"},
			{businessflow.ErrInvalidSponsorAmount, http.StatusBadRequest, "INVALID_SPONSOR_AMOUNT"},
			{businessflow.ErrStorageUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
		}
		for _, tc := range cases {
			app := fiber.New()
			flow := &stubAdminCampaignFlow{updateErr: businessflow.NewBusinessError("X", "x", tc.err)}
			app.Put("/admin/campaigns/:id", withAdmin(1), NewCampaignAdminHandler(flow, &stubExportFlow{}).UpdateCampaign)

			resp, env := doRequest(t, app, http.MethodPut, "/admin/campaigns/abc", `{"is_active":false}`)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, env.Error.Code)
		}
	})

	t.Run("list campaigns filters", func(t *testing.T) {
		flow := &stubAdminCampaignFlow{}
		app := fiber.New()
		app.Get("/admin/campaigns", withAdmin(1), NewCampaignAdminHandler(flow, &stubExportFlow{}).ListCampaigns)

		resp, _ := doRequest(t, app, http.MethodGet, "/admin/campaigns?phase=revealed&created_after=2026-03-01T12:00:00Z&created_before=2026-03-02T15:30:00%2B03:30", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "revealed", flow.campaignFilter.Phase)
		require.NotNil(t, flow.campaignFilter.CreatedAfter)
		assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), *flow.campaignFilter.CreatedAfter)
		require.NotNil(t, flow.campaignFilter.CreatedBefore)
		assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), *flow.campaignFilter.CreatedBefore)

		resp, env := doRequest(t, app, http.MethodGet, "/admin/campaigns?created_after=yesterday", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_QUERY", env.Error.Code)
	})

	t.Run("list campaigns invalid phase", func(t *testing.T) {
		flow := &stubAdminCampaignFlow{listErr: businessflow.NewBusinessError("INVALID_PHASE", "bad", businessflow.ErrInvalidPhase)}
		app := fiber.New()
		app.Get("/admin/campaigns", withAdmin(1), NewCampaignAdminHandler(flow, &stubExportFlow{}).ListCampaigns)

		resp, env := doRequest(t, app, http.MethodGet, "/admin/campaigns?phase=live", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PHASE", env.Error.Code)
	})

	t.Run("list winners filters", func(t *testing.T) {
		flow := &stubAdminCampaignFlow{}
		app := fiber.New()
		app.Get("/admin/winners", withAdmin(1), NewCampaignAdminHandler(flow, &stubExportFlow{}).ListWinners)

		resp, _ := doRequest(t, app, http.MethodGet, "/admin/winners?page=2&limit=5&won_after=2026-03-01T12:00:00Z", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, flow.winnerFilter.Page)
		assert.Equal(t, 5, flow.winnerFilter.Limit)
		require.NotNil(t, flow.winnerFilter.WonAfter)
		assert.Nil(t, flow.winnerFilter.WonBefore)

		resp, env := doRequest(t, app, http.MethodGet, "/admin/winners?won_before=1700000000", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_QUERY", env.Error.Code)
	})

	t.Run("export download", func(t *testing.T) {
		app := fiber.New()
		app.Get("/admin/winners/export", withAdmin(1), NewCampaignAdminHandler(&stubAdminCampaignFlow{}, &stubExportFlow{}).ExportWinners)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/winners/export", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, businessflow.XLSXContentType, resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "winners-20260301-120000.xlsx")
	})

	t.Run("upload without storage", func(t *testing.T) {
		app := fiber.New()
		export := &stubExportFlow{uploadErr: businessflow.NewBusinessError("EXPORT_STORAGE_NOT_CONFIGURED", "x", businessflow.ErrExportStorageNotConfigured)}
		app.Post("/admin/winners/export/upload", NewCampaignAdminHandler(&stubAdminCampaignFlow{}, export).UploadWinnersExport)

		resp, env := doRequest(t, app, http.MethodPost, "/admin/winners/export/upload", "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "EXPORT_STORAGE_NOT_CONFIGURED", env.Error.Code)
	})
}

type stubAdminAuthFlow struct {
	verifyErr  error
	refreshErr error
	loggedOut  uint
}

func (s *stubAdminAuthFlow) InitCaptcha(context.Context) (*dto.AdminCaptchaInitResponse, error) {
	return &dto.AdminCaptchaInitResponse{ChallengeID: "ch-1"}, nil
}

func (s *stubAdminAuthFlow) Verify(_ context.Context, req *dto.AdminCaptchaVerifyRequest, _ *businessflow.ClientMetadata) (*dto.AdminLoginResponse, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &dto.AdminLoginResponse{Admin: dto.AdminDTO{Username: req.Username}, Session: dto.AdminSessionDTO{AccessToken: "a", RefreshToken: "r"}}, nil
}

func (s *stubAdminAuthFlow) Refresh(context.Context, *dto.AdminRefreshRequest) (*dto.AdminSessionDTO, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &dto.AdminSessionDTO{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (s *stubAdminAuthFlow) Logout(_ context.Context, adminID uint, _ string, _ *businessflow.ClientMetadata) (*dto.AdminLogoutResponse, error) {
	s.loggedOut = adminID
	return &dto.AdminLogoutResponse{Message: "Logged out successfully"}, nil
}

func TestAdminHandler(t *testing.T) {
	const login = `{"challenge_id":"ch-1","username":"root","password":"TestPass123!","user_angle":90}`

	t.Run("login status mapping", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{nil, http.StatusOK, ""},
			{businessflow.ErrInvalidCaptcha, http.StatusBadRequest, "INVALID_CAPTCHA"},
			{businessflow.ErrAdminNotFound, http.StatusUnauthorized, "ADMIN_NOT_FOUND"},
			{businessflow.ErrAdminInactive, http.StatusForbidden, "ADMIN_INACTIVE"},
			{businessflow.ErrIncorrectPassword, http.StatusUnauthorized, "INCORRECT_PASSWORD"},
			{businessflow.ErrStorageUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
		}
		for _, tc := range cases {
			flow := &stubAdminAuthFlow{}
			if tc.err != nil {
				flow.verifyErr = businessflow.NewBusinessError("X", "x", tc.err)
			}
			app := fiber.New()
			app.Post("/admin/auth/login", NewAdminHandler(flow).VerifyLogin)

			resp, env := doRequest(t, app, http.MethodPost, "/admin/auth/login", login)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, env.Error.Code)
		}
	})

	t.Run("login validates", func(t *testing.T) {
		app := fiber.New()
		app.Post("/admin/auth/login", NewAdminHandler(&stubAdminAuthFlow{}).VerifyLogin)

		resp, env := doRequest(t, app, http.MethodPost, "/admin/auth/login", `{"username":"root","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("refresh rejected", func(t *testing.T) {
		flow := &stubAdminAuthFlow{refreshErr: businessflow.NewBusinessError("TOKEN_EXPIRED", "expired", businessflow.ErrInvalidToken)}
		app := fiber.New()
		app.Post("/admin/auth/refresh", NewAdminHandler(flow).Refresh)

		resp, env := doRequest(t, app, http.MethodPost, "/admin/auth/refresh", `{"refresh_token":"r"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "TOKEN_EXPIRED", env.Error.Code)
	})

	t.Run("logout", func(t *testing.T) {
		flow := &stubAdminAuthFlow{}
		app := fiber.New()
		app.Post("/admin/auth/logout", withAdmin(4), NewAdminHandler(flow).Logout)

		resp, env := doRequest(t, app, http.MethodPost, "/admin/auth/logout", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, env.Success)
		assert.Equal(t, uint(4), flow.loggedOut)
	})
}

package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	flow      AdminCampaignFlow
	campaigns *fakeCampaignRepo
	winners   *fakeWinnerRepo
	audit     *fakeAuditRepo
}

func newAdminFixture(campaigns ...*models.Campaign) *adminFixture {
	f := &adminFixture{
		campaigns: newFakeCampaignRepo(campaigns...),
		audit:     &fakeAuditRepo{},
	}
	f.winners = newFakeWinnerRepo(f.campaigns)
	f.flow = NewAdminCampaignFlow(f.campaigns, f.winners, f.audit, utils.FixedClock{T: revealAt.Add(-time.Hour)}, testClaimWindow)
	return f
}

func validCreateRequest() *dto.CreateCampaignRequest {
	return &dto.CreateCampaignRequest{
		SponsorName:        " TechFlow Pro ",
		SponsorTagline:     "Flow faster",
		SponsorWebsite:     "https://techflow.example.com",
		PosterURL:          "https://cdn.example.com/poster.png",
		SecretCode:         "TECH2024WIN",
		MysteryDescription: "A mystery box",
		PrizeValue:         utils.ToPtr("$200+"),
		SponsorAmount:      utils.ToPtr(decimal.RequireFromString("1500")),
		CountdownEnd:       revealAt,
	}
}

func TestCreateCampaign(t *testing.T) {
	f := newAdminFixture()
	md := NewClientMetadata("127.0.0.1", "admin-ui")

	out, err := f.flow.CreateCampaign(context.Background(), 1, validCreateRequest(), md)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "TechFlow Pro", out.SponsorName)
	assert.Equal(t, "TECH2024WIN", out.SecretCode)
	assert.True(t, out.IsActive)
	assert.False(t, out.HasWinner)
	assert.Equal(t, string(models.CampaignPhasePending), out.Phase)
	assert.Equal(t, revealAt.Add(-time.Hour), out.CreatedAt)

	stored := f.campaigns.get(out.InternalID)
	require.NotNil(t, stored)
	assert.True(t, stored.Active())
	assert.False(t, stored.HasWinner)
	assert.Equal(t, []string{models.AuditActionCampaignCreated}, f.audit.actions())
}

func TestCreateCampaignRejectsNegativeAmount(t *testing.T) {
	f := newAdminFixture()
	req := validCreateRequest()
	req.SponsorAmount = utils.ToPtr(decimal.RequireFromString("-1"))

	_, err := f.flow.CreateCampaign(context.Background(), 1, req, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidSponsorAmount(err))

	n, err := f.campaigns.Count(context.Background(), models.CampaignFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateCampaign(t *testing.T) {
	campaign := newContestCampaign("OLD")
	f := newAdminFixture(campaign)
	ctx := context.Background()

	newEnd := revealAt.Add(time.Hour)
	out, err := f.flow.UpdateCampaign(ctx, 1, &dto.UpdateCampaignRequest{
		ID:           campaign.UUID.String(),
		SecretCode:   utils.ToPtr("NEW"),
		CountdownEnd: &newEnd,
		IsActive:     utils.ToPtr(false),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "NEW", out.SecretCode)
	assert.Equal(t, newEnd, out.CountdownEnd)
	assert.False(t, out.IsActive)
	assert.Equal(t, campaign.UUID.String(), out.ID)
	assert.Equal(t, "TechFlow Pro", out.SponsorName)

	stored := f.campaigns.get(campaign.ID)
	assert.Equal(t, "NEW", stored.SecretCode)
	assert.Equal(t, campaign.CreatedAt, stored.CreatedAt)
	assert.Equal(t, 1, f.audit.count(models.AuditActionCampaignUpdated))
}

func TestUpdateCampaignKeepsWinnerFlag(t *testing.T) {
	campaign := newContestCampaign("WIN1")
	campaign.HasWinner = true
	f := newAdminFixture(campaign)

	out, err := f.flow.UpdateCampaign(context.Background(), 1, &dto.UpdateCampaignRequest{
		ID:          campaign.UUID.String(),
		SponsorName: utils.ToPtr("Renamed"),
	}, nil)
	require.NoError(t, err)
	assert.True(t, out.HasWinner)
	assert.True(t, f.campaigns.get(campaign.ID).HasWinner)
}

func TestUpdateCampaignErrors(t *testing.T) {
	campaign := newContestCampaign("WIN1")
	f := newAdminFixture(campaign)
	ctx := context.Background()

	_, err := f.flow.UpdateCampaign(ctx, 1, &dto.UpdateCampaignRequest{ID: campaign.UUID.String()}, nil)
	assert.True(t, IsCampaignUpdateRequired(err))

	_, err = f.flow.UpdateCampaign(ctx, 1, nil, nil)
	assert.True(t, IsCampaignUpdateRequired(err))

	_, err = f.flow.UpdateCampaign(ctx, 1, &dto.UpdateCampaignRequest{ID: "missing", SponsorName: utils.ToPtr("x")}, nil)
	assert.True(t, IsCampaignNotFound(err))

	_, err = f.flow.UpdateCampaign(ctx, 1, &dto.UpdateCampaignRequest{
		ID:            campaign.UUID.String(),
		SponsorAmount: utils.ToPtr(decimal.RequireFromString("-5")),
	}, nil)
	assert.True(t, IsInvalidSponsorAmount(err))
}

func TestDeleteCampaignKeepsWinner(t *testing.T) {
	campaign := newContestCampaign("WIN1")
	f := newAdminFixture(campaign)
	ctx := context.Background()
	require.NoError(t, f.winners.Save(ctx, &models.Winner{CampaignID: campaign.ID, CampaignUUID: campaign.UUID, WinnerName: "Sara", CodeUsed: "WIN1"}))

	out, err := f.flow.DeleteCampaign(ctx, 1, campaign.UUID.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, campaign.UUID.String(), out.ID)
	assert.Nil(t, f.campaigns.get(campaign.ID))

	winner, err := f.winners.ByCampaignUUID(ctx, campaign.UUID)
	require.NoError(t, err)
	require.NotNil(t, winner)

	_, err = f.flow.DeleteCampaign(ctx, 1, campaign.UUID.String(), nil)
	assert.True(t, IsCampaignNotFound(err))
	assert.Equal(t, 1, f.audit.count(models.AuditActionCampaignDeleted))

	winners, err := f.flow.ListWinners(ctx, dto.AdminListWinnersFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, winners.Items, 1)
	assert.Nil(t, winners.Items[0].SponsorName)
}

func TestListCampaigns(t *testing.T) {
	var campaigns []*models.Campaign
	for i := 0; i < 5; i++ {
		c := newContestCampaign("X")
		c.HasWinner = i%2 == 0
		campaigns = append(campaigns, c)
	}
	f := newAdminFixture(campaigns...)
	ctx := context.Background()

	page, err := f.flow.ListCampaigns(ctx, dto.AdminListCampaignsFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	won, err := f.flow.ListCampaigns(ctx, dto.AdminListCampaignsFilter{HasWinner: utils.ToPtr(true)})
	require.NoError(t, err)
	assert.Len(t, won.Items, 3)
	assert.Equal(t, utils.DefaultPageSize, won.Pagination.Limit)

	_, err = f.flow.ListCampaigns(ctx, dto.AdminListCampaignsFilter{Page: -1})
	assert.True(t, IsInvalidPage(err))

	_, err = f.flow.ListCampaigns(ctx, dto.AdminListCampaignsFilter{Limit: utils.MaxPageSize + 1})
	assert.True(t, IsInvalidPageSize(err))
}

func TestListCampaignsByPhase(t *testing.T) {
	now := revealAt.Add(-time.Hour)
	at := func(end time.Duration, won bool) *models.Campaign {
		c := newContestCampaign("X")
		c.CountdownEnd = now.Add(end)
		c.HasWinner = won
		return c
	}
	pending := at(time.Minute, false)
	revealedNow := at(0, false)
	revealed := at(-testClaimWindow+time.Second, false)
	expired := at(-testClaimWindow, false)
	won := at(time.Minute, true)
	f := newAdminFixture(pending, revealedNow, revealed, expired, won)
	ctx := context.Background()

	ids := func(phase string) []string {
		out, err := f.flow.ListCampaigns(ctx, dto.AdminListCampaignsFilter{Phase: phase})
		require.NoError(t, err, phase)
		var got []string
		for _, item := range out.Items {
			assert.Equal(t, phase, item.Phase)
			got = append(got, item.ID)
		}
		return got
	}

	assert.ElementsMatch(t, []string{pending.UUID.String()}, ids("pending"))
	assert.ElementsMatch(t, []string{revealedNow.UUID.String(), revealed.UUID.String()}, ids("revealed"))
	assert.ElementsMatch(t, []string{expired.UUID.String()}, ids("expired"))
	assert.ElementsMatch(t, []string{won.UUID.String()}, ids("already_won"))

	_, err := f.flow.ListCampaigns(ctx, dto.AdminListCampaignsFilter{Phase: "live"})
	assert.True(t, IsInvalidPhase(err))
	assert.Equal(t, "INVALID_PHASE", BusinessErrorCode(err))
}

func TestListCampaignsByCreatedAt(t *testing.T) {
	var campaigns []*models.Campaign
	for i := 0; i < 4; i++ {
		c := newContestCampaign("X")
		c.CreatedAt = revealAt.Add(time.Duration(-4+i) * time.Hour)
		campaigns = append(campaigns, c)
	}
	f := newAdminFixture(campaigns...)

	out, err := f.flow.ListCampaigns(context.Background(), dto.AdminListCampaignsFilter{
		CreatedAfter:  utils.ToPtr(campaigns[1].CreatedAt),
		CreatedBefore: utils.ToPtr(campaigns[3].CreatedAt),
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, campaigns[2].UUID.String(), out.Items[0].ID)
	assert.Equal(t, campaigns[1].UUID.String(), out.Items[1].ID)
	assert.Equal(t, int64(2), out.Pagination.Total)
}

func TestAdminListWinnersByWonAt(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	for i, name := range []string{"Ada", "Grace", "Linus"} {
		c := newContestCampaign("X")
		require.NoError(t, f.campaigns.Save(ctx, c))
		require.NoError(t, f.winners.Save(ctx, &models.Winner{
			CampaignID:   c.ID,
			CampaignUUID: c.UUID,
			WinnerName:   name,
			CodeUsed:     "X",
			WonAt:        revealAt.Add(time.Duration(i) * time.Hour),
		}))
	}

	out, err := f.flow.ListWinners(ctx, dto.AdminListWinnersFilter{WonAfter: utils.ToPtr(revealAt.Add(time.Hour))})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Linus", out.Items[0].WinnerName)
	assert.Equal(t, "Grace", out.Items[1].WinnerName)
	assert.Equal(t, int64(2), out.Pagination.Total)

	out, err = f.flow.ListWinners(ctx, dto.AdminListWinnersFilter{WonBefore: utils.ToPtr(revealAt.Add(time.Hour))})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Ada", out.Items[0].WinnerName)
}

func TestAdminListWinners(t *testing.T) {
	campaign := newContestCampaign("WIN1")
	f := newAdminFixture(campaign)
	ctx := context.Background()
	require.NoError(t, f.winners.Save(ctx, &models.Winner{
		CampaignID:   campaign.ID,
		CampaignUUID: campaign.UUID,
		WinnerName:   "Sara",
		WinnerEmail:  utils.ToPtr("sara@example.com"),
		CodeUsed:     "WIN1",
		WonAt:        revealAt,
	}))

	out, err := f.flow.ListWinners(ctx, dto.AdminListWinnersFilter{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "sara@example.com", utils.StringValue(out.Items[0].WinnerEmail))
	assert.Equal(t, "TechFlow Pro", utils.StringValue(out.Items[0].SponsorName))
	assert.Equal(t, int64(1), out.Pagination.Total)
}

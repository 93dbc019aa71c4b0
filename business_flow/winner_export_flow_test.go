package businessflow

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedExportWinners(t *testing.T) (*fakeCampaignRepo, *fakeWinnerRepo) {
	t.Helper()
	ctx := context.Background()

	acme1 := newContestCampaign("A1")
	acme1.SponsorName = "Acme: Rockets/Widgets"
	acme2 := newContestCampaign("A2")
	acme2.SponsorName = "Acme: Rockets/Widgets"
	globex := newContestCampaign("G1")
	globex.SponsorName = "Globex"
	gone := newContestCampaign("D1")

	campaigns := newFakeCampaignRepo(acme1, acme2, globex, gone)
	winners := newFakeWinnerRepo(campaigns)
	for i, c := range []*models.Campaign{acme1, acme2, globex, gone} {
		require.NoError(t, winners.Save(ctx, &models.Winner{
			CampaignID:   c.ID,
			CampaignUUID: c.UUID,
			WinnerName:   "winner-" + string(rune('a'+i)),
			CodeUsed:     c.SecretCode,
			WonAt:        revealAt,
		}))
	}
	require.NoError(t, campaigns.Delete(ctx, gone.ID))
	return campaigns, winners
}

func TestBuildWinnersWorkbook(t *testing.T) {
	_, winners := seedExportWinners(t)
	audit := &fakeAuditRepo{}
	flow := NewWinnerExportFlow(winners, audit, nil, utils.FixedClock{T: revealAt})
	adminID := uint(1)

	export, err := flow.BuildWorkbook(context.Background(), &adminID, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, export.Rows)
	assert.Equal(t, "winners-20260301-120000.xlsx", export.FileName)
	assert.Equal(t, []string{models.AuditActionWinnersExported}, audit.actions())

	xl, err := excelize.OpenReader(bytes.NewReader(export.Content))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	sheets := xl.GetSheetList()
	require.Len(t, sheets, 4)
	assert.Equal(t, allWinnersSheet, sheets[0])
	assert.Contains(t, sheets, "acme-rockets-widgets")
	assert.Contains(t, sheets, "globex")
	assert.Contains(t, sheets, unknownSponsorName)

	rows, err := xl.GetRows(allWinnersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, winnerSheetHeader, rows[0])

	acmeRows, err := xl.GetRows("acme-rockets-widgets")
	require.NoError(t, err)
	assert.Len(t, acmeRows, 3)
}

func TestUploadWinnersWorkbook(t *testing.T) {
	_, winners := seedExportWinners(t)
	storage := &fakeObjectStorage{}
	flow := NewWinnerExportFlow(winners, &fakeAuditRepo{}, storage, utils.FixedClock{T: revealAt})

	export, err := flow.Upload(context.Background())
	require.NoError(t, err)
	require.Len(t, storage.keys, 1)
	assert.True(t, strings.HasPrefix(storage.keys[0], "exports/winners/2026-03-01/"))
	assert.True(t, strings.HasSuffix(storage.keys[0], ".xlsx"))
	assert.Equal(t, "https://cdn.example.com/"+storage.keys[0], export.ObjectURL)
}

func TestUploadWinnersWorkbookErrors(t *testing.T) {
	_, winners := seedExportWinners(t)

	flow := NewWinnerExportFlow(winners, nil, nil, utils.FixedClock{T: revealAt})
	_, err := flow.Upload(context.Background())
	assert.True(t, IsExportStorageNotConfigured(err))

	flow = NewWinnerExportFlow(winners, nil, &fakeObjectStorage{err: errStoreDown}, utils.FixedClock{T: revealAt})
	_, err = flow.Upload(context.Background())
	require.Error(t, err)
	assert.Equal(t, "EXPORT_UPLOAD_FAILED", BusinessErrorCode(err))

	winners.failWith = errStoreDown
	_, err = flow.Upload(context.Background())
	assert.True(t, IsStorageUnavailable(err))
}

func TestSponsorSheetName(t *testing.T) {
	assert.Equal(t, "techflow-pro", sponsorSheetName("TechFlow Pro"))
	assert.Equal(t, unknownSponsorName, sponsorSheetName("***"))
	long := sponsorSheetName(strings.Repeat("sponsor ", 10))
	assert.LessOrEqual(t, len(long), maxSheetNameLength)
	assert.False(t, strings.HasSuffix(long, "-"))
}

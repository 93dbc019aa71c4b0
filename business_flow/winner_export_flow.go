package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	"github.com/amirphl/countdown-contest/app/services"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of generated workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	allWinnersSheet    = "all-winners"
	unknownSponsorName = "unknown-sponsor"
	maxSheetNameLength = 31
)

var winnerSheetHeader = []string{"winner_id", "campaign_id", "sponsor_name", "prize_value", "winner_name", "winner_email", "winner_phone", "code_used", "won_at"}

// WinnerExportFlow renders winners into an xlsx workbook
type WinnerExportFlow interface {
	// BuildWorkbook returns the workbook for download
	BuildWorkbook(ctx context.Context, adminID *uint, metadata *ClientMetadata) (*dto.WinnersExport, error)
	// Upload builds the workbook and stores it in object storage
	Upload(ctx context.Context) (*dto.WinnersExport, error)
}

// WinnerExportFlowImpl implements WinnerExportFlow
type WinnerExportFlowImpl struct {
	winnerRepo repository.WinnerRepository
	auditRepo  repository.AuditLogRepository
	storage    services.ObjectStorage
	clock      utils.Clock
}

// NewWinnerExportFlow creates a winner export flow. storage may be nil when uploads are disabled.
func NewWinnerExportFlow(
	winnerRepo repository.WinnerRepository,
	auditRepo repository.AuditLogRepository,
	storage services.ObjectStorage,
	clock utils.Clock,
) WinnerExportFlow {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &WinnerExportFlowImpl{
		winnerRepo: winnerRepo,
		auditRepo:  auditRepo,
		storage:    storage,
		clock:      clock,
	}
}

func (f *WinnerExportFlowImpl) BuildWorkbook(ctx context.Context, adminID *uint, metadata *ClientMetadata) (*dto.WinnersExport, error) {
	export, err := f.build(ctx)
	if err != nil {
		return nil, err
	}

	writeAuditLog(ctx, f.auditRepo, auditEntry{
		AdminID:     adminID,
		Action:      models.AuditActionWinnersExported,
		Description: fmt.Sprintf("Winners workbook %s downloaded", export.FileName),
		Success:     true,
		Extra:       map[string]any{"rows": export.Rows},
	}, metadata)

	return export, nil
}

func (f *WinnerExportFlowImpl) Upload(ctx context.Context) (*dto.WinnersExport, error) {
	if f.storage == nil {
		return nil, NewBusinessError("EXPORT_STORAGE_NOT_CONFIGURED", "Object storage is not configured", ErrExportStorageNotConfigured)
	}

	export, err := f.build(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/winners/%s/%s.xlsx", f.clock.Now().Format("2006-01-02"), uuid.New())
	url, err := f.storage.PutObject(ctx, key, export.Content, XLSXContentType)
	if err != nil {
		return nil, NewBusinessError("EXPORT_UPLOAD_FAILED", "Failed to upload winners workbook", err)
	}
	export.ObjectURL = url

	writeAuditLog(ctx, f.auditRepo, auditEntry{
		Action:      models.AuditActionWinnersExported,
		Description: fmt.Sprintf("Winners workbook uploaded to %s", key),
		Success:     true,
		Extra:       map[string]any{"rows": export.Rows, "key": key},
	}, nil)

	return export, nil
}

func (f *WinnerExportFlowImpl) build(ctx context.Context) (*dto.WinnersExport, error) {
	rows, err := f.winnerRepo.ListWithCampaign(ctx, models.WinnerFilter{}, 0, 0)
	if err != nil {
		return nil, NewBusinessError("STORAGE_UNAVAILABLE", "Failed to load winners", fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
	}

	content, err := renderWinnersWorkbook(rows)
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return &dto.WinnersExport{
		FileName: fmt.Sprintf("winners-%s.xlsx", f.clock.Now().Format("20060102-150405")),
		Rows:     len(rows),
		Content:  content,
	}, nil
}

// renderWinnersWorkbook writes an all-winners sheet followed by one sheet per sponsor
func renderWinnersWorkbook(rows []*models.WinnerWithCampaign) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), allWinnersSheet); err != nil {
		return nil, err
	}
	if err := writeWinnerSheet(xl, allWinnersSheet, rows); err != nil {
		return nil, err
	}

	bySponsor := make(map[string][]*models.WinnerWithCampaign)
	order := make([]string, 0)
	for _, r := range rows {
		name := unknownSponsorName
		if r.SponsorName != nil && strings.TrimSpace(*r.SponsorName) != "" {
			name = *r.SponsorName
		}
		if _, ok := bySponsor[name]; !ok {
			order = append(order, name)
		}
		bySponsor[name] = append(bySponsor[name], r)
	}

	usedNames := map[string]bool{allWinnersSheet: true}
	for _, sponsor := range order {
		baseName := sponsorSheetName(sponsor)
		name := baseName
		for idx := 2; usedNames[name]; idx++ {
			suffix := fmt.Sprintf("-%d", idx)
			name = truncateSheetName(baseName, maxSheetNameLength-len(suffix)) + suffix
		}
		usedNames[name] = true

		if _, err := xl.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeWinnerSheet(xl, name, bySponsor[sponsor]); err != nil {
			return nil, err
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeWinnerSheet(xl *excelize.File, sheet string, rows []*models.WinnerWithCampaign) error {
	header := winnerSheetHeader
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		record := []string{
			r.UUID.String(),
			r.CampaignUUID.String(),
			utils.StringValue(r.SponsorName),
			utils.StringValue(r.PrizeValue),
			r.WinnerName,
			utils.StringValue(r.WinnerEmail),
			utils.StringValue(r.WinnerPhone),
			r.CodeUsed,
			r.WonAt.UTC().Format(time.RFC3339),
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(sheet, cellRef, &record); err != nil {
			return err
		}
	}
	return nil
}

// sponsorSheetName slugs the sponsor name, which also strips the characters Excel forbids
func sponsorSheetName(sponsor string) string {
	name := slug.Make(sponsor)
	if name == "" {
		name = unknownSponsorName
	}
	return truncateSheetName(name, maxSheetNameLength)
}

func truncateSheetName(name string, max int) string {
	if len(name) > max {
		return strings.TrimRight(name[:max], "-")
	}
	return name
}

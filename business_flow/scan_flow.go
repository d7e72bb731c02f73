package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"

	"github.com/amirphl/Kyu-Ar/app/dto"
	"github.com/amirphl/Kyu-Ar/config"
	"github.com/amirphl/Kyu-Ar/models"
	"github.com/amirphl/Kyu-Ar/repository"
	"github.com/amirphl/Kyu-Ar/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ScanFlow resolves codes for redirects and records their scans
type ScanFlow interface {
	RecordScan(ctx context.Context, code *models.Code, meta *ScanMetadata) (*models.ScanEvent, error)
	Visit(ctx context.Context, slug string, meta *ScanMetadata) (string, error)
	Stats(ctx context.Context, slug string) (*dto.CodeStatsResponse, error)
	ExportScansCSV(ctx context.Context, slug string) (string, []byte, error)
	ExportScansExcel(ctx context.Context, slug string) (string, []byte, error)
}

type ScanFlowImpl struct {
	codeRepo repository.CodeRepository
	scanRepo repository.ScanEventRepository
	db       *gorm.DB
	cfg      config.RegistryConfig
	metrics  RegistryMetrics
}

func NewScanFlow(codeRepo repository.CodeRepository, scanRepo repository.ScanEventRepository, db *gorm.DB, cfg config.RegistryConfig, metrics RegistryMetrics) ScanFlow {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &ScanFlowImpl{codeRepo: codeRepo, scanRepo: scanRepo, db: db, cfg: cfg, metrics: metrics}
}

// RecordScan appends a scan event and bumps the code's counter in one
// transaction. The client IP is anonymized before the event is built.
func (f *ScanFlowImpl) RecordScan(ctx context.Context, code *models.Code, meta *ScanMetadata) (*models.ScanEvent, error) {
	if code == nil {
		return nil, NewBusinessError("INVALID_INPUT", "Code is required", ErrInvalidInput)
	}
	if meta == nil {
		meta = &ScanMetadata{}
	}

	event := &models.ScanEvent{
		ID:        uuid.New(),
		CodeID:    code.ID,
		Timestamp: utils.UTCNow(),
		Referrer:  meta.Referrer,
		UserAgent: meta.UserAgent,
		IP:        utils.AnonymizeIP(meta.IPAddress),
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.scanRepo.Save(txCtx, event); err != nil {
			return err
		}
		return f.codeRepo.IncrementScans(txCtx, code.ID)
	})
	if err != nil {
		f.metrics.ScanRecordFailed()
		return nil, storageError("RECORD_SCAN_FAILED", "Failed to record scan", err)
	}

	f.metrics.ScanRecorded()
	return event, nil
}

// Visit returns the redirect target of slug and records the scan. With strict
// accounting a scan that cannot be committed fails the visit; otherwise the
// failure is logged and the target is still returned.
func (f *ScanFlowImpl) Visit(ctx context.Context, slug string, meta *ScanMetadata) (string, error) {
	code, err := findCode(ctx, f.codeRepo, slug)
	if err != nil {
		return "", err
	}

	if _, err := f.RecordScan(ctx, code, meta); err != nil {
		if f.cfg.StrictScanAccounting {
			return "", err
		}
		log.Printf(`{"time":"%s","level":"warn","event":"scan_not_recorded","request_id":"%s","endpoint":"%s","slug":"%s","error":"%v"}`,
			utils.UTCNowRFC3339(), utils.RequestIDFromContext(ctx), utils.EndpointFromContext(ctx), slug, err)
	}

	return code.TargetURL, nil
}

// Stats summarizes a code with its most recent scans and referrer breakdown
func (f *ScanFlowImpl) Stats(ctx context.Context, slug string) (*dto.CodeStatsResponse, error) {
	code, err := findCode(ctx, f.codeRepo, slug)
	if err != nil {
		return nil, err
	}

	events, err := f.scanRepo.ListScans(ctx, code.ID, f.cfg.StatsRecentScans, repository.SortDesc)
	if err != nil {
		return nil, storageError("FETCH_SCANS_FAILED", "Failed to fetch scans", err)
	}
	referrers, err := f.scanRepo.TopReferrers(ctx, code.ID, f.cfg.StatsTopReferrers)
	if err != nil {
		return nil, storageError("FETCH_REFERRERS_FAILED", "Failed to aggregate referrers", err)
	}

	recent := make([]dto.ScanEventResponse, 0, len(events))
	for _, e := range events {
		recent = append(recent, toScanEventResponse(e))
	}
	top := make([]dto.ReferrerCountResponse, 0, len(referrers))
	for _, r := range referrers {
		top = append(top, dto.ReferrerCountResponse{Referrer: r.Referrer, Count: r.Count})
	}

	return &dto.CodeStatsResponse{
		Slug:         code.Slug,
		Title:        code.Title,
		ScansCount:   code.ScansCount,
		CreatedAt:    utils.FormatRFC3339(code.CreatedAt),
		Recent:       recent,
		TopReferrers: top,
	}, nil
}

// ExportScansCSV returns the scans of a code oldest first as CSV
func (f *ScanFlowImpl) ExportScansCSV(ctx context.Context, slug string) (string, []byte, error) {
	code, events, err := f.exportRows(ctx, slug)
	if err != nil {
		return "", nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(scanExportHeader); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}
	for _, e := range events {
		if err := w.Write(scanExportRecord(e)); err != nil {
			return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to flush CSV", err)
	}

	return fmt.Sprintf("scans_%s.csv", code.Slug), buf.Bytes(), nil
}

// ExportScansExcel returns a workbook with the scans of a code on the first
// sheet and its referrer breakdown on the second
func (f *ScanFlowImpl) ExportScansExcel(ctx context.Context, slug string) (string, []byte, error) {
	code, events, err := f.exportRows(ctx, slug)
	if err != nil {
		return "", nil, err
	}
	referrers, err := f.scanRepo.TopReferrers(ctx, code.ID, 0)
	if err != nil {
		return "", nil, storageError("FETCH_REFERRERS_FAILED", "Failed to aggregate referrers", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	const scansSheet = "scans"
	if err := xl.SetSheetName(xl.GetSheetName(0), scansSheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to name sheet", err)
	}
	header := scanExportHeader
	_ = xl.SetSheetRow(scansSheet, "A1", &header)
	for i, e := range events {
		record := scanExportRecord(e)
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(scansSheet, cellRef, &record)
	}

	const referrerSheet = "referrers"
	if _, err := xl.NewSheet(referrerSheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to add sheet", err)
	}
	_ = xl.SetSheetRow(referrerSheet, "A1", &[]string{"referrer", "count"})
	for i, r := range referrers {
		row := []any{utils.Deref(r.Referrer), r.Count}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(referrerSheet, cellRef, &row)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return fmt.Sprintf("scans_%s.xlsx", code.Slug), buf.Bytes(), nil
}

func (f *ScanFlowImpl) exportRows(ctx context.Context, slug string) (*models.Code, []*models.ScanEvent, error) {
	code, err := findCode(ctx, f.codeRepo, slug)
	if err != nil {
		return nil, nil, err
	}
	events, err := f.scanRepo.ListScans(ctx, code.ID, f.cfg.ExportMaxRows, repository.SortAsc)
	if err != nil {
		return nil, nil, storageError("FETCH_SCANS_FAILED", "Failed to fetch scans", err)
	}
	return code, events, nil
}

var scanExportHeader = []string{"timestamp", "referrer", "user_agent", "ip"}

func scanExportRecord(e *models.ScanEvent) []string {
	return []string{
		utils.FormatRFC3339(e.Timestamp),
		utils.Deref(e.Referrer),
		utils.Deref(e.UserAgent),
		utils.Deref(e.IP),
	}
}

func toScanEventResponse(e *models.ScanEvent) dto.ScanEventResponse {
	return dto.ScanEventResponse{
		Timestamp: utils.FormatRFC3339(e.Timestamp),
		Referrer:  e.Referrer,
		UserAgent: e.UserAgent,
		IP:        e.IP,
	}
}

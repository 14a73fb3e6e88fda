package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectStore is the slice of object storage the exporter needs.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Archive describes an uploaded export.
type Archive struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type exportColumn struct {
	Header string
	Value  func(r model.FeeRecord) any
}

var receiptColumns = []exportColumn{
	{Header: "Receipt No", Value: func(r model.FeeRecord) any { return r.ReceiptNumber }},
	{Header: "Student ID", Value: func(r model.FeeRecord) any { return r.StudentID }},
	{Header: "Student Name", Value: func(r model.FeeRecord) any { return r.StudentName }},
	{Header: "Month", Value: func(r model.FeeRecord) any { return r.MonthYear }},
	{Header: "Total", Value: func(r model.FeeRecord) any { return r.TotalAmount.Float64() }},
	{Header: "Issued At", Value: func(r model.FeeRecord) any { return r.IssuedAt.UTC().Format(time.RFC3339) }},
}

var itemHeaders = []string{"Receipt No", "Subject Code", "Subject Name", "Fee"}

// ExportService renders receipts into spreadsheets and optionally archives them.
type ExportService struct {
	records    FeeRecordStore
	objects    ObjectStore
	presignTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

// NewExportService creates a new ExportService. objects may be nil when no
// object storage is configured; Archive then returns ErrStorageDisabled.
func NewExportService(records FeeRecordStore, objects ObjectStore, presignTTL time.Duration, log zerolog.Logger) *ExportService {
	return &ExportService{
		records:    records,
		objects:    objects,
		presignTTL: presignTTL,
		log:        log.With().Str("component", "export_service").Logger(),
		now:        time.Now,
	}
}

// ExportXLSX builds a workbook with a "Receipts" sheet (one row per receipt)
// and an "Items" sheet (one row per line item).
func (s *ExportService) ExportXLSX(ctx context.Context, filter model.FeeRecordFilter) ([]byte, error) {
	records, err := s.records.List(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load receipts for export")
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const receipts, items = "Receipts", "Items"
	if err := f.SetSheetName(f.GetSheetName(0), receipts); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(items); err != nil {
		return nil, err
	}

	if err := writeReceiptRows(f, receipts, records); err != nil {
		return nil, err
	}
	if err := writeItemRows(f, items, records); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeReceiptRows fills sheet with a header and one row per receipt.
func writeReceiptRows(f *excelize.File, sheet string, records []model.FeeRecord) error {
	header := make([]any, len(receiptColumns))
	for i, col := range receiptColumns {
		header[i] = col.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, rec := range records {
		for colIdx, col := range receiptColumns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, col.Value(rec)); err != nil {
				return fmt.Errorf("write receipt %s: %w", rec.ReceiptNumber, err)
			}
		}
	}
	return nil
}

// writeItemRows fills sheet with a header and one row per line item.
func writeItemRows(f *excelize.File, sheet string, records []model.FeeRecord) error {
	header := make([]any, len(itemHeaders))
	for i, h := range itemHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	row := 2
	for _, rec := range records {
		for _, it := range rec.Items {
			values := []any{rec.ReceiptNumber, it.SubjectCode, it.SubjectName, it.Fee.Float64()}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("write items of %s: %w", rec.ReceiptNumber, err)
			}
			row++
		}
	}
	return nil
}

// Archive uploads a fresh export and returns a presigned download link.
func (s *ExportService) Archive(ctx context.Context, filter model.FeeRecordFilter) (*Archive, error) {
	if s.objects == nil {
		return nil, ErrStorageDisabled
	}

	data, err := s.ExportXLSX(ctx, filter)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("fee_records_%s.xlsx", s.now().UTC().Format("20060102_150405"))
	key, err := s.objects.Put(ctx, name, XLSXContentType, data)
	if err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("failed to upload export")
		return nil, err
	}
	url, err := s.objects.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to presign export")
		return nil, err
	}

	s.log.Info().Str("key", key).Int("bytes", len(data)).Msg("export archived")
	return &Archive{Key: key, URL: url}, nil
}

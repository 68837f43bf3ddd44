package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/export"
	"github.com/recopesa/intake-backend/internal/storage"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
	pdfContentType  = "application/pdf"
)

// ExportService renders report exports and, when an archive bucket is
// configured, keeps a copy of every generated spreadsheet.
type ExportService struct {
	reports *ReportService
	archive storage.ObjectStorage
}

// NewExportService builds the export service. archive may be nil when no
// object storage is configured; exports are then only streamed to the caller.
func NewExportService(reports *ReportService, archive storage.ObjectStorage) *ExportService {
	return &ExportService{reports: reports, archive: archive}
}

// File is a rendered export ready to stream.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Excel renders the filtered reports as an XLSX workbook.
func (s *ExportService) Excel(ctx context.Context, filter *domain.ReportFilter) (*File, error) {
	reports, err := s.reports.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := export.Workbook(reports)
	if err != nil {
		return nil, err
	}

	f := &File{
		Name:        fmt.Sprintf("reportes-%s.xlsx", time.Now().Format("2006-01-02")),
		ContentType: xlsxContentType,
		Data:        data,
	}
	s.archiveFile(ctx, f)
	return f, nil
}

// CSV renders the filtered reports as a CSV file.
func (s *ExportService) CSV(ctx context.Context, filter *domain.ReportFilter) (*File, error) {
	reports, err := s.reports.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := export.DetailCSV(reports)
	if err != nil {
		return nil, err
	}

	f := &File{
		Name:        fmt.Sprintf("reportes-%s.csv", time.Now().Format("2006-01-02")),
		ContentType: csvContentType,
		Data:        data,
	}
	s.archiveFile(ctx, f)
	return f, nil
}

// Ticket renders the printable PDF weigh ticket for one report.
func (s *ExportService) Ticket(ctx context.Context, reportID string) (*File, error) {
	r, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	data, err := export.Ticket(r)
	if err != nil {
		return nil, err
	}

	return &File{
		Name:        fmt.Sprintf("ticket-%s.pdf", r.TicketNumber),
		ContentType: pdfContentType,
		Data:        data,
	}, nil
}

// archiveFile uploads a copy of the export; failures are logged, never
// surfaced, so a broken bucket cannot block a download.
func (s *ExportService) archiveFile(ctx context.Context, f *File) {
	if s.archive == nil {
		return
	}

	key := fmt.Sprintf("exports/%s/%s", time.Now().Format("2006/01"), f.Name)
	if err := s.archive.UploadObject(ctx, key, f.ContentType, f.Data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("export archive upload failed")
		return
	}
	log.Info().Str("key", key).Int("bytes", len(f.Data)).Msg("export archived")
}

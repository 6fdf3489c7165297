package attendance

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/employee"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/imports"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/ingest"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/platform/metrics"
)

// UploadInput is one uploaded timesheet file. OverrideDate, when set, wins
// over any date the SRP parser recovers from the file header.
type UploadInput struct {
	Filename     string
	Content      []byte
	OverrideDate time.Time
}

// Summary is the upload outcome returned to the caller. Errors is truncated
// to the configured limit; the full list lives on the history record.
type Summary struct {
	ImportID         string               `json:"importId"`
	BatchID          string               `json:"batchId"`
	Status           imports.UploadStatus `json:"status"`
	TotalRecords     int                  `json:"totalRecords"`
	ProcessedRecords int                  `json:"processedRecords"`
	ErrorRecords     int                  `json:"errorRecords"`
	WarningsCount    int                  `json:"warningsCount"`
	Errors           []ingest.RowError    `json:"errors"`
	Warnings         []Warning            `json:"warnings"`
}

// Service runs one upload end to end: parse, normalize, resolve employees,
// persist in batches, finalize the audit trail. Uploads are synchronous and
// request-scoped; there is no background queue.
type Service struct {
	Normalizer *ingest.Normalizer
	Resolver   *employee.Resolver
	Engine     *Engine
	Tracker    *imports.Tracker
	Store      StoreAPI
	Metrics    *metrics.Collector
	ErrorLimit int
}

func NewService(normalizer *ingest.Normalizer, resolver *employee.Resolver, engine *Engine, tracker *imports.Tracker, store StoreAPI, collector *metrics.Collector, errorLimit int) *Service {
	if errorLimit <= 0 {
		errorLimit = 50
	}
	return &Service{
		Normalizer: normalizer,
		Resolver:   resolver,
		Engine:     engine,
		Tracker:    tracker,
		Store:      store,
		Metrics:    collector,
		ErrorLimit: errorLimit,
	}
}

// Ingest processes one uploaded file. A *StructuralError return means the
// upload was rejected before any history record was written.
func (s *Service) Ingest(ctx context.Context, input UploadInput) (*Summary, error) {
	if len(bytes.TrimSpace(input.Content)) == 0 {
		return nil, &StructuralError{Code: "empty_file", Message: "uploaded file is empty"}
	}

	source, err := sourceForFilename(input.Filename)
	if err != nil {
		return nil, err
	}

	rows, fileDate, err := s.parse(source, input)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	total := len(rows)
	importID, err := s.Tracker.Begin(ctx, batchID, filepath.Base(input.Filename), string(source), total)
	if err != nil {
		return nil, fmt.Errorf("begin upload tracking: %w", err)
	}

	records, rowErrors := s.normalize(rows, fileDate, source)

	lookup, warnings, err := s.resolve(ctx, records, source)
	if err != nil {
		// Resolution is all-or-nothing; without a snapshot no row can
		// be keyed, so the whole upload fails.
		slog.Error("employee resolution failed", "batchId", batchID, "err", err)
		for _, rec := range records {
			rowErrors = append(rowErrors, ingest.RowError{Row: rec.Line, Message: "employee resolution failed"})
		}
		return s.finish(ctx, importID, batchID, total, 0, rowErrors, warnings)
	}

	var persistable []Record
	for _, rec := range records {
		id, ok := lookup.IDFor(rec.EmployeeCode)
		if !ok {
			rowErrors = append(rowErrors, ingest.RowError{
				Row:     rec.Line,
				Message: fmt.Sprintf("unknown employee code %s", rec.EmployeeCode),
			})
			continue
		}
		persistable = append(persistable, FromNormalized(rec, id, batchID))
	}

	s.Tracker.Progress(ctx, batchID, total, 0, len(rowErrors), toUploadErrors(rowErrors))

	var processed int
	if source == ingest.SourceSRP {
		var persistErrors []ingest.RowError
		processed, persistErrors = s.Engine.PersistBatches(ctx, persistable)
		rowErrors = append(rowErrors, persistErrors...)
	} else {
		// CSV rows are written individually, outside the batching scheme.
		for _, rec := range persistable {
			if err := s.Engine.PersistRow(ctx, rec); err != nil {
				rowErrors = append(rowErrors, ingest.RowError{
					Row:     rec.Line,
					Message: fmt.Sprintf("upsert failed for %s: %v", rec.EmployeeCode, err),
				})
				continue
			}
			processed++
		}
	}

	return s.finish(ctx, importID, batchID, total, processed, rowErrors, warnings)
}

func (s *Service) parse(source ingest.Source, input UploadInput) ([]ingest.RawRow, time.Time, error) {
	switch source {
	case ingest.SourceSRP:
		result := ingest.ParseSRP(string(input.Content), input.OverrideDate)
		if len(result.Rows) == 0 {
			return nil, time.Time{}, &StructuralError{Code: "empty_file", Message: "no data rows found in file"}
		}
		return result.Rows, result.Date, nil
	default:
		rows, err := ingest.ParseCSV(bytes.NewReader(input.Content))
		if err != nil {
			return nil, time.Time{}, csvStructuralError(err)
		}
		return rows, time.Time{}, nil
	}
}

func (s *Service) normalize(rows []ingest.RawRow, fileDate time.Time, source ingest.Source) ([]ingest.Record, []ingest.RowError) {
	var records []ingest.Record
	var rowErrors []ingest.RowError
	for _, row := range rows {
		record, err := s.Normalizer.Normalize(row, fileDate, source)
		if err != nil {
			rowErrors = append(rowErrors, ingest.RowError{Row: row.Line, Message: err.Error(), Data: row.Fields})
			continue
		}
		records = append(records, record)
	}
	return records, rowErrors
}

// resolve builds the employee snapshot for this upload. SRP is an
// authoritative device export, so unknown codes become placeholder
// employees; CSV is a manual upload and unknown codes are hard row errors.
func (s *Service) resolve(ctx context.Context, records []ingest.Record, source ingest.Source) (employee.Lookup, []Warning, error) {
	candidates := make([]employee.Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, employee.Candidate{Code: rec.EmployeeCode, Name: rec.EmployeeName})
	}

	lookup, created, err := s.Resolver.Snapshot(ctx, candidates, source == ingest.SourceSRP)
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	for _, code := range created {
		warnings = append(warnings, Warning{
			Row:      firstRowFor(records, code),
			Warning:  "employee created with placeholder details",
			Employee: code,
		})
	}
	return lookup, warnings, nil
}

func (s *Service) finish(ctx context.Context, importID, batchID string, total, processed int, rowErrors []ingest.RowError, warnings []Warning) (*Summary, error) {
	status, err := s.Tracker.Finalize(ctx, batchID, total, processed, len(rowErrors), toUploadErrors(rowErrors))
	if err != nil {
		slog.Error("upload finalize failed", "batchId", batchID, "err", err)
	}
	if s.Metrics != nil {
		s.Metrics.RecordUpload(processed, len(rowErrors), status != imports.StatusFailed)
	}

	echoed := rowErrors
	if len(echoed) > s.ErrorLimit {
		echoed = echoed[:s.ErrorLimit]
	}
	if echoed == nil {
		echoed = []ingest.RowError{}
	}
	if warnings == nil {
		warnings = []Warning{}
	}

	return &Summary{
		ImportID:         importID,
		BatchID:          batchID,
		Status:           status,
		TotalRecords:     total,
		ProcessedRecords: processed,
		ErrorRecords:     len(rowErrors),
		WarningsCount:    len(warnings),
		Errors:           echoed,
		Warnings:         warnings,
	}, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

func sourceForFilename(filename string) (ingest.Source, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".srp":
		return ingest.SourceSRP, nil
	case ".csv":
		return ingest.SourceCSV, nil
	default:
		return "", &StructuralError{
			Code:    "invalid_file_type",
			Message: "file must have a .srp or .csv extension",
			Details: map[string]string{"filename": filename},
		}
	}
}

func csvStructuralError(err error) error {
	if headerErr, ok := err.(*ingest.HeaderError); ok {
		return &StructuralError{
			Code:    "missing_headers",
			Message: headerErr.Error(),
			Details: map[string]any{"missing": headerErr.Missing},
		}
	}
	if err == ingest.ErrEmptyFile {
		return &StructuralError{Code: "empty_file", Message: "file contains no data rows"}
	}
	return &StructuralError{Code: "invalid_csv", Message: err.Error()}
}

func firstRowFor(records []ingest.Record, code string) int {
	for _, rec := range records {
		if rec.EmployeeCode == code {
			return rec.Line
		}
	}
	return 0
}

func toUploadErrors(rowErrors []ingest.RowError) []imports.UploadError {
	out := make([]imports.UploadError, 0, len(rowErrors))
	for _, rowErr := range rowErrors {
		out = append(out, imports.UploadError{Row: rowErr.Row, Message: rowErr.Message})
	}
	return out
}

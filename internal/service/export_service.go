package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	"github.com/eduspark/edu-platform-api/internal/repository"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
	"github.com/eduspark/edu-platform-api/pkg/export"
)

type rosterReader interface {
	ListStudentsByTeacher(ctx context.Context, teacherID int64) ([]repository.StudentRef, error)
}

type studentTallier interface {
	TallyForStudent(ctx context.Context, studentID int64, since time.Time) (models.AttendanceTally, error)
}

// ExportFormat selects the download encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportService renders attendance summaries for download. Exports run
// synchronously; the payload streams back on the requesting connection.
type ExportService struct {
	users      rosterReader
	attendance studentTallier
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs the service with defaults.
func NewExportService(users rosterReader, attendance studentTallier, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		users:      users,
		attendance: attendance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		now:        time.Now,
	}
}

// ExportResult is a rendered download payload.
type ExportResult struct {
	FileName    string
	ContentType string
	Payload     []byte
}

// AttendanceSummary renders the teacher's per-student 30-day attendance
// summary in the requested format.
func (s *ExportService) AttendanceSummary(ctx context.Context, teacherID int64, format ExportFormat) (*ExportResult, error) {
	students, err := s.users.ListStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	since := s.now().AddDate(0, 0, -30)

	dataset := export.Dataset{
		Headers: []string{"Student", "Present", "Total", "Attendance %"},
		Rows:    make([][]string, 0, len(students)),
	}
	for _, student := range students {
		tally, err := s.attendance.TallyForStudent(ctx, student.ID, since)
		if err != nil {
			return nil, fmt.Errorf("student %d attendance: %w", student.ID, err)
		}
		dataset.Rows = append(dataset.Rows, []string{
			student.FullName,
			strconv.Itoa(tally.Present),
			strconv.Itoa(tally.Total),
			strconv.Itoa(percent(tally.Present, tally.Total)),
		})
	}

	stamp := s.now().Format("2006-01-02")
	switch format {
	case FormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("attendance-summary-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case FormatPDF:
		payload, err := s.pdf.Render(dataset, "Attendance Summary")
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("attendance-summary-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

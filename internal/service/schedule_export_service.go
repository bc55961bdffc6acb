package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
	"github.com/sisacad/sisacad-api/pkg/export"
)

type scheduleReader interface {
	ListStudentSchedule(ctx context.Context, studentID string) (*models.StudentSchedule, error)
}

// ScheduleExportService renders a student's weekly schedule as CSV or PDF.
type ScheduleExportService struct {
	schedules scheduleReader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewScheduleExportService constructs ScheduleExportService.
func NewScheduleExportService(schedules scheduleReader, logger *zap.Logger) *ScheduleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleExportService{
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

var scheduleHeaders = []string{"Day", "Start", "End", "Course", "Kind", "Section", "Teacher", "Room"}

// Export renders the schedule in the requested format ("csv" or "pdf") and
// returns the bytes together with the response content type.
func (s *ScheduleExportService) Export(ctx context.Context, studentID, format string) ([]byte, string, error) {
	schedule, err := s.schedules.ListStudentSchedule(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{Headers: scheduleHeaders}
	for _, entry := range schedule.Entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":     string(entry.Day),
			"Start":   entry.StartMin.Clock(),
			"End":     entry.EndMin.Clock(),
			"Course":  fmt.Sprintf("%s %s", entry.CourseCode, entry.CourseName),
			"Kind":    string(entry.Kind),
			"Section": entry.SectionCode,
			"Teacher": entry.TeacherName,
			"Room":    entry.RoomCode,
		})
	}

	switch format {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Weekly Schedule")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	}
	return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}

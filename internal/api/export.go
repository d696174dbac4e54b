package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reserveease/internal/config"
	"reserveease/internal/models"
	"reserveease/internal/service"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

// Exporter writes booking lists to Excel files for the staff panel.
type Exporter struct {
	cfg      config.ExportConfig
	bookings *service.BookingService
	logger   *zerolog.Logger
}

func NewExporter(cfg config.ExportConfig, bookings *service.BookingService, logger *zerolog.Logger) *Exporter {
	return &Exporter{cfg: cfg, bookings: bookings, logger: logger}
}

// Export создает Excel файл с бронированиями за период
func (e *Exporter) Export(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.bookings.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Name", "Phone", "Email", "Guests", "Date", "Time",
		"Note", "Status", "Confirmation", "Created",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)

	for i, booking := range bookings {
		row := i + 2
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), booking.Name)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), booking.Phone)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), booking.Email)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), booking.Guests)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), booking.DateString())
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("G%d", row), booking.Time)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("H%d", row), booking.Note)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("I%d", row), statusIcon(booking.Status)+" "+string(booking.Status))
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("J%d", row), string(booking.ConfirmationMethod))
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("K%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "B", 20)
	_ = f.SetColWidth(exportSheet, "C", "D", 22)
	_ = f.SetColWidth(exportSheet, "E", "E", 8)
	_ = f.SetColWidth(exportSheet, "F", "G", 12)
	_ = f.SetColWidth(exportSheet, "H", "H", 30)
	_ = f.SetColWidth(exportSheet, "I", "K", 16)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.cfg.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func statusIcon(status models.Status) string {
	switch status {
	case models.StatusAccepted, models.StatusCompleted:
		return "✅"
	case models.StatusPending, models.StatusWaiting:
		return "⏳"
	case models.StatusRejected:
		return "❌"
	default:
		return "❓"
	}
}

// handleExport serves GET /api/v1/bookings/export?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if s.exports == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	now := time.Now()
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 1, 0)

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
		end = parsed
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "to date is before from date")
		return
	}

	filePath, err := s.exports.Export(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filePath)))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, filePath)
}

package dashboard

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportEngagements renders the engagement list with progress columns to xlsx
func ExportEngagements(items []EngagementProgress) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Engagements"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Client", "Email", "Status", "Email Sent", "Total Steps", "Completed Steps", "Progress %"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, item := range items {
		sentAt := ""
		if item.Engagement.EmailSentAt != nil {
			sentAt = item.Engagement.EmailSentAt.Format(time.RFC3339)
		}
		values := []interface{}{
			item.ClientName,
			item.Engagement.ClientEmail,
			string(item.Engagement.Status),
			sentAt,
			item.TotalSteps,
			item.CompletedSteps,
			item.ProgressPercentage,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

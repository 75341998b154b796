// Package export writes stored feedback as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/nutribot/internal/domain"
)

const FeedbackSheet = "Feedback"

var feedbackHeader = []any{"submission_id", "received_at", "dish", "rating"}

// WriteFeedbackXLSX writes one row per rating, submissions in the order given
// and dishes sorted within a submission.
func WriteFeedbackXLSX(w io.Writer, subs []*domain.FeedbackSubmission) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", FeedbackSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(FeedbackSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", feedbackHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, sub := range subs {
		dishes := make([]string, 0, len(sub.Ratings))
		for d := range sub.Ratings {
			dishes = append(dishes, d)
		}
		sort.Strings(dishes)

		for _, dish := range dishes {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []any{sub.ID, sub.ReceivedAt.UTC().Format(time.RFC3339), dish, sub.Ratings[dish]}
			if err := sw.SetRow(cell, values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

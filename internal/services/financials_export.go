package services

import (
	"bytes"
	"fmt"

	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

// FinancialsSheet is the worksheet holding the payment history
const FinancialsSheet = "Payments"

var financialsHeaders = []string{
	"Payment ID", "Booking ID", "Hotel", "Guest", "Check-in", "Check-out",
	"Amount", "Method", "Status", "Transaction ID", "Payment Date",
}

// BuildFinancialsWorkbook renders payment history rows as an .xlsx workbook
// with a totals line for completed payments
func BuildFinancialsWorkbook(rows []models.PaymentHistoryRow, currency string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", FinancialsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range financialsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(FinancialsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	var completedCents int64
	for i, r := range rows {
		row := i + 2
		transactionID := ""
		if r.TransactionID != nil {
			transactionID = *r.TransactionID
		}
		values := []interface{}{
			r.PaymentID,
			r.BookingID,
			r.HotelName,
			joinName(r.GuestFirstName, r.GuestLastName),
			r.CheckInDate.String(),
			r.CheckOutDate.String(),
			r.Amount,
			r.PaymentMethod,
			string(r.Status),
			transactionID,
			r.PaymentDate.UTC().Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(FinancialsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
		if r.Status == models.PaymentStatusCompleted {
			completedCents += lifecycle.ToCents(r.Amount)
		}
	}

	summaryRow := len(rows) + 3
	f.SetCellValue(FinancialsSheet, fmt.Sprintf("A%d", summaryRow), "Total completed")
	f.SetCellValue(FinancialsSheet, fmt.Sprintf("G%d", summaryRow), lifecycle.FromCents(completedCents))
	f.SetCellValue(FinancialsSheet, fmt.Sprintf("H%d", summaryRow), currency)

	f.SetColWidth(FinancialsSheet, "A", "B", 12)
	f.SetColWidth(FinancialsSheet, "C", "D", 28)
	f.SetColWidth(FinancialsSheet, "E", "F", 12)
	f.SetColWidth(FinancialsSheet, "G", "I", 12)
	f.SetColWidth(FinancialsSheet, "J", "K", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func joinName(first, last string) string {
	u := models.User{FirstName: first, LastName: last}
	return u.FullName()
}

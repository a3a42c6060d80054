package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	loc "trade-finance-cloud/internal/loc/domain"
)

// BuildRegisterCSV renders the letter-of-credit register as CSV.
func BuildRegisterCSV(records []*loc.LetterOfCredit) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"id", "buyer_id", "seller_id", "amount", "commodity", "latest_price", "status", "created_at"}); err != nil {
		return nil, err
	}
	for _, record := range records {
		if record == nil {
			continue
		}
		price := ""
		if record.LatestPrice != nil {
			price = strconv.FormatFloat(*record.LatestPrice, 'f', 2, 64)
		}
		row := []string{
			record.ID,
			record.BuyerID,
			record.SellerID,
			strconv.FormatFloat(record.Amount, 'f', 2, 64),
			record.Commodity,
			price,
			string(record.Status),
			record.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRegisterXLSX renders the register as a workbook.
func BuildRegisterXLSX(records []*loc.LetterOfCredit) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "register"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Buyer", "Seller", "Amount", "Commodity", "Latest Price", "Status", "Created"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	for i, record := range records {
		if record == nil {
			continue
		}
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), record.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), record.BuyerID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), record.SellerID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), record.Amount)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), record.Commodity)
		if record.LatestPrice != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), *record.LatestPrice)
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), string(record.Status))
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), record.CreatedAt.Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRegisterPDF renders the register as a minimal PDF table.
func BuildRegisterPDF(records []*loc.LetterOfCredit) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Letter of Credit Register")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(60, 6, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Buyer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Seller", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Commodity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, record := range records {
		if record == nil {
			continue
		}
		price := "-"
		if record.LatestPrice != nil {
			price = fmt.Sprintf("%.2f", *record.LatestPrice)
		}
		pdf.CellFormat(60, 6, record.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, record.BuyerID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, record.SellerID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", record.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, record.Commodity, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, price, "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(record.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

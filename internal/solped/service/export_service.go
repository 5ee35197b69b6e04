package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/xuri/excelize/v2"
)

var requisitionExportHeaders = []string{
	"ID", "Status", "Priority", "Requested By", "Area", "Needed By",
	"Work Order", "Justification", "Supplier", "Total Price", "Currency",
	"Purchase Order", "Created At",
}

// ExportService renders requisition listings as xlsx workbooks.
type ExportService struct {
	reqRepo *repository.RequisitionRepository
}

func NewExportService(reqRepo *repository.RequisitionRepository) *ExportService {
	return &ExportService{reqRepo: reqRepo}
}

// ExportRequisitions produces a workbook with every requisition matching the
// filters, one summary sheet plus an items sheet. Requesters only export
// their own documents.
func (s *ExportService) ExportRequisitions(ctx context.Context, actor engine.Actor, filters map[string]string) (*excelize.File, string, error) {
	scope := ""
	if actor.Role == entity.RoleRequester {
		scope = actor.ID
	}
	reqs, _, err := s.reqRepo.FindAll(ctx, 1, 10000, filters, scope)
	if err != nil {
		return nil, "", fmt.Errorf("list requisitions: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Requisitions"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range requisitionExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, req := range reqs {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), req.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), req.Status)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), req.Priority)
		if req.CreatedBy != nil {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), req.CreatedBy.FullName)
		}
		if req.Area != nil {
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), req.Area.Name)
		}
		if req.NeededBy != nil {
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), req.NeededBy.Format("2006-01-02"))
		}
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), req.WorkOrder)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), req.Justification)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), req.Supplier)
		if req.TotalPrice != nil {
			f.SetCellValue(sheet, fmt.Sprintf("J%d", row), *req.TotalPrice)
		}
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), req.Currency)
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), req.PurchaseOrder)
		f.SetCellValue(sheet, fmt.Sprintf("M%d", row), req.CreatedAt.Format("2006-01-02 15:04"))
	}

	itemsSheet := "Items"
	f.NewSheet(itemsSheet)
	itemHeaders := []string{"Requisition", "Item", "Quantity", "Unit", "Specification", "Brand", "Unit Price"}
	for i, h := range itemHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(itemsSheet, cell, h)
		f.SetCellStyle(itemsSheet, cell, cell, boldStyle)
	}
	itemRow := 2
	for _, req := range reqs {
		for _, item := range req.Items {
			f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", itemRow), req.ID)
			f.SetCellValue(itemsSheet, fmt.Sprintf("B%d", itemRow), item.Name)
			f.SetCellValue(itemsSheet, fmt.Sprintf("C%d", itemRow), item.Quantity)
			if item.Unit != nil {
				f.SetCellValue(itemsSheet, fmt.Sprintf("D%d", itemRow), item.Unit.Symbol)
			}
			f.SetCellValue(itemsSheet, fmt.Sprintf("E%d", itemRow), item.Specification)
			f.SetCellValue(itemsSheet, fmt.Sprintf("F%d", itemRow), item.Brand)
			if item.UnitPrice != nil {
				f.SetCellValue(itemsSheet, fmt.Sprintf("G%d", itemRow), *item.UnitPrice)
			}
			itemRow++
		}
	}

	fileName := fmt.Sprintf("requisitions_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, fileName, nil
}

// Package report renders the inventory as an xlsx workbook with Code/Name/Qty columns.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/readmodel"
)

const (
	SheetName   = "Inventory"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []interface{}{"Code", "Name", "Qty"}

// InventorySource supplies the current inventory.
type InventorySource interface {
	Inventory(ctx context.Context) (store.Inventory, error)
}

// WriteInventory writes a workbook with one row per stock row, in the given order.
func WriteInventory(w io.Writer, rows []readmodel.StockReadModel) error {
	f, err := build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func build(rows []readmodel.StockReadModel) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "C1", bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []interface{}{row.Code, row.Name, row.Qty}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", "B", 32); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Exporter renders the live inventory on demand or to a file.
type Exporter struct {
	source InventorySource
	path   string
	logger *zap.Logger
}

func NewExporter(source InventorySource, path string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{source: source, path: path, logger: logger}
}

// Render returns the workbook bytes for the current inventory.
func (e *Exporter) Render(ctx context.Context) ([]byte, error) {
	inv, err := e.source.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteInventory(&buf, readmodel.StockRows(inv)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export writes the current inventory to the configured report file.
func (e *Exporter) Export(ctx context.Context) error {
	inv, err := e.source.Inventory(ctx)
	if err != nil {
		return err
	}
	f, err := build(readmodel.StockRows(inv))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save report %s: %w", e.path, err)
	}
	e.logger.Info("inventory report exported", zap.String("path", e.path), zap.Int("items", len(inv)))
	return nil
}

// Path returns the report file location.
func (e *Exporter) Path() string {
	return e.path
}
